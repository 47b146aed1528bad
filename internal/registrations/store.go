// Package registrations keeps event sign-ups in an explicit state store with
// a pluggable persistence medium.
package registrations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/shareshine/backend/internal/models"
	"github.com/shareshine/backend/internal/store"
)

var (
	// ErrNotFound is returned for unknown registration ids.
	ErrNotFound = errors.New("registration not found")
	// ErrUnknownEvent is returned when a sign-up names an event that does
	// not exist.
	ErrUnknownEvent = errors.New("unknown event")
)

var validate = models.NewValidator()

// MissingFieldError names the first required field left empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "Missing required field: " + e.Field
}

// InvalidFieldError names the first field with a malformed value.
type InvalidFieldError struct {
	Field string
	Err   error
}

func (e *InvalidFieldError) Error() string {
	return "Invalid value for field: " + e.Field
}

func (e *InvalidFieldError) Unwrap() error { return e.Err }

// EventLookup resolves event ids. store.Store satisfies it.
type EventLookup interface {
	Get(ctx context.Context, table, id string) (store.Record, error)
}

// Option configures a Store.
type Option func(*Store)

// WithEvents checks every sign-up against the events table and copies the
// stored title onto the registration.
func WithEvents(events EventLookup, table string) Option {
	return func(s *Store) {
		s.events = events
		s.eventsTable = table
	}
}

// Summary is the admin view of registration activity.
type Summary struct {
	Total            int        `json:"total"`
	NewSinceLastView int        `json:"new_since_last_view"`
	LastViewedAt     *time.Time `json:"last_viewed_at"`
}

// Store serialises every load-mutate-save cycle, so writers in this process
// never overwrite each other's changes.
type Store struct {
	mu          sync.Mutex
	p           Persistence
	now         func() time.Time
	events      EventLookup
	eventsTable string
}

// NewStore creates a store over p.
func NewStore(p Persistence, opts ...Option) *Store {
	s := &Store{p: p, now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates reg, assigns its id and timestamp and appends it.
// Presence is checked before format, so a sign-up missing its name is
// reported as missing even if another field is malformed.
func (s *Store) Register(ctx context.Context, reg models.EventRegistration) (models.EventRegistration, error) {
	if err := checkRegistration(reg); err != nil {
		return models.EventRegistration{}, err
	}
	if s.events != nil {
		event, err := s.events.Get(ctx, s.eventsTable, reg.EventID)
		if errors.Is(err, store.ErrNotFound) {
			return models.EventRegistration{}, fmt.Errorf("%w: %s", ErrUnknownEvent, reg.EventID)
		}
		if err != nil {
			return models.EventRegistration{}, fmt.Errorf("lookup event %s: %w", reg.EventID, err)
		}
		if title, _ := event["title"].(string); title != "" {
			reg.EventTitle = title
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.p.Load(ctx)
	if err != nil {
		return models.EventRegistration{}, err
	}
	reg.ID = uuid.NewString()
	reg.RegisteredAt = s.now()
	state.Registrations = append(state.Registrations, reg)
	if err := s.p.Save(ctx, state); err != nil {
		return models.EventRegistration{}, err
	}
	return reg, nil
}

// List returns registrations in sign-up order, optionally for one event.
func (s *Store) List(ctx context.Context, eventID string) ([]models.EventRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.p.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.EventRegistration, 0, len(state.Registrations))
	for _, r := range state.Registrations {
		if eventID == "" || r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Get returns one registration.
func (s *Store) Get(ctx context.Context, id string) (models.EventRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.p.Load(ctx)
	if err != nil {
		return models.EventRegistration{}, err
	}
	for _, r := range state.Registrations {
		if r.ID == id {
			return r, nil
		}
	}
	return models.EventRegistration{}, ErrNotFound
}

// Delete removes one registration.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.p.Load(ctx)
	if err != nil {
		return err
	}
	for i, r := range state.Registrations {
		if r.ID == id {
			state.Registrations = append(state.Registrations[:i], state.Registrations[i+1:]...)
			return s.p.Save(ctx, state)
		}
	}
	return ErrNotFound
}

// MarkViewed records that an admin has seen the current registrations.
func (s *Store) MarkViewed(ctx context.Context) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.p.Load(ctx)
	if err != nil {
		return time.Time{}, err
	}
	now := s.now()
	state.LastViewedAt = &now
	if err := s.p.Save(ctx, state); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

// Summary counts registrations made after the last admin view.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.p.Load(ctx)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Total: len(state.Registrations), LastViewedAt: state.LastViewedAt}
	for _, r := range state.Registrations {
		if state.LastViewedAt == nil || r.RegisteredAt.After(*state.LastViewedAt) {
			sum.NewSinceLastView++
		}
	}
	return sum, nil
}

func checkRegistration(reg models.EventRegistration) error {
	for _, f := range []struct{ name, value string }{
		{"name", reg.Name},
		{"email", reg.Email},
		{"phone", reg.Phone},
		{"eventId", reg.EventID},
	} {
		if strings.TrimSpace(f.value) == "" {
			return &MissingFieldError{Field: f.name}
		}
	}
	if err := validate.Struct(reg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &InvalidFieldError{Field: verrs[0].Field(), Err: err}
		}
		return fmt.Errorf("validate registration: %w", err)
	}
	return nil
}
