package registrations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareshine/backend/internal/models"
	"github.com/shareshine/backend/internal/store"
)

func newTestStore(p Persistence) *Store {
	s := NewStore(p)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	var n int
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return s
}

func sample(eventID string) models.EventRegistration {
	return models.EventRegistration{
		Name:       "Ana",
		Email:      "ana@example.com",
		Phone:      "555-0100",
		EventID:    eventID,
		EventTitle: "Beach Cleanup",
		Age:        17,
	}
}

func TestStore_RegisterAssignsIDAndTime(t *testing.T) {
	s := newTestStore(NewMemoryPersistence())
	reg, err := s.Register(context.Background(), sample("e1"))
	require.NoError(t, err)
	assert.NotEmpty(t, reg.ID)
	assert.False(t, reg.RegisteredAt.IsZero())

	got, err := s.Get(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, reg, got)
}

func TestStore_RegisterReportsFirstMissingField(t *testing.T) {
	s := newTestStore(NewMemoryPersistence())
	reg := sample("")
	reg.Phone = " "

	_, err := s.Register(context.Background(), reg)
	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "phone", missing.Field)
	assert.Equal(t, "Missing required field: phone", err.Error())

	list, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_ListFiltersByEventInOrder(t *testing.T) {
	s := newTestStore(NewMemoryPersistence())
	ctx := context.Background()
	a, _ := s.Register(ctx, sample("e1"))
	_, _ = s.Register(ctx, sample("e2"))
	c, _ := s.Register(ctx, sample("e1"))

	list, err := s.List(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, c.ID, list[1].ID)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(NewMemoryPersistence())
	ctx := context.Background()
	reg, _ := s.Register(ctx, sample("e1"))

	require.NoError(t, s.Delete(ctx, reg.ID))
	assert.ErrorIs(t, s.Delete(ctx, reg.ID), ErrNotFound)
	_, err := s.Get(ctx, reg.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SummaryCountsSinceLastView(t *testing.T) {
	s := newTestStore(NewMemoryPersistence())
	ctx := context.Background()
	_, _ = s.Register(ctx, sample("e1"))
	_, _ = s.Register(ctx, sample("e1"))

	sum, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 2, NewSinceLastView: 2}, sum)

	viewed, err := s.MarkViewed(ctx)
	require.NoError(t, err)
	_, _ = s.Register(ctx, sample("e2"))

	sum, err = s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 1, sum.NewSinceLastView)
	require.NotNil(t, sum.LastViewedAt)
	assert.True(t, viewed.Equal(*sum.LastViewedAt))
}

func TestStore_ConcurrentRegistrationsAreNotLost(t *testing.T) {
	s := NewStore(NewMemoryPersistence())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Register(ctx, sample("e1"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := s.List(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, list, 50)
}

type failingPersistence struct{ err error }

func (f failingPersistence) Load(context.Context) (models.RegistrationState, error) {
	return models.RegistrationState{}, f.err
}

func (f failingPersistence) Save(context.Context, models.RegistrationState) error { return f.err }

func TestStore_PropagatesPersistenceErrors(t *testing.T) {
	boom := errors.New("disk full")
	s := NewStore(failingPersistence{err: boom})

	_, err := s.Register(context.Background(), sample("e1"))
	assert.ErrorIs(t, err, boom)
	_, err = s.Summary(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestStore_RegisterChecksFormatAfterPresence(t *testing.T) {
	s := newTestStore(NewMemoryPersistence())
	reg := sample("e1")
	reg.Email = "not-an-email"

	_, err := s.Register(context.Background(), reg)
	var invalid *InvalidFieldError
	require.True(t, errors.As(err, &invalid), "got %v", err)
	assert.Equal(t, "email", invalid.Field)

	reg.Name = ""
	_, err = s.Register(context.Background(), reg)
	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, "name", missing.Field)
}

func TestStore_RegisterResolvesEvent(t *testing.T) {
	ctx := context.Background()
	events := store.NewMemory("events")
	event, err := events.Insert(ctx, "events", store.Record{"title": "Beach Cleanup 2026"})
	require.NoError(t, err)

	s := NewStore(NewMemoryPersistence(), WithEvents(events, "events"))

	reg := sample(event.ID())
	reg.EventTitle = "Something else"
	got, err := s.Register(ctx, reg)
	require.NoError(t, err)
	assert.Equal(t, "Beach Cleanup 2026", got.EventTitle)

	_, err = s.Register(ctx, sample("missing-event"))
	assert.ErrorIs(t, err, ErrUnknownEvent)

	require.NoError(t, events.Delete(ctx, "events", event.ID()))
	_, err = s.Register(ctx, sample(event.ID()))
	assert.ErrorIs(t, err, ErrUnknownEvent)
}
