package registrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/shareshine/backend/internal/models"
)

// Persistence loads and saves the whole registration document. The backing
// medium is swappable; Store serialises access to it.
type Persistence interface {
	Load(ctx context.Context) (models.RegistrationState, error)
	Save(ctx context.Context, state models.RegistrationState) error
}

// MemoryPersistence keeps the document in process.
type MemoryPersistence struct {
	mu    sync.Mutex
	state []byte
}

// NewMemoryPersistence creates an empty in-memory persistence.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{}
}

func (m *MemoryPersistence) Load(_ context.Context) (models.RegistrationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decodeState(m.state)
}

func (m *MemoryPersistence) Save(_ context.Context, state models.RegistrationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode registrations: %w", err)
	}
	m.mu.Lock()
	m.state = data
	m.mu.Unlock()
	return nil
}

// FilePersistence stores the document as a JSON file. Saves write a temp
// file and rename it over the old one.
type FilePersistence struct {
	path string
}

// NewFilePersistence creates a file persistence at path.
func NewFilePersistence(path string) *FilePersistence {
	return &FilePersistence{path: path}
}

func (f *FilePersistence) Load(_ context.Context) (models.RegistrationState, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.RegistrationState{}, nil
	}
	if err != nil {
		return models.RegistrationState{}, fmt.Errorf("read %s: %w", f.path, err)
	}
	return decodeState(data)
}

func (f *FilePersistence) Save(_ context.Context, state models.RegistrationState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registrations: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".registrations-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

// RedisPersistence stores the document under a single key.
type RedisPersistence struct {
	client redis.Cmdable
	key    string
}

// NewRedisPersistence creates a redis persistence.
func NewRedisPersistence(client redis.Cmdable, key string) *RedisPersistence {
	return &RedisPersistence{client: client, key: key}
}

func (r *RedisPersistence) Load(ctx context.Context) (models.RegistrationState, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.RegistrationState{}, nil
	}
	if err != nil {
		return models.RegistrationState{}, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return decodeState(data)
}

func (r *RedisPersistence) Save(ctx context.Context, state models.RegistrationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode registrations: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func decodeState(data []byte) (models.RegistrationState, error) {
	var state models.RegistrationState
	if len(data) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("decode registrations: %w", err)
	}
	return state, nil
}
