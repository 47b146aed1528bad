package registrations

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareshine/backend/internal/models"
)

func testState() models.RegistrationState {
	viewed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return models.RegistrationState{
		Registrations: []models.EventRegistration{{
			ID:           "r1",
			Name:         "Ana",
			Email:        "ana@example.com",
			Phone:        "555-0100",
			EventID:      "e1",
			RegisteredAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		}},
		LastViewedAt: &viewed,
	}
}

func TestFilePersistence_MissingFileIsEmpty(t *testing.T) {
	p := NewFilePersistence(filepath.Join(t.TempDir(), "nope.json"))
	state, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.Registrations)
	assert.Nil(t, state.LastViewedAt)
}

func TestFilePersistence_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "registrations.json")
	p := NewFilePersistence(path)
	ctx := context.Background()

	require.NoError(t, p.Save(ctx, testState()))
	got, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testState(), got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")
}

func TestFilePersistence_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registrations.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFilePersistence(path).Load(context.Background())
	assert.Error(t, err)
}

func TestRedisPersistence_LoadMissingKey(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectGet("registrations").RedisNil()

	state, err := NewRedisPersistence(db, "registrations").Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.Registrations)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPersistence_SaveThenLoad(t *testing.T) {
	db, mock := redismock.NewClientMock()
	data, err := json.Marshal(testState())
	require.NoError(t, err)

	mock.ExpectSet("registrations", data, 0).SetVal("OK")
	mock.ExpectGet("registrations").SetVal(string(data))

	p := NewRedisPersistence(db, "registrations")
	require.NoError(t, p.Save(context.Background(), testState()))
	got, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testState(), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPersistence_Errors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectGet("registrations").SetErr(errors.New("connection refused"))

	_, err := NewRedisPersistence(db, "registrations").Load(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, redis.Nil))
	assert.Contains(t, err.Error(), "connection refused")
}
