package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"), "events")
	if err != nil && strings.Contains(err.Error(), "cgo") {
		t.Skip("sqlite3 driver needs cgo")
	}
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_CRUD(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	rec, err := s.Insert(ctx, "events", Record{"title": "Picnic", "type": "upcoming", "date": "2025-06-01"})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID())

	got, err := s.Get(ctx, "events", rec.ID())
	require.NoError(t, err)
	assert.Equal(t, "Picnic", got["title"])

	updated, err := s.Update(ctx, "events", rec.ID(), Record{"title": "Big Picnic"})
	require.NoError(t, err)
	assert.Equal(t, "Big Picnic", updated["title"])
	assert.Equal(t, "2025-06-01", updated["date"])

	require.NoError(t, s.Delete(ctx, "events", rec.ID()))
	_, err = s.Get(ctx, "events", rec.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "events", rec.ID()), ErrNotFound)
}

func TestSQLite_SelectFilterAndOrder(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	for _, r := range []Record{
		{"type": "past", "date": "2024-01-10"},
		{"type": "upcoming", "date": "2025-03-15"},
		{"type": "upcoming", "date": "2025-06-01"},
	} {
		_, err := s.Insert(ctx, "events", r)
		require.NoError(t, err)
	}

	rows, err := s.Select(ctx, "events", Query{
		Filters: []Filter{{Field: "type", Value: "upcoming"}},
		Order:   &Order{Field: "date", Desc: true},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-06-01", rows[0]["date"])
	assert.Equal(t, "2025-03-15", rows[1]["date"])

	_, err = s.Select(ctx, "events", Query{Order: &Order{Field: "date; DROP TABLE events"}})
	assert.Error(t, err)
}
