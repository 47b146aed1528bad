package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_InsertAssignsReservedColumns(t *testing.T) {
	m := NewMemory("events")
	ctx := context.Background()

	rec, err := m.Insert(ctx, "events", Record{"title": "Picnic", "id": "client-id"})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID())
	assert.NotEqual(t, "client-id", rec.ID())
	assert.Equal(t, "Picnic", rec["title"])
	assert.NotNil(t, rec[ColumnCreatedAt])

	got, err := m.Get(ctx, "events", rec.ID())
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestMemory_UnknownTable(t *testing.T) {
	m := NewMemory("events")
	_, err := m.Select(context.Background(), "widgets", Query{})
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestMemory_SelectFilterAndOrder(t *testing.T) {
	m := NewMemory("events")
	ctx := context.Background()
	for _, r := range []Record{
		{"type": "past", "date": "2024-01-10"},
		{"type": "upcoming", "date": "2025-06-01"},
		{"type": "upcoming", "date": "2025-03-15"},
		{"type": "upcoming", "date": nil},
	} {
		_, err := m.Insert(ctx, "events", r)
		require.NoError(t, err)
	}

	asc, err := m.Select(ctx, "events", Query{
		Filters: []Filter{{Field: "type", Value: "upcoming"}},
		Order:   &Order{Field: "date"},
	})
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, "2025-03-15", asc[0]["date"])
	assert.Equal(t, "2025-06-01", asc[1]["date"])
	assert.Nil(t, asc[2]["date"])

	desc, err := m.Select(ctx, "events", Query{
		Filters: []Filter{{Field: "type", Value: "upcoming"}},
		Order:   &Order{Field: "date", Desc: true},
	})
	require.NoError(t, err)
	require.Len(t, desc, 3)
	assert.Nil(t, desc[0]["date"])
	assert.Equal(t, "2025-06-01", desc[1]["date"])

	none, err := m.Select(ctx, "events", Query{Filters: []Filter{{Field: "type", Value: "cancelled"}}})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemory_NumericOrdering(t *testing.T) {
	m := NewMemory("events")
	ctx := context.Background()
	for _, n := range []float64{10, 9, 100} {
		_, err := m.Insert(ctx, "events", Record{"participants_count": n})
		require.NoError(t, err)
	}
	rows, err := m.Select(ctx, "events", Query{Order: &Order{Field: "participants_count"}})
	require.NoError(t, err)
	assert.Equal(t, []any{9.0, 10.0, 100.0}, []any{rows[0]["participants_count"], rows[1]["participants_count"], rows[2]["participants_count"]})
}

func TestMemory_CreatedAtStrictlyIncreasing(t *testing.T) {
	m := NewMemory("members")
	ctx := context.Background()
	a, err := m.Insert(ctx, "members", Record{"full_name": "A"})
	require.NoError(t, err)
	b, err := m.Insert(ctx, "members", Record{"full_name": "B"})
	require.NoError(t, err)

	rows, err := m.Select(ctx, "members", Query{Order: &Order{Field: ColumnCreatedAt, Desc: true}})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, b.ID(), rows[0].ID())
	assert.Equal(t, a.ID(), rows[1].ID())
}

func TestMemory_UpdateMergesFields(t *testing.T) {
	m := NewMemory("partners")
	ctx := context.Background()
	rec, err := m.Insert(ctx, "partners", Record{"organization_name": "Acme", "phone": "555"})
	require.NoError(t, err)

	updated, err := m.Update(ctx, "partners", rec.ID(), Record{"phone": "777", "created_at": "tampered"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", updated["organization_name"])
	assert.Equal(t, "777", updated["phone"])
	assert.Equal(t, rec[ColumnCreatedAt], updated[ColumnCreatedAt])
	assert.Equal(t, rec.ID(), updated.ID())

	_, err = m.Update(ctx, "partners", "missing", Record{"phone": "1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_Delete(t *testing.T) {
	m := NewMemory("events")
	ctx := context.Background()
	rec, err := m.Insert(ctx, "events", Record{"title": "x"})
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, "events", rec.ID()))
	_, err = m.Get(ctx, "events", rec.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Delete(ctx, "events", rec.ID()), ErrNotFound)
}

func TestMemory_ReturnedRowsAreCopies(t *testing.T) {
	m := NewMemory("events")
	ctx := context.Background()
	rec, err := m.Insert(ctx, "events", Record{"highlights": []string{"a", "b"}})
	require.NoError(t, err)

	rec["highlights"].([]string)[0] = "mutated"
	got, err := m.Get(ctx, "events", rec.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got["highlights"])
}

func TestPgValue(t *testing.T) {
	assert.Equal(t, int64(16), pgValue(16.0))
	assert.Equal(t, 16.5, pgValue(16.5))
	assert.Equal(t, []string{"a", "b"}, pgValue([]any{"a", "b"}))
	assert.Equal(t, `[1,"a"]`, pgValue([]any{1.0, "a"}))
	assert.Equal(t, "x", pgValue("x"))
}

func TestMemory_EmptyListStaysEmpty(t *testing.T) {
	m := NewMemory("events")
	ctx := context.Background()

	rec, err := m.Insert(ctx, "events", Record{"image_urls": []any{}, "highlights": []string{}})
	require.NoError(t, err)
	assert.Equal(t, []any{}, rec["image_urls"])
	assert.Equal(t, []string{}, rec["highlights"])

	got, err := m.Get(ctx, "events", rec.ID())
	require.NoError(t, err)
	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"image_urls":[]`)
	assert.Contains(t, string(raw), `"highlights":[]`)

	updated, err := m.Update(ctx, "events", rec.ID(), Record{"image_urls": nil})
	require.NoError(t, err)
	assert.Nil(t, updated["image_urls"])
	assert.Equal(t, []string{}, updated["highlights"])
}
