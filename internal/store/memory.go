package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process driver used for local development and tests.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]*memTable
	last   time.Time
}

type memTable struct {
	rows  map[string]Record
	order []string
}

// NewMemory creates an empty store managing the given tables.
func NewMemory(tables ...string) *Memory {
	m := &Memory{tables: make(map[string]*memTable, len(tables))}
	for _, t := range tables {
		m.tables[t] = &memTable{rows: make(map[string]Record)}
	}
	return m
}

func (m *Memory) table(name string) (*memTable, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return t, nil
}

// tick returns a strictly increasing timestamp so creation order is total.
func (m *Memory) tick() time.Time {
	now := time.Now().UTC()
	if !now.After(m.last) {
		now = m.last.Add(time.Microsecond)
	}
	m.last = now
	return now
}

// Select returns copies of matching rows.
func (m *Memory) Select(_ context.Context, table string, q Query) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, err := m.table(table)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(t.order))
	for _, id := range t.order {
		row := t.rows[id]
		if matches(row, q.Filters) {
			out = append(out, copyRecord(row))
		}
	}
	if q.Order != nil {
		sortRecords(out, *q.Order)
	}
	return out, nil
}

// Get returns the row with the given id.
func (m *Memory) Get(_ context.Context, table, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, err := m.table(table)
	if err != nil {
		return nil, err
	}
	row, ok := t.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(row), nil
}

// Insert stores rec under a new id.
func (m *Memory) Insert(_ context.Context, table string, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.table(table)
	if err != nil {
		return nil, err
	}
	row := copyRecord(writable(rec))
	now := m.tick()
	id := uuid.NewString()
	row[ColumnID] = id
	row[ColumnCreatedAt] = now
	row[ColumnUpdatedAt] = now
	t.rows[id] = row
	t.order = append(t.order, id)
	return copyRecord(row), nil
}

// Update merges rec into the stored row.
func (m *Memory) Update(_ context.Context, table, id string, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.table(table)
	if err != nil {
		return nil, err
	}
	row, ok := t.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	for k, v := range copyRecord(writable(rec)) {
		row[k] = v
	}
	row[ColumnUpdatedAt] = m.tick()
	return copyRecord(row), nil
}

// Delete removes the row with the given id.
func (m *Memory) Delete(_ context.Context, table, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.table(table)
	if err != nil {
		return err
	}
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func matches(row Record, filters []Filter) bool {
	for _, f := range filters {
		v, ok := row[f.Field]
		if !ok || !equalValues(v, f.Value) {
			return false
		}
	}
	return true
}

func copyRecord(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		switch s := v.(type) {
		case []string:
			c := make([]string, len(s))
			copy(c, s)
			out[k] = c
		case []any:
			c := make([]any, len(s))
			copy(c, s)
			out[k] = c
		default:
			out[k] = v
		}
	}
	return out
}

// sortRecords orders rows in place. Nulls sort last ascending and first
// descending, matching PostgreSQL's default.
func sortRecords(rows []Record, o Order) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i][o.Field], rows[j][o.Field]
		if a == nil || b == nil {
			if a == nil && b == nil {
				return false
			}
			if o.Desc {
				return a == nil
			}
			return b == nil
		}
		c := compareValues(a, b)
		if o.Desc {
			return c > 0
		}
		return c < 0
	})
}

func compareValues(a, b any) int {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			}
			return 1
		}
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}

func equalValues(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
