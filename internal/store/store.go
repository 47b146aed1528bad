// Package store defines the Resource Store capability the REST layer talks to
// and its drivers. A store is a table-oriented query builder: equality
// filters, single-field ordering, select, insert, update and delete.
package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no row matches the given id.
	ErrNotFound = errors.New("not found")
	// ErrUnknownTable is returned for tables the driver does not manage.
	ErrUnknownTable = errors.New("unknown table")
)

// ConstraintError reports a write the backing schema rejected for one
// column, such as a null in a NOT NULL column.
type ConstraintError struct {
	Column  string
	NotNull bool
	Err     error
}

func (e *ConstraintError) Error() string {
	if e.NotNull {
		return fmt.Sprintf("column %s cannot be null", e.Column)
	}
	return fmt.Sprintf("invalid value for column %s: %v", e.Column, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// Reserved columns are owned by the store and ignored on writes.
const (
	ColumnID        = "id"
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"
)

// Record is one row keyed by column name.
type Record map[string]any

// ID returns the row identifier as a string.
func (r Record) ID() string {
	if r == nil {
		return ""
	}
	if v, ok := r[ColumnID]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

// Filter restricts a select to rows whose Field equals Value.
type Filter struct {
	Field string
	Value any
}

// Order sorts a select by one field.
type Order struct {
	Field string
	Desc  bool
}

// Query describes a select.
type Query struct {
	Filters []Filter
	Order   *Order
}

// Store is the capability every driver implements. Update is a partial
// merge: keys absent from rec keep their stored value.
type Store interface {
	Select(ctx context.Context, table string, q Query) ([]Record, error)
	Get(ctx context.Context, table, id string) (Record, error)
	Insert(ctx context.Context, table string, rec Record) (Record, error)
	Update(ctx context.Context, table, id string, rec Record) (Record, error)
	Delete(ctx context.Context, table, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// writable drops the reserved columns from rec.
func writable(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		switch k {
		case ColumnID, ColumnCreatedAt, ColumnUpdatedAt:
			continue
		}
		out[k] = v
	}
	return out
}
