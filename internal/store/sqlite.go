package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z"

var fieldPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// SQLite keeps each table as a document table: fixed id and timestamp
// columns plus a JSON payload. Meant for single-node local development.
type SQLite struct {
	db     *sqlx.DB
	tables map[string]struct{}
}

type sqliteRow struct {
	ID        string `db:"id"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
	Data      string `db:"data"`
}

// OpenSQLite connects to the database file at path and creates the tables.
func OpenSQLite(ctx context.Context, path string, tables ...string) (*SQLite, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer keeps read-modify-write updates serial
	db.SetMaxOpenConns(1)
	s := &SQLite{db: db, tables: make(map[string]struct{}, len(tables))}
	for _, t := range tables {
		if !fieldPattern.MatchString(t) {
			db.Close()
			return nil, fmt.Errorf("invalid table name %q", t)
		}
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			data TEXT NOT NULL
		)`, t)
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("create table %s: %w", t, err)
		}
		s.tables[t] = struct{}{}
	}
	return s, nil
}

func (s *SQLite) check(table string) error {
	if _, ok := s.tables[table]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return nil
}

func fieldExpr(field string) (string, error) {
	if !fieldPattern.MatchString(field) {
		return "", fmt.Errorf("invalid field %q", field)
	}
	switch field {
	case ColumnID, ColumnCreatedAt, ColumnUpdatedAt:
		return field, nil
	}
	return fmt.Sprintf(`json_extract(data, '$.%s')`, field), nil
}

// Select runs a filtered, ordered select over the JSON payloads.
func (s *SQLite) Select(ctx context.Context, table string, q Query) ([]Record, error) {
	if err := s.check(table); err != nil {
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString("SELECT id, created_at, updated_at, data FROM " + table)
	args := make([]any, 0, len(q.Filters))
	for i, f := range q.Filters {
		expr, err := fieldExpr(f.Field)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(expr + " = ?")
		args = append(args, f.Value)
	}
	if q.Order != nil {
		expr, err := fieldExpr(q.Order.Field)
		if err != nil {
			return nil, err
		}
		dir := "ASC"
		if q.Order.Desc {
			dir = "DESC"
		}
		// nulls last ascending, first descending
		fmt.Fprintf(&sb, " ORDER BY (%s IS NULL) %s, %s %s", expr, dir, expr, dir)
	} else {
		sb.WriteString(" ORDER BY rowid")
	}

	var rows []sqliteRow
	if err := s.db.SelectContext(ctx, &rows, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	list := make([]Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, nil
}

// Get returns one row by id.
func (s *SQLite) Get(ctx context.Context, table, id string) (Record, error) {
	if err := s.check(table); err != nil {
		return nil, err
	}
	var row sqliteRow
	err := s.db.GetContext(ctx, &row, "SELECT id, created_at, updated_at, data FROM "+table+" WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", table, err)
	}
	return row.record()
}

// Insert stores rec under a new id.
func (s *SQLite) Insert(ctx context.Context, table string, rec Record) (Record, error) {
	if err := s.check(table); err != nil {
		return nil, err
	}
	data, err := json.Marshal(writable(rec))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", table, err)
	}
	now := time.Now().UTC().Format(sqliteTimeLayout)
	row := sqliteRow{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now, Data: string(data)}
	_, err = s.db.NamedExecContext(ctx,
		"INSERT INTO "+table+" (id, created_at, updated_at, data) VALUES (:id, :created_at, :updated_at, :data)", row)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, err)
	}
	return row.record()
}

// Update merges rec into the stored payload.
func (s *SQLite) Update(ctx context.Context, table, id string, rec Record) (Record, error) {
	if err := s.check(table); err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var row sqliteRow
	err = tx.GetContext(ctx, &row, "SELECT id, created_at, updated_at, data FROM "+table+" WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", table, err)
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(row.Data), &data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", table, err)
	}
	if data == nil {
		data = make(map[string]any)
	}
	for k, v := range writable(rec) {
		data[k] = v
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", table, err)
	}
	row.Data = string(encoded)
	row.UpdatedAt = time.Now().UTC().Format(sqliteTimeLayout)
	if _, err := tx.NamedExecContext(ctx,
		"UPDATE "+table+" SET data = :data, updated_at = :updated_at WHERE id = :id", row); err != nil {
		return nil, fmt.Errorf("update %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return row.record()
}

// Delete removes one row by id.
func (s *SQLite) Delete(ctx context.Context, table, id string) error {
	if err := s.check(table); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks the connection.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (r sqliteRow) record() (Record, error) {
	rec := make(Record)
	if r.Data != "" {
		if err := json.Unmarshal([]byte(r.Data), &rec); err != nil {
			return nil, fmt.Errorf("decode row %s: %w", r.ID, err)
		}
	}
	rec[ColumnID] = r.ID
	rec[ColumnCreatedAt] = r.CreatedAt
	rec[ColumnUpdatedAt] = r.UpdatedAt
	return rec, nil
}
