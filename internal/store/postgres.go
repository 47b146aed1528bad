package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres reads and writes typed tables through a pgx pool. Rows come back
// as jsonb so every table shares one scan path.
type Postgres struct {
	pool   *pgxpool.Pool
	tables map[string]struct{}
}

// NewPostgres creates a driver for the given tables.
func NewPostgres(pool *pgxpool.Pool, tables ...string) *Postgres {
	p := &Postgres{pool: pool, tables: make(map[string]struct{}, len(tables))}
	for _, t := range tables {
		p.tables[t] = struct{}{}
	}
	return p
}

func (p *Postgres) check(table string) error {
	if _, ok := p.tables[table]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return nil
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// Select runs a filtered, ordered select.
func (p *Postgres) Select(ctx context.Context, table string, q Query) ([]Record, error) {
	if err := p.check(table); err != nil {
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString("SELECT to_jsonb(t) FROM " + ident(table) + " AS t")
	args := make([]any, 0, len(q.Filters))
	for i, f := range q.Filters {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		args = append(args, pgValue(f.Value))
		fmt.Fprintf(&sb, "t.%s = $%d", ident(f.Field), len(args))
	}
	if q.Order != nil {
		dir := "ASC"
		if q.Order.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY t.%s %s", ident(q.Order.Field), dir)
	}

	rows, err := p.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	list := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// Get returns one row by id.
func (p *Postgres) Get(ctx context.Context, table, id string) (Record, error) {
	if err := p.check(table); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	q := "SELECT to_jsonb(t) FROM " + ident(table) + " AS t WHERE t.id = $1"
	rec, err := scanRecord(p.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", table, err)
	}
	return rec, nil
}

// Insert writes rec and returns the stored row including generated columns.
func (p *Postgres) Insert(ctx context.Context, table string, rec Record) (Record, error) {
	if err := p.check(table); err != nil {
		return nil, err
	}
	cols, args := columnsAndArgs(writable(rec))
	var q string
	if len(cols) == 0 {
		q = "INSERT INTO " + ident(table) + " AS t DEFAULT VALUES RETURNING to_jsonb(t)"
	} else {
		quoted := make([]string, len(cols))
		params := make([]string, len(cols))
		for i, c := range cols {
			quoted[i] = ident(c)
			params[i] = fmt.Sprintf("$%d", i+1)
		}
		q = fmt.Sprintf("INSERT INTO %s AS t (%s) VALUES (%s) RETURNING to_jsonb(t)",
			ident(table), strings.Join(quoted, ", "), strings.Join(params, ", "))
	}
	out, err := scanRecord(p.pool.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, constraintErr(err))
	}
	return out, nil
}

// Update sets the supplied columns and refreshes updated_at.
func (p *Postgres) Update(ctx context.Context, table, id string, rec Record) (Record, error) {
	if err := p.check(table); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	cols, args := columnsAndArgs(writable(rec))
	sets := make([]string, 0, len(cols)+1)
	for i, c := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", ident(c), i+1))
	}
	sets = append(sets, ident(ColumnUpdatedAt)+" = NOW()")
	args = append(args, id)
	q := fmt.Sprintf("UPDATE %s AS t SET %s WHERE t.id = $%d RETURNING to_jsonb(t)",
		ident(table), strings.Join(sets, ", "), len(args))

	out, err := scanRecord(p.pool.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", table, constraintErr(err))
	}
	return out, nil
}

// Delete removes one row by id.
func (p *Postgres) Delete(ctx context.Context, table, id string) error {
	if err := p.check(table); err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	tag, err := p.pool.Exec(ctx, "DELETE FROM "+ident(table)+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// constraintErr turns column-level rejections from Postgres into a
// *ConstraintError; other errors pass through.
func constraintErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23502": // not_null_violation
		return &ConstraintError{Column: pgErr.ColumnName, NotNull: true, Err: err}
	case "23514", "22P02", "22007", "22008": // check, invalid text, bad datetime
		return &ConstraintError{Column: pgErr.ColumnName, Err: err}
	}
	return err
}

func scanRecord(row pgx.Row) (Record, error) {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	return rec, nil
}

// columnsAndArgs returns rec's keys in a stable order with encoded values.
func columnsAndArgs(rec Record) ([]string, []any) {
	cols := make([]string, 0, len(rec))
	for k := range rec {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = pgValue(rec[c])
	}
	return cols, args
}

// pgValue converts JSON-decoded values into types pgx encodes directly.
func pgValue(v any) any {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x)
		}
		return x
	case []any:
		ss := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				b, _ := json.Marshal(x)
				return string(b)
			}
			ss = append(ss, s)
		}
		return ss
	case map[string]any:
		b, _ := json.Marshal(x)
		return string(b)
	}
	return v
}
