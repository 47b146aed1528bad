package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstraintErr(t *testing.T) {
	notNull := fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23502", ColumnName: "age"})
	var ce *ConstraintError
	require.True(t, errors.As(constraintErr(notNull), &ce))
	assert.Equal(t, "age", ce.Column)
	assert.True(t, ce.NotNull)

	check := &pgconn.PgError{Code: "23514"}
	require.True(t, errors.As(constraintErr(check), &ce))
	assert.False(t, ce.NotNull)

	other := &pgconn.PgError{Code: "08006"}
	assert.Same(t, other, constraintErr(other))

	plain := errors.New("boom")
	assert.Equal(t, plain, constraintErr(plain))
}
