package errors

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDBError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, MapDBError(nil))
	})

	t.Run("no rows", func(t *testing.T) {
		err := MapDBError(pgx.ErrNoRows)
		assert.True(t, IsNotFound(err))
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		err := MapDBError(context.DeadlineExceeded)
		assert.True(t, IsTimeout(err))
	})

	t.Run("canceled", func(t *testing.T) {
		err := MapDBError(context.Canceled)
		assert.True(t, IsCanceled(err))
	})

	t.Run("unique violation extracts field from detail", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:   pgerrcode.UniqueViolation,
			Detail: `Key (task_name)=(Send Report) already exists.`,
		}
		err := MapDBError(pgErr)
		require.True(t, IsConflict(err))
		assert.Equal(t, "task_name", GetField(err))
	})

	t.Run("check violation", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: pgerrcode.CheckViolation, ColumnName: "status"}
		err := MapDBError(pgErr)
		require.True(t, IsValidation(err))
		assert.Equal(t, "status", GetField(err))
	})

	t.Run("not null violation", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "task_name"}
		assert.True(t, IsValidation(MapDBError(pgErr)))
	})

	t.Run("invalid text representation", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation}
		assert.True(t, IsValidation(MapDBError(pgErr)))
	})

	t.Run("unhandled pg error becomes internal", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: pgerrcode.SerializationFailure}
		assert.True(t, IsInternal(MapDBError(pgErr)))
	})

	t.Run("unrecognized error passes through", func(t *testing.T) {
		plain := errors.New("not a db error")
		assert.Equal(t, plain, MapDBError(plain))
	})
}
