package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPgError(t *testing.T) {
	unique := mapPgError("create car", &pgconn.PgError{Code: pgUniqueViolation})
	assert.True(t, errors.Is(unique, ErrDuplicate))
	assert.Contains(t, unique.Error(), "create car")

	fk := mapPgError("create session", &pgconn.PgError{Code: pgForeignKeyViolation})
	assert.True(t, errors.Is(fk, ErrInvalidReference))

	other := errors.New("boom")
	wrapped := mapPgError("create zone", other)
	assert.True(t, errors.Is(wrapped, other))
	assert.False(t, errors.Is(wrapped, ErrDuplicate))
}

func TestEncodeServiceIDs(t *testing.T) {
	encoded, err := encodeServiceIDs(nil)
	assert.NoError(t, err)
	assert.Equal(t, "[]", encoded)

	encoded, err = encodeServiceIDs([]int{3, 1})
	assert.NoError(t, err)
	assert.Equal(t, "[3,1]", encoded)
}
