package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/yigit/campusfound/internal/pkg/apperrors"
)

func TestMap(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	fk := &pgconn.PgError{Code: "23503"}
	other := errors.New("connection refused")

	assert.ErrorIs(t, Map(pgx.ErrNoRows), apperrors.ErrResourceNotFound)
	assert.ErrorIs(t, Map(unique), apperrors.ErrResourceAlreadyExists)
	assert.ErrorIs(t, Map(fk), apperrors.ErrResourceNotFound)
	assert.Equal(t, other, Map(other))
	assert.NoError(t, Map(nil))

	assert.True(t, IsDuplicateConstraintError(unique, "users_email_key"))
	assert.False(t, IsDuplicateConstraintError(unique, "other_key"))
}
