package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomErrorUnwrapsToSentinel(t *testing.T) {
	err := fmt.Errorf("approving item: %w", NewInvalidTransitionError("Only pending submissions can be approved"))

	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "Only pending submissions can be approved", PublicMessage(err))
}

func TestIsMatchesAnyOfList(t *testing.T) {
	err := NewConflictError("lost the race")

	assert.True(t, Is(err, ErrValidationFailed, ErrPermissionDenied, ErrConflict))
	assert.False(t, Is(err, ErrValidationFailed, ErrPermissionDenied))
}

func TestPublicMessageHidesInternalErrors(t *testing.T) {
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("pq: relation \"claims\" does not exist")))
	assert.Equal(t, "This item can no longer be claimed", PublicMessage(fmt.Errorf("wrap: %w", ErrPrecondition)))
	assert.Equal(t, "Not found", PublicMessage(ErrNotFoundOrForbidden))
}
