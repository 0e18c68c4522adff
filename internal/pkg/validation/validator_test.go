package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusfound/internal/pkg/apperrors"
)

type sample struct {
	Name        string  `json:"name" validate:"notblank"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       *string `json:"phone" validate:"omitempty,phone"`
	Explanation string  `json:"explanation" validate:"minrunes=20"`
}

func TestStructReportsFieldsByJSONName(t *testing.T) {
	err := Struct(sample{Name: "   ", Email: "nope", Explanation: "too short"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	var custom *apperrors.CustomError
	require.True(t, errors.As(err, &custom))
	assert.Contains(t, custom.Details, "name")
	assert.Contains(t, custom.Details, "email")
	assert.Contains(t, custom.Details, "explanation")
	assert.NotContains(t, custom.Details, "phone")
}

func TestStructAcceptsValidInput(t *testing.T) {
	phone := "+90 (212) 555-0000"
	assert.NoError(t, Struct(sample{
		Name:        "Umbrella",
		Email:       "someone@uni.edu",
		Phone:       &phone,
		Explanation: "It has my initials on the handle",
	}))
}

func TestMinRunesCountsCharactersNotBytes(t *testing.T) {
	// 20 two-byte characters
	err := Struct(sample{Name: "x", Email: "a@b.co", Explanation: "ççççççççççğğğğğğğğğğ"})
	assert.NoError(t, err)
}

func TestValidPassword(t *testing.T) {
	assert.True(t, ValidPassword("secret123"))
	assert.False(t, ValidPassword("short1"))
	assert.False(t, ValidPassword("onlyletters"))
	assert.False(t, ValidPassword("12345678"))
}
