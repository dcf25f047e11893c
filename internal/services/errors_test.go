package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/BIJODEV/BibleQZ/internal/errors"
	"github.com/BIJODEV/BibleQZ/internal/validator"
)

func TestIsValidationCoversStructTagErrors(t *testing.T) {
	// Struct-tag failures arrive as the validation library's own error type,
	// not the shared app types; the classifier must still treat them as
	// validation so they surface as 400s, never 500s.
	err := validator.New().ValidateStruct(&CreateQuizRequest{})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	fieldErrs := apperrors.ToValidationErrors(err)
	assert.NotEmpty(t, fieldErrs, "struct-tag errors convert to the shared field errors")
}

func TestIsValidationCoversSharedTypes(t *testing.T) {
	assert.True(t, IsValidation(NewValidationError("title", "please enter a quiz title", "")))
	assert.True(t, IsValidation(ValidationErrors{{Field: "passage", Message: "is required"}}))
	assert.True(t, IsValidation(ErrValidationFailed))
	assert.False(t, IsValidation(errors.New("connection refused")))
}

func TestErrorClassifiersAreDisjoint(t *testing.T) {
	transient := NewTransientError("result append", errors.New("connection refused"))
	assert.True(t, IsTransient(transient))
	assert.False(t, IsValidation(transient))
	assert.False(t, IsNotFound(transient))
	assert.False(t, IsDuplicate(transient))
}
