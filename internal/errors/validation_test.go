package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorsError(t *testing.T) {
	tests := []struct {
		name   string
		errors ValidationErrors
		want   string
	}{
		{"empty", ValidationErrors{}, "validation failed"},
		{
			"single",
			ValidationErrors{{Field: "title", Message: "is required"}},
			"validation failed: title is required",
		},
		{
			"multiple",
			ValidationErrors{{Field: "title"}, {Field: "passage"}},
			"validation failed: 2 field errors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.errors.Error())
		})
	}
}

func TestToValidationErrors(t *testing.T) {
	type payload struct {
		Title string `validate:"required"`
		Count int    `validate:"min=2,max=4"`
	}

	validate := validator.New()
	err := validate.Struct(payload{Count: 9})
	require.Error(t, err)

	converted := ToValidationErrors(err)
	require.Len(t, converted, 2)
	assert.Equal(t, "is required", converted[0].Message)
	assert.Equal(t, "must be at most 4", converted[1].Message)
}

func TestToValidationErrorsForeignError(t *testing.T) {
	converted := ToValidationErrors(assert.AnError)
	assert.Nil(t, converted)
}
