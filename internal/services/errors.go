package services

import (
	"errors"
	"fmt"

	validatorlib "github.com/go-playground/validator/v10"

	apperrors "github.com/BIJODEV/BibleQZ/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")

	// Quiz specific errors
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizNotShareable = errors.New("quiz failed validation and cannot be shared")
	ErrQuizNotPublished = errors.New("quiz is not published")
	ErrQuizArchived     = errors.New("quiz has been archived")

	// Submission specific errors
	ErrDuplicateSubmission = errors.New("submission already recorded for this session")
	ErrSubmissionInFlight  = errors.New("a submission attempt is already in progress")
	ErrInvalidResult       = errors.New("result is invalid")

	// Link specific errors
	ErrInvalidLink = errors.New("invalid link")

	// Backend errors
	ErrBackendUnavailable = errors.New("failed to reach the quiz backend - retry")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// TransientError wraps a backend failure that is safe to retry: snapshot
// creates are idempotent and result appends are guarded against duplicates.
type TransientError struct {
	Op  string
	Err error
}

func (te *TransientError) Error() string {
	return fmt.Sprintf("transient backend failure during %s: %v", te.Op, te.Err)
}

func (te *TransientError) Unwrap() error {
	return te.Err
}

func NewTransientError(op string, err error) *TransientError {
	return &TransientError{Op: op, Err: err}
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuizNotFound)
}

// IsValidation checks if error represents a validation failure, whether it
// carries the shared validation types or comes straight from struct-tag
// validation.
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	var ves ValidationErrors
	if errors.As(err, &ves) {
		return true
	}
	var fieldErrs validatorlib.ValidationErrors
	return errors.As(err, &fieldErrs)
}

// IsDuplicate checks if error represents a suppressed duplicate submission
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateSubmission) ||
		errors.Is(err, ErrSubmissionInFlight)
}

// IsInvalidLink checks if error represents an unusable share token
func IsInvalidLink(err error) bool {
	return errors.Is(err, ErrInvalidLink)
}

// IsTransient checks if error represents a retryable backend failure
func IsTransient(err error) bool {
	if errors.Is(err, ErrBackendUnavailable) {
		return true
	}
	var te *TransientError
	return errors.As(err, &te)
}
