package services

import (
	"errors"
	"fmt"
)

// Terminal outcomes surfaced to controllers. NotFound and Forbidden end the
// request; AlreadyEnrolled is informational and maps to a success response.
var (
	ErrNotFound                = errors.New("record not found")
	ErrForbidden               = errors.New("forbidden")
	ErrAlreadyEnrolled         = errors.New("already enrolled")
	ErrInvalidEnrollmentCode   = errors.New("invalid enrollment code")
	ErrCodeGenerationExhausted = errors.New("enrollment code generation exhausted")
)

// DeletionError wraps a transactional failure during a cascade delete. The
// transaction was rolled back, so the caller may retry the whole operation.
type DeletionError struct {
	Cause error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("deletion failed: %v", e.Cause)
}

func (e *DeletionError) Unwrap() error {
	return e.Cause
}
