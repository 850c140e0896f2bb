package errors

import (
	stderrors "errors"
	"fmt"

	"ecgdx/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeFromDomain(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise derives one
// from the domain sentinel the error wraps
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeFromDomain(err)
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeFilterUnstable   = "FILTER_UNSTABLE"
	CodeNoPeaks          = "NO_PEAKS"
	CodeNoSegments       = "NO_SEGMENTS"
	CodeNoValidSegments  = "NO_VALID_SEGMENTS"
	CodeSchemaMismatch   = "SCHEMA_MISMATCH"
	CodeArtifactsBroken  = "ARTIFACTS_INCONSISTENT"
	CodeExternalService  = "EXTERNAL_SERVICE_ERROR"
	CodeDatabaseError    = "DATABASE_ERROR"
	CodeInternalError    = "INTERNAL_ERROR"
)

// CodeFromDomain maps a domain sentinel error to its transport code
func CodeFromDomain(err error) string {
	switch {
	case stderrors.Is(err, core.ErrInvalidInput):
		return CodeInvalidInput
	case stderrors.Is(err, core.ErrFilterUnstable):
		return CodeFilterUnstable
	case stderrors.Is(err, core.ErrNoPeaks):
		return CodeNoPeaks
	case stderrors.Is(err, core.ErrNoSegments):
		return CodeNoSegments
	case stderrors.Is(err, core.ErrNoValidSegments):
		return CodeNoValidSegments
	case stderrors.Is(err, core.ErrSchemaMismatch):
		return CodeSchemaMismatch
	case stderrors.Is(err, core.ErrConfigInconsistent):
		return CodeArtifactsBroken
	default:
		return CodeInternalError
	}
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code:    CodeExternalService,
		Message: fmt.Sprintf("%s service error", service),
		Cause:   cause,
	}
}
