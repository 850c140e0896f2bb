package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrInvalidInput = errors.New("invalid input signal")

	// Conditioning errors
	ErrFilterUnstable = errors.New("unstable filter parameters")

	// Progressive pipeline emptiness
	ErrNoPeaks         = errors.New("no R-peaks detected")
	ErrNoSegments      = errors.New("no heartbeat segments extracted")
	ErrNoValidSegments = errors.New("no valid heartbeat segments after quality gating")

	// Artifact and model boundary errors
	ErrSchemaMismatch     = errors.New("shape mismatch against model artifacts")
	ErrConfigInconsistent = errors.New("inconsistent serving artifacts")
)

// Error constructors with context
func NewInputError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

func NewFilterError(reason string) error {
	return fmt.Errorf("%w: %s", ErrFilterUnstable, reason)
}

func NewSchemaError(what string, want, got int) error {
	return fmt.Errorf("%w: %s expected %d, got %d", ErrSchemaMismatch, what, want, got)
}

func NewConfigError(reason string) error {
	return fmt.Errorf("%w: %s", ErrConfigInconsistent, reason)
}

// Error checking helpers
func IsEmptyPipelineError(err error) bool {
	return errors.Is(err, ErrNoPeaks) ||
		errors.Is(err, ErrNoSegments) ||
		errors.Is(err, ErrNoValidSegments)
}

func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrFilterUnstable) ||
		IsEmptyPipelineError(err)
}

func IsArtifactError(err error) bool {
	return errors.Is(err, ErrSchemaMismatch) ||
		errors.Is(err, ErrConfigInconsistent)
}
