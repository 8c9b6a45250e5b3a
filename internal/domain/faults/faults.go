// Package faults defines the error taxonomy shared across the core.
// Callers classify failures with errors.Is against these sentinels;
// the HTTP layer maps them to status codes.
package faults

import "errors"

var (
	// ErrValidation indicates missing or malformed caller input.
	// Always surfaced immediately, never retried.
	ErrValidation = errors.New("invalid input")

	// ErrUnavailable indicates a required collaborator is not configured.
	// Surfaced as a distinct "system not ready" condition.
	ErrUnavailable = errors.New("service unavailable")

	// ErrExtraction indicates a document yielded no readable text.
	ErrExtraction = errors.New("no readable content")

	// ErrNotFound indicates an unknown document or an empty session.
	ErrNotFound = errors.New("not found")

	// ErrGeneration indicates the generation collaborator failed or
	// timed out where no degraded fallback exists.
	ErrGeneration = errors.New("generation failed")
)

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsUnavailable reports whether err is a missing-collaborator failure.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }

// IsExtraction reports whether err is an empty-extraction failure.
func IsExtraction(err error) bool { return errors.Is(err, ErrExtraction) }

// IsNotFound reports whether err is a missing-resource failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsGeneration reports whether err is a generation failure.
func IsGeneration(err error) bool { return errors.Is(err, ErrGeneration) }
