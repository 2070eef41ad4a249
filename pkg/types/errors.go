// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for an unknown candidate, evaluation, or file.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for malformed caller input.
	ErrValidation = errors.New("validation failed")

	// ErrUnsupportedFormat is returned for résumé files of an unknown type.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported file format", ErrValidation)

	// ErrExtractionEmpty signals that JSON recovery yielded an empty object.
	ErrExtractionEmpty = errors.New("extraction produced no data")

	// ErrStoreCorruption marks a persisted record that cannot be read back.
	ErrStoreCorruption = errors.New("store record corrupt")
)

// Validationf returns an error wrapping ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// CollaboratorError reports a failure of an external collaborator
// (conversion, extraction, retrieval).
type CollaboratorError struct {
	Collaborator string
	Op           string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Collaborator, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }
