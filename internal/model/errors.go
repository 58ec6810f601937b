package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Categories, matched with errors.Is against the typed errors below
	ErrValidation      = errors.New("validation failed")
	ErrBrokenReference = errors.New("broken reference")
	ErrPersistence     = errors.New("persistence failed")

	// Lookup misses, used where a referent is required
	ErrPlayerNotFound = errors.New("player not found")
	ErrClanNotFound   = errors.New("clan not found")
	ErrRoleNotFound   = errors.New("role not found")

	// Storage
	ErrDocumentNotFound = errors.New("registry document not found")
)

// ValidationError reports rejected input: a duplicate uuid on add or a malformed document
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) match
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError with a formatted reason
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ReferenceKind names the entity a broken reference points at
type ReferenceKind string

const (
	RefPlayer ReferenceKind = "player"
	RefClan   ReferenceKind = "clan"
	RefRole   ReferenceKind = "role"
)

// BrokenReferenceError reports a membership or parent pointing at a nonexistent entity.
// It indicates corrupted registry state and is always fatal to the operation.
type BrokenReferenceError struct {
	Kind ReferenceKind
	ID   string // the dangling id
	From string // the referring entity, e.g. the player uuid
}

func (e *BrokenReferenceError) Error() string {
	return fmt.Sprintf("broken reference: %s %q referenced by %s does not exist", e.Kind, e.ID, e.From)
}

// Is makes errors.Is(err, ErrBrokenReference) match
func (e *BrokenReferenceError) Is(target error) bool {
	return target == ErrBrokenReference
}

// PersistenceError reports a failed write of the full registry document.
// The in-memory mutation that triggered the write has already been applied.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist after %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrPersistence) match
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
