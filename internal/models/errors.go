package models

import (
	"errors"
	"fmt"
)

// NotFoundError names the missing entity so callers can report it precisely.
type NotFoundError struct {
	Entity string
	Ref    string
}

func (e *NotFoundError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %q not found", e.Entity, e.Ref)
}

// NewNotFound builds a NotFoundError for the given entity reference.
func NewNotFound(entity, ref string) error {
	return &NotFoundError{Entity: entity, Ref: ref}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ValidationError rejects malformed input before any store access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrNoActiveTariff signals missing tariff data. Monetary figures depend on
// the tariff, so this is never silently defaulted.
var ErrNoActiveTariff = errors.New("no active tariff configured")
