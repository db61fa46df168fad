package utils

import (
	"errors"
	"fmt"
	"strings"
)

// The store layer reports failures in exactly three classes: the target of a
// required lookup is missing (NotFoundError), data or a domain precondition
// is invalid (ValidationError), or the failure is none of ours and propagates
// unchanged.

type NotFoundError struct {
	Resource string
	UID      string
}

func (e *NotFoundError) Error() string {
	if e.UID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.UID)
}

func NewNotFoundError(resource, uid string) error {
	return &NotFoundError{Resource: resource, UID: uid}
}

// FieldViolation is one schema violation: the path of the offending field
// plus a human-readable message.
type FieldViolation struct {
	Field   string
	Message string
}

func (v FieldViolation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + ": " + v.Message
}

type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, ", ")
}

// NewValidationError builds a single-violation error without a field path,
// used for domain precondition failures ("note is already done" and friends).
func NewValidationError(message string) error {
	return &ValidationError{Violations: []FieldViolation{{Message: message}}}
}

func NewFieldValidationError(violations ...FieldViolation) error {
	return &ValidationError{Violations: violations}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
