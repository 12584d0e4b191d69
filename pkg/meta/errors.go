package meta

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when an attribute or rule name is malformed.
	ErrValidation = errors.New("invalid identifier")
	// ErrArgument is returned when a declaration call is missing a required
	// argument, such as a declaration block or a constructed rule.
	ErrArgument = errors.New("invalid argument")
	// ErrAlreadyIncluded is returned when a [Host] adopts a second registry.
	ErrAlreadyIncluded = errors.New("registry already included")
)

// ValidationError describes a malformed identifier.
type ValidationError struct {
	Field string // "attribute" or "rule".
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s name %q must match [a-z_]+", ErrValidation, e.Field, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
