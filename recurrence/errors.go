package recurrence

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a validation failure so the caller (usually a form
// handler) can map it to a field-level message.
type ErrorKind string

const (
	ErrMissingField           ErrorKind = "missing_field"
	ErrOutOfRange             ErrorKind = "out_of_range"
	ErrContradictoryEndPolicy ErrorKind = "contradictory_end_policy"
)

// ValidationError describes a single problem with a RawRule field.
type ValidationError struct {
	Field   string
	Kind    ErrorKind
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Field, e.Kind, e.Message)
}

// ValidationErrors aggregates every problem found in one Normalize pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether any error of the given kind is present.
func (e ValidationErrors) Has(kind ErrorKind) bool {
	for _, ve := range e {
		if ve.Kind == kind {
			return true
		}
	}
	return false
}

// ByField returns the errors recorded against one field.
func (e ValidationErrors) ByField(field string) []ValidationError {
	var out []ValidationError
	for _, ve := range e {
		if ve.Field == field {
			out = append(out, ve)
		}
	}
	return out
}
