package editor

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when a property id does not resolve to a record.
var ErrNotFound = errors.New("property not found")

// ValidationError carries every violation found in a submission so the
// caller can report all problems at once.
type ValidationError struct {
	Fields map[string][]string `json:"fields"`
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records a violation for a field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no violations were recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var parts []string
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], "; ")))
	}
	return "invalid submission: " + strings.Join(parts, ", ")
}
