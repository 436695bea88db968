package validator

import (
	"fmt"
	"sort"
	"strings"
)

// Func checks a request payload before it reaches a handler. A non-nil
// return rejects the request; *ValidationError returns carry per-field
// messages for the client.
type Func func(payload map[string]any) error

// ValidationError collects per-field validation messages.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add appends a message for a field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no messages were recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// ErrOrNil returns the error when messages exist, nil otherwise. It lets
// validators end with a single return after accumulating checks.
func (e *ValidationError) ErrOrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

// Error implements the error interface with a deterministic field order.
func (e *ValidationError) Error() string {
	if e.Empty() {
		return "validation failed"
	}

	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, f := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", f, strings.Join(e.Fields[f], ", "))
	}
	return b.String()
}
