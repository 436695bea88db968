package validator

import (
	"fmt"
	"net/mail"
	"strings"
)

// Check runs a sequence of rules against one payload, accumulating failures.
type Check struct {
	payload map[string]any
	errs    *ValidationError
}

// NewCheck wraps a payload for rule application.
func NewCheck(payload map[string]any) *Check {
	return &Check{payload: payload, errs: NewValidationError()}
}

// Err returns the accumulated *ValidationError, or nil when all rules passed.
func (c *Check) Err() error {
	return c.errs.ErrOrNil()
}

// String returns the field as a trimmed string. Missing or non-string
// values record a failure and return "".
func (c *Check) String(field string) string {
	v, ok := c.payload[field]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		c.errs.Add(field, "must be a string")
		return ""
	}
	return strings.TrimSpace(s)
}

// RequireString enforces a non-empty string within [min, max] bytes.
func (c *Check) RequireString(field string, min, max int) string {
	s := c.String(field)
	switch {
	case s == "":
		c.errs.Add(field, "must not be empty")
	case len(s) < min:
		c.errs.Add(field, fmt.Sprintf("must be at least %d characters", min))
	case max > 0 && len(s) > max:
		c.errs.Add(field, fmt.Sprintf("must be at most %d characters", max))
	}
	return s
}

// Email enforces an RFC 5322 parseable address.
func (c *Check) Email(field string) string {
	s := c.String(field)
	if s == "" {
		c.errs.Add(field, "must not be empty")
		return s
	}
	if _, err := mail.ParseAddress(s); err != nil {
		c.errs.Add(field, "must be a valid email address")
	}
	return s
}

// In enforces membership in an allowed set when the field is present.
func (c *Check) In(field string, allowed ...string) string {
	v, ok := c.payload[field]
	if !ok || v == nil {
		return ""
	}
	s := c.String(field)
	for _, a := range allowed {
		if s == a {
			return s
		}
	}
	c.errs.Add(field, "must be one of: "+strings.Join(allowed, ", "))
	return s
}
