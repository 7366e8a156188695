// Package fdsnerr defines the error taxonomy shared by the request and
// response layers: validation failures raised before a request is sent,
// format failures raised while decoding a response body, and protocol
// failures raised when a response violates the service contract.
package fdsnerr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotImplemented marks a declared wire format that is recognized but has
// no decoder (currently ISF).
var ErrNotImplemented = errors.New("format not implemented")

// ValidationError reports a single parameter constraint violation. It is
// raised at construction time, before any network interaction.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Rule)
}

// Invalid is shorthand for building a *ValidationError.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Rule: fmt.Sprintf(format, args...)}
}

// ValidationErrors collects every violation found during a single build, not
// just the first one.
type ValidationErrors []*ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return "invalid parameters: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual violations to errors.Is/errors.As.
func (es ValidationErrors) Unwrap() []error {
	errs := make([]error, len(es))
	for i, e := range es {
		errs[i] = e
	}
	return errs
}

// OrNil returns the collection as an error, or nil when empty.
func (es ValidationErrors) OrNil() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// FormatError reports a response body that does not match the expected
// schema: wrong column count, an unparsable field, or malformed XML.
type FormatError struct {
	Schema string
	Line   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("%s: %s", e.Schema, e.Reason)
	}
	return fmt.Sprintf("%s: %s (line %q)", e.Schema, e.Reason, e.Line)
}

// ProtocolError reports a response that violates the service contract, such
// as a success status with an empty body and no no-data indication.
type ProtocolError struct {
	Status int
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Reason)
}
