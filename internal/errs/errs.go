// Package errs defines the Type Engine's structured error taxonomy: a
// small set of machine-readable codes with an interpolated message,
// modeled on the uniform error payload the rest of the corpus uses for
// both human and machine-readable output.
package errs

import "fmt"

// Code is a machine-readable error identifier.
type Code string

const (
	CodeParseError  Code = "PARSE_ERROR"
	CodeMemoryError Code = "MEMORY_ERROR"
	CodeOutOfRange  Code = "OUT_OF_RANGE"
	CodeNotFound    Code = "NOT_FOUND"
)

// Status is the error type every parse/access function in this module
// returns. It carries a code for programmatic branching and a message
// for humans.
type Status struct {
	Code    Code
	Message string
	Detail  string
}

func (s *Status) Error() string {
	if s.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", s.Code, s.Message, s.Detail)
	}
	return fmt.Sprintf("%s: %s", s.Code, s.Message)
}

// New builds a Status with a formatted message.
func New(code Code, format string, args ...any) *Status {
	return &Status{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an inner error as Detail to a new Status.
func Wrap(code Code, msg string, inner error) *Status {
	s := &Status{Code: code, Message: msg}
	if inner != nil {
		s.Detail = inner.Error()
	}
	return s
}

// Is reports whether err is a *Status with the given code, so callers
// can branch with errs.Is(err, errs.CodeOutOfRange) instead of a type
// assertion.
func Is(err error, code Code) bool {
	s, ok := err.(*Status)
	return ok && s.Code == code
}
