// Package dfilog is the injected logging collaborator described in
// spec §6. It stays at the same fmt/log register the rest of the
// corpus uses rather than pulling in a structured logging library.
package dfilog

import (
	"fmt"
	"io"
	"log"
)

// Logger is the sink every engine component logs through. Levels are
// informational only: the engine never changes behavior based on them.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Nop discards everything. Used as the zero-value default when a
// caller doesn't wire a Logger in.
type Nop struct{}

func (Nop) Debugf(string, ...any) {}
func (Nop) Infof(string, ...any)  {}
func (Nop) Warnf(string, ...any)  {}
func (Nop) Errorf(string, ...any) {}

// Std wraps a standard library *log.Logger, prefixing each line with
// its level.
type Std struct {
	l *log.Logger
}

// NewStd builds a Std writing to w with the standard log flags.
func NewStd(w io.Writer) *Std {
	return &Std{l: log.New(w, "", log.LstdFlags)}
}

func (s *Std) Debugf(format string, args ...any) { s.output("DEBUG", format, args...) }
func (s *Std) Infof(format string, args ...any)  { s.output("INFO", format, args...) }
func (s *Std) Warnf(format string, args ...any)  { s.output("WARN", format, args...) }
func (s *Std) Errorf(format string, args ...any) { s.output("ERROR", format, args...) }

func (s *Std) output(level, format string, args ...any) {
	s.l.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}
