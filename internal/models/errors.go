package models

import (
	"errors"
	"fmt"
)

// ErrorKind identifies a class of failure
type ErrorKind string

const (
	KindDirectoryNotFound     ErrorKind = "DirectoryNotFound"
	KindProbeTimeout          ErrorKind = "ProbeTimeout"
	KindProbeProcessError     ErrorKind = "ProbeProcessError"
	KindProbeParseError       ErrorKind = "ProbeParseError"
	KindReportFormatError     ErrorKind = "ReportFormatError"
	KindNormalizeTimeout      ErrorKind = "NormalizeTimeout"
	KindNormalizeProcessError ErrorKind = "NormalizeProcessError"
	KindDestinationCollision  ErrorKind = "DestinationCollision"
)

// Error is a classified failure tied to a file or a report line
type Error struct {
	Kind ErrorKind
	Path string
	Line int // Report line number (1-based), 0 when not applicable
	Err  error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with a kind and path
func NewError(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// KindOf returns the kind of the first *Error in the chain, or "" if none
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
