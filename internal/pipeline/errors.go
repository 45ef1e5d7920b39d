package pipeline

import (
	"errors"
	"fmt"
)

// Sentinels for classifying run failures with errors.Is
var (
	ErrNotFound = errors.New("input not found")
	ErrParse    = errors.New("malformed input")
	ErrIO       = errors.New("output write failed")
)

// NotFoundError reports a missing input file
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("input file %s not found", e.Path)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ParseError reports a header or field that could not be coerced.
// Row is the 1-based line (or element) in the source; zero means the header.
type ParseError struct {
	Source string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Row == 0 && e.Column != "":
		return fmt.Sprintf("%s: header: missing required column %q", e.Source, e.Column)
	case e.Row == 0:
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	case e.Column == "":
		return fmt.Sprintf("%s: row %d: %v", e.Source, e.Row, e.Err)
	}
	return fmt.Sprintf("%s: row %d: invalid %s %q: %v", e.Source, e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// IOError reports a failure creating the output directory or writing the report
type IOError struct {
	Op   string // "create directory" or "write report"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }
