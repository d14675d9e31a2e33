// Package errs defines the error taxonomy shared by the exporters.
//
// Every error raised by an export carries one of three kinds:
//
//   - Validation: the input hierarchy is malformed. Raised before any file I/O.
//   - Resource: a referenced file or address could not be resolved. Raised at the point of use.
//   - PartialWrite: emission started and failed; files already written stay on disk.
//
// Use errors.Is with the matching sentinel to classify an error.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind sentinels.
var (
	ErrValidation   = errors.New("validation error")
	ErrResource     = errors.New("resource error")
	ErrPartialWrite = errors.New("partial write")
)

// Kind classifies an Error.
type Kind int

const (
	KindValidation Kind = iota
	KindResource
	KindPartialWrite
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindResource:
		return "resource"
	case KindPartialWrite:
		return "partial write"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindResource:
		return ErrResource
	default:
		return ErrPartialWrite
	}
}

// Error is a structured export error.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "skeleton.build"
	Msg  string
	Err  error // underlying cause, may be nil

	// Written lists files that were already on disk when a PartialWrite
	// error was raised. Nothing is rolled back.
	Written []string
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.Err != nil {
		if e.Msg != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	if len(e.Written) > 0 {
		fmt.Fprintf(&b, " (%d files already written)", len(e.Written))
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of this error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Validation returns a validation error.
func Validation(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Resource returns a resource error wrapping err (which may be nil).
func Resource(op string, err error, format string, args ...any) error {
	return &Error{Kind: KindResource, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}

// PartialWrite wraps err, recording the files written before the failure.
// A nil err yields nil.
func PartialWrite(written []string, err error) error {
	if err == nil {
		return nil
	}
	files := make([]string, len(written))
	copy(files, written)
	return &Error{Kind: KindPartialWrite, Op: "write", Err: err, Written: files}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
