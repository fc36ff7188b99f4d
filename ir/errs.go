package ir

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalid     = errors.New("invalid argument")
	ErrNotFound    = errors.New("not found")
	ErrExists      = errors.New("already exists")
	ErrCycle       = errors.New("reference cycle")
	ErrTooManyRefs = errors.New("too many references")
	ErrTooDeep     = errors.New("too deep recursion")
	ErrNoMem       = errors.New("out of memory")
	ErrDenied      = errors.New("permission denied")
	ErrFormat      = errors.New("format error")

	// ErrSkipChildren may be returned by a Walk visitor to avoid
	// descending into the visited container.
	ErrSkipChildren = errors.New("skip children")
)

// LineError attaches the offending statement to an error.
type LineError struct {
	Type  string
	Value string
	Line  int
	Err   error
}

func (e *LineError) Unwrap() error {
	return e.Err
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s \"%s\" at line %d: %v", e.Type, e.Value, e.Line, e.Err)
}

// NodeErr wraps err with the type, value and line of n.
func NodeErr(n *Node, err error) error {
	if n == nil {
		return err
	}
	return &LineError{Type: n.Type(), Value: n.Value(), Line: n.Line, Err: err}
}

// PathElt is one step of an insertion path.
type PathElt struct {
	Type  string
	Value string
	Line  int
}

// CycleError reports an insertion loop along with the chain of
// containers that forms it.
type CycleError struct {
	Path []PathElt
}

func (e *CycleError) Unwrap() error {
	return ErrCycle
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, p := range e.Path {
		parts[i] = fmt.Sprintf("%s \"%s\" (line %d)", p.Type, p.Value, p.Line)
	}
	return fmt.Sprintf("%s: %s", ErrCycle, strings.Join(parts, " -> "))
}
