package token

import (
	"errors"
	"fmt"
)

var (
	ErrBadUTF8      = errors.New("bad utf8")
	ErrUnterminated = errors.New("unterminated")
	ErrUnexpected   = errors.New("unexpected")
	ErrBadEscape    = errors.New("bad escape")
)

// Error is a tokenization or syntax error at a position.
type Error struct {
	Err error
	Pos Pos
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(e error, p *Pos) *Error {
	return &Error{Err: e, Pos: *p}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Err.Error(), e.Pos.String())
}

func ExpectedErr(what string, p *Pos) error {
	return NewError(fmt.Errorf("expected %s", what), p)
}

func UnexpectedErr(what string, p *Pos) error {
	return NewError(fmt.Errorf("%w %s", ErrUnexpected, what), p)
}
