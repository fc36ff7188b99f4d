package parse

import (
	"errors"
)

var (
	ErrParse       = errors.New("parse error")
	ErrUnbalanced  = errors.New("unbalanced braces")
	ErrMissingSemi = errors.New("missing ';'")
)
