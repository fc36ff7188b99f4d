package policy

import "errors"

var (
	ErrPolicy = errors.New("policy violation")
	ErrRules  = errors.New("invalid rules")
)
