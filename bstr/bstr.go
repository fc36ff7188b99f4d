// Package bstr provides reference counted byte strings.
//
// A [Str] is created with a reference count of 1. [Str.Ref] shares it,
// [Str.Free] drops a reference and recycles the buffer once the count
// reaches zero. Recycled buffers are kept in a size bucketed cache so that
// heavy clone/destroy cycles, such as those performed while merging
// configuration trees, do not churn the allocator. All methods are safe to
// call on a nil *Str.
package bstr

import (
	"bytes"
	"fmt"
	"sync/atomic"

	"github.com/signadot/ncnf/debug"
)

type Str struct {
	b    []byte
	refs atomic.Int32
}

// Make allocates a new string holding a copy of b.
func Make(b []byte) *Str {
	s := &Str{b: alloc(len(b))}
	copy(s.b, b)
	s.refs.Store(1)
	return s
}

func FromString(v string) *Str {
	s := &Str{b: alloc(len(v))}
	copy(s.b, v)
	s.refs.Store(1)
	return s
}

// Ref increments the reference count and returns s.
func (s *Str) Ref() *Str {
	if s == nil {
		return nil
	}
	s.refs.Add(1)
	return s
}

// Copy returns a private copy of s with a reference count of 1.
func (s *Str) Copy() *Str {
	if s == nil {
		return nil
	}
	return Make(s.b)
}

// Free drops a reference to s.
func (s *Str) Free() {
	s.release(false)
}

// FreeZero is like Free but clears the bytes before the buffer is
// recycled, for values such as passwords.
func (s *Str) FreeZero() {
	s.release(true)
}

func (s *Str) release(zero bool) {
	if s == nil {
		return
	}
	n := s.refs.Add(-1)
	switch {
	case n > 0:
		return
	case n < 0:
		if debug.Assert() {
			panic(fmt.Sprintf("bstr: double release of %q", s.b))
		}
		return
	}
	b := s.b
	s.b = nil
	if zero {
		clear(b)
	}
	recycle(b)
}

func (s *Str) Len() int {
	if s == nil {
		return 0
	}
	return len(s.b)
}

func (s *Str) Refs() int {
	if s == nil {
		return 0
	}
	return int(s.refs.Load())
}

// Bytes returns the underlying bytes, which must not be modified.
func (s *Str) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.b
}

func (s *Str) String() string {
	if s == nil {
		return ""
	}
	return string(s.b)
}

// Equal reports whether a and b hold the same bytes.
func Equal(a, b *Str) bool {
	return bytes.Equal(a.Bytes(), b.Bytes())
}

// EqualFold reports whether a and b are equal under simple case folding.
func EqualFold(a, b *Str) bool {
	return bytes.EqualFold(a.Bytes(), b.Bytes())
}
