package policy

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/signadot/ncnf/debug"
	"github.com/signadot/ncnf/ir"
)

// Policy is a check over a whole resolved tree.
type Policy interface {
	Name() string
	Check(root *ir.Node) error
}

// Builtin lists the embedded policies in order; policy N is Builtin[N-1].
var Builtin = []Policy{
	EntityNames(),
}

const (
	embeddedAttr = "_validator-embedded"
	disableFmt   = "_validator-policy-%d-disable"
)

type embeddedOpts struct {
	log      *slog.Logger
	policies []Policy
}

type EmbeddedOption func(*embeddedOpts)

func WithLogger(l *slog.Logger) EmbeddedOption {
	return func(o *embeddedOpts) { o.log = l }
}

// WithPolicies replaces Builtin.
func WithPolicies(ps ...Policy) EmbeddedOption {
	return func(o *embeddedOpts) { o.policies = ps }
}

// Embedded runs the embedded policies over root when root enables them.
// Every enabled policy runs; when some fail the error of the last one is
// returned.
func Embedded(root *ir.Node, opts ...EmbeddedOption) error {
	if root == nil || root.Class != ir.RootClass {
		return ir.ErrInvalid
	}
	o := &embeddedOpts{policies: Builtin}
	for _, opt := range opts {
		opt(o)
	}
	if on, err := root.GetAttrInt(embeddedAttr); err != nil || on == 0 {
		return nil
	}
	var last error
	for i, p := range o.policies {
		disable := fmt.Sprintf(disableFmt, i+1)
		if _, err := root.GetObj(disable, "yes", ir.FirstAttribute, ir.GetNoFlags); err == nil {
			if o.log != nil {
				o.log.Info("validator policy disabled on request", "policy", i+1)
			}
			continue
		}
		err := p.Check(root)
		if err == nil {
			continue
		}
		if debug.Policy() {
			debug.Logf("policy %d %q: %v\n", i+1, p.Name(), err)
		}
		if o.log != nil {
			o.log.Error("configuration policy failed", "policy", p.Name(), "error", err)
		}
		last = fmt.Errorf("configuration policy %q failed: %w", p.Name(), err)
	}
	return last
}

type entityNames struct{}

// EntityNames requires object values to consist of letters, digits, '.'
// and '-', and to differ from the other object values of the same level
// when case and punctuation are ignored.
func EntityNames() Policy {
	return entityNames{}
}

func (entityNames) Name() string {
	return "1. Entity length, uniqueness and character set"
}

func (entityNames) Check(root *ir.Node) error {
	if root == nil || !root.Class.IsContainer() {
		return ir.ErrInvalid
	}
	return checkNames(root)
}

func checkNames(level *ir.Node) error {
	seen := map[string]*ir.Node{}
	objs := level.Objects()
	for i := 0; i < objs.Len(); i++ {
		obj := objs.At(i)
		key, ok := nameKey(obj.Value())
		if !ok {
			return ir.NodeErr(obj, fmt.Errorf("%w: invalid character set in name", ErrPolicy))
		}
		if prev := seen[key]; prev != nil {
			return ir.NodeErr(obj, fmt.Errorf("%w: name is not unique, see line %d", ErrPolicy, prev.Line))
		}
		seen[key] = obj
	}
	for i := 0; i < objs.Len(); i++ {
		obj := objs.At(i)
		if obj.Class != ir.ComplexClass {
			continue
		}
		if err := checkNames(obj); err != nil {
			return err
		}
	}
	return nil
}

// nameKey folds v to lower case without '.' and '-'.
func nameKey(v string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + 'a' - 'A')
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '.', c == '-':
		default:
			return "", false
		}
	}
	return b.String(), true
}

// IsViolation reports whether err comes from a failed check rather than
// from bad input.
func IsViolation(err error) bool {
	return errors.Is(err, ErrPolicy)
}
