package policy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/signadot/ncnf/ir"
	"github.com/signadot/ncnf/query"
)

// RulesAttr names the rule file in the root of a configuration.
const RulesAttr = "_validator-rules"

var rulesValidate *validator.Validate

func init() {
	rulesValidate = validator.New()
	if err := rulesValidate.RegisterValidation("word", validateWord); err != nil {
		panic(err)
	}
}

// validateWord accepts strings usable unquoted as a type.
func validateWord(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s != "" && !strings.ContainsAny(s, " \t\r\n\"{};=@#")
}

type Rule struct {
	Type    string   `yaml:"type" validate:"required,word"`
	Require []string `yaml:"require" validate:"dive,word"`
	Unique  []string `yaml:"unique" validate:"dive,word"`
	Expr    string   `yaml:"expr"`
	Message string   `yaml:"message"`

	q *query.Query
}

// Rules is a set of rules loaded from a rule file. It implements Policy.
type Rules struct {
	Rules []*Rule `yaml:"rules" validate:"required,min=1,dive"`

	name string
}

// ParseRules reads rules from YAML d; name identifies them in errors.
func ParseRules(name string, d []byte) (*Rules, error) {
	rs := &Rules{name: name}
	if err := yaml.UnmarshalWithOptions(d, rs, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRules, name, err)
	}
	if err := rulesValidate.Struct(rs); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRules, name, err)
	}
	for i, r := range rs.Rules {
		if r.Expr == "" {
			continue
		}
		q, err := query.Compile(r.Expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: rule %d: %w", ErrRules, name, i+1, err)
		}
		r.q = q
	}
	return rs, nil
}

// LoadRules reads the rule file at path. A missing file is reported
// with an error matching fs.ErrNotExist.
func LoadRules(path string) (*Rules, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRules(path, d)
}

// RulesPath returns the rule file named by root, if any. A relative name
// is taken relative to the directory of configFile when that is set.
func RulesPath(root *ir.Node, configFile string) (string, bool) {
	name, err := root.GetAttr(RulesAttr)
	if err != nil || name == "" {
		return "", false
	}
	if !filepath.IsAbs(name) && configFile != "" {
		name = filepath.Join(filepath.Dir(configFile), name)
	}
	return name, true
}

// IsMissing reports whether err is LoadRules failing for lack of a file.
func IsMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func (rs *Rules) Name() string {
	return "rules " + rs.name
}

// Check applies every rule to every object of its type under root and
// returns the first violation.
func (rs *Rules) Check(root *ir.Node) error {
	if root == nil {
		return ir.ErrInvalid
	}
	return ir.Walk(root, func(n *ir.Node) error {
		if !n.Class.IsContainer() {
			return nil
		}
		for _, r := range rs.Rules {
			if err := r.checkUnique(n); err != nil {
				return err
			}
			if n.Class == ir.RootClass || n.Type() != r.Type {
				continue
			}
			if err := r.check(n); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Rule) violation(n *ir.Node, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if r.Message != "" {
		msg += ": " + r.Message
	}
	return ir.NodeErr(n, fmt.Errorf("%w: %s", ErrPolicy, msg))
}

func (r *Rule) check(n *ir.Node) error {
	for _, a := range r.Require {
		if _, err := n.GetAttr(a); err != nil {
			return r.violation(n, "missing attribute %q", a)
		}
	}
	if r.q == nil {
		return nil
	}
	ok, err := r.q.Match(n)
	if err != nil {
		return ir.NodeErr(n, err)
	}
	if !ok {
		return r.violation(n, "%s does not hold", r.q)
	}
	return nil
}

// checkUnique compares the children of level of the rule type.
func (r *Rule) checkUnique(level *ir.Node) error {
	if len(r.Unique) == 0 {
		return nil
	}
	for _, a := range r.Unique {
		seen := map[string]*ir.Node{}
		objs := level.Objects()
		for i := 0; i < objs.Len(); i++ {
			o := objs.At(i)
			if o.Class != ir.ComplexClass || o.Type() != r.Type {
				continue
			}
			v, err := o.GetAttr(a)
			if err != nil {
				continue
			}
			if prev := seen[v]; prev != nil {
				return r.violation(o, "%s %q already used at line %d", a, v, prev.Line)
			}
			seen[v] = o
		}
	}
	return nil
}
