package ncnf

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/signadot/ncnf/asyncval"
	"github.com/signadot/ncnf/diff"
	"github.com/signadot/ncnf/ir"
	"github.com/signadot/ncnf/parse"
	"github.com/signadot/ncnf/policy"
	"github.com/signadot/ncnf/resolve"
)

type readOpts struct {
	relaxed    bool
	noRules    bool
	noEmbedded bool
	async      *asyncval.Session
	validator  string
	ctx        context.Context
	log        *slog.Logger
}

type ReadOption func(*readOpts)

// Relaxed lets similar entries coexist and tolerates duplicate
// insertions.
func Relaxed() ReadOption {
	return func(o *readOpts) { o.relaxed = true }
}

// NoRules skips the rule file named by "_validator-rules".
func NoRules() ReadOption {
	return func(o *readOpts) { o.noRules = true }
}

// NoEmbedded skips the embedded policies.
func NoEmbedded() ReadOption {
	return func(o *readOpts) { o.noEmbedded = true }
}

// WithAsyncValidation gates ReadFile on the external validator command
// run by s. See asyncval.Session.Gate.
func WithAsyncValidation(s *asyncval.Session, command string) ReadOption {
	return func(o *readOpts) {
		o.async = s
		o.validator = command
	}
}

// WithContext bounds the lifetime of validators started by ReadFile.
func WithContext(ctx context.Context) ReadOption {
	return func(o *readOpts) { o.ctx = ctx }
}

func WithLogger(l *slog.Logger) ReadOption {
	return func(o *readOpts) { o.log = l }
}

func options(opts []ReadOption) *readOpts {
	o := &readOpts{ctx: context.Background()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Read parses, resolves and validates data.
func Read(data []byte, opts ...ReadOption) (*ir.Node, error) {
	return read(data, "", options(opts))
}

// ReadFile is Read of the file at path. Relative rule file names are
// taken relative to its directory.
func ReadFile(path string, opts ...ReadOption) (*ir.Node, error) {
	o := options(opts)
	if o.async != nil {
		skip, err := o.async.Gate(o.ctx, o.validator, path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if skip {
			o.noRules = true
			o.noEmbedded = true
		}
	}
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return read(d, path, o)
}

func read(data []byte, filename string, o *readOpts) (*ir.Node, error) {
	popts := []parse.ParseOption{parse.Filename(filename)}
	if o.relaxed {
		popts = append(popts, parse.Relaxed())
	}
	root, err := parse.Parse(data, popts...)
	if err != nil {
		return nil, err
	}
	ropts := []resolve.Option{resolve.Relaxed(o.relaxed)}
	if o.log != nil {
		ropts = append(ropts, resolve.WithLogger(o.log))
	}
	if err := resolve.Resolve(root, ropts...); err != nil {
		root.Destroy()
		return nil, wrapName(filename, err)
	}
	if !o.noRules {
		if err := checkRules(root, filename, o); err != nil {
			root.Destroy()
			return nil, wrapName(filename, err)
		}
	}
	if !o.noEmbedded {
		var popts []policy.EmbeddedOption
		if o.log != nil {
			popts = append(popts, policy.WithLogger(o.log))
		}
		if err := policy.Embedded(root, popts...); err != nil {
			root.Destroy()
			return nil, wrapName(filename, err)
		}
	}
	return root, nil
}

func checkRules(root *ir.Node, filename string, o *readOpts) error {
	path, ok := policy.RulesPath(root, filename)
	if !ok {
		return nil
	}
	rs, err := policy.LoadRules(path)
	if err != nil {
		if policy.IsMissing(err) {
			if o.log != nil {
				o.log.Warn("validator rules not found", "path", path)
			}
			return nil
		}
		return err
	}
	if err := rs.Check(root); err != nil {
		return fmt.Errorf("validation against %s failed: %w", path, err)
	}
	return nil
}

func wrapName(filename string, err error) error {
	if filename == "" {
		return err
	}
	return fmt.Errorf("%s: %w", filename, err)
}

// Diff merges new into old, see diff.Merge, and destroys new whether or
// not the merge succeeds. Invalid arguments are left alone.
func Diff(old, new *ir.Node, opts ...diff.MergeOption) error {
	if old == nil || new == nil || old == new || old.Class != ir.RootClass || new.Class != ir.RootClass {
		return ir.ErrInvalid
	}
	defer new.Destroy()
	return diff.Merge(old, new, opts...)
}
