package resolve

import "log/slog"

type resolveOpts struct {
	relaxed bool
	log     *slog.Logger
}

type Option func(*resolveOpts)

// Relaxed turns off duplicate checking of the entries copied by
// insertions.
func Relaxed(v bool) Option {
	return func(o *resolveOpts) { o.relaxed = v }
}

// WithLogger reports the insertions expanded at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *resolveOpts) { o.log = l }
}
