package reload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/signadot/ncnf"
	"github.com/signadot/ncnf/asyncval"
	"github.com/signadot/ncnf/diff"
	"github.com/signadot/ncnf/ir"
)

// Reloader owns a live configuration tree.
type Reloader struct {
	cfg       Config
	log       *slog.Logger
	metrics   *metrics
	mergeOpts []diff.MergeOption
	onReload  []func(root *ir.Node, err error)
	async     *asyncval.Session

	mu   sync.Mutex
	root *ir.Node
}

type Option func(*Reloader)

func WithLogger(l *slog.Logger) Option {
	return func(r *Reloader) { r.log = l }
}

// WithRegisterer registers the reload metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Reloader) { r.metrics = newMetrics(reg) }
}

// WithMergeOptions passes opts to each merge.
func WithMergeOptions(opts ...diff.MergeOption) Option {
	return func(r *Reloader) { r.mergeOpts = append(r.mergeOpts, opts...) }
}

// OnReload calls fn after each reload attempt, with the lock on the tree
// held.
func OnReload(fn func(root *ir.Node, err error)) Option {
	return func(r *Reloader) { r.onReload = append(r.onReload, fn) }
}

// New reads the configuration named by cfg.
func New(cfg Config, opts ...Option) (*Reloader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Reloader{cfg: cfg, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = newMetrics(nil)
	}
	if cfg.Validator != "" {
		r.async = &asyncval.Session{Logger: r.log}
	}
	// the first read validates internally
	root, err := ncnf.ReadFile(cfg.Path, r.readOpts(false)...)
	if err != nil {
		return nil, err
	}
	r.root = root
	r.metrics.nodes.Set(float64(ir.Count(root)))
	r.log.Info("configuration loaded", "path", cfg.Path)
	return r, nil
}

func (r *Reloader) readOpts(async bool) []ncnf.ReadOption {
	opts := []ncnf.ReadOption{ncnf.WithLogger(r.log)}
	if r.cfg.Relaxed {
		opts = append(opts, ncnf.Relaxed())
	}
	if r.cfg.NoRules {
		opts = append(opts, ncnf.NoRules())
	}
	if r.cfg.NoEmbedded {
		opts = append(opts, ncnf.NoEmbedded())
	}
	if async && r.async != nil {
		opts = append(opts, ncnf.WithAsyncValidation(r.async, r.cfg.Validator))
	}
	return opts
}

// Do runs fn on the live tree. The tree must not be used once fn
// returns.
func (r *Reloader) Do(fn func(root *ir.Node) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.root == nil {
		return ir.ErrInvalid
	}
	return fn(r.root)
}

// Reload reads the file and merges it into the live tree. With an
// external validator configured the first call starts it and returns
// asyncval.ErrAgain.
func (r *Reloader) Reload() error {
	return r.reload(context.Background())
}

func (r *Reloader) reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.root == nil {
		return ir.ErrInvalid
	}
	start := time.Now()
	err := r.merge(ctx)
	r.metrics.duration.Observe(time.Since(start).Seconds())
	switch {
	case err == nil:
		r.metrics.reloads.WithLabelValues(resultSuccess).Inc()
		r.metrics.nodes.Set(float64(ir.Count(r.root)))
		r.log.Info("configuration reloaded", "path", r.cfg.Path, "duration", time.Since(start))
	case errors.Is(err, asyncval.ErrAgain):
		r.metrics.reloads.WithLabelValues(resultRetry).Inc()
		r.log.Debug("configuration reload pending validation", "path", r.cfg.Path)
	default:
		r.metrics.reloads.WithLabelValues(resultError).Inc()
		r.log.Error("configuration reload failed", "path", r.cfg.Path, "error", err)
	}
	for _, fn := range r.onReload {
		fn(r.root, err)
	}
	return err
}

func (r *Reloader) merge(ctx context.Context) error {
	opts := append(r.readOpts(true), ncnf.WithContext(ctx))
	new, err := ncnf.ReadFile(r.cfg.Path, opts...)
	if err != nil {
		return err
	}
	return ncnf.Diff(r.root, new, r.mergeOpts...)
}

// Run reloads whenever the file is written or replaced, until ctx is
// done. Events are debounced by the configured delay. When a reload has
// to wait for the external validator, Run retries once the validator is
// done.
func (r *Reloader) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	path := filepath.Clean(r.cfg.Path)
	// the directory, so that editors replacing the file are seen
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	var (
		timer  *time.Timer
		timerC <-chan time.Time
		retryC <-chan struct{}
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(r.cfg.debounce())
				timerC = timer.C
			} else {
				timer.Reset(r.cfg.debounce())
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("watch error", "path", path, "error", err)
		case <-timerC:
			timer, timerC = nil, nil
			if err := r.reload(ctx); errors.Is(err, asyncval.ErrAgain) && r.async != nil {
				retryC = r.async.Done()
			}
		case <-retryC:
			retryC = nil
			if err := r.reload(ctx); errors.Is(err, asyncval.ErrAgain) && r.async != nil {
				retryC = r.async.Done()
			}
		}
	}
}

// Close destroys the live tree.
func (r *Reloader) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.root.Destroy()
	r.root = nil
}
