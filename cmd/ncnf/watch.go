package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gops/agent"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scott-cotton/cli"
	ncdiff "github.com/signadot/ncnf/diff"
	"github.com/signadot/ncnf/ir"
	"github.com/signadot/ncnf/reload"
)

func watch(cfg *WatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Watch.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: watch requires one file, got %v", cli.ErrUsage, args)
	}
	if cfg.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			theLog.Warn("gops agent failed", "error", err)
		}
		defer agent.Close()
	}
	rCfg := reload.Config{
		Path:       args[0],
		Debounce:   cfg.Debounce,
		Relaxed:    cfg.Relaxed,
		NoRules:    cfg.NoRules,
		NoEmbedded: cfg.NoEmbedded,
		Validator:  cfg.Validator,
	}
	reg := prometheus.NewRegistry()
	r, err := reload.New(rCfg,
		reload.WithLogger(theLog),
		reload.WithRegisterer(reg),
		reload.WithMergeOptions(ncdiff.OnDelta(func(n *ir.Node, d ncdiff.Delta) {
			if d == ncdiff.Unmodified || n.Class == ir.RootClass {
				return
			}
			fmt.Fprintf(cc.Out, "%s\t%s %s %q\n", d, n.Class, n.Type(), n.Path())
		})))
	if err != nil {
		return err
	}
	defer r.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Metrics != "" {
		srv := &http.Server{Addr: cfg.Metrics, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				theLog.Error("metrics server", "addr", cfg.Metrics, "error", err)
				cancel()
			}
		}()
		defer srv.Close()
	}
	theLog.Info("watching", "path", rCfg.Path)
	return r.Run(ctx)
}
