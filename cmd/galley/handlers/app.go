// Package handlers implements the business logic for CLI commands.
//
// Each handler loads configuration, builds the services it needs and
// renders the outcome either as styled text or as JSON.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"

	"github.com/sogawa-yk/Galley/internal/catalog"
	"github.com/sogawa-yk/Galley/internal/config"
	"github.com/sogawa-yk/Galley/internal/design"
	"github.com/sogawa-yk/Galley/internal/platform/oci"
	"github.com/sogawa-yk/Galley/internal/provisioning"
	"github.com/sogawa-yk/Galley/internal/session"
	"github.com/sogawa-yk/Galley/internal/util/retry"
	"github.com/sogawa-yk/Galley/internal/validation"
)

// Options are the flags shared by every command.
type Options struct {
	ConfigPath  string
	Output      string
	LogLevel    string
	MetricsFile string
}

// JSON reports whether output should be machine readable.
func (o *Options) JSON() bool {
	return o.Output == OutputJSON
}

// app bundles what a handler needs.
type app struct {
	opts     *Options
	cfg      *config.Config
	timeouts *config.Timeouts
	log      logr.Logger
	store    session.Store
	out      io.Writer
}

// Factory function variables - can be replaced in tests.
var (
	loadConfig = config.Load

	newManager = func(cfg *config.Config, timeouts *config.Timeouts, log logr.Logger) oci.Manager {
		return oci.New(cfg.Region, oci.AuthConfig{
			ResourcePrincipal: cfg.ResourcePrincipal,
			ConfigFile:        cfg.OCIConfigFile,
			Profile:           cfg.OCIProfile,
		},
			oci.WithLogger(log.WithName("resourcemanager")),
			oci.WithRetry(
				retry.WithMaxRetries(timeouts.RetryMaxAttempts-1),
				retry.WithInitialDelay(timeouts.RetryInitialDelay),
			),
		)
	}

	stdout io.Writer = os.Stdout
)

func newApp(ctx context.Context, opts *Options) (*app, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	log, err := newLogger(opts.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	store, err := session.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &app{
		opts:     opts,
		cfg:      cfg,
		timeouts: config.LoadTimeouts(),
		log:      log,
		store:    store,
		out:      stdout,
	}, nil
}

// library returns the template library and a validator. Rules in
// <config_dir>/validation-rules replace the built-in ones.
func (a *app) library() (*catalog.Library, *validation.Validator, error) {
	lib, err := catalog.Default()
	if err != nil {
		return nil, nil, err
	}
	if a.cfg.ConfigDir == "" {
		v, err := validation.NewFromLibrary(lib)
		return lib, v, err
	}
	rules, err := validation.LoadRules(os.DirFS(a.cfg.ConfigDir), "validation-rules")
	if err != nil {
		return nil, nil, err
	}
	a.log.V(1).Info("loaded validation rules", "dir", a.cfg.ConfigDir, "count", len(rules))
	return lib, validation.New(rules), nil
}

func (a *app) design() (*design.Service, error) {
	lib, v, err := a.library()
	if err != nil {
		return nil, err
	}
	return design.New(a.store, lib, v, a.cfg.DataDir, design.WithLogger(a.log.WithName("design"))), nil
}

func (a *app) orchestrator() *provisioning.Orchestrator {
	return provisioning.NewOrchestrator(a.cfg, a.timeouts,
		newManager(a.cfg, a.timeouts, a.log),
		a.store,
		provisioning.WithLogger(a.log.WithName("provisioning")),
	)
}
