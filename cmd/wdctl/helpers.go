// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fedesog/webdriver/v2"
	"github.com/fedesog/webdriver/v2/internal/config"
	"github.com/fedesog/webdriver/v2/internal/logging"
	"github.com/fedesog/webdriver/v2/internal/sessionstore"
	"github.com/fedesog/webdriver/v2/internal/ui"
	"gopkg.in/yaml.v3"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config  string `help:"Config file" default:"${config_path}" type:"path"`
	Remote  string `help:"Remote end URL, overrides remote.url"`
	Session string `short:"s" help:"Session name, defaults to the current one" predictor:"session"`
	Verbose bool   `short:"v" help:"Log requests to stderr"`
}

// app is what a command runs against: configuration, logger and the
// session store. Build it with newApp and Close it when done.
type app struct {
	globals *Globals
	cfg     *config.Config
	logger  *slog.Logger
	store   sessionstore.Store
	closers []io.Closer
}

func newApp(ctx context.Context, g *Globals) (*app, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, errInvalidConfig(err)
	}
	if g.Remote != "" {
		cfg.Remote.URL = g.Remote
	}
	if err := cfg.Validate(); err != nil {
		return nil, errInvalidConfig(err)
	}

	logCfg := logging.DefaultConfig(cfg.Log.Path)
	logCfg.Level = cfg.Log.Level
	if g.Verbose {
		logCfg.Level = "debug"
	}
	var fallback io.Writer = io.Discard
	if g.Verbose {
		fallback = os.Stderr
	}
	logger, closer, err := logging.Open(logCfg, fallback)
	if err != nil {
		return nil, errInvalidConfig(err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		closer.Close()
		return nil, err
	}
	return &app{
		globals: g,
		cfg:     cfg,
		logger:  logger,
		store:   store,
		closers: []io.Closer{store, closer},
	}, nil
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func openStore(ctx context.Context, cfg *config.Config) (sessionstore.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		return sessionstore.NewRedisStore(ctx, cfg.Store.RedisAddr, cfg.Store.RedisDB, cfg.Store.TTL)
	default:
		return sessionstore.NewFileStore(cfg.Store.Path), nil
	}
}

// storeNames adapts a session store for completion.
type storeNames struct {
	sessionstore.Store
}

func (s storeNames) names(ctx context.Context) ([]string, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(recs))
	for i, rec := range recs {
		names[i] = rec.Name
	}
	return names, nil
}

// openSessionNames opens the store named by the config at path.
func openSessionNames(path string) func(ctx context.Context) (sessionLister, error) {
	return func(ctx context.Context) (sessionLister, error) {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		store, err := openStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return storeNames{store}, nil
	}
}

func (a *app) executorOptions() []webdriver.ExecutorOption {
	return []webdriver.ExecutorOption{
		webdriver.WithTimeout(a.cfg.Remote.Timeout),
		webdriver.WithLogger(a.logger),
	}
}

// record returns the session named by --session, or the current one.
func (a *app) record(ctx context.Context) (sessionstore.Record, error) {
	name := a.globals.Session
	if name == "" {
		cur, err := a.store.Current(ctx)
		if err != nil {
			return sessionstore.Record{}, err
		}
		if cur == "" {
			return sessionstore.Record{}, errNoSession()
		}
		name = cur
	}
	rec, err := a.store.Get(ctx, name)
	if errors.Is(err, sessionstore.ErrNotFound) {
		return rec, errSessionNotFound(name)
	}
	return rec, err
}

// driver attaches to the selected session.
func (a *app) driver(ctx context.Context) (*webdriver.Driver, sessionstore.Record, error) {
	rec, err := a.record(ctx)
	if err != nil {
		return nil, rec, err
	}
	exec := webdriver.NewHTTPExecutor(rec.URL, a.executorOptions()...)
	d, err := webdriver.Attach(exec, rec.ID, rec.Capabilities, webdriver.WithDriverLogger(a.logger))
	if err != nil {
		return nil, rec, err
	}
	return d, rec, nil
}

// parseValue reads a command line value as a YAML scalar or collection,
// so "true", "3" and "[1, 2]" keep their types. Anything that does not
// parse stays a string.
func parseValue(s string) any {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil || v == nil {
		return s
	}
	return normalizeYAML(v)
}

// normalizeYAML turns yaml maps into map[string]any so they encode as JSON.
func normalizeYAML(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = normalizeYAML(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = normalizeYAML(e)
		}
		return x
	}
	return v
}

// parseCapabilities reads key=value pairs.
func parseCapabilities(pairs []string) (webdriver.Capabilities, error) {
	caps := webdriver.Capabilities{}
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("capability %q is not key=value", pair)
		}
		caps[k] = parseValue(v)
	}
	return caps, nil
}

func profileByName(name string) (*webdriver.Profile, error) {
	switch name {
	case "":
		return nil, nil
	case "chrome":
		p := webdriver.ChromeProfile(webdriver.ChromeOptions{})
		return &p, nil
	case "firefox":
		p := webdriver.FirefoxProfile(nil)
		return &p, nil
	}
	return nil, fmt.Errorf("unknown profile %q (supported: chrome, firefox)", name)
}

// printResult prints a command value; element handles print as ids.
func printResult(v any) error {
	switch x := v.(type) {
	case nil:
		return nil
	case *webdriver.WebElement:
		ui.PrintElements([]string{x.ID()})
		return nil
	case []*webdriver.WebElement:
		ui.PrintElements(elementIDs(x))
		return nil
	case string, bool, float64, int:
		ui.PrintValue(x)
		return nil
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("format result: %w", err)
	}
	fmt.Fprint(ui.Output, string(out))
	return nil
}

func elementIDs(elems []*webdriver.WebElement) []string {
	ids := make([]string, len(elems))
	for i, e := range elems {
		ids[i] = e.ID()
	}
	return ids
}
