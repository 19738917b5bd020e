// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fedesog/webdriver/v2"
	"github.com/fedesog/webdriver/v2/internal/ui"
	"github.com/posener/complete"
)

// CallCmd sends any routed command, builtin or extension.
type CallCmd struct {
	Name    string   `arg:"" optional:"" help:"Command name, for example getTitle" predictor:"command"`
	Params  []string `arg:"" optional:"" help:"Parameters as name=value, values read as YAML"`
	Element string   `short:"e" help:"Element id filling {elementId}"`
	Route   string   `help:"Register Name as an extension command at 'METHOD /session/{sessionId}/...'"`
	List    bool     `short:"l" help:"List the builtin commands and their routes"`
}

func (c *CallCmd) Run(ctx context.Context, e *env) error {
	if c.List {
		printRoutes(webdriver.NewRouter())
		return nil
	}
	if c.Name == "" {
		return fmt.Errorf("command name is required")
	}
	params := webdriver.NewParams()
	for _, pair := range c.Params {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return fmt.Errorf("parameter %q is not name=value", pair)
		}
		params.Set(k, parseValue(v))
	}
	name := webdriver.CommandName(c.Name)

	return withDriver(ctx, e, func(d *webdriver.Driver) error {
		if c.Route != "" {
			method, path, _ := strings.Cut(strings.TrimSpace(c.Route), " ")
			r, ok := d.Executor().(interface{ Router() *webdriver.Router })
			if !ok {
				return fmt.Errorf("executor has no router")
			}
			err := r.Router().Register(name, webdriver.CommandInfo{Method: strings.ToUpper(method), Path: strings.TrimSpace(path)})
			if err != nil {
				return err
			}
		}
		var (
			v   any
			err error
		)
		if c.Element != "" {
			v, err = d.ElementFromID(c.Element).Execute(ctx, name, params)
		} else {
			v, err = d.Execute(ctx, name, params)
		}
		if err != nil {
			return err
		}
		return printResult(v)
	})
}

func printRoutes(r *webdriver.Router) {
	for _, name := range r.Names() {
		info, err := r.Resolve(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(ui.Output, "%-30s %-6s %s\n", ui.Cyan(string(name)), info.Method, ui.Dim(info.Path))
	}
}

// newCommandPredictor completes builtin command names.
func newCommandPredictor() complete.Predictor {
	return complete.PredictFunc(func(args complete.Args) []string {
		var names []string
		for _, name := range webdriver.NewRouter().Names() {
			if strings.HasPrefix(string(name), args.Last) {
				names = append(names, string(name))
			}
		}
		return names
	})
}
