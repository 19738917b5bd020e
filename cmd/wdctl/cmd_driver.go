// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"

	"github.com/fedesog/webdriver/v2"
	"github.com/fedesog/webdriver/v2/internal/ui"
)

type ServeDriverCmd struct {
	Path    string   `arg:"" optional:"" help:"Driver binary (default: service.path)"`
	Port    int      `short:"p" help:"Port to listen on (default: a free port)"`
	BaseURL string   `name:"base-url" help:"URL prefix of the driver routes"`
	Args    []string `name:"arg" help:"Extra switch passed to the driver"`
}

func (c *ServeDriverCmd) Run(ctx context.Context, e *env) error {
	a, err := e.open(ctx)
	if err != nil {
		return err
	}
	path := c.Path
	if path == "" {
		path = a.cfg.Service.Path
	}
	s := webdriver.NewService(path, a.logger)
	s.Port = c.Port
	s.BaseURL = c.BaseURL
	s.Args = c.Args
	s.OutputFile = a.cfg.Service.Output
	if a.cfg.Service.StartTimeout > 0 {
		s.StartTimeout = a.cfg.Service.StartTimeout
	}
	if err := s.Start(ctx); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Driver listening on %s", ui.Blue(s.URL())))
	ui.PrintInfo("Open a session: wdctl --remote " + s.URL() + " session new")

	<-ctx.Done()
	if err := s.Stop(); err != nil {
		return err
	}
	ui.PrintInfo("Driver stopped")
	return nil
}
