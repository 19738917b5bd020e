// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fedesog/webdriver/v2"
	"github.com/fedesog/webdriver/v2/internal/ui"
)

// withDriver opens the app and attaches to the selected session.
func withDriver(ctx context.Context, e *env, fn func(d *webdriver.Driver) error) error {
	a, err := e.open(ctx)
	if err != nil {
		return err
	}
	d, _, err := a.driver(ctx)
	if err != nil {
		return err
	}
	return fn(d)
}

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx context.Context, e *env) error {
	a, err := e.open(ctx)
	if err != nil {
		return err
	}
	d, err := webdriver.NewRemote(a.cfg.Remote.URL,
		webdriver.WithDriverLogger(a.logger),
		webdriver.WithExecutorOptions(a.executorOptions()...))
	if err != nil {
		return err
	}
	status, err := d.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(ui.Output, "%s %s\n", ui.Bold("Remote:"), ui.Blue(a.cfg.Remote.URL))
	fmt.Fprintf(ui.Output, "%s %s\n", ui.Bold("Build:"), status.Build.Version)
	if status.OS.Name != "" {
		fmt.Fprintf(ui.Output, "%s %s %s\n", ui.Bold("OS:"), status.OS.Name, status.OS.Arch)
	}
	return nil
}

type OpenCmd struct {
	URL string `arg:"" help:"URL to load"`
}

func (c *OpenCmd) Run(ctx context.Context, e *env) error {
	return withDriver(ctx, e, func(d *webdriver.Driver) error {
		if err := d.Get(ctx, c.URL); err != nil {
			return err
		}
		title, err := d.Title(ctx)
		if err != nil {
			return err
		}
		ui.PrintSuccess(fmt.Sprintf("Loaded %s %s", ui.Blue(c.URL), ui.Dim("("+title+")")))
		return nil
	})
}

type URLCmd struct{}

func (c *URLCmd) Run(ctx context.Context, e *env) error {
	return withDriver(ctx, e, func(d *webdriver.Driver) error {
		u, err := d.CurrentURL(ctx)
		if err != nil {
			return err
		}
		ui.PrintValue(u)
		return nil
	})
}

type TitleCmd struct{}

func (c *TitleCmd) Run(ctx context.Context, e *env) error {
	return withDriver(ctx, e, func(d *webdriver.Driver) error {
		title, err := d.Title(ctx)
		if err != nil {
			return err
		}
		ui.PrintValue(title)
		return nil
	})
}

type SourceCmd struct{}

func (c *SourceCmd) Run(ctx context.Context, e *env) error {
	return withDriver(ctx, e, func(d *webdriver.Driver) error {
		src, err := d.PageSource(ctx)
		if err != nil {
			return err
		}
		ui.PrintValue(src)
		return nil
	})
}

type ExecCmd struct {
	Script  string   `arg:"" help:"Script body, for example 'return document.title'"`
	Args    []string `arg:"" optional:"" help:"Arguments, read as YAML scalars"`
	Element []string `short:"e" help:"Element id appended to the arguments"`
	Async   bool     `help:"Run as an asynchronous script"`
}

func (c *ExecCmd) Run(ctx context.Context, e *env) error {
	return withDriver(ctx, e, func(d *webdriver.Driver) error {
		args := make([]any, 0, len(c.Args)+len(c.Element))
		for _, arg := range c.Args {
			args = append(args, parseValue(arg))
		}
		for _, id := range c.Element {
			args = append(args, d.ElementFromID(id))
		}
		var (
			v   any
			err error
		)
		if c.Async {
			v, err = d.ExecuteAsyncScript(ctx, c.Script, args...)
		} else {
			v, err = d.ExecuteScript(ctx, c.Script, args...)
		}
		if err != nil {
			return err
		}
		return printResult(v)
	})
}

type ScreenshotCmd struct {
	File string `arg:"" type:"path" help:"Output file"`
}

func (c *ScreenshotCmd) Run(ctx context.Context, e *env) error {
	return withDriver(ctx, e, func(d *webdriver.Driver) error {
		img, err := d.Screenshot(ctx)
		if err != nil {
			return err
		}
		if err := os.WriteFile(c.File, img, 0644); err != nil {
			return fmt.Errorf("write screenshot: %w", err)
		}
		ui.PrintSuccess(fmt.Sprintf("Saved %s", c.File))
		return nil
	})
}

type WindowsCmd struct{}

func (c *WindowsCmd) Run(ctx context.Context, e *env) error {
	return withDriver(ctx, e, func(d *webdriver.Driver) error {
		current, err := d.WindowHandle(ctx)
		if err != nil {
			return err
		}
		handles, err := d.WindowHandles(ctx)
		if err != nil {
			return err
		}
		for _, h := range handles {
			marker := " "
			if h == current {
				marker = ui.Green("*")
			}
			fmt.Fprintf(ui.Output, "%s %s\n", marker, h)
		}
		return nil
	})
}
