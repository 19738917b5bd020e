// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wdctl drives a WebDriver remote end from the shell. Sessions
// opened with "wdctl session new" are stored and reused by later
// invocations.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fedesog/webdriver/v2/internal/config"
	"github.com/fedesog/webdriver/v2/internal/ui"
	"github.com/willabides/kongplete"
)

var version = "dev"

type CLI struct {
	Globals

	Sessions   SessionCmd    `cmd:"" name:"session" help:"Manage sessions"`
	Status     StatusCmd     `cmd:"" help:"Show the remote end status"`
	Open       OpenCmd       `cmd:"" help:"Navigate to a URL"`
	URL        URLCmd        `cmd:"" name:"url" help:"Print the current URL"`
	Title      TitleCmd      `cmd:"" help:"Print the page title"`
	Source     SourceCmd     `cmd:"" help:"Print the page source"`
	Find       FindCmd       `cmd:"" help:"Find elements and print their ids"`
	Click      ClickCmd      `cmd:"" help:"Click an element"`
	Text       TextCmd       `cmd:"" help:"Print the visible text of an element"`
	Exec       ExecCmd       `cmd:"" help:"Execute a script in the page"`
	Screenshot ScreenshotCmd `cmd:"" help:"Save a PNG screenshot"`
	Windows    WindowsCmd    `cmd:"" help:"List window handles"`
	Call       CallCmd       `cmd:"" help:"Send a command by name"`

	ServeDriver        ServeDriverCmd                `cmd:"" help:"Run a local driver binary until interrupted"`
	InstallCompletions kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`
	Version            VersionCmd                    `cmd:"" help:"Show version"`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(ui.Output, "wdctl version %s\n", version)
	return nil
}

// env hands commands their app, opened on first use.
type env struct {
	globals *Globals
	app     *app
}

func (e *env) open(ctx context.Context) (*app, error) {
	if e.app == nil {
		a, err := newApp(ctx, e.globals)
		if err != nil {
			return nil, err
		}
		e.app = a
	}
	return e.app, nil
}

func (e *env) close() error {
	if e.app == nil {
		return nil
	}
	return e.app.Close()
}

func newParser(cli *CLI, stdout, stderr io.Writer) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("wdctl"),
		kong.Description("WebDriver command line client"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Vars{"config_path": config.DefaultPath()},
	)
}

// run executes args and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	ui.Output = stdout
	cli := CLI{}
	parser, err := newParser(&cli, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	kongplete.Complete(parser,
		kongplete.WithPredictor("session", newSessionPredictor(openSessionNames(configFromArgs(args)))),
		kongplete.WithPredictor("command", newCommandPredictor()),
	)

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	e := &env{globals: &cli.Globals}
	kctx.BindTo(ctx, (*context.Context)(nil))
	err = kctx.Run(e)
	if cerr := e.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}

// configFromArgs finds --config in args before kong has parsed them, for
// completion which runs ahead of parsing.
func configFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
	}
	return config.DefaultPath()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
