// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fedesog/webdriver/v2"
	"github.com/fedesog/webdriver/v2/internal/sessionstore"
	"github.com/fedesog/webdriver/v2/internal/ui"
	"github.com/google/uuid"
)

type SessionCmd struct {
	New  SessionNewCmd  `cmd:"" help:"Open a session and make it current"`
	Quit SessionQuitCmd `cmd:"" help:"End a session and forget it"`
	List SessionListCmd `cmd:"" help:"List stored sessions"`
	Use  SessionUseCmd  `cmd:"" help:"Select the current session"`
	Show SessionShowCmd `cmd:"" help:"Show a session and check it is alive"`
}

type SessionNewCmd struct {
	Name     string   `arg:"" optional:"" help:"Session name (default: generated)"`
	Cap      []string `short:"c" help:"Desired capability as key=value"`
	Require  []string `help:"Required capability as key=value"`
	Profile  string   `help:"Browser profile (chrome, firefox)"`
	Sessions bool     `help:"Also list the sessions known to the remote end"`
}

func (c *SessionNewCmd) Run(ctx context.Context, e *env) error {
	a, err := e.open(ctx)
	if err != nil {
		return err
	}
	desired, err := parseCapabilities(c.Cap)
	if err != nil {
		return err
	}
	desired = webdriver.Capabilities(a.cfg.Capabilities).Merge(desired)
	var required webdriver.Capabilities
	if len(c.Require) > 0 {
		if required, err = parseCapabilities(c.Require); err != nil {
			return err
		}
	}

	opts := []webdriver.Option{
		webdriver.WithDriverLogger(a.logger),
		webdriver.WithExecutorOptions(a.executorOptions()...),
	}
	profile, err := profileByName(c.Profile)
	if err != nil {
		return err
	}
	if profile != nil {
		opts = append(opts, webdriver.WithProfile(*profile))
	}
	d, err := webdriver.NewRemote(a.cfg.Remote.URL, opts...)
	if err != nil {
		return err
	}
	caps, err := d.Start(ctx, desired, required)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	name := c.Name
	if name == "" {
		name = uuid.NewString()[:8]
	}
	rec := sessionstore.Record{
		Name:         name,
		ID:           d.SessionID(),
		URL:          a.cfg.Remote.URL,
		Browser:      caps.BrowserName(),
		Capabilities: caps,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.store.Save(ctx, rec); err != nil {
		// the remote session would leak otherwise
		_ = d.Quit(ctx)
		return err
	}
	if err := a.store.SetCurrent(ctx, name); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Session %s started (%s)", ui.Cyan(name), rec.ID))

	if c.Sessions {
		infos, err := d.Sessions(ctx)
		if err != nil {
			return err
		}
		for _, info := range infos {
			ui.PrintInfo(fmt.Sprintf("%s %s", info.ID, info.Capabilities.BrowserName()))
		}
	}
	return nil
}

type SessionQuitCmd struct {
	Force bool `short:"f" help:"Forget the session even if the remote end fails to quit it"`
}

func (c *SessionQuitCmd) Run(ctx context.Context, e *env) error {
	a, err := e.open(ctx)
	if err != nil {
		return err
	}
	d, rec, err := a.driver(ctx)
	if err != nil {
		return err
	}
	if err := d.Quit(ctx); err != nil {
		if !c.Force {
			return fmt.Errorf("quit session %s: %w", rec.Name, err)
		}
		ui.PrintWarning(fmt.Sprintf("quit failed: %v", err))
	}
	if err := a.store.Delete(ctx, rec.Name); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Session %s ended", ui.Cyan(rec.Name)))
	return nil
}

type SessionListCmd struct{}

func (c *SessionListCmd) Run(ctx context.Context, e *env) error {
	a, err := e.open(ctx)
	if err != nil {
		return err
	}
	recs, err := a.store.List(ctx)
	if err != nil {
		return err
	}
	current, err := a.store.Current(ctx)
	if err != nil {
		return err
	}
	infos := make([]ui.SessionInfo, len(recs))
	for i, rec := range recs {
		infos[i] = sessionInfo(rec, current)
	}
	ui.PrintSessionList(infos)
	return nil
}

type SessionUseCmd struct {
	Name string `arg:"" help:"Session name" predictor:"session"`
}

func (c *SessionUseCmd) Run(ctx context.Context, e *env) error {
	a, err := e.open(ctx)
	if err != nil {
		return err
	}
	if err := a.store.SetCurrent(ctx, c.Name); err != nil {
		return errSessionNotFound(c.Name)
	}
	ui.PrintSuccess(fmt.Sprintf("Using session %s", ui.Cyan(c.Name)))
	return nil
}

type SessionShowCmd struct{}

func (c *SessionShowCmd) Run(ctx context.Context, e *env) error {
	a, err := e.open(ctx)
	if err != nil {
		return err
	}
	d, rec, err := a.driver(ctx)
	if err != nil {
		return err
	}
	state := webdriver.StateActive
	if _, err := d.WindowHandle(ctx); err != nil {
		// the remote end no longer knows the session
		state = webdriver.StateEnded
		a.logger.Debug("session check failed", "session", rec.Name, "error", err)
	}
	current, _ := a.store.Current(ctx)
	ui.PrintSession(sessionInfo(rec, current), state.String())
	return nil
}

func sessionInfo(rec sessionstore.Record, current string) ui.SessionInfo {
	return ui.SessionInfo{
		Name:      rec.Name,
		ID:        rec.ID,
		URL:       rec.URL,
		Browser:   rec.Browser,
		CreatedAt: rec.CreatedAt.Local().Format("2006-01-02 15:04"),
		Current:   rec.Name == current,
	}
}
