// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
)

// State is the lifecycle state of a Driver.
type State int

const (
	StateNoSession State = iota
	StateActive
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateNoSession:
		return "no session"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// currentWindow names the window a new session starts in.
const currentWindow = "current"

// BrowsingContext is the window and frame subsequent commands target.
type BrowsingContext struct {
	Window string
	// Frames is the path from the top-level document to the selected
	// frame. Empty means the top-level document.
	Frames []any
}

// Frame returns the selected frame, or nil for the top-level document.
func (c BrowsingContext) Frame() any {
	if len(c.Frames) == 0 {
		return nil
	}
	return c.Frames[len(c.Frames)-1]
}

// Driver translates method calls into commands for one remote session.
// A Driver is not safe for concurrent use; distinct Drivers share nothing.
type Driver struct {
	exec     CommandExecutor
	logger   *slog.Logger
	profile  *Profile
	execOpts []ExecutorOption

	state     State
	sessionID string
	caps      Capabilities
	context   BrowsingContext
}

type Option func(*Driver)

// WithProfile applies browser specific hooks: extension commands are
// registered on the executor router and desired capabilities are
// translated before NewSession.
func WithProfile(p Profile) Option {
	return func(d *Driver) { d.profile = &p }
}

func WithDriverLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithExecutorOptions configures the executor built by NewRemote.
func WithExecutorOptions(opts ...ExecutorOption) Option {
	return func(d *Driver) { d.execOpts = append(d.execOpts, opts...) }
}

// New returns a driver without a session. Call Start to open one.
func New(exec CommandExecutor, opts ...Option) (*Driver, error) {
	d := &Driver{exec: exec, logger: discardLogger()}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.registerProfile(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewRemote returns a driver talking HTTP to the remote end at baseURL.
func NewRemote(baseURL string, opts ...Option) (*Driver, error) {
	d := &Driver{logger: discardLogger()}
	for _, opt := range opts {
		opt(d)
	}
	execOpts := append([]ExecutorOption{WithLogger(d.logger)}, d.execOpts...)
	d.exec = NewHTTPExecutor(baseURL, execOpts...)
	if err := d.registerProfile(); err != nil {
		return nil, err
	}
	return d, nil
}

// Attach returns a driver bound to an existing session, for example one
// opened by another process.
func Attach(exec CommandExecutor, sessionID string, caps Capabilities, opts ...Option) (*Driver, error) {
	if sessionID == "" {
		return nil, invalidArgument("attach", "empty session id")
	}
	d, err := New(exec, opts...)
	if err != nil {
		return nil, err
	}
	d.sessionID = sessionID
	d.caps = caps
	d.state = StateActive
	d.context = BrowsingContext{Window: currentWindow}
	return d, nil
}

func (d *Driver) registerProfile() error {
	if d.profile == nil || len(d.profile.Commands) == 0 {
		return nil
	}
	r, ok := d.exec.(interface{ Router() *Router })
	if !ok {
		return fmt.Errorf("profile %s: executor %T has no router for extension commands", d.profile.Name, d.exec)
	}
	for name, info := range d.profile.Commands {
		if err := r.Router().Register(name, info); err != nil {
			return fmt.Errorf("profile %s: %w", d.profile.Name, err)
		}
	}
	return nil
}

func (d *Driver) State() State              { return d.state }
func (d *Driver) SessionID() string         { return d.sessionID }
func (d *Driver) Executor() CommandExecutor { return d.exec }

// Capabilities returns the capabilities negotiated at NewSession.
func (d *Driver) Capabilities() Capabilities {
	return maps.Clone(d.caps)
}

// Context returns the current browsing context.
func (d *Driver) Context() BrowsingContext {
	c := d.context
	c.Frames = append([]any(nil), d.context.Frames...)
	return c
}

// Start opens the session. The server should attempt to create a session
// that most closely matches the desired and required capabilities;
// required may be nil.
func (d *Driver) Start(ctx context.Context, desired, required Capabilities) (Capabilities, error) {
	switch d.state {
	case StateActive:
		return nil, invalidState("new session", "session already started")
	case StateEnded:
		return nil, invalidState("new session", "driver has quit")
	}
	if desired == nil {
		desired = Capabilities{}
	}
	desired = maps.Clone(desired)
	if d.profile != nil && d.profile.Translate != nil {
		var err error
		if desired, err = d.profile.Translate(desired); err != nil {
			return nil, fmt.Errorf("profile %s: %w", d.profile.Name, err)
		}
	}
	p := NewParams("desiredCapabilities", map[string]any(desired))
	if required != nil {
		p.Set("requiredCapabilities", map[string]any(required))
	}
	resp, err := d.send(ctx, NewCommand(NewSession, p))
	if err != nil {
		return nil, err
	}
	if resp.SessionID == "" {
		return nil, fmt.Errorf("%w: new session reply carries no session id", ErrMalformedResponse)
	}
	caps := Capabilities{}
	if m, ok := resp.Value.(map[string]any); ok {
		caps = Capabilities(m)
	}
	d.sessionID = resp.SessionID
	d.caps = caps
	d.state = StateActive
	d.context = BrowsingContext{Window: currentWindow}
	d.logger.Info("session started", "session", d.sessionID, "browser", caps.BrowserName())
	return maps.Clone(caps), nil
}

// Quit deletes the session. The driver cannot be used afterwards.
func (d *Driver) Quit(ctx context.Context) error {
	_, err := d.execute(ctx, "quit", Quit, "", nil)
	return err
}

// Close closes the current window. The session stays active.
func (d *Driver) Close(ctx context.Context) error {
	_, err := d.execute(ctx, "close", Close, "", nil)
	return err
}

// Execute sends an arbitrary command, typically an extension command
// registered by a Profile, and returns its converted value.
func (d *Driver) Execute(ctx context.Context, name CommandName, params *Params) (any, error) {
	v, err := d.execute(ctx, string(name), name, "", params)
	if err != nil {
		return nil, err
	}
	return d.fromWire(v), nil
}

// Status queries the server's status. It needs no session.
func (d *Driver) Status(ctx context.Context) (*ServerStatus, error) {
	resp, err := d.send(ctx, NewCommand(Status, nil))
	if err != nil {
		return nil, err
	}
	status := &ServerStatus{}
	err = decodeValue(resp.Value, status)
	return status, err
}

// Sessions returns a list of the currently active sessions. It needs no
// session.
func (d *Driver) Sessions(ctx context.Context) ([]SessionInfo, error) {
	resp, err := d.send(ctx, NewCommand(GetSessions, nil))
	if err != nil {
		return nil, err
	}
	var sessions []SessionInfo
	err = decodeValue(resp.Value, &sessions)
	return sessions, err
}

func (d *Driver) checkActive(op string) error {
	switch d.state {
	case StateNoSession:
		return invalidState(op, "no session, call Start first")
	case StateEnded:
		return invalidState(op, "session has ended")
	}
	return nil
}

// send executes cmd and classifies the reply.
func (d *Driver) send(ctx context.Context, cmd *Command) (*Response, error) {
	resp, err := d.exec.Execute(ctx, cmd)
	if err != nil {
		d.logger.Debug("command failed", "command", cmd.String(), "error", err)
		return nil, err
	}
	if err := Classify(resp); err != nil {
		d.logger.Debug("command failed", "command", cmd.String(), "status", resp.Status, "error", err)
		return nil, err
	}
	return resp, nil
}

// execute runs a session scoped command and returns the raw value.
func (d *Driver) execute(ctx context.Context, op string, name CommandName, elementID string, params *Params) (any, error) {
	resp, err := d.run(ctx, op, &Command{Name: name, ElementID: elementID, Params: params})
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// run sends a session scoped command and applies its effect on the
// session state. Queued commands go through here too.
func (d *Driver) run(ctx context.Context, op string, cmd *Command) (*Response, error) {
	if err := d.checkActive(op); err != nil {
		return nil, err
	}
	cmd.SessionID = d.sessionID
	resp, err := d.send(ctx, cmd)
	if err != nil {
		return nil, err
	}
	d.applyResult(cmd)
	return resp, nil
}

// applyResult updates the session state and browsing context after cmd
// succeeded.
func (d *Driver) applyResult(cmd *Command) {
	switch cmd.Name {
	case Quit:
		d.logger.Info("session ended", "session", d.sessionID)
		d.state = StateEnded
	case Get:
		d.context.Frames = nil
	case SwitchToWindow:
		if name, ok := paramValue(cmd.Params, "name").(string); ok {
			d.context = BrowsingContext{Window: name}
		}
	case SwitchToFrame:
		switch f := paramValue(cmd.Params, "id").(type) {
		case nil:
			d.context.Frames = nil
		case *WebElement:
			if f == nil {
				d.context.Frames = nil
			} else {
				d.context.Frames = append(d.context.Frames, f)
			}
		case WebElement:
			d.context.Frames = append(d.context.Frames, &f)
		default:
			d.context.Frames = append(d.context.Frames, f)
		}
	case SwitchToParentFrame:
		if n := len(d.context.Frames); n > 0 {
			d.context.Frames = d.context.Frames[:n-1]
		}
	}
}

// paramValue returns a parameter with futures replaced by their values.
func paramValue(p *Params, name string) any {
	v, _ := p.Get(name)
	if f, ok := v.(*Future); ok {
		v, _ = f.Value()
	}
	return v
}

func (d *Driver) executeString(ctx context.Context, op string, name CommandName, elementID string, params *Params) (string, error) {
	v, err := d.execute(ctx, op, name, elementID, params)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: %w: expected string value, got %T", op, ErrMalformedResponse, v)
	}
	return s, nil
}

func (d *Driver) executeBool(ctx context.Context, op string, name CommandName, elementID string, params *Params) (bool, error) {
	v, err := d.execute(ctx, op, name, elementID, params)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: %w: expected boolean value, got %T", op, ErrMalformedResponse, v)
	}
	return b, nil
}

func (d *Driver) executeInto(ctx context.Context, op string, name CommandName, elementID string, params *Params, out any) error {
	v, err := d.execute(ctx, op, name, elementID, params)
	if err != nil {
		return err
	}
	if err := decodeValue(v, out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsRemote reports whether err was reported by the remote end rather
// than raised locally.
func IsRemote(err error) bool {
	var cerr *CommandError
	return errors.As(err, &cerr)
}
