// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Path   string `json:"path,omitempty"`
	Domain string `json:"domain,omitempty"`
	Secure bool   `json:"secure,omitempty"`
	Expiry int    `json:"expiry,omitempty"`
}

type LogLevel string

const (
	LogAll     = LogLevel("ALL")
	LogDebug   = LogLevel("DEBUG")
	LogInfo    = LogLevel("INFO")
	LogWarning = LogLevel("WARNING")
	LogSevere  = LogLevel("SEVERE")
	LogOff     = LogLevel("OFF")
)

type LogEntry struct {
	TimeStamp int64    `json:"timestamp"`
	Level     LogLevel `json:"level"`
	Message   string   `json:"message"`
}

////////////////////////////////////////////////////////////////////////////////
// COMMAND LIST
// Command descriptions are from:
// https://code.google.com/p/selenium/wiki/JsonWireProtocol
////////////////////////////////////////////////////////////////////////////////

// Navigate to a new URL. The selected frame is reset to the top-level document.
func (d *Driver) Get(ctx context.Context, url string) error {
	_, err := d.execute(ctx, "get", Get, "", NewParams("url", url))
	return err
}

// Retrieve the URL of the current page.
func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	return d.executeString(ctx, "current url", GetCurrentURL, "", nil)
}

// Navigate backwards in the browser history, if possible.
func (d *Driver) Back(ctx context.Context) error {
	_, err := d.execute(ctx, "back", GoBack, "", nil)
	return err
}

// Navigate forwards in the browser history, if possible.
func (d *Driver) Forward(ctx context.Context) error {
	_, err := d.execute(ctx, "forward", GoForward, "", nil)
	return err
}

// Refresh the current page.
func (d *Driver) Refresh(ctx context.Context) error {
	_, err := d.execute(ctx, "refresh", Refresh, "", nil)
	return err
}

// Get the current page title.
func (d *Driver) Title(ctx context.Context) (string, error) {
	return d.executeString(ctx, "title", GetTitle, "", nil)
}

// Get the current page source.
func (d *Driver) PageSource(ctx context.Context) (string, error) {
	return d.executeString(ctx, "page source", GetPageSource, "", nil)
}

// Configure the amount of time that a particular type of operation can execute for before they are aborted and a |Timeout| error is returned to the client.  Valid values are: "script" for script timeouts, "implicit" for modifying the implicit wait timeout and "page load" for setting a page load timeout.
func (d *Driver) SetTimeouts(ctx context.Context, typ string, timeout time.Duration) error {
	p := NewParams("type", typ, "ms", timeout.Milliseconds())
	_, err := d.execute(ctx, "set timeouts", SetTimeouts, "", p)
	return err
}

// Set the amount of time the driver should wait when searching for elements. When searching for a single element, the driver should poll the page until an element is found or the timeout expires, whichever occurs first.
func (d *Driver) SetImplicitWait(ctx context.Context, timeout time.Duration) error {
	_, err := d.execute(ctx, "implicit wait", ImplicitlyWait, "", NewParams("ms", timeout.Milliseconds()))
	return err
}

// Set the amount of time that asynchronous scripts executed by ExecuteAsyncScript are permitted to run before they are aborted.
func (d *Driver) SetScriptTimeout(ctx context.Context, timeout time.Duration) error {
	_, err := d.execute(ctx, "script timeout", SetScriptTimeout, "", NewParams("ms", timeout.Milliseconds()))
	return err
}

func (d *Driver) SetPageLoadTimeout(ctx context.Context, timeout time.Duration) error {
	return d.SetTimeouts(ctx, "page load", timeout)
}

// Retrieve the current window handle.
func (d *Driver) WindowHandle(ctx context.Context) (string, error) {
	return d.executeString(ctx, "window handle", GetCurrentWindowHandle, "", nil)
}

// Retrieve the list of all window handles available to the session. Some
// servers send the handles as one comma separated string.
func (d *Driver) WindowHandles(ctx context.Context) ([]string, error) {
	v, err := d.execute(ctx, "window handles", GetWindowHandles, "", nil)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case nil:
		return []string{}, nil
	case string:
		if x == "" {
			return []string{}, nil
		}
		return strings.Split(x, ","), nil
	case []any:
		handles := make([]string, len(x))
		for i, h := range x {
			s, ok := h.(string)
			if !ok {
				return nil, fmt.Errorf("window handles: %w: handle %d is %T", ErrMalformedResponse, i, h)
			}
			handles[i] = s
		}
		return handles, nil
	}
	return nil, fmt.Errorf("window handles: %w: unexpected %T", ErrMalformedResponse, v)
}

// Change focus to another window. The window to change focus to may be specified by its server assigned window handle, or by the value of its name attribute.
func (d *Driver) SwitchToWindow(ctx context.Context, name string) error {
	_, err := d.execute(ctx, "switch to window", SwitchToWindow, "", NewParams("name", name))
	return err
}

// Change focus to another frame on the page. frame is a frame name or id
// (string), an index (int), a *WebElement or nil for the top-level document.
func (d *Driver) SwitchToFrame(ctx context.Context, frame any) error {
	switch f := frame.(type) {
	case nil, string, int:
	case *WebElement:
		if f == nil {
			frame = nil
		}
	case WebElement:
		frame = &f
	default:
		return invalidArgument("switch to frame", "invalid frame, must be string|int|nil|*WebElement")
	}
	_, err := d.execute(ctx, "switch to frame", SwitchToFrame, "", NewParams("id", frame))
	return err
}

// Change focus back to parent frame
func (d *Driver) SwitchToParentFrame(ctx context.Context) error {
	_, err := d.execute(ctx, "switch to parent frame", SwitchToParentFrame, "", nil)
	return err
}

// SwitchToDefaultContent selects the top-level document.
func (d *Driver) SwitchToDefaultContent(ctx context.Context) error {
	return d.SwitchToFrame(ctx, nil)
}

// windowHandle defaults to the current window.
func windowHandle(handle string) string {
	if handle == "" {
		return currentWindow
	}
	return handle
}

// Get the size of the specified window. An empty handle means the current window.
func (d *Driver) WindowSize(ctx context.Context, handle string) (Size, error) {
	var size Size
	err := d.executeInto(ctx, "window size", GetWindowSize, "", NewParams("windowHandle", windowHandle(handle)), &size)
	return size, err
}

// Change the size of the specified window.
func (d *Driver) SetWindowSize(ctx context.Context, handle string, size Size) error {
	p := NewParams("windowHandle", windowHandle(handle), "width", size.Width, "height", size.Height)
	_, err := d.execute(ctx, "set window size", SetWindowSize, "", p)
	return err
}

// Maximize the specified window if not already maximized.
func (d *Driver) MaximizeWindow(ctx context.Context, handle string) error {
	_, err := d.execute(ctx, "maximize window", MaximizeWindow, "", NewParams("windowHandle", windowHandle(handle)))
	return err
}

// Retrieve all cookies visible to the current page.
func (d *Driver) Cookies(ctx context.Context) ([]Cookie, error) {
	var cookies []Cookie
	err := d.executeInto(ctx, "cookies", GetAllCookies, "", nil, &cookies)
	return cookies, err
}

// Set a cookie.
func (d *Driver) AddCookie(ctx context.Context, cookie Cookie) error {
	c := map[string]any{"name": cookie.Name, "value": cookie.Value}
	if cookie.Path != "" {
		c["path"] = cookie.Path
	}
	if cookie.Domain != "" {
		c["domain"] = cookie.Domain
	}
	if cookie.Secure {
		c["secure"] = true
	}
	if cookie.Expiry != 0 {
		c["expiry"] = cookie.Expiry
	}
	_, err := d.execute(ctx, "add cookie", AddCookie, "", NewParams("cookie", c))
	return err
}

// Delete the cookie with the given name.
func (d *Driver) DeleteCookie(ctx context.Context, name string) error {
	_, err := d.execute(ctx, "delete cookie", DeleteCookie, "", NewParams("name", name))
	return err
}

// Delete all cookies visible to the current page.
func (d *Driver) DeleteAllCookies(ctx context.Context) error {
	_, err := d.execute(ctx, "delete cookies", DeleteAllCookies, "", nil)
	return err
}

// Gets the text of the currently displayed JavaScript alert(), confirm(), or prompt() dialog.
func (d *Driver) AlertText(ctx context.Context) (string, error) {
	return d.executeString(ctx, "alert text", GetAlertText, "", nil)
}

// Sends keystrokes to a JavaScript prompt() dialog.
func (d *Driver) SetAlertText(ctx context.Context, text string) error {
	_, err := d.execute(ctx, "set alert text", SetAlertText, "", NewParams("text", text))
	return err
}

// Accepts the currently displayed alert dialog.
func (d *Driver) AcceptAlert(ctx context.Context) error {
	_, err := d.execute(ctx, "accept alert", AcceptAlert, "", nil)
	return err
}

// Dismisses the currently displayed alert dialog.
func (d *Driver) DismissAlert(ctx context.Context) error {
	_, err := d.execute(ctx, "dismiss alert", DismissAlert, "", nil)
	return err
}

func splitKeys(sequence string) []string {
	keys := make([]string, 0, len(sequence))
	for _, k := range sequence {
		keys = append(keys, string(k))
	}
	return keys
}

// Send a sequence of key strokes to the active element.
func (d *Driver) SendKeys(ctx context.Context, sequence string) error {
	_, err := d.execute(ctx, "send keys", SendKeysToActiveElement, "", NewParams("value", splitKeys(sequence)))
	return err
}

const pngMagic = "\x89PNG\r\n\x1a\n"

// Take a screenshot of the current page and return the PNG bytes.
func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	s, err := d.executeString(ctx, "screenshot", Screenshot, "", nil)
	if err != nil {
		return nil, err
	}
	// raw image replies are passed through by the executor
	if strings.HasPrefix(s, pngMagic) {
		return []byte(s), nil
	}
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w: %v", ErrMalformedResponse, err)
	}
	return buf, nil
}

// Get the log for a given log type.
func (d *Driver) Log(ctx context.Context, logType string) ([]LogEntry, error) {
	var log []LogEntry
	err := d.executeInto(ctx, "log", GetLog, "", NewParams("type", logType), &log)
	return log, err
}

// Get available log types.
func (d *Driver) LogTypes(ctx context.Context) ([]string, error) {
	var logTypes []string
	err := d.executeInto(ctx, "log types", GetAvailableLogTypes, "", nil, &logTypes)
	return logTypes, err
}
