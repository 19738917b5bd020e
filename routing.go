// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// CommandInfo is the HTTP method and URL template of a command.
type CommandInfo struct {
	Method string
	// Path is relative to the remote base URL, for example
	// "/session/{sessionId}/element/{elementId}/click".
	Path string
}

////////////////////////////////////////////////////////////////////////////////
// COMMAND TABLE
// Paths follow the JSON Wire Protocol:
// https://code.google.com/p/selenium/wiki/JsonWireProtocol
////////////////////////////////////////////////////////////////////////////////

var commandTable = map[CommandName]CommandInfo{
	NewSession:                   {"POST", "/session"},
	GetSessionCapabilities:       {"GET", "/session/{sessionId}"},
	Quit:                         {"DELETE", "/session/{sessionId}"},
	Status:                       {"GET", "/status"},
	GetSessions:                  {"GET", "/sessions"},
	Get:                          {"POST", "/session/{sessionId}/url"},
	GetCurrentURL:                {"GET", "/session/{sessionId}/url"},
	GoBack:                       {"POST", "/session/{sessionId}/back"},
	GoForward:                    {"POST", "/session/{sessionId}/forward"},
	Refresh:                      {"POST", "/session/{sessionId}/refresh"},
	GetTitle:                     {"GET", "/session/{sessionId}/title"},
	GetPageSource:                {"GET", "/session/{sessionId}/source"},
	FindElements:                 {"POST", "/session/{sessionId}/elements"},
	FindChildElements:            {"POST", "/session/{sessionId}/element/{elementId}/elements"},
	GetActiveElement:             {"POST", "/session/{sessionId}/element/active"},
	ClickElement:                 {"POST", "/session/{sessionId}/element/{elementId}/click"},
	SubmitElement:                {"POST", "/session/{sessionId}/element/{elementId}/submit"},
	ClearElement:                 {"POST", "/session/{sessionId}/element/{elementId}/clear"},
	SendKeysToElement:            {"POST", "/session/{sessionId}/element/{elementId}/value"},
	SendKeysToActiveElement:      {"POST", "/session/{sessionId}/keys"},
	GetElementText:               {"GET", "/session/{sessionId}/element/{elementId}/text"},
	GetElementTagName:            {"GET", "/session/{sessionId}/element/{elementId}/name"},
	GetElementAttribute:          {"GET", "/session/{sessionId}/element/{elementId}/attribute/{name}"},
	GetElementValueOfCSSProperty: {"GET", "/session/{sessionId}/element/{elementId}/css/{propertyName}"},
	IsElementSelected:            {"GET", "/session/{sessionId}/element/{elementId}/selected"},
	SetElementSelected:           {"POST", "/session/{sessionId}/element/{elementId}/selected"},
	ToggleElement:                {"POST", "/session/{sessionId}/element/{elementId}/toggle"},
	IsElementEnabled:             {"GET", "/session/{sessionId}/element/{elementId}/enabled"},
	IsElementDisplayed:           {"GET", "/session/{sessionId}/element/{elementId}/displayed"},
	GetElementLocation:           {"GET", "/session/{sessionId}/element/{elementId}/location"},
	GetElementSize:               {"GET", "/session/{sessionId}/element/{elementId}/size"},
	ElementEquals:                {"GET", "/session/{sessionId}/element/{elementId}/equals/{other}"},
	ExecuteScript:                {"POST", "/session/{sessionId}/execute"},
	ExecuteAsyncScript:           {"POST", "/session/{sessionId}/execute_async"},
	Screenshot:                   {"GET", "/session/{sessionId}/screenshot"},
	GetCurrentWindowHandle:       {"GET", "/session/{sessionId}/window_handle"},
	GetWindowHandles:             {"GET", "/session/{sessionId}/window_handles"},
	SwitchToWindow:               {"POST", "/session/{sessionId}/window"},
	Close:                        {"DELETE", "/session/{sessionId}/window"},
	SwitchToFrame:                {"POST", "/session/{sessionId}/frame"},
	SwitchToParentFrame:          {"POST", "/session/{sessionId}/frame/parent"},
	GetWindowSize:                {"GET", "/session/{sessionId}/window/{windowHandle}/size"},
	SetWindowSize:                {"POST", "/session/{sessionId}/window/{windowHandle}/size"},
	MaximizeWindow:               {"POST", "/session/{sessionId}/window/{windowHandle}/maximize"},
	GetAllCookies:                {"GET", "/session/{sessionId}/cookie"},
	AddCookie:                    {"POST", "/session/{sessionId}/cookie"},
	DeleteAllCookies:             {"DELETE", "/session/{sessionId}/cookie"},
	DeleteCookie:                 {"DELETE", "/session/{sessionId}/cookie/{name}"},
	SetTimeouts:                  {"POST", "/session/{sessionId}/timeouts"},
	ImplicitlyWait:               {"POST", "/session/{sessionId}/timeouts/implicit_wait"},
	SetScriptTimeout:             {"POST", "/session/{sessionId}/timeouts/async_script"},
	GetAlertText:                 {"GET", "/session/{sessionId}/alert_text"},
	SetAlertText:                 {"POST", "/session/{sessionId}/alert_text"},
	AcceptAlert:                  {"POST", "/session/{sessionId}/accept_alert"},
	DismissAlert:                 {"POST", "/session/{sessionId}/dismiss_alert"},
	GetLog:                       {"POST", "/session/{sessionId}/log"},
	GetAvailableLogTypes:         {"GET", "/session/{sessionId}/log/types"},
}

// IsBuiltin reports whether name belongs to the builtin command set.
func IsBuiltin(name CommandName) bool {
	_, ok := commandTable[name]
	return ok
}

// Router resolves command names to routing entries. The builtin table is
// fixed; extension commands live in a per-router registry.
type Router struct {
	mu     sync.RWMutex
	custom map[CommandName]CommandInfo
}

func NewRouter() *Router {
	return &Router{custom: make(map[CommandName]CommandInfo)}
}

// Resolve returns the routing entry of name.
func (r *Router) Resolve(name CommandName) (CommandInfo, error) {
	if info, ok := commandTable[name]; ok {
		return info, nil
	}
	r.mu.RLock()
	info, ok := r.custom[name]
	r.mu.RUnlock()
	if !ok {
		return CommandInfo{}, &UnknownCommandError{Name: name}
	}
	return info, nil
}

// Register adds an extension command. A later registration of the same
// name replaces the earlier one. Builtin names cannot be registered.
func (r *Router) Register(name CommandName, info CommandInfo) error {
	if name == "" {
		return invalidArgument("register command", "empty command name")
	}
	if IsBuiltin(name) {
		return invalidArgument("register command", fmt.Sprintf("%q is a builtin command", name))
	}
	switch info.Method {
	case "GET", "POST", "DELETE":
	default:
		return invalidArgument("register command", "invalid method: "+info.Method)
	}
	if !strings.HasPrefix(info.Path, "/") {
		return invalidArgument("register command", "path must start with /: "+info.Path)
	}
	r.mu.Lock()
	r.custom[name] = info
	r.mu.Unlock()
	return nil
}

// Names returns every resolvable command name, sorted.
func (r *Router) Names() []CommandName {
	r.mu.RLock()
	names := make([]CommandName, 0, len(commandTable)+len(r.custom))
	for name := range commandTable {
		names = append(names, name)
	}
	for name := range r.custom {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// expand fills the template placeholders. Values for placeholders other
// than sessionId and elementId are taken from params and removed from it.
func (info CommandInfo) expand(cmd *Command, params *orderedmap.OrderedMap[string, any]) (string, error) {
	segments := strings.Split(info.Path, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		name := seg[1 : len(seg)-1]
		var value string
		switch name {
		case "sessionId":
			value = cmd.SessionID
		case "elementId":
			value = cmd.ElementID
		default:
			if v, ok := params.Get(name); ok && v != nil {
				value = fmt.Sprint(v)
				params.Delete(name)
			}
		}
		if value == "" {
			return "", &MissingParameterError{Command: cmd.Name, Name: name}
		}
		segments[i] = url.PathEscape(value)
	}
	return strings.Join(segments, "/"), nil
}
