// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// CommandName identifies a remote operation.
type CommandName string

const (
	NewSession                   CommandName = "newSession"
	GetSessionCapabilities       CommandName = "getSessionCapabilities"
	Quit                         CommandName = "quit"
	Status                       CommandName = "status"
	GetSessions                  CommandName = "getSessions"
	Get                          CommandName = "get"
	GetCurrentURL                CommandName = "getCurrentUrl"
	GoBack                       CommandName = "goBack"
	GoForward                    CommandName = "goForward"
	Refresh                      CommandName = "refresh"
	GetTitle                     CommandName = "getTitle"
	GetPageSource                CommandName = "getPageSource"
	FindElements                 CommandName = "findElements"
	FindChildElements            CommandName = "findChildElements"
	GetActiveElement             CommandName = "getActiveElement"
	ClickElement                 CommandName = "clickElement"
	SubmitElement                CommandName = "submitElement"
	ClearElement                 CommandName = "clearElement"
	SendKeysToElement            CommandName = "sendKeysToElement"
	SendKeysToActiveElement      CommandName = "sendKeysToActiveElement"
	GetElementText               CommandName = "getElementText"
	GetElementTagName            CommandName = "getElementTagName"
	GetElementAttribute          CommandName = "getElementAttribute"
	GetElementValueOfCSSProperty CommandName = "getElementValueOfCssProperty"
	IsElementSelected            CommandName = "isElementSelected"
	SetElementSelected           CommandName = "setElementSelected"
	ToggleElement                CommandName = "toggleElement"
	IsElementEnabled             CommandName = "isElementEnabled"
	IsElementDisplayed           CommandName = "isElementDisplayed"
	GetElementLocation           CommandName = "getElementLocation"
	GetElementSize               CommandName = "getElementSize"
	ElementEquals                CommandName = "elementEquals"
	ExecuteScript                CommandName = "executeScript"
	ExecuteAsyncScript           CommandName = "executeAsyncScript"
	Screenshot                   CommandName = "screenshot"
	GetCurrentWindowHandle       CommandName = "getCurrentWindowHandle"
	GetWindowHandles             CommandName = "getWindowHandles"
	SwitchToWindow               CommandName = "switchToWindow"
	Close                        CommandName = "close"
	SwitchToFrame                CommandName = "switchToFrame"
	SwitchToParentFrame          CommandName = "switchToParentFrame"
	GetWindowSize                CommandName = "getWindowSize"
	SetWindowSize                CommandName = "setWindowSize"
	MaximizeWindow               CommandName = "maximizeWindow"
	GetAllCookies                CommandName = "getCookies"
	AddCookie                    CommandName = "addCookie"
	DeleteAllCookies             CommandName = "deleteAllCookies"
	DeleteCookie                 CommandName = "deleteCookie"
	SetTimeouts                  CommandName = "setTimeouts"
	ImplicitlyWait               CommandName = "implicitlyWait"
	SetScriptTimeout             CommandName = "setScriptTimeout"
	GetAlertText                 CommandName = "getAlertText"
	SetAlertText                 CommandName = "setAlertText"
	AcceptAlert                  CommandName = "acceptAlert"
	DismissAlert                 CommandName = "dismissAlert"
	GetLog                       CommandName = "getLog"
	GetAvailableLogTypes         CommandName = "getAvailableLogTypes"
)

// Params holds command parameters in insertion order. The zero value and
// a nil *Params are both empty.
type Params struct {
	om *orderedmap.OrderedMap[string, any]
}

// NewParams builds Params from alternating name, value arguments.
func NewParams(kv ...any) *Params {
	if len(kv)%2 != 0 {
		panic("webdriver: NewParams called with an odd number of arguments")
	}
	p := &Params{}
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("webdriver: NewParams key %v is not a string", kv[i]))
		}
		p.Set(name, kv[i+1])
	}
	return p
}

// Set adds or replaces a parameter. Replacing keeps the original position.
func (p *Params) Set(name string, value any) *Params {
	if p.om == nil {
		p.om = orderedmap.New[string, any]()
	}
	p.om.Set(name, value)
	return p
}

func (p *Params) Get(name string) (any, bool) {
	if p == nil || p.om == nil {
		return nil, false
	}
	return p.om.Get(name)
}

func (p *Params) Len() int {
	if p == nil || p.om == nil {
		return 0
	}
	return p.om.Len()
}

// Keys returns the parameter names in insertion order.
func (p *Params) Keys() []string {
	if p == nil || p.om == nil {
		return nil
	}
	keys := make([]string, 0, p.om.Len())
	for pair := p.om.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// MarshalJSON encodes the parameters in wire form.
func (p *Params) MarshalJSON() ([]byte, error) {
	om, err := p.wire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(om)
}

// wire returns a copy of the parameters with every element reference in
// its wire form and every future replaced by its value.
func (p *Params) wire() (*orderedmap.OrderedMap[string, any], error) {
	out := orderedmap.New[string, any]()
	if p == nil || p.om == nil {
		return out, nil
	}
	for pair := p.om.Oldest(); pair != nil; pair = pair.Next() {
		v, err := wireValue(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", pair.Key, err)
		}
		out.Set(pair.Key, v)
	}
	return out, nil
}

func wireValue(v any) (any, error) {
	switch x := v.(type) {
	case *WebElement:
		if x == nil {
			return nil, nil
		}
		return x.wire(), nil
	case WebElement:
		return x.wire(), nil
	case []*WebElement:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e.wire()
		}
		return out, nil
	case *Future:
		val, err := x.Value()
		if err != nil {
			return nil, err
		}
		return wireValue(val)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			w, err := wireValue(x[i])
			if err != nil {
				return nil, err
			}
			out[i] = w
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			w, err := wireValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = w
		}
		return out, nil
	default:
		return v, nil
	}
}

// Command is a single named remote operation.
type Command struct {
	Name      CommandName
	SessionID string
	// ElementID scopes the command to a located element.
	ElementID string
	Params    *Params
}

// NewCommand returns a command with no session or element scope.
func NewCommand(name CommandName, params *Params) *Command {
	return &Command{Name: name, Params: params}
}

func (c *Command) String() string {
	s := string(c.Name)
	if c.ElementID != "" {
		s += "[" + c.ElementID + "]"
	}
	return s
}
