// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"errors"
	"strings"
	"testing"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func TestCommandTable(t *testing.T) {
	for name, info := range commandTable {
		switch info.Method {
		case "GET", "POST", "DELETE":
		default:
			t.Errorf("%s: method %q", name, info.Method)
		}
		if !strings.HasPrefix(info.Path, "/") {
			t.Errorf("%s: path %q", name, info.Path)
		}
		if name != NewSession && name != Status && name != GetSessions &&
			!strings.HasPrefix(info.Path, "/session/{sessionId}") {
			t.Errorf("%s is not session scoped: %s", name, info.Path)
		}
	}
}

func TestResolve(t *testing.T) {
	r := NewRouter()
	info, err := r.Resolve(ClickElement)
	if err != nil {
		t.Fatal(err)
	}
	if info.Method != "POST" || info.Path != "/session/{sessionId}/element/{elementId}/click" {
		t.Fatalf("info = %+v", info)
	}
	if _, err := r.Resolve("nope"); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("err = %v", err)
	}
}

func TestRegister(t *testing.T) {
	r := NewRouter()
	if err := r.Register("custom", CommandInfo{"GET", "/session/{sessionId}/custom"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("custom", CommandInfo{"POST", "/session/{sessionId}/custom2"}); err != nil {
		t.Fatal(err)
	}
	info, err := r.Resolve("custom")
	if err != nil || info.Method != "POST" {
		t.Fatalf("info = %+v, %v", info, err)
	}
	tests := []struct {
		name CommandName
		info CommandInfo
	}{
		{"", CommandInfo{"GET", "/x"}},
		{Quit, CommandInfo{"GET", "/x"}},
		{"bad", CommandInfo{"PUT", "/x"}},
		{"bad", CommandInfo{"GET", "x"}},
	}
	for _, tt := range tests {
		if err := r.Register(tt.name, tt.info); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Register(%q, %+v) = %v", tt.name, tt.info, err)
		}
	}
	if info, _ := r.Resolve(Quit); info.Method != "DELETE" {
		t.Fatal("builtin overridden")
	}
	other := NewRouter()
	if _, err := other.Resolve("custom"); err == nil {
		t.Fatal("registration leaked to another router")
	}
	names := r.Names()
	if len(names) != len(commandTable)+1 {
		t.Fatalf("%d names", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted at %d", i)
		}
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		cmd    *Command
		params map[string]any
		want   string
		left   []string
	}{
		{&Command{Name: GetTitle, SessionID: "s1"}, nil, "/session/s1/title", nil},
		{&Command{Name: GetElementAttribute, SessionID: "s1", ElementID: "e1"},
			map[string]any{"name": "href"}, "/session/s1/element/e1/attribute/href", nil},
		{&Command{Name: DeleteCookie, SessionID: "s1"},
			map[string]any{"name": "a b"}, "/session/s1/cookie/a%20b", nil},
		{&Command{Name: SetWindowSize, SessionID: "s1"},
			map[string]any{"windowHandle": "current", "width": 1}, "/session/s1/window/current/size", []string{"width"}},
	}
	for _, tt := range tests {
		om := orderedmap.New[string, any]()
		for k, v := range tt.params {
			om.Set(k, v)
		}
		info, err := NewRouter().Resolve(tt.cmd.Name)
		if err != nil {
			t.Fatal(err)
		}
		got, err := info.expand(tt.cmd, om)
		if err != nil {
			t.Errorf("%s: %v", tt.cmd.Name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: path %q, want %q", tt.cmd.Name, got, tt.want)
		}
		if om.Len() != len(tt.left) {
			t.Errorf("%s: %d params left, want %v", tt.cmd.Name, om.Len(), tt.left)
		}
	}
}

func TestExpandMissing(t *testing.T) {
	info, _ := NewRouter().Resolve(GetElementText)
	_, err := info.expand(&Command{Name: GetElementText, SessionID: "s"}, orderedmap.New[string, any]())
	var merr *MissingParameterError
	if !errors.As(err, &merr) || merr.Name != "elementId" {
		t.Fatalf("err = %v", err)
	}
	info, _ = NewRouter().Resolve(GetTitle)
	_, err = info.expand(&Command{Name: GetTitle}, orderedmap.New[string, any]())
	if !errors.As(err, &merr) || merr.Name != "sessionId" {
		t.Fatalf("err = %v", err)
	}
}
