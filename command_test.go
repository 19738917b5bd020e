// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParamsOrder(t *testing.T) {
	p := NewParams("script", "return 1", "args", []any{})
	p.Set("z", 1).Set("a", 2).Set("script", "return 2")
	if got, want := p.Keys(), []string{"script", "args", "z", "a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	buf, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != `{"script":"return 2","args":[],"z":1,"a":2}` {
		t.Fatalf("json = %s", buf)
	}
	if v, ok := p.Get("z"); !ok || v != 1 {
		t.Fatalf("z = %v, %v", v, ok)
	}
}

func TestParamsNil(t *testing.T) {
	var p *Params
	if p.Len() != 0 || p.Keys() != nil {
		t.Fatal("nil params not empty")
	}
	if _, ok := p.Get("x"); ok {
		t.Fatal("nil params has x")
	}
	buf, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "null" {
		t.Fatalf("json = %s", buf)
	}
	var zero Params
	if buf, _ = json.Marshal(&zero); string(buf) != "{}" {
		t.Fatalf("json = %s", buf)
	}
}

func TestParamsOddArguments(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("no panic")
		}
	}()
	NewParams("a")
}

func TestParamsElements(t *testing.T) {
	e := &WebElement{id: "e1"}
	p := NewParams("id", e, "list", []*WebElement{e}, "nested", map[string]any{"x": []any{*e}})
	buf, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":{"ELEMENT":"e1"},"list":[{"ELEMENT":"e1"}],"nested":{"x":[{"ELEMENT":"e1"}]}}`
	if string(buf) != want {
		t.Fatalf("json = %s", buf)
	}
}

func TestCommandString(t *testing.T) {
	if s := (&Command{Name: ClickElement, ElementID: "7"}).String(); s != "clickElement[7]" {
		t.Fatal(s)
	}
	if s := NewCommand(Status, nil).String(); s != "status" {
		t.Fatal(s)
	}
}
