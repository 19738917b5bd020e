// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"context"
	"encoding/json"
	"fmt"
)

// Inject a snippet of JavaScript into the page for execution in the context of the currently selected frame. The executed script is assumed to be synchronous and the result of evaluating the script is returned to the client.
//
// Arguments may be nil, booleans, strings, numbers and element handles;
// anything else fails with ErrInvalidArgument before a request is sent.
// Element references in the result come back as *WebElement; a list
// holding only elements is returned as []*WebElement.
func (d *Driver) ExecuteScript(ctx context.Context, script string, args ...any) (any, error) {
	return d.executeScript(ctx, "execute script", ExecuteScript, script, args)
}

// Inject a snippet of JavaScript into the page for execution in the context of the currently selected frame. The executed script is assumed to be asynchronous and must signal that is done by invoking the provided callback, which is always provided as the final argument to the function.
func (d *Driver) ExecuteAsyncScript(ctx context.Context, script string, args ...any) (any, error) {
	return d.executeScript(ctx, "execute async script", ExecuteAsyncScript, script, args)
}

func (d *Driver) executeScript(ctx context.Context, op string, name CommandName, script string, args []any) (any, error) {
	wireArgs := make([]any, len(args))
	for i, arg := range args {
		w, err := scriptArg(arg)
		if err != nil {
			return nil, invalidArgument(op, fmt.Sprintf("argument %d: %v", i, err))
		}
		wireArgs[i] = w
	}
	v, err := d.execute(ctx, op, name, "", NewParams("script", script, "args", wireArgs))
	if err != nil {
		return nil, err
	}
	return d.fromWire(v), nil
}

// scriptArg checks one script argument and returns it in wire form.
func scriptArg(arg any) (any, error) {
	switch x := arg.(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return x, nil
	case *WebElement:
		if x == nil {
			return nil, nil
		}
		return x.wire(), nil
	case WebElement:
		return x.wire(), nil
	}
	return nil, fmt.Errorf("unsupported type %T", arg)
}

// fromWire converts a reply value: element references become handles,
// maps and lists are walked. A non-empty list holding only elements is
// returned as []*WebElement, any other list as []any.
func (d *Driver) fromWire(v any) any {
	switch x := v.(type) {
	case map[string]any:
		if id, ok := elementID(x); ok {
			return &WebElement{d: d, id: id}
		}
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = d.fromWire(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		elems := make([]*WebElement, 0, len(x))
		for i, item := range x {
			out[i] = d.fromWire(item)
			if e, ok := out[i].(*WebElement); ok {
				elems = append(elems, e)
			}
		}
		if len(x) > 0 && len(elems) == len(x) {
			return elems
		}
		return out
	}
	return v
}
