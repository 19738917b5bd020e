// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wdtest

import (
	"strings"

	"github.com/google/uuid"
)

// Page is a document served at one URL.
type Page struct {
	Title    string
	Source   string
	Elements []*Element
	// Alert, when set, is open right after navigating to the page.
	Alert string
}

// Element is a node of a Page. IDs are assigned when the page is added.
type Element struct {
	ID       string
	Tag      string
	Text     string
	Attrs    map[string]string
	CSS      map[string]string
	Hidden   bool
	Disabled bool
	Selected bool
	X, Y     int
	Width    int
	Height   int
	Children []*Element

	// Clicks counts clicks received.
	Clicks int
}

func (e *Element) attr(name string) string {
	if e.Attrs == nil {
		return ""
	}
	return e.Attrs[name]
}

func (e *Element) setAttr(name, value string) {
	if e.Attrs == nil {
		e.Attrs = map[string]string{}
	}
	e.Attrs[name] = value
}

func (e *Element) hasClass(class string) bool {
	for _, c := range strings.Fields(e.attr("class")) {
		if c == class {
			return true
		}
	}
	return false
}

// assignIDs gives every element without an id a fresh one and indexes
// them.
func assignIDs(elems []*Element, index map[string]*Element) {
	for _, e := range elems {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		index[e.ID] = e
		assignIDs(e.Children, index)
	}
}

// errInvalidSelector is returned by match for unsupported strategies.
type errInvalidSelector string

func (e errInvalidSelector) Error() string { return string(e) }

// match reports whether e matches the locator.
func match(e *Element, using, value string) (bool, error) {
	switch using {
	case "id":
		return e.attr("id") == value, nil
	case "name":
		return e.attr("name") == value, nil
	case "class name":
		if strings.ContainsAny(value, " \t") {
			return false, errInvalidSelector("compound class names not permitted")
		}
		return e.hasClass(value), nil
	case "tag name":
		return strings.EqualFold(e.Tag, value), nil
	case "link text":
		return e.Tag == "a" && e.Text == value, nil
	case "partial link text":
		return e.Tag == "a" && strings.Contains(e.Text, value), nil
	case "css selector":
		return matchCSS(e, value)
	}
	return false, errInvalidSelector("unsupported locator strategy: " + using)
}

// matchCSS supports a single compound selector: tag, #id, .class or a
// combination such as a.nav#home.
func matchCSS(e *Element, selector string) (bool, error) {
	if selector == "" || strings.ContainsAny(selector, " >+~[:,") {
		return false, errInvalidSelector("unsupported css selector: " + selector)
	}
	rest := selector
	tag := rest
	if i := strings.IndexAny(rest, "#."); i >= 0 {
		tag, rest = rest[:i], rest[i:]
	} else {
		rest = ""
	}
	if tag != "" && tag != "*" && !strings.EqualFold(e.Tag, tag) {
		return false, nil
	}
	for rest != "" {
		kind := rest[0]
		rest = rest[1:]
		name := rest
		if i := strings.IndexAny(rest, "#."); i >= 0 {
			name, rest = rest[:i], rest[i:]
		} else {
			rest = ""
		}
		if name == "" {
			return false, errInvalidSelector("unsupported css selector: " + selector)
		}
		switch kind {
		case '#':
			if e.attr("id") != name {
				return false, nil
			}
		case '.':
			if !e.hasClass(name) {
				return false, nil
			}
		}
	}
	return true, nil
}

// find collects the descendants of elems matching the locator, in
// document order.
func find(elems []*Element, using, value string) ([]*Element, error) {
	var out []*Element
	for _, e := range elems {
		ok, err := match(e, using, value)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
		children, err := find(e.Children, using, value)
		if err != nil {
			return nil, err
		}
		out = append(out, children...)
	}
	return out, nil
}
