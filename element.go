// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"context"
	"encoding/json"
	"fmt"
)

type FindElementStrategy string

const (
	//Returns an element whose class name contains the search value; compound class names are not permitted.
	ClassName = FindElementStrategy("class name")
	//Returns an element matching a CSS selector.
	CSS_Selector = FindElementStrategy("css selector")
	//Returns an element whose ID attribute matches the search value.
	ID = FindElementStrategy("id")
	//Returns an element whose NAME attribute matches the search value.
	Name = FindElementStrategy("name")
	//Returns an anchor element whose visible text matches the search value.
	LinkText = FindElementStrategy("link text")
	//Returns an anchor element whose visible text partially matches the search value.
	PartialLinkText = FindElementStrategy("partial link text")
	//Returns an element whose tag name matches the search value.
	TagName = FindElementStrategy("tag name")
	//Returns an element matching an XPath expression.
	XPath = FindElementStrategy("xpath")
)

// By is a locator: a search strategy and its value.
type By struct {
	Using FindElementStrategy
	Value string
}

func (b By) String() string { return fmt.Sprintf("%s=%q", b.Using, b.Value) }

func ByID(id string) By                { return By{ID, id} }
func ByName(name string) By            { return By{Name, name} }
func ByClassName(class string) By      { return By{ClassName, class} }
func ByCSSSelector(selector string) By { return By{CSS_Selector, selector} }
func ByLinkText(text string) By        { return By{LinkText, text} }
func ByPartialLinkText(text string) By { return By{PartialLinkText, text} }
func ByTagName(tag string) By          { return By{TagName, tag} }
func ByXPath(expression string) By     { return By{XPath, expression} }

// wireElementKey is the key of an element reference in the wire protocol.
const wireElementKey = "ELEMENT"

// w3cElementKey is used by W3C remote ends; it is accepted in replies.
const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

// WebElement is a handle to a DOM element located by its driver. The id
// is assigned by the remote end; it may go stale once the page changes,
// which is reported by the remote end, not checked locally.
type WebElement struct {
	d  *Driver
	id string
}

// ElementFromID wraps an id obtained elsewhere, for example from another
// process attached to the same session.
func (d *Driver) ElementFromID(id string) *WebElement {
	return &WebElement{d: d, id: id}
}

func (e *WebElement) ID() string { return e.id }

func (e *WebElement) String() string { return "WebElement(" + e.id + ")" }

func (e WebElement) wire() map[string]any {
	return map[string]any{wireElementKey: e.id}
}

// MarshalJSON encodes the element in its wire form {"ELEMENT": id}.
func (e WebElement) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.wire())
}

// elementID reports whether m is an element reference.
func elementID(m map[string]any) (string, bool) {
	if id, ok := m[wireElementKey].(string); ok {
		return id, true
	}
	if id, ok := m[w3cElementKey].(string); ok {
		return id, true
	}
	return "", false
}

// elements converts a find reply into handles.
func (d *Driver) elements(op string, v any) ([]*WebElement, error) {
	if v == nil {
		return []*WebElement{}, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: %w: expected a list of elements, got %T", op, ErrMalformedResponse, v)
	}
	elems := make([]*WebElement, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: %w: item %d is %T", op, ErrMalformedResponse, i, item)
		}
		id, ok := elementID(m)
		if !ok {
			return nil, fmt.Errorf("%s: %w: item %d is not an element reference", op, ErrMalformedResponse, i)
		}
		elems = append(elems, &WebElement{d: d, id: id})
	}
	return elems, nil
}

func (d *Driver) findElements(ctx context.Context, op string, name CommandName, scope string, by By) ([]*WebElement, error) {
	p := NewParams("using", string(by.Using), "value", by.Value)
	v, err := d.execute(ctx, op, name, scope, p)
	if err != nil {
		return nil, err
	}
	return d.elements(op, v)
}

// firstElement picks the first match. The plural command succeeds with
// an empty list when nothing matches, so the not-found error is made here.
func firstElement(elems []*WebElement, by By) (*WebElement, error) {
	if len(elems) == 0 {
		return nil, &CommandError{
			Kind:       KindNoSuchElement,
			StatusCode: NoSuchElement,
			Message:    "no element matches " + by.String(),
		}
	}
	return elems[0], nil
}

// Search for an element on the page, starting from the document root.
func (d *Driver) FindElement(ctx context.Context, by By) (*WebElement, error) {
	elems, err := d.findElements(ctx, "find element", FindElements, "", by)
	if err != nil {
		return nil, err
	}
	return firstElement(elems, by)
}

// Search for multiple elements on the page, starting from the document root.
func (d *Driver) FindElements(ctx context.Context, by By) ([]*WebElement, error) {
	return d.findElements(ctx, "find elements", FindElements, "", by)
}

// Get the element on the page that currently has focus.
func (d *Driver) ActiveElement(ctx context.Context) (*WebElement, error) {
	v, err := d.execute(ctx, "active element", GetActiveElement, "", nil)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("active element: %w: got %T", ErrMalformedResponse, v)
	}
	id, ok := elementID(m)
	if !ok {
		return nil, fmt.Errorf("active element: %w: not an element reference", ErrMalformedResponse)
	}
	return &WebElement{d: d, id: id}, nil
}

// Search for an element on the page, starting from the identified element.
func (e *WebElement) FindElement(ctx context.Context, by By) (*WebElement, error) {
	elems, err := e.d.findElements(ctx, "find element", FindChildElements, e.id, by)
	if err != nil {
		return nil, err
	}
	return firstElement(elems, by)
}

// Search for multiple elements on the page, starting from the identified element.
func (e *WebElement) FindElements(ctx context.Context, by By) ([]*WebElement, error) {
	return e.d.findElements(ctx, "find elements", FindChildElements, e.id, by)
}

// Execute sends an extension command scoped to this element.
func (e *WebElement) Execute(ctx context.Context, name CommandName, params *Params) (any, error) {
	v, err := e.d.execute(ctx, string(name), name, e.id, params)
	if err != nil {
		return nil, err
	}
	return e.d.fromWire(v), nil
}

// Click on an element.
func (e *WebElement) Click(ctx context.Context) error {
	_, err := e.d.execute(ctx, "click", ClickElement, e.id, nil)
	return err
}

// Submit a FORM element.
func (e *WebElement) Submit(ctx context.Context) error {
	_, err := e.d.execute(ctx, "submit", SubmitElement, e.id, nil)
	return err
}

// Clear a TEXTAREA or text INPUT element's value.
func (e *WebElement) Clear(ctx context.Context) error {
	_, err := e.d.execute(ctx, "clear", ClearElement, e.id, nil)
	return err
}

// Send a sequence of key strokes to an element.
func (e *WebElement) SendKeys(ctx context.Context, sequence string) error {
	_, err := e.d.execute(ctx, "send keys", SendKeysToElement, e.id, NewParams("value", splitKeys(sequence)))
	return err
}

// Returns the visible text for the element.
func (e *WebElement) Text(ctx context.Context) (string, error) {
	return e.d.executeString(ctx, "text", GetElementText, e.id, nil)
}

// Query for an element's tag name.
func (e *WebElement) TagName(ctx context.Context) (string, error) {
	return e.d.executeString(ctx, "tag name", GetElementTagName, e.id, nil)
}

// Get the value of an element's attribute. A missing attribute yields "".
func (e *WebElement) Attribute(ctx context.Context, name string) (string, error) {
	v, err := e.d.execute(ctx, "attribute", GetElementAttribute, e.id, NewParams("name", name))
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	default:
		return fmt.Sprint(x), nil
	}
}

// Query the value of an element's computed CSS property.
func (e *WebElement) CSSProperty(ctx context.Context, name string) (string, error) {
	return e.d.executeString(ctx, "css property", GetElementValueOfCSSProperty, e.id, NewParams("propertyName", name))
}

// Determine if an OPTION element, or an INPUT element of type checkbox or radiobutton is currently selected.
func (e *WebElement) IsSelected(ctx context.Context) (bool, error) {
	return e.d.executeBool(ctx, "is selected", IsElementSelected, e.id, nil)
}

// Select an OPTION element, or an INPUT element of type checkbox or radiobutton.
func (e *WebElement) Select(ctx context.Context) error {
	_, err := e.d.execute(ctx, "select", SetElementSelected, e.id, nil)
	return err
}

// Toggle whether an OPTION element, or an INPUT element of type checkbox is selected.
func (e *WebElement) Toggle(ctx context.Context) (bool, error) {
	v, err := e.d.execute(ctx, "toggle", ToggleElement, e.id, nil)
	if err != nil {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}

// Determine if an element is currently enabled.
func (e *WebElement) IsEnabled(ctx context.Context) (bool, error) {
	return e.d.executeBool(ctx, "is enabled", IsElementEnabled, e.id, nil)
}

// Determine if an element is currently displayed.
func (e *WebElement) IsDisplayed(ctx context.Context) (bool, error) {
	return e.d.executeBool(ctx, "is displayed", IsElementDisplayed, e.id, nil)
}

// Determine an element's location on the page.
// The point (0, 0) refers to the upper-left corner of the page.
func (e *WebElement) Location(ctx context.Context) (Position, error) {
	var position Position
	err := e.d.executeInto(ctx, "location", GetElementLocation, e.id, nil, &position)
	return position, err
}

// Determine an element's size in pixels.
func (e *WebElement) Size(ctx context.Context) (Size, error) {
	var size Size
	err := e.d.executeInto(ctx, "size", GetElementSize, e.id, nil, &size)
	return size, err
}

// Test if two element IDs refer to the same DOM element.
func (e *WebElement) Equal(ctx context.Context, other *WebElement) (bool, error) {
	if other == nil {
		return false, invalidArgument("equal", "nil element")
	}
	return e.d.executeBool(ctx, "equal", ElementEquals, e.id, NewParams("other", other.id))
}
