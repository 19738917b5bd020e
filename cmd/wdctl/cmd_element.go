// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"

	"github.com/fedesog/webdriver/v2"
	"github.com/fedesog/webdriver/v2/internal/ui"
)

var strategies = map[string]webdriver.FindElementStrategy{
	"id":           webdriver.ID,
	"name":         webdriver.Name,
	"class":        webdriver.ClassName,
	"css":          webdriver.CSS_Selector,
	"link":         webdriver.LinkText,
	"partial-link": webdriver.PartialLinkText,
	"tag":          webdriver.TagName,
	"xpath":        webdriver.XPath,
}

type FindCmd struct {
	Using string `arg:"" enum:"id,name,class,css,link,partial-link,tag,xpath" help:"Strategy: id, name, class, css, link, partial-link, tag, xpath"`
	Value string `arg:"" help:"Value searched for"`
	All   bool   `short:"a" help:"Print every match instead of the first"`
	From  string `help:"Search below the element with this id"`
}

func (c *FindCmd) Run(ctx context.Context, e *env) error {
	by := webdriver.By{Using: strategies[c.Using], Value: c.Value}
	return withDriver(ctx, e, func(d *webdriver.Driver) error {
		if c.All {
			var (
				elems []*webdriver.WebElement
				err   error
			)
			if c.From != "" {
				elems, err = d.ElementFromID(c.From).FindElements(ctx, by)
			} else {
				elems, err = d.FindElements(ctx, by)
			}
			if err != nil {
				return err
			}
			ui.PrintElements(elementIDs(elems))
			return nil
		}
		var (
			elem *webdriver.WebElement
			err  error
		)
		if c.From != "" {
			elem, err = d.ElementFromID(c.From).FindElement(ctx, by)
		} else {
			elem, err = d.FindElement(ctx, by)
		}
		if err != nil {
			return fmt.Errorf("find %s: %w", by, err)
		}
		ui.PrintValue(elem.ID())
		return nil
	})
}

type ClickCmd struct {
	ID string `arg:"" help:"Element id, as printed by find"`
}

func (c *ClickCmd) Run(ctx context.Context, e *env) error {
	return withDriver(ctx, e, func(d *webdriver.Driver) error {
		return d.ElementFromID(c.ID).Click(ctx)
	})
}

type TextCmd struct {
	ID string `arg:"" help:"Element id, as printed by find"`
}

func (c *TextCmd) Run(ctx context.Context, e *env) error {
	return withDriver(ctx, e, func(d *webdriver.Driver) error {
		text, err := d.ElementFromID(c.ID).Text(ctx)
		if err != nil {
			return err
		}
		ui.PrintValue(text)
		return nil
	})
}
