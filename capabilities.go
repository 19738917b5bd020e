// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import "maps"

// Capabilities is a map that stores capabilities of a session.
type Capabilities map[string]any

func (c Capabilities) str(key string) string {
	s, _ := c[key].(string)
	return s
}

func (c Capabilities) BrowserName() string { return c.str("browserName") }
func (c Capabilities) Version() string     { return c.str("version") }
func (c Capabilities) Platform() string    { return c.str("platform") }

// JavascriptEnabled reports the "javascriptEnabled" capability. Servers
// that omit it are assumed to run scripts.
func (c Capabilities) JavascriptEnabled() bool {
	v, ok := c["javascriptEnabled"].(bool)
	return !ok || v
}

// Merge returns a copy of c overlaid with other.
func (c Capabilities) Merge(other Capabilities) Capabilities {
	out := make(Capabilities, len(c)+len(other))
	maps.Copy(out, c)
	maps.Copy(out, other)
	return out
}

// SessionInfo describes a session known to the remote end.
type SessionInfo struct {
	ID           string       `json:"id"`
	Capabilities Capabilities `json:"capabilities"`
}

// Server details.
type ServerStatus struct {
	Build Build `json:"build"`
	OS    OS    `json:"os"`
}

// Server built details.
type Build struct {
	Version  string `json:"version"`
	Revision string `json:"revision"`
	Time     string `json:"time"`
}

// Server OS details
type OS struct {
	Arch    string `json:"arch"`
	Name    string `json:"name"`
	Version string `json:"version"`
}
