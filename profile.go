// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"encoding/base64"
	"fmt"
	"maps"
	"os"
)

// Profile holds the browser specific hooks of a Driver: extension commands
// registered on the executor router, and a translation applied to the
// desired capabilities before a session is created.
type Profile struct {
	Name      string
	Commands  map[CommandName]CommandInfo
	Translate func(Capabilities) (Capabilities, error)
}

// Chromium extension commands.
const (
	LaunchApp               CommandName = "launchApp"
	GetNetworkConditions    CommandName = "getNetworkConditions"
	SetNetworkConditions    CommandName = "setNetworkConditions"
	DeleteNetworkConditions CommandName = "deleteNetworkConditions"
	ExecuteCdpCommand       CommandName = "executeCdpCommand"
)

// Firefox extension commands.
const (
	GetContext         CommandName = "getContext"
	SetContext         CommandName = "setContext"
	InstallAddon       CommandName = "installAddon"
	UninstallAddon     CommandName = "uninstallAddon"
	FullPageScreenshot CommandName = "fullPageScreenshot"
)

type ChromeOptions struct {
	// Binary is the browser executable. Default: the one found by chromedriver.
	Binary string
	// Args are passed to the browser on start.
	Args []string
	// Extensions are paths of packed (.crx) extensions to install.
	Extensions []string
}

// ChromeProfile returns the hooks for chromedriver. Options are merged
// into the "chromeOptions" capability.
func ChromeProfile(opts ChromeOptions) Profile {
	return Profile{
		Name: "chrome",
		Commands: map[CommandName]CommandInfo{
			LaunchApp:               {"POST", "/session/{sessionId}/chromium/launch_app"},
			GetNetworkConditions:    {"GET", "/session/{sessionId}/chromium/network_conditions"},
			SetNetworkConditions:    {"POST", "/session/{sessionId}/chromium/network_conditions"},
			DeleteNetworkConditions: {"DELETE", "/session/{sessionId}/chromium/network_conditions"},
			ExecuteCdpCommand:       {"POST", "/session/{sessionId}/goog/cdp/execute"},
		},
		Translate: func(caps Capabilities) (Capabilities, error) {
			if _, ok := caps["browserName"]; !ok {
				caps["browserName"] = "chrome"
			}
			chromeOptions := map[string]any{}
			if existing, ok := caps["chromeOptions"].(map[string]any); ok {
				chromeOptions = maps.Clone(existing)
			}
			if opts.Binary != "" {
				chromeOptions["binary"] = opts.Binary
			}
			if len(opts.Args) > 0 {
				args, _ := chromeOptions["args"].([]any)
				for _, a := range opts.Args {
					args = append(args, a)
				}
				chromeOptions["args"] = args
			}
			if len(opts.Extensions) > 0 {
				exts, _ := chromeOptions["extensions"].([]any)
				for _, path := range opts.Extensions {
					buf, err := os.ReadFile(path)
					if err != nil {
						return nil, fmt.Errorf("read extension: %w", err)
					}
					exts = append(exts, base64.StdEncoding.EncodeToString(buf))
				}
				chromeOptions["extensions"] = exts
			}
			if len(chromeOptions) > 0 {
				caps["chromeOptions"] = chromeOptions
			}
			return caps, nil
		},
	}
}

// FirefoxProfile returns the hooks for the Firefox driver. A non-nil dir
// is packed into the "firefox_profile" capability.
func FirefoxProfile(dir *FirefoxProfileDir) Profile {
	return Profile{
		Name: "firefox",
		Commands: map[CommandName]CommandInfo{
			GetContext:         {"GET", "/session/{sessionId}/moz/context"},
			SetContext:         {"POST", "/session/{sessionId}/moz/context"},
			InstallAddon:       {"POST", "/session/{sessionId}/moz/addon/install"},
			UninstallAddon:     {"POST", "/session/{sessionId}/moz/addon/uninstall"},
			FullPageScreenshot: {"GET", "/session/{sessionId}/moz/screenshot/full"},
		},
		Translate: func(caps Capabilities) (Capabilities, error) {
			if _, ok := caps["browserName"]; !ok {
				caps["browserName"] = "firefox"
			}
			if dir == nil {
				return caps, nil
			}
			encoded, err := dir.Encode()
			if err != nil {
				return nil, err
			}
			caps["firefox_profile"] = encoded
			return caps, nil
		},
	}
}
