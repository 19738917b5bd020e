// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/providers/confmap"
)

// EnvPrefix is the prefix of environment overrides. Nesting uses a
// double underscore: WDCTL_STORE__REDIS_ADDR sets store.redis_addr.
const EnvPrefix = "WDCTL_"

// Dir returns the directory holding the config and session files.
func Dir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "wdctl")
	}
	return ".wdctl"
}

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"remote": map[string]interface{}{
			"url":     "http://127.0.0.1:4444/wd/hub",
			"timeout": "15s",
		},
		"log": map[string]interface{}{
			"path":  "",
			"level": "info",
		},
		"store": map[string]interface{}{
			"backend":    "file",
			"path":       filepath.Join(Dir(), "sessions.yaml"),
			"redis_addr": "127.0.0.1:6379",
			"redis_db":   0,
			"ttl":        "24h",
		},
		"service": map[string]interface{}{
			"path":          "chromedriver",
			"output":        "",
			"start_timeout": "20s",
		},
		"capabilities": map[string]interface{}{},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}
