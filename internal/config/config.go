// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads wdctl settings from defaults, an optional YAML
// file and WDCTL_ environment variables, in that order.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

type Config struct {
	Remote       RemoteConfig   `koanf:"remote"`
	Log          LogConfig      `koanf:"log"`
	Store        StoreConfig    `koanf:"store"`
	Service      ServiceConfig  `koanf:"service"`
	Capabilities map[string]any `koanf:"capabilities"`
}

type RemoteConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

type LogConfig struct {
	Path  string `koanf:"path"`
	Level string `koanf:"level"`
}

type StoreConfig struct {
	Backend   string        `koanf:"backend"`
	Path      string        `koanf:"path"`
	RedisAddr string        `koanf:"redis_addr"`
	RedisDB   int           `koanf:"redis_db"`
	TTL       time.Duration `koanf:"ttl"`
}

type ServiceConfig struct {
	Path         string        `koanf:"path"`
	Output       string        `koanf:"output"`
	StartTimeout time.Duration `koanf:"start_timeout"`
}

// DefaultPath is the config file read when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads the configuration. A missing file at configPath is not an
// error; an unreadable or invalid one is.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Store.Path = expandPath(cfg.Store.Path)
	cfg.Log.Path = expandPath(cfg.Log.Path)
	return &cfg, nil
}

// envKey maps WDCTL_REMOTE__URL to remote.url.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Remote.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("remote.url must be an http(s) URL: %q", c.Remote.URL)
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("remote.timeout must be positive")
	}
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the file backend")
		}
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown store backend: %s (supported: %s, %s)",
			c.Store.Backend, BackendFile, BackendRedis)
	}
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
