// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logging builds the slog loggers used by wdctl, with optional
// file rotation.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds log file configuration.
type Config struct {
	Path       string // Log file path, "" writes to the fallback writer
	Level      string // debug, info, warn or error
	MaxSizeMB  int    // Max size in MB before rotation
	MaxBackups int    // Number of old files to keep
	MaxAgeDays int    // Max age in days
	Compress   bool   // Compress old files
}

func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		Level:      "info",
		MaxSizeMB:  20,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// NewRotatingWriter creates a log writer with rotation support.
func NewRotatingWriter(cfg Config) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// NewLogger creates a structured logger that writes to the given writer.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// Open returns a logger for cfg. When cfg.Path is empty it writes to
// fallback. The returned closer must be closed on exit.
func Open(cfg Config, fallback io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Path == "" {
		return NewLogger(fallback, level), io.NopCloser(nil), nil
	}
	w := NewRotatingWriter(cfg)
	return NewLogger(w, level), w, nil
}
