// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/var/log/wdctl.log")
	if cfg.Path != "/var/log/wdctl.log" {
		t.Errorf("Path = %q", cfg.Path)
	}
	if cfg.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Level)
	}
	if cfg.MaxSizeMB != 20 || cfg.MaxBackups != 3 || cfg.MaxAgeDays != 7 || !cfg.Compress {
		t.Errorf("unexpected rotation settings: %+v", cfg)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestNewLoggerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)
	logger.Debug("hidden")
	logger.Info("session started", "session", "abc")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level: %q", out)
	}
	if !strings.Contains(out, "session=abc") {
		t.Errorf("output = %q, want session=abc", out)
	}
}

func TestOpenWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wdctl.log")
	cfg := DefaultConfig(path)
	cfg.Compress = false

	logger, closer, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	logger.Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(buf), "msg=hello") {
		t.Errorf("log file = %q", buf)
	}
}

func TestOpenFallback(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := Open(Config{Level: "debug"}, &buf)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer closer.Close()
	logger.Debug("ping")
	if !strings.Contains(buf.String(), "msg=ping") {
		t.Errorf("fallback output = %q", buf.String())
	}
}

func TestOpenRejectsUnknownLevel(t *testing.T) {
	if _, _, err := Open(Config{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Fatal("Open() succeeded with unknown level")
	}
}
