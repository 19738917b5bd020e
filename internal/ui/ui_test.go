// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	color.NoColor = true
	var buf bytes.Buffer
	old := Output
	Output = &buf
	t.Cleanup(func() {
		Output = old
		color.NoColor = false
	})
	return &buf
}

func TestStateBadge(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		state    string
		contains string
	}{
		{"active", "● Active"},
		{"ended", "○ Ended"},
		{"no session", "○ No Session"},
		{"", "○ No Session"},
	}
	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			if got := StateBadge(tt.state); !strings.Contains(got, tt.contains) {
				t.Errorf("StateBadge(%q) = %q, want to contain %q", tt.state, got, tt.contains)
			}
		})
	}
}

func TestPrintSessionList(t *testing.T) {
	buf := captureOutput(t)

	PrintSessionList([]SessionInfo{
		{Name: "default", ID: "s-1", URL: "http://127.0.0.1:9515", Browser: "chrome", CreatedAt: "2024-01-02", Current: true},
		{Name: "other", ID: "s-2", URL: "http://127.0.0.1:4444/wd/hub", Browser: "firefox", CreatedAt: "2024-01-03"},
	})

	out := buf.String()
	for _, want := range []string{"Sessions:", "* default s-1", "other s-2", "(firefox, 2024-01-03)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSessionListEmpty(t *testing.T) {
	buf := captureOutput(t)
	PrintSessionList(nil)
	if got := buf.String(); got != "No sessions.\n" {
		t.Errorf("output = %q", got)
	}
}

func TestPrintSession(t *testing.T) {
	buf := captureOutput(t)
	PrintSession(SessionInfo{Name: "default", ID: "s-1", URL: "http://x"}, "active")

	out := buf.String()
	if !strings.Contains(out, "ID: s-1") || !strings.Contains(out, "● Active") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "Browser:") {
		t.Errorf("empty browser printed: %q", out)
	}
}

func TestPrintElements(t *testing.T) {
	buf := captureOutput(t)
	PrintElements([]string{"e-1", "e-2"})
	if got := buf.String(); got != "[0] e-1\n[1] e-2\n" {
		t.Errorf("output = %q", got)
	}
}

func TestPrintMessages(t *testing.T) {
	tests := []struct {
		name  string
		print func(string)
		want  string
	}{
		{"success", PrintSuccess, "✓ done\n"},
		{"error", PrintError, "✗ done\n"},
		{"warning", PrintWarning, "⚠ done\n"},
		{"info", PrintInfo, "• done\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureOutput(t)
			tt.print("done")
			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}
