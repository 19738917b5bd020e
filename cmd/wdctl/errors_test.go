// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fedesog/webdriver/v2"
	"github.com/fedesog/webdriver/v2/internal/sessionstore"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"plain", errors.New("boom"), exitError},
		{"exit error", errNoSession(), exitNoSession},
		{"wrapped exit error", fmt.Errorf("x: %w", errInvalidConfig(errors.New("bad"))), exitInvalidConfig},
		{"store not found", fmt.Errorf("get: %w", sessionstore.ErrNotFound), exitNoSession},
		{"no such element", webdriver.Classify(&webdriver.Response{Status: webdriver.NoSuchElement}), exitNotFound},
		{"stale element", webdriver.Classify(&webdriver.Response{Status: webdriver.StaleElementReference}), exitNotFound},
		{"script error", webdriver.Classify(&webdriver.Response{Status: webdriver.JavaScriptError}), exitScriptFailed},
		{"no response", &webdriver.TransportError{Err: errors.New("refused")}, exitUnreachable},
		{"timeout", webdriver.Classify(&webdriver.Response{Status: webdriver.Timeout}), exitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitErrorMessage(t *testing.T) {
	err := errSessionNotFound("demo")
	if err.Error() != "session 'demo' not found" {
		t.Errorf("Error() = %q", err.Error())
	}
}
