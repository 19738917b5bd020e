// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"

	"github.com/fedesog/webdriver/v2"
	"github.com/fedesog/webdriver/v2/internal/sessionstore"
)

// Exit codes for CLI commands.
const (
	exitSuccess       = 0
	exitError         = 1
	exitNoSession     = 2
	exitNotFound      = 3
	exitUnreachable   = 4
	exitScriptFailed  = 5
	exitInvalidConfig = 6
)

// ExitError represents an error that should cause the process to exit with a specific code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

func errNoSession() *ExitError {
	return &ExitError{
		Code:    exitNoSession,
		Message: "no session selected. Run: wdctl session new",
	}
}

func errSessionNotFound(name string) *ExitError {
	return &ExitError{
		Code:    exitNoSession,
		Message: fmt.Sprintf("session '%s' not found", name),
	}
}

func errInvalidConfig(err error) *ExitError {
	return &ExitError{
		Code:    exitInvalidConfig,
		Message: fmt.Sprintf("invalid configuration: %v", err),
	}
}

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, sessionstore.ErrNotFound):
		return exitNoSession
	case errors.Is(err, webdriver.ErrNoResponse):
		return exitUnreachable
	case errors.Is(err, webdriver.ErrNotFound), errors.Is(err, webdriver.ErrStaleElement):
		return exitNotFound
	case errors.Is(err, webdriver.ErrInvalidOperation):
		return exitScriptFailed
	}
	return exitError
}
