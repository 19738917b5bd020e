// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sessionstore persists the remote sessions opened by wdctl so
// later invocations can attach to them.
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Record is one stored session.
type Record struct {
	Name         string         `yaml:"name"`
	ID           string         `yaml:"id"`
	URL          string         `yaml:"url"`
	Browser      string         `yaml:"browser,omitempty"`
	Capabilities map[string]any `yaml:"capabilities,omitempty"`
	CreatedAt    time.Time      `yaml:"created_at"`
}

// Store is implemented by the file and redis backends.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Get(ctx context.Context, name string) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, name string) error
	// SetCurrent selects the session used when none is named.
	SetCurrent(ctx context.Context, name string) error
	// Current returns the selected session name, "" if none.
	Current(ctx context.Context) (string, error)
	Close() error
}

func notFound(name string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

func validate(rec Record) error {
	if rec.Name == "" {
		return errors.New("session name is required")
	}
	if rec.ID == "" {
		return errors.New("session id is required")
	}
	return nil
}
