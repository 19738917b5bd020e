// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/fedesog/webdriver/v2/internal/sessionstore"
	"github.com/posener/complete"
)

func TestCompleteSessions(t *testing.T) {
	// Arrange: a file store with a few sessions
	dir := t.TempDir()
	storePath := filepath.Join(dir, "sessions.yaml")
	store := sessionstore.NewFileStore(storePath)
	ctx := context.Background()
	for _, name := range []string{"work", "demo", "wiki"} {
		if err := store.Save(ctx, sessionstore.Record{Name: name, ID: "id-" + name, URL: "http://x"}); err != nil {
			t.Fatalf("failed to save session: %v", err)
		}
	}
	cfg := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfg, []byte("store:\n  path: "+storePath+"\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	tests := []struct {
		name    string
		partial string
		want    []string
	}{
		{"no filter", "", []string{"demo", "wiki", "work"}},
		{"partial match", "w", []string{"wiki", "work"}},
		{"exact", "demo", []string{"demo"}},
		{"no match", "xyz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := completeSessions(ctx, openSessionNames(cfg), tt.partial)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("completeSessions(%q) = %v, want %v", tt.partial, got, tt.want)
			}
		})
	}
}

func TestSessionPredictor(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "sessions.yaml")
	if err := sessionstore.NewFileStore(storePath).Save(context.Background(),
		sessionstore.Record{Name: "main", ID: "1", URL: "http://x"}); err != nil {
		t.Fatalf("failed to save session: %v", err)
	}
	cfg := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfg, []byte("store:\n  path: "+storePath+"\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	p := newSessionPredictor(openSessionNames(cfg))
	if got := p.Predict(complete.Args{Last: "m"}); !reflect.DeepEqual(got, []string{"main"}) {
		t.Errorf("Predict() = %v", got)
	}
}

func TestCompleteSessionsStoreError(t *testing.T) {
	open := func(ctx context.Context) (sessionLister, error) {
		return nil, errors.New("redis down")
	}
	if got := completeSessions(context.Background(), open, ""); got != nil {
		t.Errorf("completeSessions() = %v, want nil", got)
	}
}

func TestCommandPredictor(t *testing.T) {
	got := newCommandPredictor().Predict(complete.Args{Last: "getElementT"})
	want := []string{"getElementTagName", "getElementText"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Predict() = %v, want %v", got, want)
	}
}
