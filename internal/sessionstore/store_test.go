// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sessionstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// exerciseStore runs the behavior every backend shares.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := s.Save(ctx, Record{Name: "b", ID: "id-b", URL: "http://b", CreatedAt: created}); err != nil {
		t.Fatalf("Save(b) error = %v", err)
	}
	if err := s.Save(ctx, Record{Name: "a", ID: "id-a", URL: "http://a", Browser: "chrome",
		Capabilities: map[string]any{"browserName": "chrome"}, CreatedAt: created}); err != nil {
		t.Fatalf("Save(a) error = %v", err)
	}

	rec, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get(a) error = %v", err)
	}
	if rec.ID != "id-a" || rec.Browser != "chrome" || rec.Capabilities["browserName"] != "chrome" {
		t.Errorf("Get(a) = %+v", rec)
	}
	if !rec.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", rec.CreatedAt, created)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Name != "a" || list[1].Name != "b" {
		t.Errorf("List() = %+v", list)
	}

	// replacing keeps one record per name
	if err := s.Save(ctx, Record{Name: "b", ID: "id-b2", URL: "http://b"}); err != nil {
		t.Fatalf("Save(b) error = %v", err)
	}
	if rec, _ := s.Get(ctx, "b"); rec.ID != "id-b2" {
		t.Errorf("Get(b).ID = %q, want id-b2", rec.ID)
	}

	if cur, err := s.Current(ctx); err != nil || cur != "" {
		t.Errorf("Current() = %q, %v; want empty", cur, err)
	}
	if err := s.SetCurrent(ctx, "a"); err != nil {
		t.Fatalf("SetCurrent(a) error = %v", err)
	}
	if cur, _ := s.Current(ctx); cur != "a" {
		t.Errorf("Current() = %q, want a", cur)
	}
	if err := s.SetCurrent(ctx, "zz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetCurrent(zz) error = %v, want ErrNotFound", err)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete(a) error = %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(a) after delete error = %v", err)
	}
	if cur, _ := s.Current(ctx); cur != "" {
		t.Errorf("Current() after delete = %q", cur)
	}
	if err := s.Delete(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete(a) error = %v", err)
	}

	if err := s.Save(ctx, Record{Name: "", ID: "x"}); err == nil {
		t.Error("Save without name succeeded")
	}
	if err := s.Save(ctx, Record{Name: "x"}); err == nil {
		t.Error("Save without id succeeded")
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sessions.yaml")
	s := NewFileStore(path)
	defer s.Close()
	exerciseStore(t, s)

	if _, err := os.Stat(path); err != nil {
		t.Errorf("sessions file not written: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}
}

func TestFileStoreEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "sessions.yaml"))
	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List() = %v, want empty", list)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.yaml")
	if err := os.WriteFile(path, []byte("sessions: {not: [a list"), 0600); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)
	if _, err := s.List(context.Background()); err == nil {
		t.Fatal("List() succeeded on a corrupt file")
	}
}

func TestRedisFields(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := Record{Name: "a", ID: "id-a", URL: "http://a", Browser: "firefox",
		Capabilities: map[string]any{"javascriptEnabled": true}, CreatedAt: created}

	fields, err := toFields(rec)
	if err != nil {
		t.Fatalf("toFields() error = %v", err)
	}
	data := make(map[string]string, len(fields))
	for k, v := range fields {
		data[k] = v.(string)
	}
	got := fromFields(data)
	if got.Name != rec.Name || got.ID != rec.ID || got.URL != rec.URL || got.Browser != rec.Browser {
		t.Errorf("fromFields() = %+v", got)
	}
	if got.Capabilities["javascriptEnabled"] != true {
		t.Errorf("Capabilities = %v", got.Capabilities)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v", got.CreatedAt)
	}
}

func TestRedisFieldsNoCapabilities(t *testing.T) {
	fields, err := toFields(Record{Name: "a", ID: "id"})
	if err != nil {
		t.Fatal(err)
	}
	if fields["capabilities"] != "null" {
		t.Errorf("capabilities field = %v", fields["capabilities"])
	}
	got := fromFields(map[string]string{"name": "a", "id": "id", "capabilities": "null"})
	if got.Capabilities != nil {
		t.Errorf("Capabilities = %v, want nil", got.Capabilities)
	}
}

// TestRedisStore needs a disposable server, e.g.
// WDCTL_TEST_REDIS_ADDR=127.0.0.1:6379 go test ./internal/sessionstore
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("WDCTL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("WDCTL_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, addr, 15, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer s.Close()
	if err := s.client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("FlushDB() error = %v", err)
	}
	exerciseStore(t, s)
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedisStore(ctx, "127.0.0.1:1", 0, time.Minute); err == nil {
		t.Fatal("NewRedisStore() succeeded against a closed port")
	}
}
