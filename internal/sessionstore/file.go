// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

type fileData struct {
	Current  string   `yaml:"current,omitempty"`
	Sessions []Record `yaml:"sessions"`
}

// FileStore keeps sessions in a YAML file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (*fileData, error) {
	data := &fileData{}
	buf, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	if err := yaml.Unmarshal(buf, data); err != nil {
		return nil, fmt.Errorf("parse sessions %s: %w", s.path, err)
	}
	return data, nil
}

// store writes to a temporary file first so a failed write keeps the old
// content.
func (s *FileStore) store(data *fileData) error {
	buf, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("write sessions: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0600); err != nil {
		return fmt.Errorf("write sessions: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write sessions: %w", err)
	}
	return nil
}

func (s *FileStore) Save(_ context.Context, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range data.Sessions {
		if data.Sessions[i].Name == rec.Name {
			data.Sessions[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		data.Sessions = append(data.Sessions, rec)
	}
	return s.store(data)
}

func (s *FileStore) Get(_ context.Context, name string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return Record{}, err
	}
	for _, rec := range data.Sessions {
		if rec.Name == name {
			return rec, nil
		}
	}
	return Record{}, notFound(name)
}

// List returns the sessions sorted by name.
func (s *FileStore) List(_ context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return nil, err
	}
	sort.Slice(data.Sessions, func(i, j int) bool { return data.Sessions[i].Name < data.Sessions[j].Name })
	return data.Sessions, nil
}

func (s *FileStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	for i, rec := range data.Sessions {
		if rec.Name == name {
			data.Sessions = append(data.Sessions[:i], data.Sessions[i+1:]...)
			if data.Current == name {
				data.Current = ""
			}
			return s.store(data)
		}
	}
	return notFound(name)
}

func (s *FileStore) SetCurrent(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	for _, rec := range data.Sessions {
		if rec.Name == name {
			data.Current = name
			return s.store(data)
		}
	}
	return notFound(name)
}

func (s *FileStore) Current(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return "", err
	}
	return data.Current, nil
}

func (s *FileStore) Close() error { return nil }
