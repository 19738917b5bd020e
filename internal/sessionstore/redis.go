// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "wdctl:session:"
	keySessions = "wdctl:sessions"
	keyCurrent  = "wdctl:current"
)

// RedisStore keeps sessions in Redis hashes so several hosts can share
// them. Records expire after the configured TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(ctx context.Context, addr string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func sessionKey(name string) string { return keyPrefix + name }

func toFields(rec Record) (map[string]any, error) {
	caps, err := json.Marshal(rec.Capabilities)
	if err != nil {
		return nil, fmt.Errorf("encode capabilities: %w", err)
	}
	return map[string]any{
		"name":         rec.Name,
		"id":           rec.ID,
		"url":          rec.URL,
		"browser":      rec.Browser,
		"capabilities": string(caps),
		"created_at":   rec.CreatedAt.Format(time.RFC3339),
	}, nil
}

func fromFields(data map[string]string) Record {
	rec := Record{
		Name:    data["name"],
		ID:      data["id"],
		URL:     data["url"],
		Browser: data["browser"],
	}
	if s := data["capabilities"]; s != "" && s != "null" {
		json.Unmarshal([]byte(s), &rec.Capabilities)
	}
	if t, err := time.Parse(time.RFC3339, data["created_at"]); err == nil {
		rec.CreatedAt = t
	}
	return rec
}

func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	fields, err := toFields(rec)
	if err != nil {
		return err
	}
	key := sessionKey(rec.Name)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		pipe.SAdd(ctx, keySessions, rec.Name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, name string) (Record, error) {
	data, err := s.client.HGetAll(ctx, sessionKey(name)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("failed to get session: %w", err)
	}
	if len(data) == 0 {
		return Record{}, notFound(name)
	}
	return fromFields(data), nil
}

// List returns the sessions sorted by name. Names whose hash expired are
// pruned from the index.
func (s *RedisStore) List(ctx context.Context) ([]Record, error) {
	names, err := s.client.SMembers(ctx, keySessions).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	sort.Strings(names)
	records := make([]Record, 0, len(names))
	for _, name := range names {
		rec, err := s.Get(ctx, name)
		if err != nil {
			s.client.SRem(ctx, keySessions, name)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	n, err := s.client.Del(ctx, sessionKey(name)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.client.SRem(ctx, keySessions, name)
	if cur, _ := s.client.Get(ctx, keyCurrent).Result(); cur == name {
		s.client.Del(ctx, keyCurrent)
	}
	if n == 0 {
		return notFound(name)
	}
	return nil
}

func (s *RedisStore) SetCurrent(ctx context.Context, name string) error {
	n, err := s.client.Exists(ctx, sessionKey(name)).Result()
	if err != nil {
		return fmt.Errorf("failed to select session: %w", err)
	}
	if n == 0 {
		return notFound(name)
	}
	return s.client.Set(ctx, keyCurrent, name, 0).Err()
}

func (s *RedisStore) Current(ctx context.Context) (string, error) {
	name, err := s.client.Get(ctx, keyCurrent).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get current session: %w", err)
	}
	return name, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
