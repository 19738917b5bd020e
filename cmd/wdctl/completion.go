// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/posener/complete"
)

// sessionPredictor completes stored session names.
type sessionPredictor struct {
	open func(ctx context.Context) (sessionLister, error)
}

// sessionLister is the part of a session store the predictor needs.
type sessionLister interface {
	names(ctx context.Context) ([]string, error)
	Close() error
}

func newSessionPredictor(open func(ctx context.Context) (sessionLister, error)) complete.Predictor {
	return &sessionPredictor{open: open}
}

// Predict implements complete.Predictor interface.
func (p *sessionPredictor) Predict(args complete.Args) []string {
	// Predictor has no context; bound the store lookup so a dead redis
	// does not hang the shell.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return completeSessions(ctx, p.open, args.Last)
}

func completeSessions(ctx context.Context, open func(ctx context.Context) (sessionLister, error), partial string) []string {
	store, err := open(ctx)
	if err != nil {
		return nil
	}
	defer store.Close()
	names, err := store.names(ctx)
	if err != nil {
		return nil
	}
	var results []string
	for _, name := range names {
		if strings.HasPrefix(name, partial) {
			results = append(results, name)
		}
	}
	sort.Strings(results)
	return results
}
