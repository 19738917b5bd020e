// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// QueueState is the scheduling state of a Queue.
type QueueState int

const (
	// QueueIdle has nothing pending.
	QueueIdle QueueState = iota
	// QueueReady has pending entries and will run them.
	QueueReady
	// QueuePaused will not dequeue until Resume.
	QueuePaused
	// QueueError halts after a failure until ClearError.
	QueueError
)

func (s QueueState) String() string {
	switch s {
	case QueueIdle:
		return "idle"
	case QueueReady:
		return "ready"
	case QueuePaused:
		return "paused"
	case QueueError:
		return "error"
	}
	return fmt.Sprintf("QueueState(%d)", int(s))
}

type EventType int

const (
	EventIdle EventType = iota
	EventReady
	EventPaused
	EventResumed
	EventResponse
	EventError
)

// Event is delivered to listeners registered with On.
type Event struct {
	Type     EventType
	Response *Response
	Err      error
}

// ErrNoErrorRaised is returned when a command bracketed by
// ExpectErrorFromPreviousCommand succeeds.
var ErrNoErrorRaised = errors.New("webdriver: expected an error but none were raised")

// Future is the eventual result of a queued entry. A Future can be
// passed as a command parameter; it is resolved when the command is sent.
type Future struct {
	done  chan struct{}
	once  sync.Once
	value any
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(v any, err error) {
	f.once.Do(func() {
		f.value, f.err = v, err
		close(f.done)
	})
}

// Done is closed once the entry has run or was discarded.
func (f *Future) Done() <-chan struct{} { return f.done }

// Value returns the result without waiting. Before resolution it fails
// with ErrUnresolvedFuture.
func (f *Future) Value() (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
		return nil, ErrUnresolvedFuture
	}
}

func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type entryKind int

const (
	entrySleep entryKind = iota
	entryFunc
	entryCommand
	entryExpectBegin
	entryExpectEnd
)

type entry struct {
	kind      entryKind
	delay     time.Duration
	fn        func(prev *Response) (any, error)
	name      CommandName
	elementID string
	params    *Params
	message   string
	future    *Future
}

// Queue runs driver commands one at a time in FIFO order on a single
// worker goroutine. Callers enqueue work and continue; results arrive
// through Futures and events.
type Queue struct {
	d      *Driver
	ctx    context.Context
	logger *slog.Logger

	mu        sync.Mutex
	pending   []*entry
	state     QueueState
	paused    bool
	running   bool
	last      *Response
	lastErr   error
	expecting bool
	swallowed bool
	changed   chan struct{}
	listeners map[EventType]map[int]func(Event)
	nextID    int
}

type QueueOption func(*Queue)

// WithQueueContext sets the context commands are sent with.
func WithQueueContext(ctx context.Context) QueueOption {
	return func(q *Queue) { q.ctx = ctx }
}

func WithQueueLogger(l *slog.Logger) QueueOption {
	return func(q *Queue) { q.logger = l }
}

func NewQueue(d *Driver, opts ...QueueOption) *Queue {
	q := &Queue{
		d:         d,
		ctx:       context.Background(),
		logger:    d.logger,
		changed:   make(chan struct{}),
		listeners: make(map[EventType]map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Queue) State() QueueState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Len returns the number of entries not yet started.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// On registers fn for events of type t. The returned func removes it.
func (q *Queue) On(t EventType, fn func(Event)) (remove func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := q.nextID
	q.nextID++
	if q.listeners[t] == nil {
		q.listeners[t] = make(map[int]func(Event))
	}
	q.listeners[t][id] = fn
	return func() {
		q.mu.Lock()
		delete(q.listeners[t], id)
		q.mu.Unlock()
	}
}

// Sleep enqueues a pause of the worker. Callers are not blocked.
func (q *Queue) Sleep(delay time.Duration) *Future {
	return q.add(&entry{kind: entrySleep, delay: delay})
}

// AddFunc enqueues fn. It is called with the previous response; its
// result becomes the new response and an error fails the queue.
func (q *Queue) AddFunc(fn func(prev *Response) (any, error)) *Future {
	return q.add(&entry{kind: entryFunc, fn: fn})
}

// AddCommand enqueues a session command. Futures among params are
// resolved when the command is sent.
func (q *Queue) AddCommand(name CommandName, elementID string, params *Params) *Future {
	return q.add(&entry{kind: entryCommand, name: name, elementID: elementID, params: params})
}

func (q *Queue) add(e *entry) *Future {
	e.future = newFuture()
	q.mu.Lock()
	q.pending = append(q.pending, e)
	var events []Event
	if q.state == QueueIdle && !q.paused {
		events = append(events, q.setState(QueueReady))
	}
	q.startLocked()
	q.mu.Unlock()
	q.emit(events)
	return e.future
}

// ExpectErrorFromPreviousCommand brackets the most recently added pending
// entry: one error from it is swallowed, and its success is turned into a
// failure wrapping ErrNoErrorRaised.
func (q *Queue) ExpectErrorFromPreviousCommand(message string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.pending)
	if n == 0 {
		return invalidState("expect error", "no pending command to bracket")
	}
	target := q.pending[n-1]
	begin := &entry{kind: entryExpectBegin, future: newFuture()}
	end := &entry{kind: entryExpectEnd, message: message, future: newFuture()}
	q.pending = append(q.pending[:n-1], begin, target, end)
	return nil
}

// Pause stops the worker before its next dequeue. A command in flight
// is not interrupted.
func (q *Queue) Pause() {
	q.mu.Lock()
	var events []Event
	if !q.paused {
		q.paused = true
		if q.state != QueueError {
			events = append(events, q.setState(QueuePaused))
		}
	}
	q.mu.Unlock()
	q.emit(events)
}

func (q *Queue) Resume() {
	q.mu.Lock()
	var events []Event
	if q.paused {
		q.paused = false
		if q.state != QueueError {
			events = append(events, Event{Type: EventResumed})
			if len(q.pending) > 0 {
				events = append(events, q.setState(QueueReady))
			} else if q.state != QueueIdle {
				events = append(events, q.setState(QueueIdle))
			}
		}
		q.startLocked()
	}
	q.mu.Unlock()
	q.emit(events)
}

// ClearError leaves QueueError. With resume the pending entries run;
// without it they are discarded. A queue paused while in error stays
// paused until Resume.
func (q *Queue) ClearError(resume bool) error {
	q.mu.Lock()
	if q.state != QueueError {
		q.mu.Unlock()
		return invalidState("clear error", "queue is "+q.state.String())
	}
	q.lastErr = nil
	var events []Event
	var discarded []*entry
	if !resume {
		discarded = q.pending
		q.pending = nil
	}
	switch {
	case q.paused:
		events = append(events, q.setState(QueuePaused))
	case len(q.pending) > 0:
		events = append(events, q.setState(QueueReady))
		q.startLocked()
	default:
		events = append(events, q.setState(QueueIdle))
	}
	q.mu.Unlock()
	for _, e := range discarded {
		e.future.resolve(nil, ErrDiscarded)
	}
	q.emit(events)
	return nil
}

// Wait blocks until the queue is idle or halted on an error. In the
// latter case the error is returned.
func (q *Queue) Wait(ctx context.Context) error {
	for {
		q.mu.Lock()
		state, err, running, changed := q.state, q.lastErr, q.running, q.changed
		q.mu.Unlock()
		switch {
		case state == QueueError:
			return err
		case state == QueueIdle && !running:
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// setState must be called with mu held.
func (q *Queue) setState(s QueueState) Event {
	q.state = s
	q.notifyLocked()
	var t EventType
	switch s {
	case QueueIdle:
		t = EventIdle
	case QueueReady:
		t = EventReady
	case QueuePaused:
		t = EventPaused
	case QueueError:
		t = EventError
	}
	return Event{Type: t, Err: q.lastErr}
}

func (q *Queue) notifyLocked() {
	close(q.changed)
	q.changed = make(chan struct{})
}

func (q *Queue) startLocked() {
	if q.running || q.paused || q.state != QueueReady {
		return
	}
	q.running = true
	q.notifyLocked()
	go q.run()
}

func (q *Queue) emit(events []Event) {
	for _, ev := range events {
		q.mu.Lock()
		fns := make([]func(Event), 0, len(q.listeners[ev.Type]))
		for _, fn := range q.listeners[ev.Type] {
			fns = append(fns, fn)
		}
		q.mu.Unlock()
		for _, fn := range fns {
			fn(ev)
		}
	}
}

func (q *Queue) run() {
	for {
		q.mu.Lock()
		if q.paused || q.state != QueueReady || len(q.pending) == 0 {
			var events []Event
			if q.state == QueueReady && len(q.pending) == 0 {
				events = append(events, q.setState(QueueIdle))
			}
			q.running = false
			q.notifyLocked()
			q.mu.Unlock()
			q.emit(events)
			return
		}
		e := q.pending[0]
		q.pending = q.pending[1:]
		prev := q.last
		q.mu.Unlock()

		resp, err := q.runEntry(e, prev)

		q.mu.Lock()
		var events []Event
		switch {
		case err != nil && q.expecting && e.kind != entryExpectEnd:
			q.logger.Debug("expected error swallowed", "error", err)
			q.expecting = false
			q.swallowed = true
			q.last = nil
		case err != nil:
			q.logger.Debug("queue halted", "error", err)
			q.lastErr = err
			events = append(events, q.setState(QueueError))
		default:
			q.last = resp
			if e.kind == entryCommand {
				events = append(events, Event{Type: EventResponse, Response: resp})
			}
		}
		q.mu.Unlock()
		if err != nil {
			e.future.resolve(nil, err)
		} else {
			e.future.resolve(q.resultValue(e, resp), nil)
		}
		q.emit(events)
	}
}

func (q *Queue) resultValue(e *entry, resp *Response) any {
	if resp == nil {
		return nil
	}
	if e.kind == entryCommand {
		return q.d.fromWire(resp.Value)
	}
	return resp.Value
}

func (q *Queue) runEntry(e *entry, prev *Response) (*Response, error) {
	switch e.kind {
	case entrySleep:
		t := time.NewTimer(e.delay)
		defer t.Stop()
		select {
		case <-t.C:
			return prev, nil
		case <-q.ctx.Done():
			return nil, q.ctx.Err()
		}
	case entryFunc:
		v, err := e.fn(prev)
		if err != nil {
			return nil, err
		}
		return &Response{Status: Success, Value: v}, nil
	case entryCommand:
		return q.d.run(q.ctx, string(e.name), &Command{Name: e.name, ElementID: e.elementID, Params: e.params})
	case entryExpectBegin:
		q.mu.Lock()
		q.expecting, q.swallowed = true, false
		q.mu.Unlock()
		return prev, nil
	case entryExpectEnd:
		q.mu.Lock()
		swallowed := q.swallowed
		q.expecting, q.swallowed = false, false
		q.mu.Unlock()
		if !swallowed {
			if e.message != "" {
				return nil, fmt.Errorf("%s: %w", e.message, ErrNoErrorRaised)
			}
			return nil, ErrNoErrorRaised
		}
		return prev, nil
	}
	return nil, fmt.Errorf("unknown queue entry kind %d", e.kind)
}
