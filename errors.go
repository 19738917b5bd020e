// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the category a remote failure is mapped to.
type ErrorKind int

const (
	// KindAutomation is the generic remote failure.
	KindAutomation ErrorKind = iota
	KindNoSuchElement
	KindNoSuchFrame
	KindNoSuchWindow
	KindNoSuchDocument
	KindStaleElement
	KindNotVisible
	KindNotSupported
	KindNotImplemented
	KindTimeout
	KindInvalidOperation
)

var kindNames = [...]string{
	KindAutomation:       "automation error",
	KindNoSuchElement:    "no such element",
	KindNoSuchFrame:      "no such frame",
	KindNoSuchWindow:     "no such window",
	KindNoSuchDocument:   "no such document",
	KindStaleElement:     "stale element",
	KindNotVisible:       "element not visible",
	KindNotSupported:     "not supported",
	KindNotImplemented:   "not implemented",
	KindTimeout:          "timeout",
	KindInvalidOperation: "invalid operation",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return kindNames[k]
}

func (k ErrorKind) notFound() bool {
	switch k {
	case KindNoSuchElement, KindNoSuchFrame, KindNoSuchWindow, KindNoSuchDocument:
		return true
	}
	return false
}

// Sentinels matched by *CommandError through errors.Is.
var (
	ErrNotFound         = errors.New("webdriver: target not found")
	ErrNoSuchElement    = errors.New("webdriver: no such element")
	ErrNoSuchFrame      = errors.New("webdriver: no such frame")
	ErrNoSuchWindow     = errors.New("webdriver: no such window")
	ErrNoSuchDocument   = errors.New("webdriver: no such document")
	ErrStaleElement     = errors.New("webdriver: stale element reference")
	ErrNotVisible       = errors.New("webdriver: element not visible")
	ErrNotSupported     = errors.New("webdriver: operation not supported")
	ErrNotImplemented   = errors.New("webdriver: not implemented")
	ErrTimeout          = errors.New("webdriver: timeout")
	ErrInvalidOperation = errors.New("webdriver: invalid operation")
	ErrAutomation       = errors.New("webdriver: automation error")
)

var kindSentinels = map[ErrorKind]error{
	KindAutomation:       ErrAutomation,
	KindNoSuchElement:    ErrNoSuchElement,
	KindNoSuchFrame:      ErrNoSuchFrame,
	KindNoSuchWindow:     ErrNoSuchWindow,
	KindNoSuchDocument:   ErrNoSuchDocument,
	KindStaleElement:     ErrStaleElement,
	KindNotVisible:       ErrNotVisible,
	KindNotSupported:     ErrNotSupported,
	KindNotImplemented:   ErrNotImplemented,
	KindTimeout:          ErrTimeout,
	KindInvalidOperation: ErrInvalidOperation,
}

// Local failures. None of them carries a protocol status.
var (
	ErrInvalidState      = errors.New("webdriver: invalid state")
	ErrInvalidArgument   = errors.New("webdriver: invalid argument")
	ErrUnknownCommand    = errors.New("webdriver: unknown command")
	ErrNoResponse        = errors.New("webdriver: no response from server")
	ErrMalformedResponse = errors.New("webdriver: malformed response")
	ErrUnresolvedFuture  = errors.New("webdriver: future has not been resolved")
	ErrDiscarded         = errors.New("webdriver: command discarded")
)

const timeoutGuidance = " (the remote end gave up waiting; raise the implicit wait, script or page load timeout if the condition is expected to take longer)"

type StackFrame struct {
	FileName   string
	ClassName  string
	MethodName string
	LineNumber int
}

// CommandError is a failure reported by the remote end.
type CommandError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Screen     string
	Class      string
	StackTrace []StackFrame
}

func (e *CommandError) Error() string {
	m := e.Kind.String() + ": "
	if str, found := statusCodeStrings[e.StatusCode]; found {
		m += str + ": " + e.Message
	} else {
		m += fmt.Sprintf("unknown status code (%d): %s", e.StatusCode, e.Message)
	}
	return m
}

// Is matches the sentinel of the error kind, and ErrNotFound for the
// whole not-found family.
func (e *CommandError) Is(target error) bool {
	if target == ErrNotFound {
		return e.Kind.notFound()
	}
	return kindSentinels[e.Kind] == target
}

// StatusCode returns the protocol status carried by err. Only errors
// reported by the remote end carry one.
func StatusCode(err error) (int, bool) {
	var cerr *CommandError
	if errors.As(err, &cerr) {
		return cerr.StatusCode, true
	}
	return 0, false
}

// Classify maps a response to its error, or nil when the status is
// successful. The payload is not modified.
func Classify(resp *Response) error {
	if resp == nil || resp.Success() {
		return nil
	}
	cerr := unpackError(resp.Value)
	cerr.StatusCode = resp.Status
	cerr.Kind = classifyStatus(resp.Status, cerr.Message)
	if cerr.Kind == KindTimeout {
		cerr.Message += timeoutGuidance
	}
	return cerr
}

// classifyStatus dispatches on the status code. Two codes also look at
// the message text: servers report several distinct failures under them.
func classifyStatus(status int, message string) ErrorKind {
	switch status {
	case NoSuchElement:
		return KindNoSuchElement
	case NoSuchFrame:
		return KindNoSuchFrame
	case NoSuchWindow:
		return KindNoSuchWindow
	case NoSuchDocument:
		return KindNoSuchDocument
	case ObsoleteElement:
		return KindStaleElement
	case ElementNotDisplayed:
		return KindNotVisible
	case ElementNotEnabled:
		if strings.Contains(message, "toggle") || strings.Contains(message, "single element") {
			return KindNotImplemented
		}
		return KindNotSupported
	case ElementNotSelected:
		return KindNotSupported
	case Timeout:
		return KindTimeout
	case UnhandledError:
		// "script" is checked first: script errors often mention frames.
		if strings.Contains(message, "script") {
			return KindInvalidOperation
		}
		if strings.Contains(message, "frame") {
			return KindNoSuchFrame
		}
		return KindAutomation
	case NotImplemented:
		return KindNotImplemented
	case InvalidCookieDomain, UnableToSetCookie:
		return KindAutomation
	default:
		return KindInvalidOperation
	}
}

func unpackError(value any) *CommandError {
	cerr := &CommandError{}
	m, ok := value.(map[string]any)
	if !ok {
		cerr.Message = fmt.Sprintf("unexpected error: %v", value)
		return cerr
	}
	if msg, ok := m["message"].(string); ok {
		cerr.Message = msg
	} else {
		cerr.Message = fmt.Sprintf("unexpected error: %v", m)
	}
	cerr.Class, _ = m["class"].(string)
	cerr.Screen, _ = m["screen"].(string)
	if frames, ok := m["stackTrace"].([]any); ok {
		for _, f := range frames {
			fm, ok := f.(map[string]any)
			if !ok {
				continue
			}
			frame := StackFrame{}
			frame.FileName, _ = fm["fileName"].(string)
			frame.ClassName, _ = fm["className"].(string)
			frame.MethodName, _ = fm["methodName"].(string)
			if n, ok := fm["lineNumber"].(float64); ok {
				frame.LineNumber = int(n)
			}
			cerr.StackTrace = append(cerr.StackTrace, frame)
		}
	}
	return cerr
}

// PreconditionError is a local check that failed before anything was
// sent to the remote end.
type PreconditionError struct {
	Op     string
	Reason string
	Err    error
}

func (e *PreconditionError) Error() string {
	return e.Op + ": " + e.Reason
}

func (e *PreconditionError) Unwrap() error { return e.Err }

func invalidState(op, reason string) error {
	return &PreconditionError{Op: op, Reason: reason, Err: ErrInvalidState}
}

func invalidArgument(op, reason string) error {
	return &PreconditionError{Op: op, Reason: reason, Err: ErrInvalidArgument}
}

// MissingParameterError reports a URL placeholder with no value.
type MissingParameterError struct {
	Command CommandName
	Name    string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s: missing required parameter %q", e.Command, e.Name)
}

func (e *MissingParameterError) Unwrap() error { return ErrInvalidArgument }

// UnknownCommandError reports a command name with no routing entry.
type UnknownCommandError struct {
	Name CommandName
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q: no routing entry registered", string(e.Name))
}

func (e *UnknownCommandError) Unwrap() error { return ErrUnknownCommand }

// TransportError is returned when no HTTP response was received.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("no response from server: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrNoResponse, e.Err} }
