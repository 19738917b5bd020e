// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
)

const (
	Success                    = 0
	NoSuchDriver               = 6
	NoSuchElement              = 7
	NoSuchFrame                = 8
	UnknownCommand             = 9
	StaleElementReference      = 10
	ElementNotVisible          = 11
	InvalidElementState        = 12
	UnknownError               = 13
	ElementIsNotSelectable     = 15
	NoSuchDocument             = 16
	JavaScriptError            = 17
	XPathLookupError           = 19
	Timeout                    = 21
	NoSuchWindow               = 23
	InvalidCookieDomain        = 24
	UnableToSetCookie          = 25
	UnexpectedAlertOpen        = 26
	NoAlertOpenError           = 27
	ScriptTimeout              = 28
	InvalidElementCoordinates  = 29
	IMENotAvailable            = 30
	IMEEngineActivationFailed  = 31
	InvalidSelector            = 32
	SessionNotCreatedException = 33
	MoveTargetOutOfBounds      = 34
)

// Aliases used by the error taxonomy. They share the wire numbering above.
const (
	NotImplemented      = UnknownCommand
	ObsoleteElement     = StaleElementReference
	ElementNotDisplayed = ElementNotVisible
	ElementNotEnabled   = InvalidElementState
	ElementNotSelected  = ElementIsNotSelectable
	UnhandledError      = UnknownError
)

var statusCodeStrings = map[int]string{
	0:  "The command executed successfully.",
	6:  "A session is either terminated or not started.",
	7:  "An element could not be located on the page using the given search parameters.",
	8:  "A request to switch to a frame could not be satisfied because the frame could not be found.",
	9:  "The requested resource could not be found, or a request was received using an HTTP method that is not supported by the mapped resource.",
	10: "An element command failed because the referenced element is no longer attached to the DOM.",
	11: "An element command could not be completed because the element is not visible on the page.",
	12: "An element command could not be completed because the element is in an invalid state (e.g. attempting to click a disabled element).",
	13: "An unknown server-side error occurred while processing the command.",
	15: "An attempt was made to select an element that cannot be selected.",
	16: "A request was made to operate on a document that could not be found.",
	17: "An error occurred while executing user supplied JavaScript.",
	19: "An error occurred while searching for an element by XPath.",
	21: "An operation did not complete before its timeout expired.",
	23: "A request to switch to a different window could not be satisfied because the window could not be found.",
	24: "An illegal attempt was made to set a cookie under a different domain than the current page.",
	25: "A request to set a cookie's value could not be satisfied.",
	26: "A modal dialog was open, blocking this operation.",
	27: "An attempt was made to operate on a modal dialog when one was not open.",
	28: "A script did not complete before its timeout expired.",
	29: "The coordinates provided to an interactions operation are invalid.",
	30: "IME was not available.",
	31: "An IME engine could not be started.",
	32: "Argument was an invalid selector (e.g. XPath/CSS).",
	33: "A new session could not be created.",
	34: "Target provided for a move action is out of bounds.",
}

// StatusText returns the protocol description of a status code, or "" if
// the code is not part of the wire protocol.
func StatusText(code int) string {
	return statusCodeStrings[code]
}

// Response is the decoded reply to a single command.
type Response struct {
	SessionID string
	Status    int
	// Value is the decoded JSON payload: nil, bool, float64, string,
	// []any or map[string]any. Non-JSON bodies are carried as string.
	Value any
}

// Success reports whether the response carries the success status.
func (r *Response) Success() bool {
	return r.Status == Success
}

// type matching the structure standard JSON object response.
type jsonResponse struct {
	RawSessionId json.RawMessage `json:"sessionId"`
	Status       *int            `json:"status"`
	RawValue     json.RawMessage `json:"value"`
}

// sessionID extracts the session id, which some servers send as a bare
// string and others as a JSON string or null.
func (jr *jsonResponse) sessionID() string {
	if len(jr.RawSessionId) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(jr.RawSessionId, &s); err == nil {
		return s
	}
	return strings.Trim(string(jr.RawSessionId), "{}\"")
}

// statusFromHTTP synthesizes a protocol status for replies that did not
// carry a usable one.
func statusFromHTTP(code int) int {
	switch {
	case code >= 500:
		return UnhandledError
	case code >= 400:
		return UnknownCommand
	default:
		return Success
	}
}

var hostNewline = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

// normalizeNewlines rewrites line endings of every string in v to the
// host convention.
func normalizeNewlines(v any) any {
	switch x := v.(type) {
	case string:
		return convertNewlines(x, hostNewline)
	case []any:
		for i := range x {
			x[i] = normalizeNewlines(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = normalizeNewlines(x[k])
		}
		return x
	default:
		return v
	}
}

func convertNewlines(s, nl string) string {
	if !strings.ContainsRune(s, '\n') && !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if nl != "\n" {
		s = strings.ReplaceAll(s, "\n", nl)
	}
	return s
}

func truncate(buf []byte, n int) string {
	if len(buf) <= n {
		return string(buf)
	}
	return fmt.Sprintf("%s ...%d more bytes", string(buf[:n]), len(buf)-n)
}
