// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"errors"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		status  int
		message string
		kind    ErrorKind
		is      error
	}{
		{NoSuchElement, "", KindNoSuchElement, ErrNoSuchElement},
		{NoSuchFrame, "", KindNoSuchFrame, ErrNoSuchFrame},
		{NoSuchWindow, "", KindNoSuchWindow, ErrNoSuchWindow},
		{NoSuchDocument, "", KindNoSuchDocument, ErrNoSuchDocument},
		{StaleElementReference, "", KindStaleElement, ErrStaleElement},
		{ElementNotVisible, "", KindNotVisible, ErrNotVisible},
		{InvalidElementState, "element is disabled", KindNotSupported, ErrNotSupported},
		{InvalidElementState, "cannot toggle a radio button", KindNotImplemented, ErrNotImplemented},
		{InvalidElementState, "only valid on a single element", KindNotImplemented, ErrNotImplemented},
		{InvalidElementState, "Cannot Toggle", KindNotSupported, ErrNotSupported},
		{ElementIsNotSelectable, "", KindNotSupported, ErrNotSupported},
		{Timeout, "", KindTimeout, ErrTimeout},
		{UnknownError, "error in script inside frame", KindInvalidOperation, ErrInvalidOperation},
		{UnknownError, "frame detached", KindNoSuchFrame, ErrNoSuchFrame},
		{UnknownError, "frame not found: X", KindNoSuchFrame, ErrNoSuchFrame},
		{UnknownError, "boom", KindAutomation, ErrAutomation},
		{UnknownCommand, "", KindNotImplemented, ErrNotImplemented},
		{InvalidCookieDomain, "", KindAutomation, ErrAutomation},
		{UnableToSetCookie, "", KindAutomation, ErrAutomation},
		{JavaScriptError, "", KindInvalidOperation, ErrInvalidOperation},
		{NoAlertOpenError, "", KindInvalidOperation, ErrInvalidOperation},
		{ScriptTimeout, "", KindInvalidOperation, ErrInvalidOperation},
		{99, "", KindInvalidOperation, ErrInvalidOperation},
	}
	for _, tt := range tests {
		err := Classify(&Response{Status: tt.status, Value: map[string]any{"message": tt.message}})
		var cerr *CommandError
		if !errors.As(err, &cerr) {
			t.Errorf("%d %q: %v is not a CommandError", tt.status, tt.message, err)
			continue
		}
		if cerr.Kind != tt.kind || cerr.StatusCode != tt.status {
			t.Errorf("%d %q: kind %v status %d", tt.status, tt.message, cerr.Kind, cerr.StatusCode)
		}
		if !errors.Is(err, tt.is) {
			t.Errorf("%d %q: not %v", tt.status, tt.message, tt.is)
		}
	}
}

func TestClassifySuccess(t *testing.T) {
	if err := Classify(&Response{Status: Success, Value: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := Classify(nil); err != nil {
		t.Fatal(err)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	value := map[string]any{"message": "gone", "class": "StaleElementReferenceException"}
	resp := &Response{Status: StaleElementReference, Value: value}
	a, b := Classify(resp).(*CommandError), Classify(resp).(*CommandError)
	if a.Kind != b.Kind || a.Message != b.Message || a.Class != b.Class {
		t.Fatalf("%+v != %+v", a, b)
	}
	if value["message"] != "gone" || len(value) != 2 {
		t.Fatal("payload modified")
	}
}

// A timeout carries a hint about the configurable timeouts.
func TestClassifyTimeoutMessage(t *testing.T) {
	err := Classify(&Response{Status: Timeout, Value: map[string]any{"message": "timed out"}})
	cerr := err.(*CommandError)
	if !strings.HasPrefix(cerr.Message, "timed out") || !strings.Contains(cerr.Message, "implicit wait") {
		t.Fatalf("message = %q", cerr.Message)
	}
}

func TestUnpackError(t *testing.T) {
	value := map[string]any{
		"message": "not found",
		"screen":  "iVBOR",
		"class":   "org.openqa.selenium.NoSuchElementException",
		"stackTrace": []any{
			map[string]any{"fileName": "a.js", "className": "A", "methodName": "f", "lineNumber": float64(12)},
			"junk",
		},
	}
	err := Classify(&Response{Status: NoSuchElement, Value: value}).(*CommandError)
	if err.Screen != "iVBOR" || err.Class == "" || len(err.StackTrace) != 1 || err.StackTrace[0].LineNumber != 12 {
		t.Fatalf("err = %+v", err)
	}
	if !strings.Contains(err.Error(), "not found") || !strings.Contains(err.Error(), StatusText(NoSuchElement)) {
		t.Fatalf("Error() = %q", err.Error())
	}

	plain := Classify(&Response{Status: UnknownError, Value: "Internal error"}).(*CommandError)
	if !strings.Contains(plain.Message, "Internal error") {
		t.Fatalf("message = %q", plain.Message)
	}
	unknown := Classify(&Response{Status: 99, Value: nil}).(*CommandError)
	if !strings.Contains(unknown.Error(), "unknown status code (99)") {
		t.Fatalf("Error() = %q", unknown.Error())
	}
}

func TestStatusCode(t *testing.T) {
	if _, ok := StatusCode(invalidState("x", "y")); ok {
		t.Fatal("local error carries a status")
	}
	code, ok := StatusCode(Classify(&Response{Status: Timeout}))
	if !ok || code != Timeout {
		t.Fatalf("code = %d, %v", code, ok)
	}
	if !IsRemote(Classify(&Response{Status: Timeout})) || IsRemote(ErrTimeout) {
		t.Fatal("IsRemote")
	}
}

func TestErrNotFoundFamily(t *testing.T) {
	for _, status := range []int{NoSuchElement, NoSuchFrame, NoSuchWindow, NoSuchDocument} {
		if err := Classify(&Response{Status: status}); !errors.Is(err, ErrNotFound) {
			t.Errorf("%d: not ErrNotFound", status)
		}
	}
	if err := Classify(&Response{Status: StaleElementReference}); errors.Is(err, ErrNotFound) {
		t.Error("stale element is ErrNotFound")
	}
}
