// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wdtest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"strings"
	"testing"
)

type reply struct {
	code      int
	sessionID string
	status    int
	value     any
}

func call(t *testing.T, srv *Server, method, path string, body any) reply {
	t.Helper()
	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var jr struct {
		SessionID *string `json:"sessionId"`
		Status    int     `json:"status"`
		Value     any     `json:"value"`
	}
	buf, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(buf, &jr); err != nil {
		t.Fatalf("%s %s: %d %q", method, path, resp.StatusCode, buf)
	}
	out := reply{code: resp.StatusCode, status: jr.Status, value: jr.Value}
	if jr.SessionID != nil {
		out.sessionID = *jr.SessionID
	}
	return out
}

func newSession(t *testing.T) (*Server, string) {
	t.Helper()
	srv := NewServer()
	t.Cleanup(srv.Close)
	r := call(t, srv, "POST", "/session", map[string]any{"desiredCapabilities": map[string]any{"browserName": "x"}})
	if r.status != statusSuccess || r.sessionID == "" {
		t.Fatalf("new session: %+v", r)
	}
	return srv, r.sessionID
}

func testPage() *Page {
	return &Page{
		Title: "test",
		Elements: []*Element{
			{Tag: "div", Attrs: map[string]string{"id": "main", "class": "a b"}, Children: []*Element{
				{Tag: "a", Text: "Go home", Attrs: map[string]string{"href": "http://t/home", "class": "nav"}},
				{Tag: "input", Attrs: map[string]string{"name": "q"}},
			}},
			{Tag: "iframe", Attrs: map[string]string{"id": "f1"}},
		},
	}
}

func TestMatch(t *testing.T) {
	page := testPage()
	assignIDs(page.Elements, map[string]*Element{})
	tests := []struct {
		using, value string
		want         int
		err          bool
	}{
		{"id", "main", 1, false},
		{"name", "q", 1, false},
		{"class name", "b", 1, false},
		{"class name", "a b", 0, true},
		{"tag name", "A", 1, false},
		{"link text", "Go home", 1, false},
		{"link text", "Go", 0, false},
		{"partial link text", "home", 1, false},
		{"css selector", "div#main.a", 1, false},
		{"css selector", "a.nav", 1, false},
		{"css selector", ".nav.missing", 0, false},
		{"css selector", "*", 4, false},
		{"css selector", "div > a", 0, true},
		{"css selector", "div#", 0, true},
		{"xpath", "//a", 0, true},
	}
	for _, tt := range tests {
		got, err := find(page.Elements, tt.using, tt.value)
		if (err != nil) != tt.err {
			t.Errorf("%s=%q: err = %v", tt.using, tt.value, err)
			continue
		}
		var sel errInvalidSelector
		if tt.err && !errors.As(err, &sel) {
			t.Errorf("%s=%q: %T", tt.using, tt.value, err)
		}
		if len(got) != tt.want {
			t.Errorf("%s=%q: %d matches, want %d", tt.using, tt.value, len(got), tt.want)
		}
	}
}

func TestFindOrder(t *testing.T) {
	page := testPage()
	assignIDs(page.Elements, map[string]*Element{})
	got, _ := find(page.Elements, "css selector", "*")
	tags := make([]string, len(got))
	for i, e := range got {
		tags[i] = e.Tag
	}
	if strings.Join(tags, ",") != "div,a,input,iframe" {
		t.Fatalf("order = %v", tags)
	}
}

func TestNewSession(t *testing.T) {
	srv := NewServer()
	defer srv.Close()
	r := call(t, srv, "POST", "/session", map[string]any{})
	if r.status != statusSessionNotCreate {
		t.Fatalf("no capabilities: %+v", r)
	}
	r = call(t, srv, "POST", "/session", map[string]any{
		"desiredCapabilities":  map[string]any{"browserName": "x"},
		"requiredCapabilities": map[string]any{"browserName": "y"},
	})
	if r.status != statusSessionNotCreate {
		t.Fatalf("unsatisfiable: %+v", r)
	}
	r = call(t, srv, "POST", "/session", map[string]any{"desiredCapabilities": map[string]any{"browserName": "x"}})
	caps := r.value.(map[string]any)
	if caps["browserName"] != "x" || caps["javascriptEnabled"] != true {
		t.Fatalf("caps = %v", caps)
	}
	if srv.SessionCount() != 1 {
		t.Fatalf("%d sessions", srv.SessionCount())
	}
	r = call(t, srv, "DELETE", "/session/"+r.sessionID, nil)
	if r.status != statusSuccess || srv.SessionCount() != 0 {
		t.Fatalf("quit: %+v", r)
	}
}

func TestUnknownSession(t *testing.T) {
	srv := NewServer()
	defer srv.Close()
	r := call(t, srv, "GET", "/session/nope/title", nil)
	if r.code != http.StatusNotFound || r.status != statusNoSuchDriver || r.sessionID != "nope" {
		t.Fatalf("reply = %+v", r)
	}
}

func TestUnknownCommand(t *testing.T) {
	srv := NewServer()
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL + "/nothing/here")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	buf, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusNotFound || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") ||
		!strings.Contains(string(buf), "Unknown command") {
		t.Fatalf("%d %q", resp.StatusCode, buf)
	}
}

func TestNavigationAndElements(t *testing.T) {
	srv, id := newSession(t)
	srv.AddPage("http://t/page", testPage())
	base := "/session/" + id
	call(t, srv, "POST", base+"/url", map[string]any{"url": "http://t/page"})
	if r := call(t, srv, "GET", base+"/title", nil); r.value != "test" {
		t.Fatalf("title = %v", r.value)
	}
	r := call(t, srv, "POST", base+"/elements", map[string]any{"using": "tag name", "value": "a"})
	refs := r.value.([]any)
	if len(refs) != 1 {
		t.Fatalf("refs = %v", refs)
	}
	link := refs[0].(map[string]any)["ELEMENT"].(string)
	if r := call(t, srv, "GET", base+"/element/"+link+"/attribute/href", nil); r.value != "http://t/home" {
		t.Fatalf("href = %v", r.value)
	}
	if r := call(t, srv, "GET", base+"/element/"+link+"/attribute/nope", nil); r.value != nil {
		t.Fatalf("missing attribute = %v", r.value)
	}
	r = call(t, srv, "POST", base+"/element/"+link+"/elements", map[string]any{"using": "tag name", "value": "a"})
	if len(r.value.([]any)) != 0 {
		t.Fatalf("children = %v", r.value)
	}
	call(t, srv, "POST", base+"/element/"+link+"/click", nil)
	if srv.Element(id, link) != nil {
		t.Fatal("old page elements survive navigation")
	}
	if r := call(t, srv, "GET", base+"/url", nil); r.value != "http://t/home" {
		t.Fatalf("url = %v", r.value)
	}
	r = call(t, srv, "GET", base+"/element/"+link+"/text", nil)
	if r.status != statusStaleElement {
		t.Fatalf("stale: %+v", r)
	}
	call(t, srv, "POST", base+"/back", nil)
	if r := call(t, srv, "GET", base+"/url", nil); r.value != "http://t/page" {
		t.Fatalf("back url = %v", r.value)
	}
	r = call(t, srv, "POST", base+"/elements", map[string]any{"using": "xpath", "value": "//a"})
	if r.status != statusInvalidSelector || r.code != http.StatusInternalServerError {
		t.Fatalf("xpath: %+v", r)
	}
}

func TestFrames(t *testing.T) {
	srv, id := newSession(t)
	srv.AddPage("http://t/page", testPage())
	base := "/session/" + id
	call(t, srv, "POST", base+"/url", map[string]any{"url": "http://t/page"})
	for _, frame := range []any{0, "f1"} {
		if r := call(t, srv, "POST", base+"/frame", map[string]any{"id": frame}); r.status != statusSuccess {
			t.Fatalf("frame %v: %+v", frame, r)
		}
	}
	r := call(t, srv, "POST", base+"/frame", map[string]any{"id": 1})
	if r.status != statusNoSuchFrame || r.code != http.StatusNotFound {
		t.Fatalf("frame 1: %+v", r)
	}
	if r := call(t, srv, "POST", base+"/frame", map[string]any{"id": nil}); r.status != statusSuccess {
		t.Fatalf("top: %+v", r)
	}
}

func TestFailureInjection(t *testing.T) {
	srv, id := newSession(t)
	srv.Fail("GET", "/title", 13, "boom")
	r := call(t, srv, "GET", "/session/"+id+"/title", nil)
	if r.status != 13 || r.value.(map[string]any)["message"] != "boom" || r.sessionID != id {
		t.Fatalf("reply = %+v", r)
	}
	if r := call(t, srv, "GET", "/session/"+id+"/title", nil); r.status != statusSuccess {
		t.Fatalf("failure not consumed: %+v", r)
	}

	srv.FailHTTP("GET", "/title", http.StatusInternalServerError, "Internal Server Error")
	resp, err := srv.Client().Get(srv.URL + "/session/" + id + "/title")
	if err != nil {
		t.Fatal(err)
	}
	buf, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != 500 || string(buf) != "Internal Server Error" {
		t.Fatalf("%d %q", resp.StatusCode, buf)
	}
}

func TestRecording(t *testing.T) {
	srv, id := newSession(t)
	call(t, srv, "POST", "/session/"+id+"/url", map[string]any{"url": "about:blank"})
	reqs := srv.Requests()
	last := reqs[len(reqs)-1]
	if last.Method != "POST" || last.Path != "/session/"+id+"/url" || last.Body["url"] != "about:blank" {
		t.Fatalf("last = %+v", last)
	}
	if srv.RequestCount() != len(reqs) {
		t.Fatal("count mismatch")
	}
}

func TestEchoScript(t *testing.T) {
	args := []any{"a", 2.0}
	if v, _ := EchoScript("return arguments[1];", args); v != 2.0 {
		t.Fatalf("v = %v", v)
	}
	if v, _ := EchoScript("return arguments", args); len(v.([]any)) != 2 {
		t.Fatalf("v = %v", v)
	}
	if v, _ := EchoScript("return arguments[5]", args); v != nil {
		t.Fatalf("v = %v", v)
	}
	if v, _ := EchoScript("return 42", args); v != nil {
		t.Fatalf("v = %v", v)
	}
}

func TestExtension(t *testing.T) {
	srv, id := newSession(t)
	srv.HandleExtension("POST", "/moz/context", func(sessionID string, body map[string]any) (any, error) {
		if sessionID != id {
			return nil, errors.New("wrong session")
		}
		return body["context"], nil
	})
	r := call(t, srv, "POST", "/session/"+id+"/moz/context", map[string]any{"context": "chrome"})
	if r.value != "chrome" {
		t.Fatalf("reply = %+v", r)
	}
	if r := call(t, srv, "GET", "/session/"+id+"/moz/context", nil); r.status != 9 {
		t.Fatalf("unregistered method: %+v", r)
	}
}

func TestScreenshot(t *testing.T) {
	srv, id := newSession(t)
	r := call(t, srv, "GET", "/session/"+id+"/screenshot", nil)
	buf, err := base64.StdEncoding.DecodeString(r.value.(string))
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != ScreenshotSize {
		t.Fatalf("bounds = %v", img.Bounds())
	}
}

func TestCORS(t *testing.T) {
	srv := NewServer()
	defer srv.Close()
	req, _ := http.NewRequest("OPTIONS", srv.URL+"/status", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("headers = %v", resp.Header)
	}
}
