// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wdtest provides an in-process remote end speaking the JSON
// Wire Protocol, for tests of code built on the webdriver package.
package wdtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

// Protocol status codes used by the server.
const (
	statusSuccess          = 0
	statusNoSuchDriver     = 6
	statusNoSuchElement    = 7
	statusNoSuchFrame      = 8
	statusStaleElement     = 10
	statusJavaScriptError  = 17
	statusNoSuchWindow     = 23
	statusNoAlertOpen      = 27
	statusInvalidSelector  = 32
	statusSessionNotCreate = 33
)

// Request is a recorded request.
type Request struct {
	Method string
	Path   string
	Body   map[string]any
}

// ScriptFunc evaluates a script for execute and execute_async. Element
// references in args and in the result use the wire form.
type ScriptFunc func(script string, args []any) (any, error)

// ExtensionFunc handles a request under /session/{sessionId}/ that no
// builtin route serves. It returns the reply value.
type ExtensionFunc func(sessionID string, body map[string]any) (any, error)

type failure struct {
	method   string
	suffix   string
	status   int
	message  string
	httpCode int
	raw      string
}

// Server is a fake remote end. The zero value is not usable; call
// NewServer.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	pages       map[string]*Page
	sessions    map[string]*session
	requests    []Request
	failures    []failure
	extensions  map[string]ExtensionFunc
	script      ScriptFunc
	logs        map[string][]map[string]any
	redirectNew bool
	rawShot     bool
}

type session struct {
	id       string
	caps     map[string]any
	url      string
	page     *Page
	index    map[string]*Element
	history  []string
	pos      int
	windows  []string
	window   string
	frames   int
	cookies  []map[string]any
	alert    *string
	timeouts map[string]float64
	active   *Element
}

// NewServer starts a server. It is closed by Close.
func NewServer() *Server {
	s := &Server{
		pages:      map[string]*Page{"about:blank": {Title: "", Source: "<html></html>"}},
		sessions:   map[string]*session{},
		extensions: map[string]ExtensionFunc{},
		script:     EchoScript,
		logs:       map[string][]map[string]any{},
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Accept-Charset", "Content-Type"},
	}))
	r.Use(s.record)
	r.Use(s.inject)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unknown command: "+r.Method+" "+r.URL.Path, http.StatusNotFound)
	})
	r.Get("/status", s.status)
	r.Get("/sessions", s.listSessions)
	r.Post("/session", s.newSession)
	r.Get("/session/created/{sessionId}", s.sessionCreated)
	r.Route("/session/{sessionId}", func(r chi.Router) {
		r.Get("/", s.withSession(s.capabilities))
		r.Delete("/", s.withSession(s.quit))
		r.Post("/url", s.withSession(s.navigate))
		r.Get("/url", s.withSession(s.currentURL))
		r.Post("/back", s.withSession(s.back))
		r.Post("/forward", s.withSession(s.forward))
		r.Post("/refresh", s.withSession(s.refresh))
		r.Get("/title", s.withSession(s.title))
		r.Get("/source", s.withSession(s.source))
		r.Post("/elements", s.withSession(s.findElements))
		r.Post("/element/active", s.withSession(s.activeElement))
		r.Route("/element/{elementId}", func(r chi.Router) {
			r.Post("/elements", s.withElement(s.findChildElements))
			r.Post("/click", s.withElement(s.click))
			r.Post("/submit", s.withElement(s.noop))
			r.Post("/clear", s.withElement(s.clear))
			r.Post("/value", s.withElement(s.sendKeysElement))
			r.Get("/text", s.withElement(s.text))
			r.Get("/name", s.withElement(s.tagName))
			r.Get("/attribute/{name}", s.withElement(s.attribute))
			r.Get("/css/{propertyName}", s.withElement(s.css))
			r.Get("/selected", s.withElement(s.selected))
			r.Post("/selected", s.withElement(s.selectElement))
			r.Post("/toggle", s.withElement(s.toggle))
			r.Get("/enabled", s.withElement(s.enabled))
			r.Get("/displayed", s.withElement(s.displayed))
			r.Get("/location", s.withElement(s.location))
			r.Get("/size", s.withElement(s.size))
			r.Get("/equals/{other}", s.withElement(s.equals))
		})
		r.Post("/keys", s.withSession(s.sendKeysActive))
		r.Post("/execute", s.withSession(s.execute))
		r.Post("/execute_async", s.withSession(s.execute))
		r.Get("/screenshot", s.withSession(s.screenshot))
		r.Get("/window_handle", s.withSession(s.windowHandle))
		r.Get("/window_handles", s.withSession(s.windowHandles))
		r.Post("/window", s.withSession(s.switchWindow))
		r.Delete("/window", s.withSession(s.closeWindow))
		r.Post("/frame", s.withSession(s.switchFrame))
		r.Post("/frame/parent", s.withSession(s.parentFrame))
		r.Get("/window/{windowHandle}/size", s.withSession(s.windowSize))
		r.Post("/window/{windowHandle}/size", s.withSession(s.setWindowSize))
		r.Post("/window/{windowHandle}/maximize", s.withSession(s.maximize))
		r.Get("/cookie", s.withSession(s.cookies))
		r.Post("/cookie", s.withSession(s.addCookie))
		r.Delete("/cookie", s.withSession(s.deleteCookies))
		r.Delete("/cookie/{name}", s.withSession(s.deleteCookie))
		r.Post("/timeouts", s.withSession(s.setTimeout))
		r.Post("/timeouts/implicit_wait", s.withSession(s.setTimeout))
		r.Post("/timeouts/async_script", s.withSession(s.setTimeout))
		r.Get("/alert_text", s.withSession(s.alertText))
		r.Post("/alert_text", s.withSession(s.setAlertText))
		r.Post("/accept_alert", s.withSession(s.closeAlert))
		r.Post("/dismiss_alert", s.withSession(s.closeAlert))
		r.Post("/log", s.withSession(s.log))
		r.Get("/log/types", s.withSession(s.logTypes))
		r.HandleFunc("/*", s.withSession(s.extension))
	})
	return r
}

// AddPage serves page at url. Elements get ids if they have none.
func (s *Server) AddPage(url string, page *Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	assignIDs(page.Elements, map[string]*Element{})
	s.pages[url] = page
}

// SetScript replaces the script evaluator. The default is EchoScript.
func (s *Server) SetScript(fn ScriptFunc) {
	s.mu.Lock()
	s.script = fn
	s.mu.Unlock()
}

// HandleExtension serves method and path (relative to the session, for
// example "/chromium/launch_app") with fn.
func (s *Server) HandleExtension(method, path string, fn ExtensionFunc) {
	s.mu.Lock()
	s.extensions[method+" "+path] = fn
	s.mu.Unlock()
}

// AddLog appends an entry to the log of type logType.
func (s *Server) AddLog(logType, level, message string, timestamp int64) {
	s.mu.Lock()
	s.logs[logType] = append(s.logs[logType], map[string]any{
		"level": level, "message": message, "timestamp": timestamp,
	})
	s.mu.Unlock()
}

// Fail makes the next request whose method matches and whose path ends
// with suffix fail with the protocol status and message.
func (s *Server) Fail(method, suffix string, status int, message string) {
	s.mu.Lock()
	s.failures = append(s.failures, failure{method: method, suffix: suffix, status: status, message: message})
	s.mu.Unlock()
}

// FailHTTP makes the next matching request reply with a plain text body.
func (s *Server) FailHTTP(method, suffix string, code int, body string) {
	s.mu.Lock()
	s.failures = append(s.failures, failure{method: method, suffix: suffix, httpCode: code, raw: body})
	s.mu.Unlock()
}

// RedirectNewSession makes POST /session answer with a 303 redirect, as
// some servers do.
func (s *Server) RedirectNewSession(on bool) {
	s.mu.Lock()
	s.redirectNew = on
	s.mu.Unlock()
}

// RawScreenshots makes screenshot replies carry the PNG bytes with an
// image/png content type instead of base64 JSON.
func (s *Server) RawScreenshots(on bool) {
	s.mu.Lock()
	s.rawShot = on
	s.mu.Unlock()
}

// Requests returns the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestCount returns the number of recorded requests.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Element returns the element with id from the page currently loaded in
// session sessionID.
func (s *Server) Element(sessionID, id string) *Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[sessionID]
	if sess == nil {
		return nil
	}
	return sess.index[id]
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Timeouts returns the timeouts set in session sessionID, in ms by type.
func (s *Server) Timeouts(sessionID string) map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]float64{}
	if sess := s.sessions[sessionID]; sess != nil {
		for k, v := range sess.timeouts {
			out[k] = v
		}
	}
	return out
}

// EchoScript returns arguments for "return arguments" and the n-th
// argument for "return arguments[n]"; other scripts return nil.
func EchoScript(script string, args []any) (any, error) {
	script = strings.TrimSuffix(strings.TrimSpace(script), ";")
	if script == "return arguments" {
		return args, nil
	}
	var n int
	if _, err := fmt.Sscanf(script, "return arguments[%d]", &n); err == nil {
		if n < len(args) {
			return args[n], nil
		}
		return nil, nil
	}
	return nil, nil
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil {
			buf, _ := io.ReadAll(r.Body)
			r.Body.Close()
			if len(buf) > 0 {
				json.Unmarshal(buf, &body)
			}
			r.Body = io.NopCloser(bytes.NewReader(buf))
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: body})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var f *failure
		for i := range s.failures {
			c := s.failures[i]
			if c.method == r.Method && strings.HasSuffix(r.URL.Path, c.suffix) {
				f = &c
				s.failures = append(s.failures[:i], s.failures[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		if f == nil {
			next.ServeHTTP(w, r)
			return
		}
		if f.httpCode != 0 {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(f.httpCode)
			io.WriteString(w, f.raw)
			return
		}
		writeReply(w, http.StatusInternalServerError, sessionIDFromPath(r.URL.Path), f.status,
			map[string]any{"message": f.message})
	})
}

func sessionIDFromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "session" {
		return parts[1]
	}
	return ""
}

func writeReply(w http.ResponseWriter, code int, sessionID string, status int, value any) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(code)
	var sid any
	if sessionID != "" {
		sid = sessionID
	}
	json.NewEncoder(w).Encode(map[string]any{"sessionId": sid, "status": status, "value": value})
}

func decodeBody(r *http.Request) map[string]any {
	body := map[string]any{}
	json.NewDecoder(r.Body).Decode(&body)
	return body
}

// sessionHandler serves one command of a live session. It runs with mu
// held and returns the protocol status and value.
type sessionHandler func(sess *session, r *http.Request) (int, any)

func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionId")
		s.mu.Lock()
		sess := s.sessions[id]
		if sess == nil {
			s.mu.Unlock()
			writeReply(w, http.StatusNotFound, id, statusNoSuchDriver,
				map[string]any{"message": "session " + id + " does not exist"})
			return
		}
		status, value := h(sess, r)
		s.mu.Unlock()
		if raw, ok := value.(rawReply); ok {
			w.Header().Set("Content-Type", raw.contentType)
			w.Write(raw.body)
			return
		}
		code := http.StatusOK
		if status != statusSuccess {
			code = http.StatusInternalServerError
			if status == statusNoSuchElement || status == statusNoSuchFrame || status == statusNoSuchWindow {
				code = http.StatusNotFound
			}
		}
		writeReply(w, code, id, status, value)
	}
}

// elementHandler is a sessionHandler for element scoped commands.
type elementHandler func(sess *session, e *Element, r *http.Request) (int, any)

func (s *Server) withElement(h elementHandler) http.HandlerFunc {
	return s.withSession(func(sess *session, r *http.Request) (int, any) {
		id := chi.URLParam(r, "elementId")
		e := sess.index[id]
		if e == nil {
			return statusStaleElement, map[string]any{"message": "stale element reference: " + id}
		}
		return h(sess, e, r)
	})
}

type rawReply struct {
	contentType string
	body        []byte
}

func errorValue(message string) map[string]any {
	return map[string]any{"message": message}
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeReply(w, http.StatusOK, "", statusSuccess, map[string]any{
		"build": map[string]any{"version": "wdtest", "revision": "0", "time": "2013-01-01"},
		"os":    map[string]any{"arch": "amd64", "name": "linux", "version": "6"},
	})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list := make([]map[string]any, 0, len(s.sessions))
	for id, sess := range s.sessions {
		list = append(list, map[string]any{"id": id, "capabilities": sess.caps})
	}
	s.mu.Unlock()
	writeReply(w, http.StatusOK, "", statusSuccess, list)
}

func (s *Server) newSession(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)
	desired, _ := body["desiredCapabilities"].(map[string]any)
	if desired == nil {
		writeReply(w, http.StatusInternalServerError, "", statusSessionNotCreate,
			errorValue("desiredCapabilities is required"))
		return
	}
	if required, ok := body["requiredCapabilities"].(map[string]any); ok {
		if name, ok := required["browserName"].(string); ok && name != "" && name != desired["browserName"] {
			writeReply(w, http.StatusInternalServerError, "", statusSessionNotCreate,
				errorValue("required browser "+name+" is not available"))
			return
		}
	}
	caps := map[string]any{"javascriptEnabled": true, "platform": "LINUX", "version": "1.0"}
	for k, v := range desired {
		caps[k] = v
	}
	if _, ok := caps["browserName"]; !ok {
		caps["browserName"] = "wdtest"
	}
	id := uuid.NewString()
	window := uuid.NewString()
	sess := &session{
		id:       id,
		caps:     caps,
		windows:  []string{window},
		window:   window,
		timeouts: map[string]float64{},
	}
	s.mu.Lock()
	s.load(sess, "about:blank")
	sess.history = []string{"about:blank"}
	s.sessions[id] = sess
	redirect := s.redirectNew
	s.mu.Unlock()
	if redirect {
		http.Redirect(w, r, "/session/created/"+id, http.StatusSeeOther)
		return
	}
	writeReply(w, http.StatusOK, id, statusSuccess, caps)
}

func (s *Server) sessionCreated(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	s.mu.Lock()
	sess := s.sessions[id]
	s.mu.Unlock()
	if sess == nil {
		writeReply(w, http.StatusNotFound, id, statusNoSuchDriver, errorValue("no such session"))
		return
	}
	writeReply(w, http.StatusOK, id, statusSuccess, sess.caps)
}

// load makes url the current document of sess. Unknown URLs get an empty
// page titled with the URL. mu must be held.
func (s *Server) load(sess *session, url string) {
	page := s.pages[url]
	if page == nil {
		page = &Page{Title: url, Source: "<html><head><title>" + url + "</title></head></html>"}
	}
	sess.url = url
	sess.page = page
	sess.frames = 0
	sess.active = nil
	sess.index = map[string]*Element{}
	assignIDs(page.Elements, sess.index)
	sess.alert = nil
	if page.Alert != "" {
		a := page.Alert
		sess.alert = &a
	}
}

func (s *Server) capabilities(sess *session, r *http.Request) (int, any) {
	return statusSuccess, sess.caps
}

func (s *Server) quit(sess *session, r *http.Request) (int, any) {
	delete(s.sessions, sess.id)
	return statusSuccess, nil
}

func (s *Server) navigate(sess *session, r *http.Request) (int, any) {
	url, _ := decodeBody(r)["url"].(string)
	s.load(sess, url)
	sess.history = append(sess.history[:sess.pos+1], url)
	sess.pos = len(sess.history) - 1
	return statusSuccess, nil
}

func (s *Server) currentURL(sess *session, r *http.Request) (int, any) {
	return statusSuccess, sess.url
}

func (s *Server) back(sess *session, r *http.Request) (int, any) {
	if sess.pos > 0 {
		sess.pos--
		s.load(sess, sess.history[sess.pos])
	}
	return statusSuccess, nil
}

func (s *Server) forward(sess *session, r *http.Request) (int, any) {
	if sess.pos < len(sess.history)-1 {
		sess.pos++
		s.load(sess, sess.history[sess.pos])
	}
	return statusSuccess, nil
}

func (s *Server) refresh(sess *session, r *http.Request) (int, any) {
	s.load(sess, sess.url)
	return statusSuccess, nil
}

func (s *Server) title(sess *session, r *http.Request) (int, any) {
	return statusSuccess, sess.page.Title
}

func (s *Server) source(sess *session, r *http.Request) (int, any) {
	return statusSuccess, sess.page.Source
}

func elementRefs(elems []*Element) []any {
	refs := make([]any, len(elems))
	for i, e := range elems {
		refs[i] = map[string]any{"ELEMENT": e.ID}
	}
	return refs
}

func locate(scope []*Element, r *http.Request) (int, any) {
	body := decodeBody(r)
	using, _ := body["using"].(string)
	value, _ := body["value"].(string)
	found, err := find(scope, using, value)
	if err != nil {
		return statusInvalidSelector, errorValue(err.Error())
	}
	return statusSuccess, elementRefs(found)
}

func (s *Server) findElements(sess *session, r *http.Request) (int, any) {
	return locate(sess.page.Elements, r)
}

func (s *Server) findChildElements(sess *session, e *Element, r *http.Request) (int, any) {
	return locate(e.Children, r)
}

func (s *Server) activeElement(sess *session, r *http.Request) (int, any) {
	if sess.active != nil {
		return statusSuccess, map[string]any{"ELEMENT": sess.active.ID}
	}
	if len(sess.page.Elements) == 0 {
		return statusNoSuchElement, errorValue("no active element")
	}
	return statusSuccess, map[string]any{"ELEMENT": sess.page.Elements[0].ID}
}

func (s *Server) click(sess *session, e *Element, r *http.Request) (int, any) {
	if e.Hidden {
		return 11, errorValue("element not visible")
	}
	e.Clicks++
	sess.active = e
	if href := e.attr("href"); href != "" {
		s.load(sess, href)
		sess.history = append(sess.history[:sess.pos+1], href)
		sess.pos = len(sess.history) - 1
	}
	return statusSuccess, nil
}

func (s *Server) noop(sess *session, e *Element, r *http.Request) (int, any) {
	return statusSuccess, nil
}

func (s *Server) clear(sess *session, e *Element, r *http.Request) (int, any) {
	e.setAttr("value", "")
	return statusSuccess, nil
}

func keys(body map[string]any) string {
	list, _ := body["value"].([]any)
	var sb strings.Builder
	for _, k := range list {
		if s, ok := k.(string); ok {
			sb.WriteString(s)
		}
	}
	return sb.String()
}

func (s *Server) sendKeysElement(sess *session, e *Element, r *http.Request) (int, any) {
	if e.Disabled {
		return 12, errorValue("invalid element state: element is disabled")
	}
	e.setAttr("value", e.attr("value")+keys(decodeBody(r)))
	sess.active = e
	return statusSuccess, nil
}

func (s *Server) sendKeysActive(sess *session, r *http.Request) (int, any) {
	if sess.active == nil {
		return statusNoSuchElement, errorValue("no active element")
	}
	sess.active.setAttr("value", sess.active.attr("value")+keys(decodeBody(r)))
	return statusSuccess, nil
}

func (s *Server) text(sess *session, e *Element, r *http.Request) (int, any) {
	return statusSuccess, e.Text
}

func (s *Server) tagName(sess *session, e *Element, r *http.Request) (int, any) {
	return statusSuccess, e.Tag
}

func (s *Server) attribute(sess *session, e *Element, r *http.Request) (int, any) {
	name := chi.URLParam(r, "name")
	if v, ok := e.Attrs[name]; ok {
		return statusSuccess, v
	}
	return statusSuccess, nil
}

func (s *Server) css(sess *session, e *Element, r *http.Request) (int, any) {
	return statusSuccess, e.CSS[chi.URLParam(r, "propertyName")]
}

func (s *Server) selected(sess *session, e *Element, r *http.Request) (int, any) {
	return statusSuccess, e.Selected
}

func (s *Server) selectElement(sess *session, e *Element, r *http.Request) (int, any) {
	if e.Tag != "option" && e.attr("type") != "checkbox" && e.attr("type") != "radio" {
		return 15, errorValue("element is not selectable")
	}
	e.Selected = true
	return statusSuccess, nil
}

func (s *Server) toggle(sess *session, e *Element, r *http.Request) (int, any) {
	if e.attr("type") != "checkbox" && e.Tag != "option" {
		return 12, errorValue("you may only toggle checkboxes or options")
	}
	e.Selected = !e.Selected
	return statusSuccess, e.Selected
}

func (s *Server) enabled(sess *session, e *Element, r *http.Request) (int, any) {
	return statusSuccess, !e.Disabled
}

func (s *Server) displayed(sess *session, e *Element, r *http.Request) (int, any) {
	return statusSuccess, !e.Hidden
}

func (s *Server) location(sess *session, e *Element, r *http.Request) (int, any) {
	return statusSuccess, map[string]any{"x": e.X, "y": e.Y}
}

func (s *Server) size(sess *session, e *Element, r *http.Request) (int, any) {
	return statusSuccess, map[string]any{"width": e.Width, "height": e.Height}
}

func (s *Server) equals(sess *session, e *Element, r *http.Request) (int, any) {
	other := chi.URLParam(r, "other")
	if sess.index[other] == nil {
		return statusStaleElement, errorValue("stale element reference: " + other)
	}
	return statusSuccess, other == e.ID
}

func (s *Server) execute(sess *session, r *http.Request) (int, any) {
	body := decodeBody(r)
	script, _ := body["script"].(string)
	args, _ := body["args"].([]any)
	v, err := s.script(script, args)
	if err != nil {
		return statusJavaScriptError, errorValue(err.Error())
	}
	return statusSuccess, v
}

func (s *Server) screenshot(sess *session, r *http.Request) (int, any) {
	if s.rawShot {
		return statusSuccess, rawReply{contentType: "image/png", body: pngImage()}
	}
	return statusSuccess, pngBase64()
}

func (s *Server) windowHandle(sess *session, r *http.Request) (int, any) {
	return statusSuccess, sess.window
}

func (s *Server) windowHandles(sess *session, r *http.Request) (int, any) {
	handles := make([]any, len(sess.windows))
	for i, h := range sess.windows {
		handles[i] = h
	}
	return statusSuccess, handles
}

func (s *Server) switchWindow(sess *session, r *http.Request) (int, any) {
	name, _ := decodeBody(r)["name"].(string)
	for _, h := range sess.windows {
		if h == name {
			sess.window = h
			sess.frames = 0
			return statusSuccess, nil
		}
	}
	return statusNoSuchWindow, errorValue("window not found: " + name)
}

func (s *Server) closeWindow(sess *session, r *http.Request) (int, any) {
	for i, h := range sess.windows {
		if h == sess.window {
			sess.windows = append(sess.windows[:i], sess.windows[i+1:]...)
			break
		}
	}
	return statusSuccess, nil
}

// frames lists the iframe elements of the current page.
func frames(sess *session) []*Element {
	found, _ := find(sess.page.Elements, "tag name", "iframe")
	return found
}

func (s *Server) switchFrame(sess *session, r *http.Request) (int, any) {
	id := decodeBody(r)["id"]
	if id == nil {
		sess.frames = 0
		return statusSuccess, nil
	}
	list := frames(sess)
	switch x := id.(type) {
	case float64:
		if int(x) >= 0 && int(x) < len(list) {
			sess.frames++
			return statusSuccess, nil
		}
	case string:
		for _, f := range list {
			if f.attr("name") == x || f.attr("id") == x {
				sess.frames++
				return statusSuccess, nil
			}
		}
	case map[string]any:
		ref, _ := x["ELEMENT"].(string)
		if e := sess.index[ref]; e != nil && e.Tag == "iframe" {
			sess.frames++
			return statusSuccess, nil
		}
	}
	return statusNoSuchFrame, errorValue("unable to locate frame")
}

func (s *Server) parentFrame(sess *session, r *http.Request) (int, any) {
	if sess.frames > 0 {
		sess.frames--
	}
	return statusSuccess, nil
}

func (s *Server) checkWindow(sess *session, r *http.Request) bool {
	h := chi.URLParam(r, "windowHandle")
	if h == "current" {
		return true
	}
	for _, w := range sess.windows {
		if w == h {
			return true
		}
	}
	return false
}

func (s *Server) windowSize(sess *session, r *http.Request) (int, any) {
	if !s.checkWindow(sess, r) {
		return statusNoSuchWindow, errorValue("window not found")
	}
	return statusSuccess, map[string]any{"width": 1024, "height": 768}
}

func (s *Server) setWindowSize(sess *session, r *http.Request) (int, any) {
	if !s.checkWindow(sess, r) {
		return statusNoSuchWindow, errorValue("window not found")
	}
	return statusSuccess, nil
}

func (s *Server) maximize(sess *session, r *http.Request) (int, any) {
	return s.setWindowSize(sess, r)
}

func (s *Server) cookies(sess *session, r *http.Request) (int, any) {
	list := make([]any, len(sess.cookies))
	for i, c := range sess.cookies {
		list[i] = c
	}
	return statusSuccess, list
}

func (s *Server) addCookie(sess *session, r *http.Request) (int, any) {
	c, _ := decodeBody(r)["cookie"].(map[string]any)
	if c == nil || c["name"] == nil {
		return 25, errorValue("unable to set cookie")
	}
	if d, ok := c["domain"].(string); ok && d != "" && !strings.Contains(sess.url, d) {
		return 24, errorValue("invalid cookie domain: " + d)
	}
	sess.cookies = append(sess.cookies, c)
	return statusSuccess, nil
}

func (s *Server) deleteCookies(sess *session, r *http.Request) (int, any) {
	sess.cookies = nil
	return statusSuccess, nil
}

func (s *Server) deleteCookie(sess *session, r *http.Request) (int, any) {
	name := chi.URLParam(r, "name")
	for i, c := range sess.cookies {
		if c["name"] == name {
			sess.cookies = append(sess.cookies[:i], sess.cookies[i+1:]...)
			break
		}
	}
	return statusSuccess, nil
}

func (s *Server) setTimeout(sess *session, r *http.Request) (int, any) {
	body := decodeBody(r)
	ms, _ := body["ms"].(float64)
	typ, _ := body["type"].(string)
	switch {
	case strings.HasSuffix(r.URL.Path, "/implicit_wait"):
		typ = "implicit"
	case strings.HasSuffix(r.URL.Path, "/async_script"):
		typ = "script"
	}
	sess.timeouts[typ] = ms
	return statusSuccess, nil
}

func (s *Server) alertText(sess *session, r *http.Request) (int, any) {
	if sess.alert == nil {
		return statusNoAlertOpen, errorValue("no alert open")
	}
	return statusSuccess, *sess.alert
}

func (s *Server) setAlertText(sess *session, r *http.Request) (int, any) {
	if sess.alert == nil {
		return statusNoAlertOpen, errorValue("no alert open")
	}
	text, _ := decodeBody(r)["text"].(string)
	*sess.alert = text
	return statusSuccess, nil
}

func (s *Server) closeAlert(sess *session, r *http.Request) (int, any) {
	if sess.alert == nil {
		return statusNoAlertOpen, errorValue("no alert open")
	}
	sess.alert = nil
	return statusSuccess, nil
}

func (s *Server) log(sess *session, r *http.Request) (int, any) {
	typ, _ := decodeBody(r)["type"].(string)
	entries := s.logs[typ]
	delete(s.logs, typ)
	list := make([]any, len(entries))
	for i, e := range entries {
		list[i] = e
	}
	return statusSuccess, list
}

func (s *Server) logTypes(sess *session, r *http.Request) (int, any) {
	types := []any{"browser", "driver"}
	return statusSuccess, types
}

func (s *Server) extension(sess *session, r *http.Request) (int, any) {
	rest := "/" + chi.URLParam(r, "*")
	fn := s.extensions[r.Method+" "+rest]
	if fn == nil {
		return 9, errorValue("unknown command: " + r.Method + " " + rest)
	}
	v, err := fn(sess.id, decodeBody(r))
	if err != nil {
		return 13, errorValue(err.Error())
	}
	return statusSuccess, v
}
