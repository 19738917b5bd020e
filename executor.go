// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every HTTP round trip of an HTTPExecutor.
const DefaultTimeout = 15 * time.Second

// CommandExecutor sends commands to a remote end.
type CommandExecutor interface {
	Execute(ctx context.Context, cmd *Command) (*Response, error)
}

// HTTPExecutor executes commands over HTTP against a JSON Wire Protocol
// remote end. It keeps no state between calls besides its configuration.
type HTTPExecutor struct {
	url    string
	client *http.Client
	router *Router
	logger *slog.Logger
}

type ExecutorOption func(*HTTPExecutor)

// WithTimeout replaces DefaultTimeout.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *HTTPExecutor) { e.client.Timeout = d }
}

// WithHTTPClient uses c for all requests. Its Timeout is left untouched.
func WithHTTPClient(c *http.Client) ExecutorOption {
	return func(e *HTTPExecutor) { e.client = c }
}

func WithLogger(l *slog.Logger) ExecutorOption {
	return func(e *HTTPExecutor) { e.logger = l }
}

// WithRouter shares a router, so extension commands registered on it are
// visible to this executor.
func WithRouter(r *Router) ExecutorOption {
	return func(e *HTTPExecutor) { e.router = r }
}

// NewHTTPExecutor returns an executor for the remote end at baseURL, for
// example "http://127.0.0.1:4444/wd/hub".
func NewHTTPExecutor(baseURL string, opts ...ExecutorOption) *HTTPExecutor {
	e := &HTTPExecutor{
		url: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: DefaultTimeout,
			// redirects of POST /session are followed by do
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		router: NewRouter(),
		logger: discardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *HTTPExecutor) URL() string     { return e.url }
func (e *HTTPExecutor) Router() *Router { return e.router }

// Execute resolves cmd, sends it and decodes the reply. An error is
// returned only when no usable reply was received; remote failures come
// back as a Response with a non-success status.
func (e *HTTPExecutor) Execute(ctx context.Context, cmd *Command) (*Response, error) {
	info, err := e.router.Resolve(cmd.Name)
	if err != nil {
		return nil, err
	}
	params, err := cmd.Params.wire()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd.Name, err)
	}
	path, err := info.expand(cmd, params)
	if err != nil {
		return nil, err
	}
	var body []byte
	if info.Method == "POST" {
		body, err = json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("%s: encode parameters: %w", cmd.Name, err)
		}
	}
	return e.do(ctx, info.Method, e.url+path, body)
}

func newRequest(ctx context.Context, method, url string, data []byte) (*http.Request, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}
	request, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if method == "POST" {
		request.Header.Add("Content-Type", "application/json;charset=utf-8")
	}
	request.Header.Set("Accept", "application/json, image/png")
	request.Header.Set("Accept-Charset", "utf-8")
	return request, nil
}

func isRedirect(response *http.Response) bool {
	r := response.StatusCode
	return r == http.StatusFound || r == http.StatusSeeOther
}

// communicate with the server.
func (e *HTTPExecutor) do(ctx context.Context, method, url string, body []byte) (*Response, error) {
	e.logger.Debug(">> "+method+" "+url, "body", truncate(body, 1024))
	request, err := newRequest(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	response, err := e.client.Do(request)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	defer response.Body.Close()
	e.logger.Debug("<< status", "code", response.StatusCode)

	if method == "POST" && isRedirect(response) {
		location, err := response.Location()
		if err != nil {
			return nil, &TransportError{Method: method, URL: url, Err: err}
		}
		e.logger.Debug("redirected", "location", location.String())
		return e.do(ctx, "GET", location.String(), nil)
	}

	buf, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	e.logger.Debug("<< "+truncate(buf, 1024), "content_type", response.Header.Get("Content-Type"))
	return parseResponse(response.StatusCode, response.Header.Get("Content-Type"), buf)
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// isText reports whether a non-JSON body is text. Image payloads are
// passed through byte for byte.
func isText(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && strings.HasPrefix(mediaType, "text/")
}

// parseResponse decodes a reply body. Replies that are not JSON are kept
// as raw text with a status derived from the HTTP code.
func parseResponse(code int, contentType string, buf []byte) (*Response, error) {
	resp := &Response{}
	if !isJSON(contentType) {
		resp.Status = statusFromHTTP(code)
		if len(buf) > 0 {
			resp.Value = string(buf)
			if isText(contentType) {
				resp.Value = normalizeNewlines(resp.Value)
			}
		}
		return resp, nil
	}

	jr := &jsonResponse{}
	if err := json.Unmarshal(buf, jr); err != nil {
		if code < 400 {
			return nil, fmt.Errorf("%w: response must be a JSON object: %v", ErrMalformedResponse, err)
		}
		resp.Status = statusFromHTTP(code)
		resp.Value = normalizeNewlines(string(buf))
		return resp, nil
	}
	resp.SessionID = jr.sessionID()
	if jr.Status != nil {
		resp.Status = *jr.Status
	}
	if code >= 400 && resp.Status == Success {
		resp.Status = statusFromHTTP(code)
	}
	if len(jr.RawValue) > 0 {
		var value any
		if err := json.Unmarshal(jr.RawValue, &value); err != nil {
			return nil, fmt.Errorf("%w: value: %v", ErrMalformedResponse, err)
		}
		resp.Value = normalizeNewlines(value)
	}
	return resp, nil
}
