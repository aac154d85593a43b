// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package sparql

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"
)

const formContentType = "application/x-www-form-urlencoded"

// traceTransport writes a primitive trace of each HTTP exchange to w.
type traceTransport struct {
	next     http.RoundTripper
	w        io.Writer
	dumpBody bool
}

// abbreviate prefixes every line and keeps huge result sets readable.
func abbreviate(lines []string, prefix rune) []string {
	const maxLines, maxChars = 512, 512

	if len(lines) > maxLines {
		lines = append(lines[:maxLines], "…")
	}

	for i, line := range lines {
		if len(line) > maxChars {
			line = line[:maxChars] + "…"
		}

		lines[i] = fmt.Sprintf("%c %s", prefix, line)
	}

	return lines
}

func (t *traceTransport) dumpRequest(req *http.Request) error {
	r := req
	if r.Header.Get("Authorization") != "" {
		r = req.Clone(req.Context())
		r.Header.Set("Authorization", "[redacted]")
	}

	// DumpRequestOut swaps the body of r for a fresh reader
	dump, err := httputil.DumpRequestOut(r, t.dumpBody)
	req.Body = r.Body

	if err != nil {
		return fmt.Errorf("tracing HTTP request: %w", err)
	}

	text := string(dump)

	// the query travels form encoded, show it as the user wrote it
	if t.dumpBody && req.Header.Get("Content-Type") == formContentType {
		if s, err := url.QueryUnescape(text); err == nil {
			text = s
		}
	}

	lines := abbreviate(strings.Split(text, "\n"), '>')
	lines = append(lines, "")
	_, err = fmt.Fprint(t.w, strings.Join(lines, "\n"))

	return err
}

func (t *traceTransport) dumpResponse(resp *http.Response, duration time.Duration) error {
	dump, err := httputil.DumpResponse(resp, t.dumpBody)
	if err != nil {
		return fmt.Errorf("tracing HTTP response: %w", err)
	}

	if _, err := fmt.Fprintf(t.w, "< RESPONSE: [%v]\n", duration); err != nil {
		return fmt.Errorf("tracing HTTP response: %w", err)
	}

	lines := abbreviate(strings.Split(string(dump), "\n"), '<')
	lines = append(lines, "")
	_, err = fmt.Fprint(t.w, strings.Join(lines, "\n"))

	return err
}

// RoundTrip implements the http.RoundTripper interface.
func (t *traceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.w == nil {
		return t.next.RoundTrip(req)
	}

	if err := t.dumpRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if err := t.dumpResponse(resp, time.Since(start)); err != nil {
		return nil, err
	}

	return resp, nil
}

// headerTransport sets fixed headers on every request.
type headerTransport struct {
	next    http.RoundTripper
	headers map[string]string
}

// RoundTrip implements the http.RoundTripper interface.
func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	return t.next.RoundTrip(req)
}
