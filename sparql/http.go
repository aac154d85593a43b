// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package sparql

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/oauth2"
)

const (
	csvMediaType     = "text/csv"
	defaultUserAgent = "cityres/unknown"
	maxErrorBody     = 512
)

// HTTPOptions configures an HTTPExecutor.
type HTTPOptions struct {
	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Token, when set, is sent as an OAuth2 bearer token
	Token string

	// Timeout for a whole query, zero means 60 seconds
	Timeout time.Duration

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool

	// TraceWriter receives the traces, os.Stderr when nil
	TraceWriter io.Writer
}

// HTTPExecutor speaks the SPARQL 1.1 protocol: the query is POSTed form
// encoded and the result requested as CSV.
type HTTPExecutor struct {
	client *http.Client
}

// NewHTTPExecutor creates an executor with the given options.
func NewHTTPExecutor(options *HTTPOptions) *HTTPExecutor {
	if options == nil {
		options = &HTTPOptions{}
	}

	var traceWriter io.Writer
	if options.EnableHTTPTrace || options.EnableHTTPBodyTrace {
		traceWriter = options.TraceWriter
		if traceWriter == nil {
			traceWriter = os.Stderr
		}
	}

	userAgent := defaultUserAgent
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	timeout := 60 * time.Second
	if options.Timeout > 0 {
		timeout = options.Timeout
	}

	var transport http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	transport = &traceTransport{
		next:     transport,
		w:        traceWriter,
		dumpBody: options.EnableHTTPBodyTrace,
	}

	transport = &headerTransport{
		next: transport,
		headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     csvMediaType,
		},
	}

	if options.Token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: options.Token, TokenType: "Bearer"}),
			Base:   transport,
		}
	}

	return &HTTPExecutor{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Execute implements Executor.
func (e *HTTPExecutor) Execute(ctx context.Context, query, endpoint string) (string, error) {
	form := url.Values{}
	form.Set("query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &QueryError{
			Type:     ErrorTypeInvalidRequest,
			Endpoint: endpoint,
			Message:  "creating request",
			Err:      err,
		}
	}

	req.Header.Set("Content-Type", formContentType)

	resp, err := e.client.Do(req)
	if err != nil {
		errType := ErrorTypeNetwork
		if IsTimeoutError(err) {
			errType = ErrorTypeTimeout
		}

		return "", &QueryError{Type: errType, Endpoint: endpoint, Message: "querying endpoint", Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		qe := ClassifyHTTPError(resp.StatusCode, string(body))
		qe.Endpoint = endpoint

		return "", qe
	}

	text, err := readBody(resp)
	if err != nil {
		return "", &QueryError{
			Type:     ErrorTypeMalformedResponse,
			Endpoint: endpoint,
			Message:  "reading response",
			Err:      err,
		}
	}

	return text, nil
}

// readBody decodes the body only when the server declares a charset, bytes
// are otherwise passed through untouched. SPARQL CSV uses CRLF line endings,
// they are turned into plain newlines.
func readBody(resp *http.Response) (string, error) {
	var r io.Reader = resp.Body

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, params, err := mime.ParseMediaType(ct)
		if err != nil {
			return "", fmt.Errorf("parsing content type %q: %w", ct, err)
		}

		if strings.HasPrefix(mediaType, "text/html") {
			return "", errors.New("endpoint returned an HTML page")
		}

		if label := params["charset"]; label != "" {
			r, err = charset.NewReaderLabel(label, resp.Body)
			if err != nil {
				return "", fmt.Errorf("decoding %s: %w", label, err)
			}
		}
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	return normalizeNewlines(string(body)), nil
}
