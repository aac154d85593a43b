// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package sparql

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrorType classifies a failed query execution.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeCommand the query tool could not be started or exited with an error.
	ErrorTypeCommand
	// ErrorTypeNetwork the endpoint could not be reached.
	ErrorTypeNetwork
	// ErrorTypeTimeout the query did not complete in time.
	ErrorTypeTimeout
	// ErrorTypeRateLimit the endpoint throttled us.
	ErrorTypeRateLimit
	// ErrorTypeUnauthorized the endpoint refused our credentials.
	ErrorTypeUnauthorized
	// ErrorTypeInvalidRequest the endpoint rejected the query.
	ErrorTypeInvalidRequest
	// ErrorTypeUnavailable the endpoint answered with a server error.
	ErrorTypeUnavailable
	// ErrorTypeMalformedResponse the response could not be read.
	ErrorTypeMalformedResponse
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeUnknown:           "unknown",
	ErrorTypeCommand:           "command",
	ErrorTypeNetwork:           "network",
	ErrorTypeTimeout:           "timeout",
	ErrorTypeRateLimit:         "rate limit",
	ErrorTypeUnauthorized:      "unauthorized",
	ErrorTypeInvalidRequest:    "invalid request",
	ErrorTypeUnavailable:       "unavailable",
	ErrorTypeMalformedResponse: "malformed response",
}

func (t ErrorType) String() string {
	if s, ok := errorTypeNames[t]; ok {
		return s
	}

	return fmt.Sprintf("ErrorType(%d)", int(t))
}

// QueryError is returned by executors when a query cannot be run.
type QueryError struct {
	Type     ErrorType
	Endpoint string
	Message  string
	Err      error
}

func (e *QueryError) Error() string {
	msg := e.Message
	if e.Endpoint != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Endpoint)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsQueryError reports whether err is, or wraps, a QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError

	return errors.As(err, &qe)
}

// IsTimeoutError reports whether the query timed out.
func IsTimeoutError(err error) bool {
	var qe *QueryError
	if errors.As(err, &qe) && qe.Type == ErrorTypeTimeout {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var ne net.Error

	return errors.As(err, &ne) && ne.Timeout()
}

// IsRateLimitError reports whether the endpoint throttled the query.
func IsRateLimitError(err error) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Type == ErrorTypeRateLimit
	}

	return strings.Contains(strings.ToLower(err.Error()), "too many requests")
}

// ClassifyHTTPError maps a non-200 status into a QueryError. body is the
// beginning of the response, endpoints usually explain syntax errors there.
func ClassifyHTTPError(statusCode int, body string) *QueryError {
	body = strings.TrimSpace(body)

	var err error
	if body != "" {
		err = errors.New(body)
	}

	switch statusCode {
	case http.StatusTooManyRequests:
		return &QueryError{Type: ErrorTypeRateLimit, Message: "rate limit reached", Err: err}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &QueryError{
			Type:    ErrorTypeUnauthorized,
			Message: fmt.Sprintf("access denied (status %d)", statusCode),
			Err:     err,
		}
	case http.StatusBadRequest:
		return &QueryError{Type: ErrorTypeInvalidRequest, Message: "query rejected", Err: err}
	case http.StatusNotFound:
		return &QueryError{Type: ErrorTypeInvalidRequest, Message: "endpoint not found", Err: err}
	case http.StatusGatewayTimeout:
		return &QueryError{Type: ErrorTypeTimeout, Message: "endpoint timed out", Err: err}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return &QueryError{
			Type:    ErrorTypeUnavailable,
			Message: fmt.Sprintf("endpoint unavailable (status %d)", statusCode),
			Err:     err,
		}
	default:
		return &QueryError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
			Err:     err,
		}
	}
}
