// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"errors"
	"fmt"
)

// ErrorKind tells which rule of the search string format was broken.
type ErrorKind int

const (
	// MissingSeparator the input has no ';'.
	MissingSeparator ErrorKind = iota + 1
	// BadCoordinateCount the coordinate part is not exactly four values.
	BadCoordinateCount
	// BadNumber a coordinate is not a finite number.
	BadNumber
)

// Sentinels matching each ErrorKind, usable with errors.Is.
var (
	ErrMissingSeparator   = errors.New("missing ';' separator")
	ErrBadCoordinateCount = errors.New("expected north,west,south,east")
	ErrBadNumber          = errors.New("invalid coordinate")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case MissingSeparator:
		return ErrMissingSeparator
	case BadCoordinateCount:
		return ErrBadCoordinateCount
	case BadNumber:
		return ErrBadNumber
	default:
		return nil
	}
}

func (k ErrorKind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}

	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseError reports a malformed search string.
type ParseError struct {
	Kind  ErrorKind
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing search %q: %s: %v", e.Input, e.Kind, e.Err)
	}

	return fmt.Sprintf("parsing search %q: %s", e.Input, e.Kind)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrBadNumber) and friends work.
func (e *ParseError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// IsParseError reports whether err is, or wraps, a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError

	return errors.As(err, &pe)
}
