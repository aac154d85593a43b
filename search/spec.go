// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

// Package search parses search strings of the form
// "<name>;<north>,<west>,<south>,<east>".
package search

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jcodagnone/cityres/spatial"
)

const (
	nameSeparator  = ";"
	coordSeparator = ","
	coordCount     = 4
)

// Spec is a parsed search string. It is never mutated after Parse.
type Spec struct {
	// Source is the unparsed input, kept byte for byte.
	Source string `json:"search"`
	// Name is everything before the first ';', untouched.
	Name  string  `json:"name"`
	North float64 `json:"north"`
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
}

// Box returns the bounding box of the spec.
func (s *Spec) Box() spatial.BoundingBox {
	return spatial.BoundingBox{North: s.North, West: s.West, South: s.South, East: s.East}
}

// String renders the spec back into the search string format.
func (s *Spec) String() string {
	return s.Name + nameSeparator + strings.Join([]string{
		formatCoord(s.North),
		formatCoord(s.West),
		formatCoord(s.South),
		formatCoord(s.East),
	}, coordSeparator)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Parse splits raw on its first ';' and reads the four coordinates that
// follow. The name is neither trimmed, folded nor decoded, so badly encoded
// input passes through unchanged. The box itself is not validated.
func Parse(raw string) (*Spec, error) {
	name, coords, ok := strings.Cut(raw, nameSeparator)
	if !ok {
		return nil, &ParseError{Kind: MissingSeparator, Input: raw}
	}

	tokens := strings.Split(coords, coordSeparator)
	if len(tokens) != coordCount {
		return nil, &ParseError{
			Kind:  BadCoordinateCount,
			Input: raw,
			Err:   fmt.Errorf("got %d coordinates, want %d", len(tokens), coordCount),
		}
	}

	var values [coordCount]float64

	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, &ParseError{Kind: BadNumber, Input: raw, Err: err}
		}

		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &ParseError{
				Kind:  BadNumber,
				Input: raw,
				Err:   fmt.Errorf("coordinate %q is not finite", tok),
			}
		}

		values[i] = v
	}

	return &Spec{
		Source: raw,
		Name:   name,
		North:  values[0],
		West:   values[1],
		South:  values[2],
		East:   values[3],
	}, nil
}
