// Copyright 2025 The CityRes Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"
	"github.com/uber/h3-go/v4"
)

// GeohashPrecision is the number of geohash characters kept for a box centre.
// Seven characters are roughly a 150m cell, finer than any city box.
const GeohashPrecision = 7

// BoundingBox is a rectangular region bounded by two latitudes and two
// longitudes. It is not validated: a box with North < South is legal and
// simply contains nothing.
type BoundingBox struct {
	North float64 `json:"north"`
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
}

// NorthWest returns the north-west corner.
func (b BoundingBox) NorthWest() Point {
	return Point{Lat: b.North, Lng: b.West}
}

// SouthEast returns the south-east corner.
func (b BoundingBox) SouthEast() Point {
	return Point{Lat: b.South, Lng: b.East}
}

func (b BoundingBox) rect() s2.Rect {
	r := s2.RectFromLatLng(s2.LatLngFromDegrees(b.North, b.West))

	return r.AddPoint(s2.LatLngFromDegrees(b.South, b.East))
}

// Center returns the centre of the smallest rectangle covering both corners.
func (b BoundingBox) Center() Point {
	c := b.rect().Center()

	return Point{Lat: c.Lat.Degrees(), Lng: c.Lng.Degrees()}
}

// Contains reports whether p lies strictly inside the box, with
// South < Lat < North and West < Lng < East. Points on an edge are outside,
// and an inverted box contains nothing.
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat < b.North && p.Lat > b.South && p.Lng > b.West && p.Lng < b.East
}

// Span returns the length of the box diagonal in meters.
func (b BoundingBox) Span() float64 {
	nw, se := b.NorthWest(), b.SouthEast()

	return nw.HaversineDistance(&se)
}

// Geohash returns the geohash of the box centre truncated to GeohashPrecision.
func (b BoundingBox) Geohash() string {
	c := b.Center()

	h := geohash.Encode(c.Lat, c.Lng)
	if len(h) > GeohashPrecision {
		h = h[:GeohashPrecision]
	}

	return h
}

// Cell returns the H3 cell containing the box centre at the given resolution.
func (b BoundingBox) Cell(res int) (int64, error) {
	c := b.Center()

	cell, err := h3.LatLngToCell(h3.NewLatLng(c.Lat, c.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("converting to h3 cell at res %d: %w", res, err)
	}

	return int64(cell), nil
}
