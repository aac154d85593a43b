// Copyright 2025 The CityRes Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"database/sql/driver"
	"fmt"
	"math"
)

const earthRadius = 6371e3 // meters

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns the WKT representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Value implements the driver.Valuer interface for database serialization.
func (p Point) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (p *Point) Scan(value any) error {
	var s string

	switch v := value.(type) {
	case nil:
		p.Lat, p.Lng = 0, 0

		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("spatial: unsupported type for Point scan: %T", value)
	}

	if _, err := fmt.Sscanf(s, "POINT(%f %f)", &p.Lng, &p.Lat); err != nil {
		return fmt.Errorf("spatial: parsing point %q: %w", s, err)
	}

	return nil
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p *Point) HaversineDistance(other *Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}
