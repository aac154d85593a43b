// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jcodagnone/cityres/spatial"
)

// H3Resolution is the H3 resolution stored for box centres, cells of about
// 250km², the size of a metropolitan area.
const H3Resolution = 5

// Resolution is a logged Result with the geography of its box.
type Resolution struct {
	Search     string              `json:"search"`
	Name       string              `json:"name"`
	Box        spatial.BoundingBox `json:"box"`
	Center     spatial.Point       `json:"center"`
	Geohash    string              `json:"geohash"`
	H3Res5     int64               `json:"h3_res5,omitempty"`
	SpanMeters float64             `json:"span_m"`
	Source     Source              `json:"source"`
	Candidates int                 `json:"candidates"`
	Chosen     string              `json:"chosen,omitempty"`
	ResolvedAt time.Time           `json:"resolved_at"`
}

// NewResolution builds the log record of r.
func NewResolution(r *Result) *Resolution {
	box := r.Spec.Box()

	ret := &Resolution{
		Search:     r.Spec.Source,
		Name:       r.Spec.Name,
		Box:        box,
		Center:     box.Center(),
		Geohash:    box.Geohash(),
		SpanMeters: box.Span(),
		Source:     r.Source,
		Candidates: len(r.Candidates),
		Chosen:     r.Chosen,
		ResolvedAt: r.ResolvedAt,
	}

	// boxes are not validated, a centre off the globe has no cell
	if cell, err := box.Cell(H3Resolution); err == nil {
		ret.H3Res5 = cell
	}

	return ret
}

// ResolutionRepository keeps a log of resolutions.
type ResolutionRepository interface {
	// CreateSchema creates the resolutions table
	CreateSchema() error

	// SaveResolutions appends results to the log
	SaveResolutions(results []*Result) error

	// ListResolutions returns the latest resolutions first, all when limit is 0
	ListResolutions(limit int) ([]*Resolution, error)

	// CountResolutions returns the number of logged resolutions
	CountResolutions() (int, error)
}

type sqlResolutionRepository struct {
	db *sql.DB
}

// NewResolutionRepository creates a repository on a DuckDB connection.
func NewResolutionRepository(db *sql.DB) ResolutionRepository {
	return &sqlResolutionRepository{db: db}
}

func (r *sqlResolutionRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS resolutions (
			search      VARCHAR NOT NULL,
			name        VARCHAR NOT NULL,
			north       DOUBLE NOT NULL,
			west        DOUBLE NOT NULL,
			south       DOUBLE NOT NULL,
			east        DOUBLE NOT NULL,
			center      VARCHAR,
			geohash     VARCHAR,
			h3_res5     BIGINT,
			span_m      DOUBLE,
			source      VARCHAR NOT NULL,
			candidates  INTEGER NOT NULL,
			chosen      VARCHAR,
			resolved_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating resolutions table: %w", err)
	}

	return nil
}

func nullIfZero[T comparable](v T) any {
	var zero T
	if v == zero {
		return nil
	}

	return v
}

func (r *sqlResolutionRepository) SaveResolutions(results []*Result) (err error) {
	if len(results) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO resolutions (
			search, name, north, west, south, east,
			center, geohash, h3_res5, span_m,
			source, candidates, chosen, resolved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, res := range results {
		rec := NewResolution(res)

		if _, err = stmt.Exec(
			rec.Search, rec.Name,
			rec.Box.North, rec.Box.West, rec.Box.South, rec.Box.East,
			rec.Center.String(), rec.Geohash, nullIfZero(rec.H3Res5), rec.SpanMeters,
			string(rec.Source), rec.Candidates, nullIfZero(rec.Chosen), rec.ResolvedAt,
		); err != nil {
			return fmt.Errorf("saving resolution %q: %w", rec.Search, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing resolutions: %w", err)
	}

	log.Printf("Logged %d resolution(s)", len(results))

	return nil
}

func (r *sqlResolutionRepository) ListResolutions(limit int) ([]*Resolution, error) {
	query := `
		SELECT
			search, name, north, west, south, east,
			center, geohash, h3_res5, span_m,
			source, candidates, chosen, resolved_at
		FROM resolutions
		ORDER BY resolved_at DESC, search
	`

	var args []any
	if limit > 0 {
		query += " LIMIT ?"

		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying resolutions: %w", err)
	}
	defer rows.Close()

	var ret []*Resolution

	for rows.Next() {
		var (
			rec    Resolution
			h3     sql.NullInt64
			chosen sql.NullString
			source string
		)

		if err := rows.Scan(
			&rec.Search, &rec.Name,
			&rec.Box.North, &rec.Box.West, &rec.Box.South, &rec.Box.East,
			&rec.Center, &rec.Geohash, &h3, &rec.SpanMeters,
			&source, &rec.Candidates, &chosen, &rec.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning resolution: %w", err)
		}

		rec.H3Res5 = h3.Int64
		rec.Chosen = chosen.String
		rec.Source = Source(source)

		ret = append(ret, &rec)
	}

	return ret, rows.Err()
}

func (r *sqlResolutionRepository) CountResolutions() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM resolutions").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting resolutions: %w", err)
	}

	return count, nil
}
