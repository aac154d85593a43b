// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"log"
	"time"

	"github.com/jcodagnone/cityres/search"
	"github.com/jcodagnone/cityres/sparql"
)

// Source tells where the candidates of a Result came from.
type Source string

const (
	// SourceLive the endpoint returned the candidates.
	SourceLive Source = "live"
	// SourceOverride the endpoint returned nothing and the override table answered.
	SourceOverride Source = "override"
	// SourceNone neither the endpoint nor the override table had candidates.
	SourceNone Source = "none"
)

// Result is the outcome of one resolution. When Found is false there was no
// candidate at all, which is not an error.
type Result struct {
	Spec       *search.Spec `json:"spec"`
	Query      string       `json:"query"`
	Candidates []string     `json:"candidates"`
	Source     Source       `json:"source"`
	Chosen     string       `json:"chosen,omitempty"`
	Found      bool         `json:"found"`
	ResolvedAt time.Time    `json:"resolved_at"`
}

// Service resolves search strings against a SPARQL endpoint.
type Service struct {
	executor  sparql.Executor
	endpoint  string
	builder   sparql.QueryBuilder
	overrides *OverrideTable
}

// Option configures a Service.
type Option func(*Service)

// WithOverrides replaces the default override table. A nil table disables
// overrides.
func WithOverrides(t *OverrideTable) Option {
	return func(s *Service) {
		s.overrides = t
	}
}

// WithQueryBuilder replaces the default query builder.
func WithQueryBuilder(b sparql.QueryBuilder) Option {
	return func(s *Service) {
		s.builder = b
	}
}

// NewService creates a service running its queries with executor on endpoint.
func NewService(executor sparql.Executor, endpoint string, opts ...Option) *Service {
	s := &Service{
		executor:  executor,
		endpoint:  endpoint,
		overrides: DefaultOverrides(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Endpoint returns the address queries are sent to.
func (s *Service) Endpoint() string {
	return s.endpoint
}

// Overrides returns the override table in use, possibly nil.
func (s *Service) Overrides() *OverrideTable {
	return s.overrides
}

// Query parses raw and returns the query Resolve would run, without running it.
func (s *Service) Query(raw string) (string, error) {
	spec, err := search.Parse(raw)
	if err != nil {
		return "", err
	}

	return s.builder.Build(spec), nil
}

// Resolve parses raw, queries the endpoint and picks the best candidate.
//
// Parse errors and executor errors are returned untouched. The override table
// is only consulted when the query succeeded with no candidates, never after a
// failure.
func (s *Service) Resolve(ctx context.Context, raw string) (*Result, error) {
	spec, err := search.Parse(raw)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Spec:   spec,
		Query:  s.builder.Build(spec),
		Source: SourceLive,
	}

	out, err := s.executor.Execute(ctx, res.Query, s.endpoint)
	if err != nil {
		return nil, err
	}

	res.Candidates = sparql.ParseCandidates(out)

	if len(res.Candidates) == 0 {
		res.Candidates = s.overrides.Lookup(spec.Source)
		res.Source = SourceOverride

		if len(res.Candidates) > 0 {
			log.Printf("No live candidates for %q, using %d override(s)", spec.Source, len(res.Candidates))
		}
	}

	res.ResolvedAt = time.Now().UTC()

	if len(res.Candidates) == 0 {
		res.Candidates = []string{}
		res.Source = SourceNone

		return res, nil
	}

	res.Chosen = Choose(spec.Name, res.Candidates)
	res.Found = true

	return res, nil
}
