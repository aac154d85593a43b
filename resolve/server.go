// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/cityres/search"
)

// Server exposes a Service over HTTP.
type Server struct {
	service *Service
	repo    ResolutionRepository
}

// NewServer creates a server. repo may be nil, in which case resolutions are
// not logged and /api/resolutions answers 503.
func NewServer(service *Service, repo ResolutionRepository) *Server {
	return &Server{service: service, repo: repo}
}

// Router returns the handler serving the API.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/api/resolve", s.resolve)
	r.GET("/api/query", s.query)
	r.GET("/api/overrides", s.listOverrides)
	r.GET("/api/resolutions", s.listResolutions)

	return r
}

// Run serves the API on addr until it fails.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

type resolveResponse struct {
	Search     string   `json:"search"`
	Name       string   `json:"name"`
	Query      string   `json:"query"`
	Source     Source   `json:"source"`
	Candidates []string `json:"candidates"`
	Chosen     string   `json:"chosen,omitempty"`
	Found      bool     `json:"found"`
}

func (s *Server) resolve(ctx *gin.Context) {
	raw, ok := ctx.GetQuery("search")
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "search query parameter is required"})

		return
	}

	res, err := s.service.Resolve(ctx.Request.Context(), raw)
	if err != nil {
		status := http.StatusBadGateway
		if search.IsParseError(err) {
			status = http.StatusBadRequest
		}

		ctx.JSON(status, gin.H{"error": err.Error()})

		return
	}

	if s.repo != nil {
		if err := s.repo.SaveResolutions([]*Result{res}); err != nil {
			log.Printf("Failed to log resolution of %q: %v", raw, err)
		}
	}

	status := http.StatusOK
	if !res.Found {
		status = http.StatusNotFound
	}

	ctx.JSON(status, resolveResponse{
		Search:     res.Spec.Source,
		Name:       res.Spec.Name,
		Query:      res.Query,
		Source:     res.Source,
		Candidates: res.Candidates,
		Chosen:     res.Chosen,
		Found:      res.Found,
	})
}

func (s *Server) query(ctx *gin.Context) {
	q, err := s.service.Query(ctx.Query("search"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"query": q})
}

func (s *Server) listOverrides(ctx *gin.Context) {
	entries := make([]OverrideEntry, 0, s.service.Overrides().Len())

	_ = s.service.Overrides().Each(func(e OverrideEntry) error {
		entries = append(entries, e)

		return nil
	})

	ctx.JSON(http.StatusOK, entries)
}

func (s *Server) listResolutions(ctx *gin.Context) {
	if s.repo == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "resolution log is not configured"})

		return
	}

	limit := 100

	if v := ctx.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})

			return
		}

		limit = n
	}

	list, err := s.repo.ListResolutions(limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if list == nil {
		list = []*Resolution{}
	}

	ctx.JSON(http.StatusOK, list)
}
