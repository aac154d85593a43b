// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/cityres/sparql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServerTest(t *testing.T, repo ResolutionRepository) (*gin.Engine, *stubExecutor) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	exec := newStubExecutor()
	exec.answer(t, "Montreal;45.7058,-73.9742,45.41,-73.474", "uri\nhttp://dbpedia.org/resource/Montreal\n")
	exec.fail(t, "Broken;1,2,3,4", &sparql.QueryError{Type: sparql.ErrorTypeUnavailable, Message: "endpoint down"})

	return NewServer(NewService(exec, testEndpoint), repo).Router(), exec
}

func get(t *testing.T, router http.Handler, path string, params url.Values) *httptest.ResponseRecorder {
	t.Helper()

	if params != nil {
		path += "?" + params.Encode()
	}

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	router.ServeHTTP(w, req)

	return w
}

func TestResolveAPI(t *testing.T) {
	_, repo := setupTestDB(t)
	router, _ := setupServerTest(t, repo)

	w := get(t, router, "/api/resolve", url.Values{"search": {"Montreal;45.7058,-73.9742,45.41,-73.474"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body resolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Found)
	assert.Equal(t, "Montreal", body.Name)
	assert.Equal(t, SourceLive, body.Source)
	assert.Equal(t, "http://dbpedia.org/resource/Montreal", body.Chosen)

	count, err := repo.CountResolutions()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestResolveAPIOverride(t *testing.T) {
	router, _ := setupServerTest(t, nil)

	w := get(t, router, "/api/resolve", url.Values{"search": {noosaSearch}})
	require.Equal(t, http.StatusOK, w.Code)

	var body resolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, SourceOverride, body.Source)
	assert.Equal(t, "http://dbpedia.org/resource/Noosa_Heads,_Queensland", body.Chosen)
}

func TestResolveAPIErrors(t *testing.T) {
	router, _ := setupServerTest(t, nil)

	tests := []struct {
		name   string
		params url.Values
		status int
	}{
		{"no match", url.Values{"search": {"Nowhere;1,2,3,5"}}, http.StatusNotFound},
		{"parse error", url.Values{"search": {"Nowhere"}}, http.StatusBadRequest},
		{"missing parameter", nil, http.StatusBadRequest},
		{"executor error", url.Values{"search": {"Broken;1,2,3,4"}}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, router, "/api/resolve", tt.params)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestResolveAPINoMatchBody(t *testing.T) {
	router, _ := setupServerTest(t, nil)

	w := get(t, router, "/api/resolve", url.Values{"search": {"Nowhere;1,2,3,5"}})
	require.Equal(t, http.StatusNotFound, w.Code)

	var body resolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Found)
	assert.Equal(t, SourceNone, body.Source)
	assert.NotNil(t, body.Candidates)
}

func TestQueryAPI(t *testing.T) {
	router, exec := setupServerTest(t, nil)

	w := get(t, router, "/api/query", url.Values{"search": {"Lyon;1,2,3,4"}})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["query"], "SELECT DISTINCT ?uri")
	assert.Empty(t, exec.calls, "query must not execute anything")

	w = get(t, router, "/api/query", url.Values{"search": {"Lyon;x,2,3,4"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOverridesAPI(t *testing.T) {
	router, _ := setupServerTest(t, nil)

	w := get(t, router, "/api/overrides", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []OverrideEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, DefaultOverrides().Len())
}

func TestResolutionsAPI(t *testing.T) {
	router, _ := setupServerTest(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, router, "/api/resolutions", nil).Code)

	_, repo := setupTestDB(t)
	router, _ = setupServerTest(t, repo)

	w := get(t, router, "/api/resolutions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	get(t, router, "/api/resolve", url.Values{"search": {noosaSearch}})
	get(t, router, "/api/resolve", url.Values{"search": {"Nowhere;1,2,3,5"}})

	w = get(t, router, "/api/resolutions", url.Values{"limit": {"1"}})
	require.Equal(t, http.StatusOK, w.Code)

	var list []Resolution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/resolutions", url.Values{"limit": {"x"}}).Code)
}
