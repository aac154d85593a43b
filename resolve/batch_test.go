// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/jcodagnone/cityres/search"
	"github.com/jcodagnone/cityres/sparql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch(t *testing.T) {
	exec := newStubExecutor()
	exec.answer(t, "Montreal;45.7058,-73.9742,45.41,-73.474", "uri\nhttp://dbpedia.org/resource/Montreal\n")
	exec.fail(t, "Broken;1,2,3,4", &sparql.QueryError{Type: sparql.ErrorTypeTimeout, Message: "too slow"})

	searches := []string{
		"Montreal;45.7058,-73.9742,45.41,-73.474",
		noosaSearch,
		"Nowhere;9,9,9,9",
		"Broken;1,2,3,4",
		"garbage",
	}

	var done atomic.Int32

	items, err := Batch(context.Background(), NewService(exec, testEndpoint), searches, 2, func() { done.Add(1) })
	require.Error(t, err)
	require.Len(t, items, len(searches))
	assert.Equal(t, int32(len(searches)), done.Load())

	for i, it := range items {
		assert.Equal(t, i+1, it.Line)
		assert.Equal(t, searches[i], it.Search)
	}

	assert.Equal(t, "http://dbpedia.org/resource/Montreal", items[0].Result.Chosen)
	assert.Equal(t, SourceOverride, items[1].Result.Source)
	assert.False(t, items[2].Result.Found)
	assert.True(t, sparql.IsTimeoutError(items[3].Err))
	assert.True(t, errors.Is(items[4].Err, search.ErrMissingSeparator))

	assert.True(t, errors.Is(err, search.ErrMissingSeparator))
	assert.Contains(t, err.Error(), `line 4 "Broken;1,2,3,4"`)

	assert.Equal(t, BatchMetrics{Resolved: 2, Overrides: 1, NoMatch: 1, Failed: 2}, Metrics(items))
}

func TestBatchEmpty(t *testing.T) {
	items, err := Batch(context.Background(), NewService(newStubExecutor(), testEndpoint), nil, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}
