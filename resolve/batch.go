// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// BatchItem is the outcome of one line of a batch.
type BatchItem struct {
	Line   int
	Search string
	Result *Result
	Err    error
}

// BatchMetrics summarises a batch run.
type BatchMetrics struct {
	Resolved  int
	Overrides int
	NoMatch   int
	Failed    int
}

// Metrics counts the outcomes of items.
func Metrics(items []BatchItem) BatchMetrics {
	var m BatchMetrics

	for _, it := range items {
		switch {
		case it.Err != nil:
			m.Failed++
		case !it.Result.Found:
			m.NoMatch++
		case it.Result.Source == SourceOverride:
			m.Resolved++
			m.Overrides++
		default:
			m.Resolved++
		}
	}

	return m
}

// Batch resolves every search with up to workers concurrent resolutions, zero
// meaning the number of CPUs. Items come back in input order. A failing line
// does not stop the others; the failures are also returned joined together.
// progress, when not nil, is called once per finished line, from any goroutine.
func Batch(ctx context.Context, svc *Service, searches []string, workers int, progress func()) ([]BatchItem, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	items := make([]BatchItem, len(searches))

	var wg sync.WaitGroup

	for i, s := range searches {
		items[i] = BatchItem{Line: i + 1, Search: s}

		wg.Add(1)

		submitErr := pool.Submit(func() {
			defer wg.Done()

			items[i].Result, items[i].Err = svc.Resolve(ctx, s)

			if progress != nil {
				progress()
			}
		})
		if submitErr != nil {
			wg.Done()

			items[i].Err = fmt.Errorf("submitting: %w", submitErr)
		}
	}

	wg.Wait()

	var errs []error

	for _, it := range items {
		if it.Err != nil {
			errs = append(errs, fmt.Errorf("line %d %q: %w", it.Line, it.Search, it.Err))
		}
	}

	return items, errors.Join(errs...)
}
