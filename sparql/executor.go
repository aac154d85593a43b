// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package sparql

import "context"

// Executor runs a query against endpoint and returns the raw tabular result,
// header line included.
type Executor interface {
	Execute(ctx context.Context, query, endpoint string) (string, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, query, endpoint string) (string, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, query, endpoint string) (string, error) {
	return f(ctx, query, endpoint)
}
