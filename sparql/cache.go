// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package sparql

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

const cacheKeyPrefix = "q:"

// badgerLogger sends badger warnings and errors to the standard logger and
// drops the chatty levels.
type badgerLogger struct{}

var _ badger.Logger = badgerLogger{}

func (badgerLogger) Errorf(msg string, items ...any) {
	log.Printf("cache error: "+msg, items...)
}

func (badgerLogger) Warningf(msg string, items ...any) {
	log.Printf("cache warning: "+msg, items...)
}

func (badgerLogger) Infof(string, ...any) {}

func (badgerLogger) Debugf(string, ...any) {}

// CachingExecutor remembers successful responses of another Executor in a
// badger store. Failures are never cached.
type CachingExecutor struct {
	next Executor
	db   *badger.DB
	ttl  time.Duration
}

// OpenCachingExecutor opens (or creates) the cache at dir. An empty dir keeps
// the cache in memory. A zero ttl keeps entries forever.
func OpenCachingExecutor(next Executor, dir string, ttl time.Duration) (*CachingExecutor, error) {
	var opts badger.Options

	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}

		opts = badger.DefaultOptions(dir)
	}

	opts.Logger = badgerLogger{}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	return &CachingExecutor{next: next, db: db, ttl: ttl}, nil
}

// Close releases the underlying store.
func (c *CachingExecutor) Close() error {
	return c.db.Close()
}

func cacheKey(query, endpoint string) []byte {
	sum := sha256.Sum256([]byte(endpoint + "\x00" + query))

	return []byte(cacheKeyPrefix + hex.EncodeToString(sum[:]))
}

func (c *CachingExecutor) get(key []byte) (string, bool, error) {
	var value []byte

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		value, err = item.ValueCopy(nil)

		return err
	})

	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return "", false, nil
	case err != nil:
		return "", false, err
	default:
		return string(value), true, nil
	}
}

func (c *CachingExecutor) put(key []byte, value string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, []byte(value))
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}

		return txn.SetEntry(e)
	})
}

// Execute implements Executor.
func (c *CachingExecutor) Execute(ctx context.Context, query, endpoint string) (string, error) {
	key := cacheKey(query, endpoint)

	value, ok, err := c.get(key)
	if err != nil {
		log.Printf("Reading query cache: %s", err)
	} else if ok {
		return value, nil
	}

	value, err = c.next.Execute(ctx, query, endpoint)
	if err != nil {
		return "", err
	}

	if err := c.put(key, value); err != nil {
		log.Printf("Writing query cache: %s", err)
	}

	return value, nil
}
