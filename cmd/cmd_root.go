// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jcodagnone/cityres/resolve"
	"github.com/jcodagnone/cityres/sparql"
	"github.com/spf13/cobra"
)

const (
	defaultEndpoint = "http://192.168.1.202:3030/dbart/query"

	transportHTTP    = "http"
	transportCommand = "s-query"
)

// errNoMatch is returned by commands that found nothing. The diagnostic has
// already been written when it is returned.
var errNoMatch = errors.New("no match")

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

// Options configures how searches are resolved.
type Options struct {
	// Endpoint is the SPARQL endpoint address
	Endpoint string

	// Transport selects how queries are run: http or s-query
	Transport string

	// Command is the s-query binary used by the s-query transport
	Command string

	// Token is sent as a bearer token by the http transport
	Token string

	// Timeout for a single query
	Timeout time.Duration

	// Types are the rdf:type values a candidate may have
	Types []string

	// OverridesFile is a JSON file merged over the built-in overrides
	OverridesFile string

	// NoOverrides disables the override table entirely
	NoOverrides bool

	// Cache enables the in-memory query cache
	Cache bool

	// CacheDir persists the query cache, implies Cache
	CacheDir string

	// CacheTTL is how long cached results are kept, zero means forever
	CacheTTL time.Duration

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool
}

var options = &Options{}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

// nopCloser is returned when there is no cache to release.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// withTimeout bounds every execution of next, the http transport has its own.
func withTimeout(next sparql.Executor, d time.Duration) sparql.Executor {
	if d <= 0 {
		return next
	}

	return sparql.ExecutorFunc(func(ctx context.Context, query, endpoint string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		return next.Execute(ctx, query, endpoint)
	})
}

func newExecutor(o *Options) (sparql.Executor, io.Closer, error) {
	var exec sparql.Executor

	switch o.Transport {
	case transportHTTP:
		exec = sparql.NewHTTPExecutor(&sparql.HTTPOptions{
			UserAgent:           fmt.Sprintf("cityres/%s (+https://github.com/jcodagnone/cityres)", Version),
			Token:               o.Token,
			Timeout:             o.Timeout,
			EnableHTTPTrace:     o.EnableHTTPTrace,
			EnableHTTPBodyTrace: o.EnableHTTPBodyTrace,
		})
	case transportCommand:
		exec = withTimeout(sparql.NewCommandExecutor(o.Command), o.Timeout)
	default:
		return nil, nil, fmt.Errorf("unknown transport %q, expected %s or %s", o.Transport, transportHTTP, transportCommand)
	}

	if !o.Cache && o.CacheDir == "" {
		return exec, nopCloser{}, nil
	}

	cache, err := sparql.OpenCachingExecutor(exec, o.CacheDir, o.CacheTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("opening query cache: %w", err)
	}

	return cache, cache, nil
}

// newService builds the resolution service described by o. The returned
// closer releases the query cache.
func newService(o *Options) (*resolve.Service, io.Closer, error) {
	exec, closer, err := newExecutor(o)
	if err != nil {
		return nil, nil, err
	}

	var overrides *resolve.OverrideTable

	if !o.NoOverrides {
		overrides = resolve.DefaultOverrides()

		if o.OverridesFile != "" {
			extra, err := resolve.LoadOverrides(o.OverridesFile)
			if err != nil {
				_ = closer.Close()

				return nil, nil, err
			}

			overrides = overrides.Merge(extra)
			log.Printf("Loaded %d override(s) from %s", extra.Len(), o.OverridesFile)
		}
	}

	svc := resolve.NewService(exec, o.Endpoint,
		resolve.WithOverrides(overrides),
		resolve.WithQueryBuilder(sparql.QueryBuilder{Types: o.Types}),
	)

	return svc, closer, nil
}

var rootCmd = &cobra.Command{
	Use:   "cityres",
	Short: "resolve place names to DBpedia resources",
	Long: `
cityres finds the DBpedia resource that best matches a place name, looking
only at the cities and towns located inside a bounding box.

Searches are written as <name>;<north>,<west>,<south>,<east>, for example

  cityres resolve 'Montreal;45.7058,-73.9742,45.41,-73.474'
`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		if !errors.Is(err, errNoMatch) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}

		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(
		&options.Endpoint,
		"endpoint",
		envOr("CITYRES_ENDPOINT", defaultEndpoint),
		"SPARQL endpoint to query ($CITYRES_ENDPOINT)",
	)
	flags.StringVar(
		&options.Transport,
		"transport",
		transportHTTP,
		"How queries are run: http or s-query",
	)
	flags.StringVar(
		&options.Command,
		"s-query",
		sparql.DefaultCommand,
		"s-query binary used by the s-query transport",
	)
	flags.StringVar(
		&options.Token,
		"token",
		os.Getenv("CITYRES_TOKEN"),
		"Bearer token for the endpoint ($CITYRES_TOKEN)",
	)
	flags.DurationVar(
		&options.Timeout,
		"timeout",
		60*time.Second,
		"Timeout for a single query",
	)
	flags.StringSliceVar(
		&options.Types,
		"types",
		sparql.DefaultTypes,
		"rdf:type values a candidate may have",
	)
	flags.StringVar(
		&options.OverridesFile,
		"overrides",
		"",
		"JSON file with extra overrides",
	)
	flags.BoolVar(
		&options.NoOverrides,
		"no-overrides",
		false,
		"Never fall back to the override table",
	)
	flags.BoolVar(
		&options.Cache,
		"cache",
		false,
		"Cache query results in memory",
	)
	flags.StringVar(
		&options.CacheDir,
		"cache-dir",
		"",
		"Directory where query results are cached across runs",
	)
	flags.DurationVar(
		&options.CacheTTL,
		"cache-ttl",
		24*time.Hour,
		"How long cached query results are kept, 0 keeps them forever",
	)
	flags.BoolVar(
		&options.EnableHTTPTrace,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	flags.BoolVar(
		&options.EnableHTTPBodyTrace,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
}
