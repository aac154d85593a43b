// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/cityres/resolve"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type batchOptions struct {
	// Workers is the number of concurrent resolutions, 0 means the number of CPUs
	Workers int

	// DbPath is a DuckDB file where resolutions are logged
	DbPath string
}

var batchOpts = &batchOptions{}

// readLines returns the non-empty lines of r. A trailing '\r' is a line
// ending, not content, and is dropped.
func readLines(r io.Reader) ([]string, error) {
	var ret []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSuffix(scanner.Text(), "\r"); line != "" {
			ret = append(ret, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	return ret, nil
}

func openResolutionLog(path string) (*sql.DB, resolve.ResolutionRepository, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := resolve.NewResolutionRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, err
	}

	return db, repo, nil
}

// writeBatch prints one tab separated line per item: search, outcome, chosen.
func writeBatch(w io.Writer, items []resolve.BatchItem) {
	for _, it := range items {
		switch {
		case it.Err != nil:
			fmt.Fprintf(w, "%s\terror\t%v\n", it.Search, it.Err)
		case !it.Result.Found:
			fmt.Fprintf(w, "%s\t%s\t\n", it.Search, it.Result.Source)
		default:
			fmt.Fprintf(w, "%s\t%s\t%s\n", it.Search, it.Result.Source, it.Result.Chosen)
		}
	}
}

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Resolve one search per line",
	Long: `Reads one search per line from file, or stdin, and prints for each one the
search, where the answer came from and the chosen resource, tab separated.

$ cityres batch searches.txt
Montreal;45.7058,-73.9742,45.41,-73.474	live	http://dbpedia.org/resource/Montreal
Nowhere;1,2,3,4	none
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening input: %w", err)
			}
			defer f.Close()
			input = f
		} else if isTerminal(input) {
			fmt.Fprintln(os.Stderr, "Enter searches to resolve, one per line…")
		}

		searches, err := readLines(input)
		if err != nil {
			return err
		}

		svc, closer, err := newService(options)
		if err != nil {
			return err
		}
		defer closer.Close()

		var repo resolve.ResolutionRepository
		if batchOpts.DbPath != "" {
			db, r, err := openResolutionLog(batchOpts.DbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			repo = r
		}

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(searches),
				progressbar.OptionSetDescription("Resolving"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		progress := func() {
			if bar != nil {
				_ = bar.Add(1)
			}
		}

		items, batchErr := resolve.Batch(cmd.Context(), svc, searches, batchOpts.Workers, progress)

		writeBatch(cmd.OutOrStdout(), items)

		m := resolve.Metrics(items)
		log.Printf(
			"Batch metrics - %d resolved (%d from overrides), %d without match, %d failed",
			m.Resolved,
			m.Overrides,
			m.NoMatch,
			m.Failed,
		)

		if repo != nil {
			var results []*resolve.Result
			for _, it := range items {
				if it.Result != nil {
					results = append(results, it.Result)
				}
			}

			if err := repo.SaveResolutions(results); err != nil {
				return err
			}
		}

		return batchErr
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntVar(
		&batchOpts.Workers,
		"workers",
		0,
		"Number of concurrent resolutions. Defaults to the number of CPUs",
	)
	batchCmd.Flags().StringVar(
		&batchOpts.DbPath,
		"db",
		"",
		"DuckDB file where resolutions are logged",
	)
}
