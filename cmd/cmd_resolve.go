// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/jcodagnone/cityres/resolve"
	"github.com/jcodagnone/cityres/search"
	"github.com/jcodagnone/cityres/sparql"
	"github.com/spf13/cobra"
)

var dumpQuery bool

// resolveOne resolves raw and prints the chosen resource to out. Nothing found
// is reported on errOut and returned as errNoMatch.
func resolveOne(cmd *cobra.Command, svc *resolve.Service, raw string, out, errOut io.Writer) error {
	log.Printf("Fetching candidates from %s", svc.Endpoint())

	res, err := svc.Resolve(cmd.Context(), raw)
	if err != nil {
		return err
	}

	log.Printf("Done, %d candidate(s) from %s", len(res.Candidates), res.Source)

	if !res.Found {
		fmt.Fprintf(errOut, "could not find any resource for %s\n", raw)

		return errNoMatch
	}

	fmt.Fprintln(out, res.Chosen)

	return nil
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <search>",
	Short: "Print the resource that best matches a search",
	Long: `Resolves a search of the form <name>;<north>,<west>,<south>,<east> and
prints the URI of the best matching city or town.

$ cityres resolve 'Montreal;45.7058,-73.9742,45.41,-73.474'
http://dbpedia.org/resource/Montreal
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if dumpQuery {
			return printQuery(cmd.OutOrStdout(), options, args[0])
		}

		svc, closer, err := newService(options)
		if err != nil {
			return err
		}
		defer closer.Close()

		return resolveOne(cmd, svc, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// printQuery writes the query raw would run. Nothing is opened nor executed.
func printQuery(out io.Writer, o *Options, raw string) error {
	spec, err := search.Parse(raw)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(out, sparql.QueryBuilder{Types: o.Types}.Build(spec))

	return err
}

var queryCmd = &cobra.Command{
	Use:   "query <search>",
	Short: "Print the query a search would run, without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printQuery(cmd.OutOrStdout(), options, args[0])
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(queryCmd)
	resolveCmd.Flags().BoolVar(
		&dumpQuery,
		"dump",
		false,
		"Print the query and exit",
	)
}
