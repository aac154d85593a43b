// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jcodagnone/cityres/resolve"
	"github.com/jcodagnone/cityres/search"
	"github.com/spf13/cobra"
)

// isTerminal reports whether f is a character device. When f cannot be
// inspected we say that it isn't.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return (info.Mode() & os.ModeCharDevice) != 0
}

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

func writeScores(w io.Writer, name string, candidates []string) {
	for i, r := range resolve.Rank(name, candidates) {
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\n", i+1, r.Score.SubsequenceLength, r.Score.EditDistance, r.Candidate)
	}
}

var debugScoreCmd = &cobra.Command{
	Use:   "score <name>",
	Short: "Rank candidates read from stdin against a name",
	Long: `Reads one candidate per line and prints them best first, with their rank,
longest common subsequence and edit distance against name. The first line is
the candidate resolve would choose.

$ printf 'http://dbpedia.org/resource/Moscow\nhttp://dbpedia.org/resource/Montreal\n' | cityres debug score Montreal
1	8	28	http://dbpedia.org/resource/Montreal
2	3	31	http://dbpedia.org/resource/Moscow
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := os.Stdin
		if isTerminal(input) {
			fmt.Fprintln(os.Stderr, "Enter candidates to score, one per line…")
		}

		candidates, err := readLines(input)
		if err != nil {
			return err
		}

		writeScores(cmd.OutOrStdout(), args[0], candidates)

		return nil
	},
}

var debugParseCmd = &cobra.Command{
	Use:   "parse <search>",
	Short: "Print how a search is parsed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := search.Parse(args[0])
		if err != nil {
			return err
		}

		box := spec.Box()
		w := cmd.OutOrStdout()

		fmt.Fprintf(w, "name\t%q\n", spec.Name)
		fmt.Fprintf(w, "north\t%v\nwest\t%v\nsouth\t%v\neast\t%v\n", box.North, box.West, box.South, box.East)
		fmt.Fprintf(w, "center\t%s\n", box.Center())
		fmt.Fprintf(w, "matchable\t%t\n", box.Contains(box.Center()))
		fmt.Fprintf(w, "span\t%.0fm\n", box.Span())
		fmt.Fprintf(w, "geohash\t%s\n", box.Geohash())

		if cell, err := box.Cell(resolve.H3Resolution); err == nil {
			fmt.Fprintf(w, "h3\t%x\n", cell)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugScoreCmd)
	debugCmd.AddCommand(debugParseCmd)
}
