// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jcodagnone/cityres/resolve"
	"github.com/spf13/cobra"
)

var overridesJSON bool

var overridesCmd = &cobra.Command{
	Use:   "overrides",
	Short: "Inspect the override table",
}

// pad right-pads s to n code points, %-*s counts bytes.
func pad(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}

	return s
}

func writeOverridesTable(w io.Writer, table *resolve.OverrideTable) error {
	ws, wc := len("Search"), len("Candidates")

	_ = table.Each(func(e resolve.OverrideEntry) error {
		ws = max(ws, utf8.RuneCountInString(e.Search))
		for _, c := range e.Candidates {
			wc = max(wc, utf8.RuneCountInString(c))
		}

		return nil
	})

	a, b := strings.Repeat("─", ws), strings.Repeat("─", wc)
	fmt.Fprintf(w, "╭─%s─┬─%s─╮\n", a, b)
	fmt.Fprintf(w, "│ %s │ %s │\n", pad("Search", ws), pad("Candidates", wc))
	fmt.Fprintf(w, "├─%s─┼─%s─┤\n", a, b)
	err := table.Each(func(e resolve.OverrideEntry) error {
		for i, c := range e.Candidates {
			search := e.Search
			if i > 0 {
				search = ""
			}

			fmt.Fprintf(w, "│ %s │ %s │\n", pad(search, ws), pad(c, wc))
		}

		return nil
	})
	fmt.Fprintf(w, "╰─%s─┴─%s─╯\n", a, b)

	return err
}

var overridesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the overrides in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closer, err := newService(options)
		if err != nil {
			return err
		}
		defer closer.Close()

		if overridesJSON {
			return svc.Overrides().WriteJSON(cmd.OutOrStdout())
		}

		return writeOverridesTable(cmd.OutOrStdout(), svc.Overrides())
	},
}

func init() {
	rootCmd.AddCommand(overridesCmd)
	overridesCmd.AddCommand(overridesListCmd)
	overridesListCmd.Flags().BoolVar(
		&overridesJSON,
		"json",
		false,
		"Print the table in the format accepted by --overrides",
	)
}
