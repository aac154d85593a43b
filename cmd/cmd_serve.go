// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"log"

	"github.com/jcodagnone/cityres/resolve"
	"github.com/spf13/cobra"
)

var serveOpts = struct {
	Addr   string
	DbPath string
}{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose resolution over HTTP",
	Long: `Serves a JSON API:

  GET /api/resolve?search=<search>
  GET /api/query?search=<search>
  GET /api/overrides
  GET /api/resolutions?limit=<n>    (requires --db)
`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		svc, closer, err := newService(options)
		if err != nil {
			return err
		}
		defer closer.Close()

		var repo resolve.ResolutionRepository
		if serveOpts.DbPath != "" {
			db, r, err := openResolutionLog(serveOpts.DbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			repo = r
		}

		log.Printf("Listening on %s, querying %s", serveOpts.Addr, svc.Endpoint())

		return resolve.NewServer(svc, repo).Run(serveOpts.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(
		&serveOpts.Addr,
		"addr",
		"localhost:8080",
		"Address to listen on",
	)
	serveCmd.Flags().StringVar(
		&serveOpts.DbPath,
		"db",
		"",
		"DuckDB file where resolutions are logged",
	)
}
