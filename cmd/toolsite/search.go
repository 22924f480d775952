package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/freetools/toolsite/internal/config"
	"github.com/freetools/toolsite/internal/security"
	"github.com/freetools/toolsite/internal/server"
	"github.com/freetools/toolsite/internal/service"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog the way the site's search box does",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			query, err := security.NewQueryValidator().Normalize(strings.Join(args, " "))
			if err != nil {
				return err
			}

			cat, err := server.LoadCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			var searcher service.Searcher = service.NewMemorySearcher(cat)
			if cfg.SearchBackend == config.SearchElasticsearch {
				es, err := newElasticsearchSearcher(cfg, cat)
				if err != nil {
					return err
				}
				searcher = service.NewFallbackSearcher(es, searcher)
			}

			if limit <= 0 || limit > cfg.SearchMaxResults {
				limit = cfg.SearchMaxResults
			}
			tools, err := searcher.Search(cmd.Context(), query, limit)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), tools)
			}
			if len(tools) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no tools match %q\n", query)
				return nil
			}
			return printTools(cmd.OutOrStdout(), tools)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (defaults to search_max_results)")
	return cmd
}
