package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/freetools/toolsite/internal/catalog"
	"github.com/freetools/toolsite/internal/config"
	"github.com/freetools/toolsite/internal/server"
	"github.com/freetools/toolsite/internal/service"
)

func newReindexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Recreate the Elasticsearch index from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			cat, err := server.LoadCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			es, err := newElasticsearchSearcher(cfg, cat)
			if err != nil {
				return err
			}
			if err := es.TestConnection(cmd.Context()); err != nil {
				return err
			}

			start := time.Now()
			n, err := es.IndexCatalog(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d tools into %s in %s\n",
				n, es.Index(), time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}

func newElasticsearchSearcher(cfg *config.Config, cat *catalog.Catalog) (*service.ElasticsearchSearcher, error) {
	return service.NewElasticsearchSearcher(service.ElasticsearchConfig{
		URL:        cfg.ElasticsearchURL,
		Username:   cfg.ElasticsearchUser,
		Password:   cfg.ElasticsearchPassword,
		Index:      cfg.ElasticsearchIndex,
		MaxRetries: cfg.ElasticsearchRetries,
	}, cat)
}
