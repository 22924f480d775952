package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/freetools/toolsite/internal/catalog"
	"github.com/freetools/toolsite/internal/server"
	"github.com/freetools/toolsite/internal/store/postgres"
)

type catalogJSON struct {
	Categories []catalogSectionJSON `json:"categories"`
}

type catalogSectionJSON struct {
	catalog.Category
	Tools []catalog.Tool `json:"tools"`
}

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the catalog from the configured source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := server.LoadCatalog(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), toCatalogJSON(cat))
			}
			return printCatalog(cmd.OutOrStdout(), cat)
		},
	}

	cmd.AddCommand(newCatalogImportCmd(opts))
	return cmd
}

func newCatalogImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Replace the Postgres catalog with the built-in one, or --catalog-file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if cfg.PostgresDSN == "" {
				return fmt.Errorf("catalog import requires postgres_dsn or DATABASE_URL")
			}

			cat, err := catalog.Default()
			if opts.catalogFile != "" {
				cat, err = catalog.LoadFile(opts.catalogFile)
			}
			if err != nil {
				return err
			}

			store, err := postgres.Open(cmd.Context(), cfg.PostgresDSN)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}
			if err := store.Import(cmd.Context(), cat); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d categories, %d tools\n", cat.CategoryCount(), cat.ToolCount())
			return nil
		},
	}
}

func toCatalogJSON(cat *catalog.Catalog) catalogJSON {
	out := catalogJSON{Categories: make([]catalogSectionJSON, 0, cat.CategoryCount())}
	for _, c := range cat.Categories() {
		out.Categories = append(out.Categories, catalogSectionJSON{
			Category: c,
			Tools:    cat.ToolsByCategory(c.ID),
		})
	}
	return out
}

func printCatalog(w io.Writer, cat *catalog.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tTOOL\tFEATURED\tURL")
	for _, c := range cat.Categories() {
		tools := cat.ToolsByCategory(c.ID)
		if len(tools) == 0 {
			fmt.Fprintf(tw, "%s\t(coming soon)\t\t%s\n", c.ID, catalog.CategoryPath(c.ID))
			continue
		}
		for _, t := range tools {
			featured := ""
			if t.Featured {
				featured = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, t.ID, featured, t.URL)
		}
	}
	return tw.Flush()
}

func printTools(w io.Writer, tools []catalog.Tool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOOL\tTITLE\tURL")
	for _, t := range tools {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Title, t.URL)
	}
	return tw.Flush()
}
