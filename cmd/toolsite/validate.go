package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/freetools/toolsite/internal/color"
	"github.com/freetools/toolsite/internal/server"
)

type validateReport struct {
	Source        string   `json:"source"`
	Categories    int      `json:"categories"`
	Tools         int      `json:"tools"`
	Featured      int      `json:"featured"`
	Empty         []string `json:"empty_categories"`
	MissingColors []string `json:"missing_color_tools"`
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and check the catalog without serving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := server.LoadCatalog(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}

			report := validateReport{
				Source:        opts.cfg.CatalogSource,
				Categories:    cat.CategoryCount(),
				Tools:         cat.ToolCount(),
				Featured:      len(cat.FeaturedTools()),
				Empty:         []string{},
				MissingColors: []string{},
			}
			for _, c := range cat.Categories() {
				if len(cat.ToolsByCategory(c.ID)) == 0 {
					report.Empty = append(report.Empty, c.ID)
				}
			}
			for _, v := range color.Variants() {
				if _, ok := cat.Tool("developer", v.Slug); !ok {
					report.MissingColors = append(report.MissingColors, v.Slug)
				}
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "catalog ok (%s): %d categories, %d tools, %d featured\n",
				report.Source, report.Categories, report.Tools, report.Featured)
			for _, id := range report.Empty {
				fmt.Fprintf(out, "note: category %q has no tools and renders as coming soon\n", id)
			}
			for _, slug := range report.MissingColors {
				fmt.Fprintf(out, "note: color converter %q has no catalog entry\n", slug)
			}
			return nil
		},
	}
}
