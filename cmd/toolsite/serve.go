package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/freetools/toolsite/internal/config"
	"github.com/freetools/toolsite/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			srv, err := server.New(ctx, cfg)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().String("host", "", "listen host")
	cmd.Flags().Int("port", 0, "listen port")
	cmd.Flags().Bool("index-on-start", false, "push the catalog to Elasticsearch on startup")

	return cmd
}

// applyServeFlagBindings copies the serve flags the user set into cfg. It
// runs from the root pre-run so they are validated with everything else;
// other commands have no such flags and Visit finds nothing.
func applyServeFlagBindings(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host, _ = flags.GetString("host")
		case "port":
			cfg.Port, _ = flags.GetInt("port")
		case "index-on-start":
			cfg.IndexOnStart, _ = flags.GetBool("index-on-start")
		}
	})
}
