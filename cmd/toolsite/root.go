package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/freetools/toolsite/internal/config"
)

type rootOptions struct {
	configPath  string
	logLevel    string
	catalogFile string
	jsonOutput  bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{
		configPath: os.Getenv("TOOLSITE_CONFIG"),
	}

	root := &cobra.Command{
		Use:           "toolsite",
		Short:         "Free online tools catalog site",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Read(opts.configPath)
			if err != nil {
				return err
			}
			applyRootFlagBindings(cmd, opts, cfg)
			applyServeFlagBindings(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			opts.cfg = cfg
			setupLogging(cfg, cmd.ErrOrStderr())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "config file (JSON, or YAML for .yaml/.yml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.catalogFile, "catalog-file", "", "read the catalog from this YAML file instead of the configured source")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output JSON")

	root.AddCommand(
		newServeCmd(opts),
		newCatalogCmd(opts),
		newSearchCmd(opts),
		newValidateCmd(opts),
		newReindexCmd(opts),
	)

	return root
}

// applyRootFlagBindings overrides config values with flags the user set
// explicitly, so defaults never mask the config file or environment.
func applyRootFlagBindings(cmd *cobra.Command, opts *rootOptions, cfg *config.Config) {
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "log-level":
			cfg.LogLevel = opts.logLevel
		case "catalog-file":
			cfg.CatalogSource = config.CatalogFile
			cfg.CatalogFile = opts.catalogFile
		}
	})
}

func setupLogging(cfg *config.Config, w io.Writer) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	}
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func writeJSON(w io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
