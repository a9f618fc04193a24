// Package cmd provides the facetctl commands.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/logger"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

// NewRootCmd creates the facetctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "facetctl",
		Short: "Seed, query and benchmark the faceted shirt catalog",
		Long: `facetctl works directly against the catalog source configured for the
search service: it can seed Postgres with generated shirts, run one faceted
search in-process, or time catalog builds and searches.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if opts.logLevel != "" {
				if _, err := logger.ParseLevel(opts.logLevel); err != nil {
					return err
				}
				cfg.Logging.Level = opts.logLevel
			}
			logger.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, "text")
			opts.cfg = cfg
			slog.Debug("config loaded", "path", opts.configPath, "catalog_source", cfg.Catalog.Source)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (defaults apply when empty)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	cmd.AddCommand(newSeedCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newBenchCmd(opts))

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
