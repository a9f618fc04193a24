package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog/generator"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog/source"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog/store"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/postgres"
)

type seedOptions struct {
	count int
	seed  int64
}

func newSeedCmd(root *rootOptions) *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the Postgres catalog with generated shirts",
		Long: `Generate a deterministic catalog over the configured domain and copy it
into the Postgres shirts table, replacing whatever was there.

Examples:
  facetctl seed --count 50000
  facetctl seed --config configs/development.yaml --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := root.cfg
			if !cmd.Flags().Changed("count") {
				opts.count = cfg.Catalog.GeneratedCount
			}
			if !cmd.Flags().Changed("seed") {
				opts.seed = cfg.Catalog.Seed
			}

			domain, err := source.Domain(cfg.Catalog)
			if err != nil {
				return err
			}
			if domain == nil {
				domain = catalog.DefaultDomain()
			}
			shirts, err := generator.New(domain, opts.seed).Shirts(opts.count)
			if err != nil {
				return err
			}

			db, err := postgres.New(ctx, cfg.Postgres)
			if err != nil {
				return fmt.Errorf("connecting to catalog database: %w", err)
			}
			defer db.Close()

			st := store.New(db, cfg.Catalog)
			if err := st.Migrate(ctx); err != nil {
				return err
			}
			if err := st.Seed(ctx, shirts); err != nil {
				return err
			}
			slog.Info("catalog seeded", "shirts", len(shirts), "seed", opts.seed)
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d shirts into %s\n", len(shirts), cfg.Postgres.Database)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.count, "count", "n", 0, "number of shirts to generate (default catalog.generatedCount)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "generator seed (default catalog.seed)")

	return cmd
}
