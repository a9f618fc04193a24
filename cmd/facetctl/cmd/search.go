package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog/source"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/config"
)

type searchOptions struct {
	colors []string
	sizes  []string
	limit  int
	format string // "text", "json"
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Build the catalog in-process and run one faceted search",
		Long: `Load the configured catalog, group it and run a single search. Omitting
--color or --size selects every value of that facet.

Examples:
  facetctl search --color Red --size Small
  facetctl search --color red,blue --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd.OutOrStdout(), root.cfg, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.colors, "color", nil, "colors to match (repeatable or comma-separated)")
	cmd.Flags().StringSliceVar(&opts.sizes, "size", nil, "sizes to match (repeatable or comma-separated)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "maximum shirts to print in text mode")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text, json")

	return cmd
}

// openExecutor builds the configured catalog and returns an executor over it.
func openExecutor(ctx context.Context, cfg *config.Config) (*executor.Executor, func() error, error) {
	src, err := source.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	engine := indexer.NewEngine(nil)
	if err := engine.Build(ctx, src.Domain, src.Loader); err != nil {
		src.Close()
		return nil, nil, err
	}
	return executor.New(engine, nil), src.Close, nil
}

func runSearch(ctx context.Context, out io.Writer, cfg *config.Config, opts searchOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", opts.format)
	}
	exec, closeSource, err := openExecutor(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	domain, err := exec.Domain(ctx)
	if err != nil {
		return err
	}
	query, err := handler.ParseOptions(domain, opts.colors, opts.sizes)
	if err != nil {
		return err
	}
	start := time.Now()
	result, err := exec.Execute(ctx, query)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(handler.SearchResponse{
			Shirts:      result.Shirts,
			SizeCounts:  result.SizeCounts,
			ColorCounts: result.ColorCounts,
			TotalHits:   result.TotalHits(),
		})
	}
	printResults(out, result, opts.limit, elapsed)
	return nil
}

func printResults(out io.Writer, result *catalog.Results, limit int, elapsed time.Duration) {
	fmt.Fprintf(out, "%d shirts matched in %s\n", result.TotalHits(), elapsed)

	sizes := make([]string, len(result.SizeCounts))
	for i, sc := range result.SizeCounts {
		sizes[i] = fmt.Sprintf("%s=%d", sc.Size, sc.Count)
	}
	colors := make([]string, len(result.ColorCounts))
	for i, cc := range result.ColorCounts {
		colors[i] = fmt.Sprintf("%s=%d", cc.Color, cc.Count)
	}
	fmt.Fprintf(out, "sizes:  %s\n", strings.Join(sizes, " "))
	fmt.Fprintf(out, "colors: %s\n", strings.Join(colors, " "))

	for i, s := range result.Shirts {
		if i == limit {
			fmt.Fprintf(out, "... %d more\n", len(result.Shirts)-limit)
			break
		}
		fmt.Fprintf(out, "  %s  %-7s %-7s %s\n", s.ID, s.Size, s.Color, s.Name)
	}
}
