package cmd

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog/generator"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/searcher/handler"
)

type benchOptions struct {
	shirts   int
	seed     int64
	queries  int
	parallel int
	colors   []string
	sizes    []string
}

// BenchReport summarizes one bench run.
type BenchReport struct {
	Shirts      int
	Generate    time.Duration
	Build       time.Duration
	FirstSearch time.Duration
	Hits        int
	Queries     int
	Elapsed     time.Duration
	P50         time.Duration
	P99         time.Duration
}

func newBenchCmd(root *rootOptions) *cobra.Command {
	var opts benchOptions

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time catalog grouping and searches over a generated catalog",
		Long: `Generate a catalog in memory, time how long grouping takes, then run one
search followed by --queries concurrent repeats of it.

Examples:
  facetctl bench
  facetctl bench --shirts 1000000 --color Red --size Small --parallel 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := runBench(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printBench(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.shirts, "shirts", 50000, "number of shirts to generate")
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "generator seed")
	cmd.Flags().IntVar(&opts.queries, "queries", 1000, "number of repeated searches after the first")
	cmd.Flags().IntVar(&opts.parallel, "parallel", runtime.GOMAXPROCS(0), "concurrent searchers")
	cmd.Flags().StringSliceVar(&opts.colors, "color", []string{string(catalog.Red)}, "colors to match")
	cmd.Flags().StringSliceVar(&opts.sizes, "size", nil, "sizes to match")

	return cmd
}

func runBench(ctx context.Context, opts benchOptions) (*BenchReport, error) {
	if opts.parallel <= 0 {
		return nil, fmt.Errorf("--parallel must be positive, got %d", opts.parallel)
	}
	if opts.queries < 0 {
		return nil, fmt.Errorf("--queries must not be negative, got %d", opts.queries)
	}
	domain := catalog.DefaultDomain()
	report := &BenchReport{Shirts: opts.shirts, Queries: opts.queries}

	start := time.Now()
	shirts, err := generator.New(domain, opts.seed).Shirts(opts.shirts)
	if err != nil {
		return nil, err
	}
	report.Generate = time.Since(start)

	start = time.Now()
	g, err := index.Build(domain, shirts)
	if err != nil {
		return nil, err
	}
	report.Build = time.Since(start)

	query, err := handler.ParseOptions(domain, opts.colors, opts.sizes)
	if err != nil {
		return nil, err
	}
	start = time.Now()
	first, err := executor.Search(g, query)
	if err != nil {
		return nil, err
	}
	report.FirstSearch = time.Since(start)
	report.Hits = first.TotalHits()

	latencies := make([]time.Duration, opts.queries)
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.parallel)
	start = time.Now()
	for i := range latencies {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			t := time.Now()
			res, err := executor.Search(g, query)
			if err != nil {
				return err
			}
			latencies[i] = time.Since(t)
			if res.TotalHits() != report.Hits {
				return fmt.Errorf("search %d returned %d shirts, first search returned %d", i, res.TotalHits(), report.Hits)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	report.Elapsed = time.Since(start)

	if len(latencies) > 0 {
		slices.Sort(latencies)
		report.P50 = latencies[len(latencies)/2]
		report.P99 = latencies[(len(latencies)*99)/100]
	}
	return report, nil
}

func printBench(out io.Writer, r *BenchReport) {
	fmt.Fprintf(out, "shirts:        %d\n", r.Shirts)
	fmt.Fprintf(out, "generate:      %s\n", r.Generate)
	fmt.Fprintf(out, "build:         %s\n", r.Build)
	fmt.Fprintf(out, "first search:  %s (%d hits)\n", r.FirstSearch, r.Hits)
	if r.Queries > 0 {
		qps := float64(r.Queries) / r.Elapsed.Seconds()
		fmt.Fprintf(out, "searches:      %d in %s (%.0f/s)\n", r.Queries, r.Elapsed, qps)
		fmt.Fprintf(out, "p50 / p99:     %s / %s\n", r.P50, r.P99)
	}
}
