// Command facetctl seeds, queries and benchmarks the shirt catalog from the
// command line.
package main

import (
	"os"

	"github.com/Adithya-Monish-Kumar-K/facet-search/cmd/facetctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
