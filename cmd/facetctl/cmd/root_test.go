package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/searcher/handler"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SP_CATALOG_SOURCE", "generated")
	t.Setenv("SP_CATALOG_GENERATED_COUNT", "300")

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSearchCmdText(t *testing.T) {
	out, err := runCmd(t, "search", "--color", "red", "--size", "Small", "--limit", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "shirts matched")
	assert.Contains(t, out, "sizes:  Small=")
	assert.Contains(t, out, "colors: Red=")
}

func TestSearchCmdJSON(t *testing.T) {
	out, err := runCmd(t, "search", "--color", "Red,Blue", "--format", "json")
	require.NoError(t, err)

	var resp handler.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, len(resp.Shirts), resp.TotalHits)
	assert.Len(t, resp.SizeCounts, 3)
	assert.Len(t, resp.ColorCounts, 5)
	for _, s := range resp.Shirts {
		assert.Contains(t, []string{"Red", "Blue"}, string(s.Color))
	}
}

func TestSearchCmdUnknownColor(t *testing.T) {
	_, err := runCmd(t, "search", "--color", "Green")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSearchCmdBadFormat(t *testing.T) {
	_, err := runCmd(t, "search", "--format", "xml")
	require.Error(t, err)
}

func TestBenchCmd(t *testing.T) {
	out, err := runCmd(t, "bench", "--shirts", "500", "--queries", "20", "--parallel", "4")
	require.NoError(t, err)

	assert.Contains(t, out, "shirts:        500")
	assert.Contains(t, out, "build:")
	assert.Contains(t, out, "searches:      20")
}

func TestBenchRejectsBadParallelism(t *testing.T) {
	_, err := runCmd(t, "bench", "--parallel", "0")
	require.Error(t, err)
}

func TestBenchRejectsNegativeQueries(t *testing.T) {
	_, err := runCmd(t, "bench", "--shirts", "10", "--queries", "-1")
	assert.ErrorContains(t, err, "--queries must not be negative")
}

func TestSeedRejectsArgs(t *testing.T) {
	_, err := runCmd(t, "seed", "extra")
	require.Error(t, err)
}

func TestRootRejectsUnknownLogLevel(t *testing.T) {
	_, err := runCmd(t, "--log-level", "loud", "search")
	assert.ErrorContains(t, err, "unknown log level")
}
