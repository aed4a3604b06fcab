package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-sdg/pkg/pdg"
	"github.com/l3aro/go-sdg/pkg/sdg"
)

const demoSource = `package demo

func add(x, y int) int {
	s := x + y
	return s
}

func main() {
	a := 1
	b := 2
	r := add(a, b)
	if r > 2 {
		a = r
	}
	println(a)
}
`

// setup writes the demo file and a config with the cache disabled.
func setup(t *testing.T) (dir, file, cfg string) {
	t.Helper()
	dir = t.TempDir()
	file = filepath.Join(dir, "demo.go")
	cfg = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(demoSource), 0o644))
	require.NoError(t, os.WriteFile(cfg, []byte("cache_size: 0\nlog_level: error\n"), 0o644))
	return dir, file, cfg
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetErr(&buf)
	RootCmd.SetArgs(args)
	require.NoError(t, RootCmd.Execute(), buf.String())
	return buf.String()
}

func TestBuildCommand(t *testing.T) {
	dir, _, cfg := setup(t)

	var results []buildResult
	out := runCLI(t, "build", dir, "--config", cfg, "--json")
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "demo.go", results[0].File)
	assert.Empty(t, results[0].Error)
	assert.Equal(t, []string{"add", "main"}, results[0].Summary.Procedures)
	assert.Equal(t, 1, results[0].Summary.Link.Resolved)
}

func TestSliceCommand(t *testing.T) {
	_, file, cfg := setup(t)

	var out sliceOutput
	require.NoError(t, json.Unmarshal([]byte(runCLI(t, "slice", file, "--config", cfg, "--line", "15", "--json")), &out))
	assert.Equal(t, "backward", out.Direction)
	assert.Equal(t, []int{3, 8, 9, 11, 12, 13, 15}, out.Lines)
}

func TestProcsCommand(t *testing.T) {
	_, file, cfg := setup(t)

	var procs []procedureOutput
	require.NoError(t, json.Unmarshal([]byte(runCLI(t, "procs", file, "--config", cfg, "--json")), &procs))
	require.Len(t, procs, 2)
	assert.Equal(t, "add", procs[0].Name)
	assert.Len(t, procs[0].Params, 2)
	assert.True(t, procs[0].HasResult)
	assert.Len(t, procs[0].Callers, 1)
	assert.Empty(t, procs[1].Callers)
}

func TestCFGCommand(t *testing.T) {
	_, file, cfg := setup(t)

	out := runCLI(t, "cfg", file, "main", "--config", cfg)
	assert.Contains(t, out, "=== Control flow graph: main ===")
	assert.Contains(t, out, "r > 2")
}

func TestFormatLineRanges(t *testing.T) {
	tests := []struct {
		lines []int
		want  string
	}{
		{nil, "none"},
		{[]int{4}, "4"},
		{[]int{1, 2, 3, 7, 9, 10}, "1-3, 7, 9-10"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatLineRanges(tt.lines))
	}
}

func TestFormatEdgeCounts(t *testing.T) {
	assert.Equal(t, "none", formatEdgeCounts(nil))
	assert.Equal(t, "ctrl_true=2 data=1", formatEdgeCounts(map[sdg.EdgeKind]int{sdg.EdgeData: 1, sdg.EdgeCtrlTrue: 2, sdg.EdgeCall: 0}))
}

func TestPrintBuildResults(t *testing.T) {
	var buf bytes.Buffer
	printBuildResults(&buf, []buildResult{
		{File: "a.go", Summary: pdg.Summary{Vertices: 3, Edges: map[sdg.EdgeKind]int{sdg.EdgeData: 2}}, Cached: true},
		{File: "b.go", Error: "parse failed"},
	})
	out := buf.String()
	assert.Contains(t, out, "a.go: 3 vertices, 2 edges, 0 procedures (cached)")
	assert.Contains(t, out, "b.go: error: parse failed")
	assert.True(t, strings.HasSuffix(out, "1 files, 3 vertices, 2 edges, 1 failed\n"))
}
