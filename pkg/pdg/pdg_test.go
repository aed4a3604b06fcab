package pdg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-sdg/pkg/dfg"
	"github.com/l3aro/go-sdg/pkg/engine"
	"github.com/l3aro/go-sdg/pkg/sdg"
	"github.com/l3aro/go-sdg/pkg/stmt"
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

func buildDemo(t *testing.T) *PDGInfo {
	t.Helper()
	info, err := ExtractSource(context.Background(), "demo.go", []byte(demoSource), Options{})
	require.NoError(t, err)
	return info
}

func TestBuildPipeline(t *testing.T) {
	info := buildDemo(t)

	assert.Equal(t, "demo.go", info.Name)
	assert.Positive(t, info.Steps)
	assert.Equal(t, engine.LinkStats{CallSites: 1, Resolved: 1}, info.Link)
	require.NotNil(t, info.Dataflow)
	assert.Equal(t, 2, info.Dataflow.FlowGraphs)

	s := info.Summarize()
	assert.Equal(t, []string{"add", "main"}, s.Procedures)
	assert.Equal(t, []string{"add", "main"}, s.FlowGraphs)
	assert.Equal(t, 2, s.Edges[sdg.EdgeParamIn])
	assert.Equal(t, 1, s.Edges[sdg.EdgeParamOut])
	assert.Equal(t, 1, s.Edges[sdg.EdgeCall])
	assert.Equal(t, 2, s.Edges[sdg.EdgeMemberOf])
	assert.Empty(t, s.Diagnostics)
}

func TestBuildFromStatements(t *testing.T) {
	root := stmt.Sequence(
		stmt.Assign{Text: "x = 1", Var: "x"},
		stmt.Assign{Text: "y = x", Var: "y", Uses: []string{"x"}},
	)
	info, err := Build(context.Background(), "inline", root, Options{})
	require.NoError(t, err)
	assert.Len(t, info.Graph.EdgesOfKind(sdg.EdgeData), 1)

	_, err = Build(context.Background(), "inline", root, Options{Dataflow: dfg.Options{MaxIterations: 1}})
	assert.ErrorIs(t, err, dfg.ErrNoFixpoint)
}

func TestSlices(t *testing.T) {
	info := buildDemo(t)

	assert.Equal(t, []int{3, 8, 9, 11, 12, 13, 15}, BackwardSlice(info, 15, nil))

	r := "r"
	assert.Equal(t, []int{8, 15}, BackwardSlice(info, 15, &r), "data edges carrying a are not followed")

	assert.Equal(t, []int{3, 4, 5, 10, 11}, ForwardSlice(info, 10, nil))
	assert.Nil(t, ForwardSlice(info, 2, nil), "blank line")
	assert.Nil(t, BackwardSlice(nil, 1, nil))
}

func TestGetDependencies(t *testing.T) {
	info := buildDemo(t)

	deps := GetDependencies(info, 13)
	require.Len(t, deps.ControlIn, 1)
	assert.Equal(t, "r > 2", deps.ControlIn[0].Source.Label)
	assert.Empty(t, deps.ControlOut)
	require.Len(t, deps.DataIn, 1)
	assert.Equal(t, "r", deps.DataIn[0].Source.Def)
	require.Len(t, deps.DataOut, 1)
	assert.Equal(t, "println(a)", deps.DataOut[0].Target.Label)
}

func TestVariableQueries(t *testing.T) {
	info := buildDemo(t)

	assert.Equal(t, []string{"a", "b", "r", "s", "x", "y"}, GetVariableNames(info))

	var labels []string
	for _, v := range FindVerticesByVariable(info, "r") {
		labels = append(labels, v.Label)
	}
	assert.Equal(t, []string{"r", "r > 2", "a = r"}, labels)
}

const nestedSource = `package demo

func g(n int) int {
	return n * 2
}

func f(n int) int {
	return g(n)
}

func h(x int) bool {
	if f(g(x)) > 3 {
		return true
	}
	return false
}
`

func TestNestedCallsAreLinked(t *testing.T) {
	info, err := ExtractSource(context.Background(), "nested.go", []byte(nestedSource), Options{})
	require.NoError(t, err)

	assert.Equal(t, engine.LinkStats{CallSites: 3, Resolved: 3}, info.Link)
	s := info.Summarize()
	assert.Equal(t, 3, s.Edges[sdg.EdgeCall])
	assert.Equal(t, 3, s.Edges[sdg.EdgeParamIn])
	assert.Equal(t, 3, s.Edges[sdg.EdgeParamOut])
	assert.Empty(t, s.Diagnostics)

	g := info.Graph
	ret := g.VerticesByLabel("return g(n)")
	require.Len(t, ret, 1)
	var fromResult bool
	for _, e := range g.Incoming(ret[0]) {
		if e.Kind == sdg.EdgeData && e.Source.Kind == sdg.KindActualOut {
			fromResult = true
		}
	}
	assert.True(t, fromResult, "the return reads the result of g")

	// The condition on line 12 receives the results of f and g.
	assert.Subset(t, BackwardSlice(info, 12, nil), []int{3, 7, 11, 12})
}

func TestExtractProcedure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.go")
	require.NoError(t, os.WriteFile(path, []byte(demoSource), 0o644))

	info, err := ExtractProcedure(context.Background(), path, "add", Options{})
	require.NoError(t, err)
	assert.Equal(t, "add", info.Name)
	assert.Equal(t, 6, info.Graph.VertexCount())

	_, err = ExtractProcedure(context.Background(), path, "missing", Options{})
	assert.Error(t, err)

	full, err := ExtractFile(context.Background(), path, Options{})
	require.NoError(t, err)
	fg, err := FlowGraph(full, "main")
	require.NoError(t, err)
	assert.Equal(t, "main", fg.Name)
	_, err = FlowGraph(full, sdg.TopLevel)
	assert.Error(t, err, "no top-level code")
}
