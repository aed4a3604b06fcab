package dfg

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-sdg/internal/log"
	"github.com/l3aro/go-sdg/pkg/engine"
	"github.com/l3aro/go-sdg/pkg/sdg"
	"github.com/l3aro/go-sdg/pkg/stmt"
)

func assign(v string, uses ...string) stmt.Assign {
	text := v + " = "
	if len(uses) == 0 {
		text += "1"
	}
	for i, u := range uses {
		if i > 0 {
			text += " + "
		}
		text += u
	}
	return stmt.Assign{Text: text, Var: v, Uses: uses}
}

func build(t *testing.T, root stmt.Stmt) *sdg.Graph {
	t.Helper()
	res, err := engine.Reduce(root, log.Nop())
	require.NoError(t, err)
	engine.Link(res.Graph, log.Nop())
	return res.Graph
}

func dataEdges(g *sdg.Graph) map[[2]string]bool {
	out := make(map[[2]string]bool)
	for _, e := range g.EdgesOfKind(sdg.EdgeData) {
		out[[2]string{e.Source.Label, e.Target.Label}] = true
	}
	return out
}

func TestStraightLineDataEdge(t *testing.T) {
	g := build(t, stmt.Sequence(assign("x"), assign("y", "x")))

	stats, err := Analyze(context.Background(), g, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.DataEdges)
	assert.Equal(t, map[[2]string]bool{{"x = 1", "y = x"}: true}, dataEdges(g))

	y := g.VerticesByLabel("y = x")[0]
	reaching := Reaching(g, y)
	require.Len(t, reaching, 1)
	assert.Equal(t, "x = 1", reaching[0].Label)
}

func TestBothBranchesReachJoin(t *testing.T) {
	g := build(t, stmt.Sequence(
		stmt.If{
			Cond: stmt.Expr{Text: "c"},
			Then: stmt.Assign{Text: "x = 1", Var: "x"},
			Else: stmt.Assign{Text: "x = 2", Var: "x"},
		},
		assign("y", "x"),
	))

	_, err := Analyze(context.Background(), g, Options{})
	require.NoError(t, err)

	assert.Equal(t, map[[2]string]bool{
		{"x = 1", "y = x"}: true,
		{"x = 2", "y = x"}: true,
	}, dataEdges(g))
}

func TestRedefinitionKills(t *testing.T) {
	g := build(t, stmt.Sequence(
		stmt.Assign{Text: "x = 1", Var: "x"},
		stmt.Assign{Text: "x = 2", Var: "x"},
		assign("y", "x"),
	))

	_, err := Analyze(context.Background(), g, Options{})
	require.NoError(t, err)
	assert.Equal(t, map[[2]string]bool{{"x = 2", "y = x"}: true}, dataEdges(g))
}

func TestLoopCarriedDefinition(t *testing.T) {
	g := build(t, stmt.Sequence(
		stmt.Assign{Text: "i = 0", Var: "i"},
		stmt.While{
			Cond: stmt.Expr{Text: "i < n", Uses: []string{"i", "n"}},
			Body: stmt.Assign{Text: "i = i + 1", Var: "i", Uses: []string{"i"}},
		},
	))

	_, err := Analyze(context.Background(), g, Options{})
	require.NoError(t, err)

	assert.Equal(t, map[[2]string]bool{
		{"i = 0", "i < n"}:         true,
		{"i = 0", "i = i + 1"}:     true,
		{"i = i + 1", "i < n"}:     true,
		{"i = i + 1", "i = i + 1"}: true,
	}, dataEdges(g))
}

func TestContinueGoesThroughForUpdate(t *testing.T) {
	g := build(t, stmt.For{
		Init:   stmt.Assign{Text: "i := 0", Var: "i"},
		Cond:   &stmt.Expr{Text: "i < n", Uses: []string{"i", "n"}},
		Update: stmt.PostOp{Text: "i++", Var: "i", Uses: []string{"i"}},
		Body: stmt.Sequence(
			stmt.Assign{Text: "i = 5", Var: "i"},
			stmt.Continue{},
		),
	})

	_, err := Analyze(context.Background(), g, Options{})
	require.NoError(t, err)

	edges := dataEdges(g)
	assert.Equal(t, map[[2]string]bool{
		{"i := 0", "i < n"}: true,
		{"i = 5", "i++"}:    true,
		{"i++", "i < n"}:    true,
	}, edges)
	assert.False(t, edges[[2]string{"i = 5", "i < n"}], "the update kills i = 5 before the condition")
}

func TestFixpointIsStable(t *testing.T) {
	g := build(t, stmt.Sequence(
		stmt.Assign{Text: "i = 0", Var: "i"},
		stmt.While{
			Cond: stmt.Expr{Text: "i < 10", Uses: []string{"i"}},
			Body: stmt.If{
				Cond: stmt.Expr{Text: "i > 5", Uses: []string{"i"}},
				Then: stmt.Break{},
				Else: stmt.PostOp{Text: "i++", Var: "i", Uses: []string{"i"}},
			},
		},
	))

	_, err := Analyze(context.Background(), g, Options{})
	require.NoError(t, err)

	before := make(map[int]string)
	for _, v := range g.Vertices() {
		if v.In != nil {
			before[v.ID] = v.In.String() + v.Out.String()
		}
	}
	edges := len(g.Edges())

	for _, fg := range g.FlowGraphs() {
		n, err := Solve(context.Background(), g, fg, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "a solved flow graph needs one confirming sweep")
	}
	for _, v := range g.Vertices() {
		if v.In != nil {
			assert.Equal(t, before[v.ID], v.In.String()+v.Out.String(), "%s", v)
		}
	}

	_, err = Analyze(context.Background(), g, Options{})
	require.NoError(t, err)
	assert.Equal(t, edges, len(g.Edges()), "analysis adds no new edges the second time")
}

func TestIterationBound(t *testing.T) {
	g := build(t, stmt.Sequence(assign("x"), assign("y", "x")))

	_, err := Analyze(context.Background(), g, Options{MaxIterations: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoFixpoint))
}

func TestCancelledContext(t *testing.T) {
	g := build(t, stmt.Sequence(assign("x"), assign("y", "x")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Analyze(ctx, g, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInitialState(t *testing.T) {
	root := stmt.Def{
		Name: "f",
		Body: stmt.Sequence(assign("y", "n"), assign("z", "n")),
	}

	g := build(t, root)
	_, err := Analyze(context.Background(), g, Options{})
	require.NoError(t, err)
	assert.Empty(t, g.EdgesOfKind(sdg.EdgeData))

	g = build(t, root)
	stats, err := Analyze(context.Background(), g, Options{InitialState: true})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.InitialStates, "one placeholder per procedure and variable")
	assert.Equal(t, map[[2]string]bool{
		{"n@f", "y = n"}: true,
		{"n@f", "z = n"}: true,
	}, dataEdges(g))

	p := g.VerticesOfKind(sdg.KindInitialState)
	require.Len(t, p, 1)
	assert.Equal(t, "n", p[0].Def)

	stats, err = Analyze(context.Background(), g, Options{InitialState: true})
	require.NoError(t, err)
	assert.Zero(t, stats.InitialStates, "placeholders are found again by label")
	assert.Len(t, g.VerticesOfKind(sdg.KindInitialState), 1)
}

func TestActualInsReadAtCall(t *testing.T) {
	g := build(t, stmt.Sequence(
		stmt.Def{Name: "f", Params: stmt.ParamsOf(stmt.Param{Text: "p", Def: "p"}), Body: assign("q", "p")},
		stmt.Assign{Text: "x = 1", Var: "x"},
		stmt.Call{Callee: "f", Args: stmt.ParamsOf(stmt.Param{Text: "x", Uses: []string{"x"}})},
	))

	_, err := Analyze(context.Background(), g, Options{})
	require.NoError(t, err)

	assert.Equal(t, map[[2]string]bool{
		{"x = 1", "x"}: true,
		{"p", "q = p"}: true,
	}, dataEdges(g))

	site := g.CallSites()[0]
	require.Len(t, site.ActualIns, 1)
	assert.True(t, site.ActualIns[0].In.Equal(site.Call.In))
	for _, e := range g.EdgesOfKind(sdg.EdgeData) {
		assert.NotEqual(t, sdg.KindActualIn, e.Source.Kind)
	}
}

func TestWorkersDoNotChangeResult(t *testing.T) {
	var defs []stmt.Stmt
	for i := 0; i < 8; i++ {
		defs = append(defs, stmt.Def{
			Name:   fmt.Sprintf("p%d", i),
			Params: stmt.ParamsOf(stmt.Param{Text: "a", Def: "a"}),
			Body: stmt.Sequence(
				assign("b", "a"),
				stmt.While{
					Cond: stmt.Expr{Text: "b < a", Uses: []string{"b", "a"}},
					Body: assign("b", "b", "a"),
				},
				assign("c", "b"),
			),
		})
	}
	root := stmt.Sequence(defs...)

	serial := build(t, root)
	_, err := Analyze(context.Background(), serial, Options{Workers: 1, InitialState: true})
	require.NoError(t, err)

	parallel := build(t, root)
	stats, err := Analyze(context.Background(), parallel, Options{Workers: 4, InitialState: true})
	require.NoError(t, err)

	assert.Equal(t, 8, stats.FlowGraphs)
	assert.Equal(t, serial.Snapshot(), parallel.Snapshot())
	assert.Equal(t, Edges(serial), Edges(parallel))
}
