package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-sdg/internal/log"
	"github.com/l3aro/go-sdg/pkg/sdg"
	"github.com/l3aro/go-sdg/pkg/stmt"
)

func actual(name string) stmt.Param {
	return stmt.Param{Text: name, Uses: []string{name}}
}

func formal(name string) stmt.Param {
	return stmt.Param{Text: name, Def: name}
}

func call(callee string, args ...stmt.Param) *stmt.Call {
	return &stmt.Call{Callee: callee, Args: stmt.ParamsOf(args...)}
}

// program: main calls add before add is defined.
func forwardCallProgram() stmt.Stmt {
	return stmt.Unit{
		Name: "demo",
		Body: stmt.Sequence(
			stmt.Def{
				Name: "main",
				Body: stmt.Sequence(
					assign("a"),
					assign("b"),
					stmt.Assign{Text: "r = add(a, b)", Var: "r", Call: call("add", actual("a"), actual("b"))},
				),
			},
			stmt.Def{
				Name:      "add",
				Params:    stmt.ParamsOf(formal("x"), formal("y")),
				HasResult: true,
				Body:      stmt.Return{Value: cond("x + y", "x", "y")},
			},
		),
	}
}

func TestForwardCallIsLinked(t *testing.T) {
	g := reduce(t, forwardCallProgram())
	stats := Link(g, log.Nop())

	assert.Equal(t, LinkStats{CallSites: 1, Resolved: 1}, stats)
	assert.Empty(t, g.Diagnostics())

	callV := vertex(t, g, sdg.KindCall, "r = add(a, b)")
	entry := vertex(t, g, sdg.KindEntry, "add")
	assert.True(t, g.HasEdge(callV, entry, sdg.EdgeCall))

	proc, ok := g.Procedure("add")
	require.True(t, ok)
	formals := proc.FormalIns()
	require.Len(t, formals, 2)

	site := g.CallSites()[0]
	require.Len(t, site.ActualIns, 2)

	// positional binding: a_i -> f_i and nothing else
	paramIn := g.EdgesOfKind(sdg.EdgeParamIn)
	require.Len(t, paramIn, 2)
	for i, a := range site.ActualIns {
		assert.True(t, g.HasEdge(a, formals[i], sdg.EdgeParamIn))
		for j, f := range formals {
			if i != j {
				assert.False(t, g.HasEdge(a, f, sdg.EdgeParamIn))
			}
		}
	}

	out, ok := proc.FormalOut()
	require.True(t, ok)
	assert.Equal(t, "add result", out.Label)
	require.NotNil(t, site.ActualOut)
	assert.Equal(t, "r", site.ActualOut.Def)
	assert.True(t, g.HasEdge(out, site.ActualOut, sdg.EdgeParamOut))
}

func TestLinkIsIdempotent(t *testing.T) {
	g := reduce(t, forwardCallProgram())
	Link(g, nil)
	before := len(g.Edges())
	Link(g, nil)
	assert.Equal(t, before, len(g.Edges()))
}

func TestCallStructure(t *testing.T) {
	g := reduce(t, forwardCallProgram())

	callV := vertex(t, g, sdg.KindCall, "r = add(a, b)")
	site := g.CallSites()[0]
	for _, a := range append(site.ActualIns, site.ActualOut) {
		assert.True(t, g.HasEdge(callV, a, sdg.EdgeCtrlTrue), "%s is governed by its call", a)
	}

	main, ok := g.FlowGraph("main")
	require.True(t, ok)
	assert.True(t, main.Contains(callV))
	assert.True(t, main.Contains(site.ActualOut))
	assert.False(t, main.Contains(site.ActualIns[0]), "actual-ins are not flow vertices")
	assert.True(t, main.HasEdge(callV, site.ActualOut))
}

func TestFormalsFollowEntry(t *testing.T) {
	g := reduce(t, forwardCallProgram())

	fg, ok := g.FlowGraph("add")
	require.True(t, ok)
	labels := make([]string, 0, fg.Len())
	for _, v := range fg.Vertices() {
		labels = append(labels, v.Label)
	}
	assert.Equal(t, []string{"add", "x", "y", "add result", "return x + y"}, labels)
	assert.Equal(t, map[[2]string]bool{
		{"add", "x"}:                   true,
		{"x", "y"}:                     true,
		{"y", "add result"}:            true,
		{"add result", "return x + y"}: true,
	}, flowSet(fg))

	entry := vertex(t, g, sdg.KindEntry, "add")
	for _, name := range []string{"x", "y", "add result", "return x + y"} {
		v := g.VerticesByLabel(name)[0]
		assert.True(t, g.HasEdge(entry, v, sdg.EdgeCtrlTrue), name)
	}
}

func TestUnitMembership(t *testing.T) {
	g := reduce(t, forwardCallProgram())

	unit := vertex(t, g, sdg.KindUnit, "demo")
	main := vertex(t, g, sdg.KindEntry, "main")
	add := vertex(t, g, sdg.KindEntry, "add")
	assert.True(t, g.HasEdge(unit, main, sdg.EdgeMemberOf))
	assert.True(t, g.HasEdge(unit, add, sdg.EdgeMemberOf))
	assert.Len(t, g.EdgesOfKind(sdg.EdgeMemberOf), 2)

	_, ok := g.FlowGraph(sdg.TopLevel)
	assert.False(t, ok, "empty top-level flow graph is not filed")
}

func TestArityMismatch(t *testing.T) {
	g := reduce(t, stmt.Sequence(
		stmt.Def{Name: "f", Params: stmt.ParamsOf(formal("p"))},
		stmt.Call{Callee: "f", Args: stmt.ParamsOf(actual("a"), actual("b"))},
	))
	stats := Link(g, log.Nop())

	assert.Equal(t, 1, stats.Mismatched)
	callV := vertex(t, g, sdg.KindCall, "f(a, b)")
	entry := vertex(t, g, sdg.KindEntry, "f")
	assert.True(t, g.HasEdge(callV, entry, sdg.EdgeCall), "call edge is kept")
	assert.Empty(t, g.EdgesOfKind(sdg.EdgeParamIn))

	diags := g.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, sdg.DiagArityMismatch, diags[0].Kind)
}

func TestUnresolvedCall(t *testing.T) {
	g := reduce(t, stmt.Call{Callee: "fmt.Println", Args: stmt.ParamsOf(actual("x"))})
	stats := Link(g, log.Nop())

	assert.Equal(t, 1, stats.Unresolved)
	assert.Empty(t, g.EdgesOfKind(sdg.EdgeCall))
	require.Len(t, g.Diagnostics(), 1)
	assert.Equal(t, sdg.DiagUnresolvedCall, g.Diagnostics()[0].Kind)
}

func TestAssignedCallToVoidProcedure(t *testing.T) {
	g := reduce(t, stmt.Sequence(
		stmt.Def{Name: "f"},
		stmt.Assign{Text: "x = f()", Var: "x", Call: call("f")},
	))
	Link(g, log.Nop())

	assert.Empty(t, g.EdgesOfKind(sdg.EdgeParamOut))
	require.Len(t, g.Diagnostics(), 1)
	assert.Equal(t, sdg.DiagFormalOutMismatch, g.Diagnostics()[0].Kind)
}

func TestResolveMethodSuffix(t *testing.T) {
	g := reduce(t, stmt.Sequence(
		stmt.Def{Name: "Stack.Push", Params: stmt.ParamsOf(formal("s"), formal("v"))},
		stmt.Def{Name: "Queue.Len", Params: stmt.ParamsOf(formal("q"))},
		stmt.Def{Name: "List.Len", Params: stmt.ParamsOf(formal("l"))},
	))

	p, ok := Resolve(g, "Push")
	require.True(t, ok)
	assert.Equal(t, "Stack.Push", p.Name)

	_, ok = Resolve(g, "Len")
	assert.False(t, ok, "ambiguous method name")
	_, ok = Resolve(g, "pkg.Push")
	assert.False(t, ok)
}

func TestDuplicateProcedure(t *testing.T) {
	g := reduce(t, stmt.Sequence(stmt.Def{Name: "f"}, stmt.Def{Name: "f"}))

	require.Len(t, g.Diagnostics(), 1)
	assert.Equal(t, sdg.DiagDuplicateProcedure, g.Diagnostics()[0].Kind)
	assert.Len(t, g.Procedures(), 1)
	assert.Len(t, g.FlowGraphs(), 2)
}
