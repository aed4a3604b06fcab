// Package engine builds the skeleton of a System Dependence Graph by rewriting
// a statement tree one step at a time. Each step either reduces a sub-term in
// place (a congruence) or performs a graph side effect and replaces the
// redex with something smaller. Control, member, call and parameter edges and
// the per-procedure flow graphs all come out of this reduction; data edges
// are added afterwards by pkg/dfg.
package engine

import (
	"github.com/l3aro/go-sdg/internal/log"
	"github.com/l3aro/go-sdg/pkg/sdg"
	"github.com/l3aro/go-sdg/pkg/stmt"
)

// scope says which marker encloses the term being reduced. Vertices only
// become pending sources when some marker is there to close them.
type scope int

const (
	scopeNone    scope = iota // top level, nothing governs new vertices
	scopeControl              // under a control marker
	scopeMember               // under a unit membership marker
)

type contextKind int

const (
	contextSequential contextKind = iota
	contextLoop
)

func (k contextKind) String() string {
	if k == contextLoop {
		return "LOOP"
	}
	return "SEQ"
}

// controlContext is one entry of the control stack.
type controlContext struct {
	kind     contextKind
	vertex   *sdg.Vertex   // governing condition or entry
	label    string        // loop label, empty when unlabelled
	breaks   []*sdg.Vertex // breaks resolved against this loop
	boundary bool          // procedure body; jumps never resolve past it

	// A loop with an update statement re-enters there, not at its
	// condition; continues wait in continues until the update is reached.
	deferContinues bool
	continues      []*sdg.Vertex
}

// branch is one arm of a control marker: the controlling vertex and the
// outcome under which the marked statements run.
type branch struct {
	value  bool
	vertex *sdg.Vertex
}

func (b branch) edgeKind() sdg.EdgeKind {
	if b.value {
		return sdg.EdgeCtrlTrue
	}
	return sdg.EdgeCtrlFalse
}

// Config is the engine state threaded through every step. step takes a Config
// by value and returns the successor; the argument must not be used again.
type Config struct {
	term  term
	graph *sdg.Graph
	alloc *sdg.Allocator
	log   log.Logger

	pending  []*sdg.Vertex // vertices awaiting their governing control edge
	frontier []*sdg.Vertex // member interfaces awaiting their unit edge
	ctrl     []*controlContext
	flows    []*sdg.FlowGraph

	scope    scope
	branches []branch // markers of the innermost enclosing control wrapper
}

func newConfig(root stmt.Stmt, logger log.Logger) Config {
	if logger == nil {
		logger = log.Nop()
	}
	return Config{
		term:  procEnd{name: sdg.TopLevel, body: root},
		graph: sdg.NewGraph(),
		alloc: sdg.NewAllocator(),
		log:   logger,
		flows: []*sdg.FlowGraph{sdg.NewFlowGraph(sdg.TopLevel)},
	}
}

// Done reports whether the term has been fully reduced.
func (c Config) Done() bool {
	return isSkip(c.term)
}

// Graph returns the graph under construction.
func (c Config) Graph() *sdg.Graph {
	return c.graph
}

func (c *Config) newVertex(kind sdg.VertexKind, label string, pos stmt.Pos) *sdg.Vertex {
	v := c.alloc.NewVertex(kind, label)
	v.StartLine, v.EndLine = pos.StartLine, pos.EndLine
	if v.EndLine < v.StartLine {
		v.EndLine = v.StartLine
	}
	c.graph.AddVertex(v)
	return v
}

// flow returns the flow graph of the innermost procedure.
func (c *Config) flow() *sdg.FlowGraph {
	if len(c.flows) == 0 {
		panic("engine: no open flow graph")
	}
	return c.flows[len(c.flows)-1]
}

func (c *Config) markPending(v *sdg.Vertex) {
	if c.scope == scopeNone {
		return
	}
	c.pending = append(c.pending, v)
}

// closePending adds a control edge from every marker branch to every pending
// vertex and clears the frontier.
func (c *Config) closePending(branches []branch) {
	for _, p := range c.pending {
		for _, b := range branches {
			c.graph.AddEdge(b.vertex, p, b.edgeKind())
		}
	}
	c.pending = nil
}

func (c *Config) pushCtrl(kind contextKind, v *sdg.Vertex, boundary bool) {
	c.ctrl = append(c.ctrl, &controlContext{kind: kind, vertex: v, boundary: boundary})
}

func (c *Config) pushLoop(v *sdg.Vertex, label string, deferContinues bool) {
	c.ctrl = append(c.ctrl, &controlContext{
		kind:           contextLoop,
		vertex:         v,
		label:          label,
		deferContinues: deferContinues,
	})
}

func (c *Config) popCtrl() *controlContext {
	if len(c.ctrl) == 0 {
		panic("engine: pop on empty control stack")
	}
	top := c.ctrl[len(c.ctrl)-1]
	c.ctrl = c.ctrl[:len(c.ctrl)-1]
	return top
}

func (c *Config) topCtrl() *controlContext {
	if len(c.ctrl) == 0 {
		panic("engine: empty control stack")
	}
	return c.ctrl[len(c.ctrl)-1]
}

func (c *Config) report(kind sdg.DiagnosticKind, v *sdg.Vertex, msg string) {
	c.graph.Report(sdg.Diagnostic{Kind: kind, Vertex: v.ID, Message: msg})
	c.log.Warn(msg, "kind", string(kind), "vertex", v.String())
}

// within reduces inner one step under scope s and markers br, then rewraps the
// result. The caller's scope and markers are restored.
func (c Config) within(inner term, s scope, br []branch, wrap func(term) term) Config {
	outerScope, outerBranches := c.scope, c.branches
	c.term, c.scope, c.branches = inner, s, br
	c = step(c)
	c.term, c.scope, c.branches = wrap(c.term), outerScope, outerBranches
	return c
}

// congruence reduces inner one step in the current scope.
func (c Config) congruence(inner term, wrap func(term) term) Config {
	return c.within(inner, c.scope, c.branches, wrap)
}
