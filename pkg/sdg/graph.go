package sdg

import (
	"fmt"
	"sort"
)

// TopLevel names the flow graph of statements outside any procedure.
const TopLevel = "<main>"

// Graph is a directed multigraph of vertices and typed edges. Parallel edges
// of different kinds between the same pair are kept; an edge of a kind that
// already connects the pair is not added twice.
//
// A Graph is not safe for concurrent mutation.
type Graph struct {
	vertices map[int]*Vertex
	order    []*Vertex
	edges    []Edge
	edgeSet  map[edgeKey]struct{}
	incoming map[int][]Edge
	outgoing map[int][]Edge

	flows     map[string]*FlowGraph
	flowOrder []string

	procs     map[string]*Procedure
	procOrder []string
	calls     []*CallSite

	diagnostics []Diagnostic
	diagSet     map[Diagnostic]struct{}
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		vertices: make(map[int]*Vertex),
		edgeSet:  make(map[edgeKey]struct{}),
		incoming: make(map[int][]Edge),
		outgoing: make(map[int][]Edge),
		flows:    make(map[string]*FlowGraph),
		procs:    make(map[string]*Procedure),
		diagSet:  make(map[Diagnostic]struct{}),
	}
}

// AddVertex adds v. Adding a second vertex with an existing id panics.
func (g *Graph) AddVertex(v *Vertex) {
	if v == nil {
		panic("sdg: nil vertex")
	}
	if _, ok := g.vertices[v.ID]; ok {
		panic(fmt.Sprintf("sdg: duplicate vertex id %d", v.ID))
	}
	g.vertices[v.ID] = v
	g.order = append(g.order, v)
}

// AddEdge adds an edge of kind from src to tgt and reports whether it was new.
// Both endpoints must already be in the graph.
func (g *Graph) AddEdge(src, tgt *Vertex, kind EdgeKind) bool {
	if !g.Contains(src) || !g.Contains(tgt) {
		panic(fmt.Sprintf("sdg: edge %v -%s-> %v has an endpoint outside the graph", src, kind, tgt))
	}
	e := Edge{Source: src, Target: tgt, Kind: kind}
	k := e.key()
	if _, ok := g.edgeSet[k]; ok {
		return false
	}
	g.edgeSet[k] = struct{}{}
	g.edges = append(g.edges, e)
	g.outgoing[src.ID] = append(g.outgoing[src.ID], e)
	g.incoming[tgt.ID] = append(g.incoming[tgt.ID], e)
	return true
}

// Contains reports whether v is a vertex of g.
func (g *Graph) Contains(v *Vertex) bool {
	if v == nil {
		return false
	}
	got, ok := g.vertices[v.ID]
	return ok && got == v
}

// HasEdge reports whether an edge of kind connects src to tgt.
func (g *Graph) HasEdge(src, tgt *Vertex, kind EdgeKind) bool {
	_, ok := g.edgeSet[edgeKey{src: src.ID, tgt: tgt.ID, kind: kind}]
	return ok
}

// Vertex returns the vertex with the given id, or nil.
func (g *Graph) Vertex(id int) *Vertex {
	return g.vertices[id]
}

// Vertices returns all vertices in insertion order.
func (g *Graph) Vertices() []*Vertex {
	out := make([]*Vertex, len(g.order))
	copy(out, g.order)
	return out
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int {
	return len(g.order)
}

// MaxID returns the largest vertex id, or -1 for an empty graph.
func (g *Graph) MaxID() int {
	max := -1
	for id := range g.vertices {
		if id > max {
			max = id
		}
	}
	return max
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// EdgesOfKind returns the edges of kind in insertion order.
func (g *Graph) EdgesOfKind(kind EdgeKind) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Incoming returns the edges targeting v.
func (g *Graph) Incoming(v *Vertex) []Edge {
	return g.incoming[v.ID]
}

// Outgoing returns the edges leaving v.
func (g *Graph) Outgoing(v *Vertex) []Edge {
	return g.outgoing[v.ID]
}

// VerticesByLabel returns the vertices labelled name, ordered by id.
func (g *Graph) VerticesByLabel(name string) []*Vertex {
	var out []*Vertex
	for _, v := range g.order {
		if v.Label == name {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// VerticesOfKind returns the vertices of kind in insertion order.
func (g *Graph) VerticesOfKind(kind VertexKind) []*Vertex {
	var out []*Vertex
	for _, v := range g.order {
		if v.Kind == kind {
			out = append(out, v)
		}
	}
	return out
}

// InducedSubgraph returns a new graph holding copies of the vertices in ids
// and every edge of g whose endpoints are both among them. Unknown ids are
// ignored.
func (g *Graph) InducedSubgraph(ids []int) *Graph {
	sub := NewGraph()
	copies := make(map[int]*Vertex, len(ids))
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	for _, id := range sorted {
		v, ok := g.vertices[id]
		if !ok {
			continue
		}
		if _, dup := copies[id]; dup {
			continue
		}
		c := *v
		c.Uses = append([]string(nil), v.Uses...)
		c.In, c.Out = nil, nil
		copies[id] = &c
		sub.AddVertex(&c)
	}
	for _, e := range g.edges {
		s, okS := copies[e.Source.ID]
		t, okT := copies[e.Target.ID]
		if okS && okT {
			sub.AddEdge(s, t, e.Kind)
		}
	}
	return sub
}

// ProcedureSubgraph returns the subgraph induced by the vertices of the flow
// graph named name plus the actual-in vertices of calls inside it.
func (g *Graph) ProcedureSubgraph(name string) (*Graph, bool) {
	fg, ok := g.flows[name]
	if !ok {
		return nil, false
	}
	ids := make([]int, 0, fg.Len())
	for _, v := range fg.Vertices() {
		ids = append(ids, v.ID)
	}
	for _, cs := range g.calls {
		if !fg.Contains(cs.Call) {
			continue
		}
		for _, a := range cs.ActualIns {
			ids = append(ids, a.ID)
		}
	}
	return g.InducedSubgraph(ids), true
}

// AddFlowGraph files fg under its name, replacing any previous graph of
// that name.
func (g *Graph) AddFlowGraph(fg *FlowGraph) {
	if _, ok := g.flows[fg.Name]; !ok {
		g.flowOrder = append(g.flowOrder, fg.Name)
	}
	g.flows[fg.Name] = fg
}

// FlowGraph returns the flow graph filed under name.
func (g *Graph) FlowGraph(name string) (*FlowGraph, bool) {
	fg, ok := g.flows[name]
	return fg, ok
}

// FlowGraphs returns the flow graphs in filing order.
func (g *Graph) FlowGraphs() []*FlowGraph {
	out := make([]*FlowGraph, 0, len(g.flowOrder))
	for _, name := range g.flowOrder {
		out = append(out, g.flows[name])
	}
	return out
}

// AddProcedure registers p and reports false if a procedure with the same
// name is already registered; the earlier one is kept.
func (g *Graph) AddProcedure(p *Procedure) bool {
	if _, ok := g.procs[p.Name]; ok {
		return false
	}
	g.procs[p.Name] = p
	g.procOrder = append(g.procOrder, p.Name)
	return true
}

// Procedure returns the procedure registered under name.
func (g *Graph) Procedure(name string) (*Procedure, bool) {
	p, ok := g.procs[name]
	return p, ok
}

// Procedures returns the registered procedures in registration order.
func (g *Graph) Procedures() []*Procedure {
	out := make([]*Procedure, 0, len(g.procOrder))
	for _, name := range g.procOrder {
		out = append(out, g.procs[name])
	}
	return out
}

// AddCallSite records cs.
func (g *Graph) AddCallSite(cs *CallSite) {
	g.calls = append(g.calls, cs)
}

// CallSites returns the recorded call sites in creation order.
func (g *Graph) CallSites() []*CallSite {
	out := make([]*CallSite, len(g.calls))
	copy(out, g.calls)
	return out
}

// Report records d unless an identical diagnostic was already recorded.
func (g *Graph) Report(d Diagnostic) {
	if _, ok := g.diagSet[d]; ok {
		return
	}
	g.diagSet[d] = struct{}{}
	g.diagnostics = append(g.diagnostics, d)
}

// Diagnostics returns the recorded diagnostics in order.
func (g *Graph) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(g.diagnostics))
	copy(out, g.diagnostics)
	return out
}
