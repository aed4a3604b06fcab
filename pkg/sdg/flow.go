package sdg

// FlowGraph is the control-flow graph of one procedure over vertices of the
// dependence graph. Its edges only mean "flows to".
type FlowGraph struct {
	Name string

	vertices []*Vertex
	index    map[int]int
	succ     map[int][]*Vertex
	pred     map[int][]*Vertex
	edges    map[[2]int]struct{}
	edgeList [][2]*Vertex
}

// NewFlowGraph returns an empty flow graph called name.
func NewFlowGraph(name string) *FlowGraph {
	return &FlowGraph{
		Name:  name,
		index: make(map[int]int),
		succ:  make(map[int][]*Vertex),
		pred:  make(map[int][]*Vertex),
		edges: make(map[[2]int]struct{}),
	}
}

// AddVertex adds v if absent.
func (f *FlowGraph) AddVertex(v *Vertex) {
	if _, ok := f.index[v.ID]; ok {
		return
	}
	f.index[v.ID] = len(f.vertices)
	f.vertices = append(f.vertices, v)
}

// AddEdge adds a flow edge from -> to. Both vertices must be in f.
func (f *FlowGraph) AddEdge(from, to *Vertex) {
	if !f.Contains(from) || !f.Contains(to) {
		panic("sdg: flow edge " + from.String() + " -> " + to.String() + " leaves flow graph " + f.Name)
	}
	k := [2]int{from.ID, to.ID}
	if _, ok := f.edges[k]; ok {
		return
	}
	f.edges[k] = struct{}{}
	f.edgeList = append(f.edgeList, [2]*Vertex{from, to})
	f.succ[from.ID] = append(f.succ[from.ID], to)
	f.pred[to.ID] = append(f.pred[to.ID], from)
}

// Contains reports whether v belongs to f.
func (f *FlowGraph) Contains(v *Vertex) bool {
	if v == nil {
		return false
	}
	i, ok := f.index[v.ID]
	return ok && f.vertices[i] == v
}

// HasEdge reports whether from flows to to.
func (f *FlowGraph) HasEdge(from, to *Vertex) bool {
	_, ok := f.edges[[2]int{from.ID, to.ID}]
	return ok
}

// Vertices returns the vertices in insertion order.
func (f *FlowGraph) Vertices() []*Vertex {
	out := make([]*Vertex, len(f.vertices))
	copy(out, f.vertices)
	return out
}

// Len returns the number of vertices.
func (f *FlowGraph) Len() int { return len(f.vertices) }

// Empty reports whether f has no vertices.
func (f *FlowGraph) Empty() bool { return len(f.vertices) == 0 }

// Successors returns the vertices v flows to.
func (f *FlowGraph) Successors(v *Vertex) []*Vertex { return f.succ[v.ID] }

// Predecessors returns the vertices flowing to v.
func (f *FlowGraph) Predecessors(v *Vertex) []*Vertex { return f.pred[v.ID] }

// Edges returns the flow edges as (from, to) pairs in insertion order.
func (f *FlowGraph) Edges() [][2]*Vertex {
	out := make([][2]*Vertex, len(f.edgeList))
	copy(out, f.edgeList)
	return out
}
