package sdg

import "fmt"

// Snapshot is a flat, serializable copy of a Graph. Vertices are referenced by
// id. Reaching-definition working sets are not included.
type Snapshot struct {
	Vertices    []VertexRecord    `json:"vertices" msgpack:"vertices"`
	Edges       []EdgeRecord      `json:"edges" msgpack:"edges"`
	Flows       []FlowRecord      `json:"flows" msgpack:"flows"`
	Procedures  []ProcedureRecord `json:"procedures" msgpack:"procedures"`
	CallSites   []CallSiteRecord  `json:"call_sites" msgpack:"call_sites"`
	Diagnostics []Diagnostic      `json:"diagnostics,omitempty" msgpack:"diagnostics"`
}

// VertexRecord is the serialized form of a Vertex.
type VertexRecord struct {
	ID        int        `json:"id" msgpack:"id"`
	Kind      VertexKind `json:"kind" msgpack:"kind"`
	Label     string     `json:"label" msgpack:"label"`
	Def       string     `json:"def,omitempty" msgpack:"def"`
	Uses      []string   `json:"uses,omitempty" msgpack:"uses"`
	StartLine int        `json:"start_line" msgpack:"start_line"`
	EndLine   int        `json:"end_line" msgpack:"end_line"`
}

// EdgeRecord is the serialized form of an Edge.
type EdgeRecord struct {
	Source int      `json:"source" msgpack:"source"`
	Target int      `json:"target" msgpack:"target"`
	Kind   EdgeKind `json:"kind" msgpack:"kind"`
}

// FlowRecord is the serialized form of a FlowGraph.
type FlowRecord struct {
	Name     string   `json:"name" msgpack:"name"`
	Vertices []int    `json:"vertices" msgpack:"vertices"`
	Edges    [][2]int `json:"edges" msgpack:"edges"`
}

// ProcedureRecord is the serialized form of a Procedure.
type ProcedureRecord struct {
	Name    string `json:"name" msgpack:"name"`
	Entry   int    `json:"entry" msgpack:"entry"`
	Formals []int  `json:"formals" msgpack:"formals"`
}

// CallSiteRecord is the serialized form of a CallSite. ActualOut is -1 when
// the call has no actual-out vertex.
type CallSiteRecord struct {
	Call      int    `json:"call" msgpack:"call"`
	Callee    string `json:"callee" msgpack:"callee"`
	ActualIns []int  `json:"actual_ins" msgpack:"actual_ins"`
	ActualOut int    `json:"actual_out" msgpack:"actual_out"`
}

// Snapshot returns a serializable copy of g.
func (g *Graph) Snapshot() *Snapshot {
	s := &Snapshot{Diagnostics: g.Diagnostics()}
	for _, v := range g.order {
		s.Vertices = append(s.Vertices, VertexRecord{
			ID:        v.ID,
			Kind:      v.Kind,
			Label:     v.Label,
			Def:       v.Def,
			Uses:      append([]string(nil), v.Uses...),
			StartLine: v.StartLine,
			EndLine:   v.EndLine,
		})
	}
	for _, e := range g.edges {
		s.Edges = append(s.Edges, EdgeRecord{Source: e.Source.ID, Target: e.Target.ID, Kind: e.Kind})
	}
	for _, fg := range g.FlowGraphs() {
		fr := FlowRecord{Name: fg.Name}
		for _, v := range fg.vertices {
			fr.Vertices = append(fr.Vertices, v.ID)
		}
		for _, e := range fg.edgeList {
			fr.Edges = append(fr.Edges, [2]int{e[0].ID, e[1].ID})
		}
		s.Flows = append(s.Flows, fr)
	}
	for _, p := range g.Procedures() {
		s.Procedures = append(s.Procedures, ProcedureRecord{Name: p.Name, Entry: p.Entry.ID, Formals: ids(p.Formals)})
	}
	for _, cs := range g.calls {
		rec := CallSiteRecord{Call: cs.Call.ID, Callee: cs.Callee, ActualIns: ids(cs.ActualIns), ActualOut: -1}
		if cs.ActualOut != nil {
			rec.ActualOut = cs.ActualOut.ID
		}
		s.CallSites = append(s.CallSites, rec)
	}
	return s
}

// FromSnapshot rebuilds a graph from s.
func FromSnapshot(s *Snapshot) (*Graph, error) {
	g := NewGraph()
	for _, r := range s.Vertices {
		if g.Vertex(r.ID) != nil {
			return nil, fmt.Errorf("duplicate vertex id %d", r.ID)
		}
		g.AddVertex(&Vertex{
			ID:        r.ID,
			Kind:      r.Kind,
			Label:     r.Label,
			Def:       r.Def,
			Uses:      r.Uses,
			StartLine: r.StartLine,
			EndLine:   r.EndLine,
		})
	}

	lookup := func(id int) (*Vertex, error) {
		v := g.Vertex(id)
		if v == nil {
			return nil, fmt.Errorf("unknown vertex id %d", id)
		}
		return v, nil
	}
	lookupAll := func(ids []int) ([]*Vertex, error) {
		out := make([]*Vertex, 0, len(ids))
		for _, id := range ids {
			v, err := lookup(id)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}

	for _, r := range s.Edges {
		src, err := lookup(r.Source)
		if err != nil {
			return nil, fmt.Errorf("edge source: %w", err)
		}
		tgt, err := lookup(r.Target)
		if err != nil {
			return nil, fmt.Errorf("edge target: %w", err)
		}
		g.AddEdge(src, tgt, r.Kind)
	}

	for _, r := range s.Flows {
		fg := NewFlowGraph(r.Name)
		vs, err := lookupAll(r.Vertices)
		if err != nil {
			return nil, fmt.Errorf("flow graph %s: %w", r.Name, err)
		}
		for _, v := range vs {
			fg.AddVertex(v)
		}
		for _, e := range r.Edges {
			from, to := g.Vertex(e[0]), g.Vertex(e[1])
			if !fg.Contains(from) || !fg.Contains(to) {
				return nil, fmt.Errorf("flow graph %s: edge %d->%d leaves the graph", r.Name, e[0], e[1])
			}
			fg.AddEdge(from, to)
		}
		g.AddFlowGraph(fg)
	}

	for _, r := range s.Procedures {
		entry, err := lookup(r.Entry)
		if err != nil {
			return nil, fmt.Errorf("procedure %s: %w", r.Name, err)
		}
		formals, err := lookupAll(r.Formals)
		if err != nil {
			return nil, fmt.Errorf("procedure %s: %w", r.Name, err)
		}
		g.AddProcedure(&Procedure{Name: r.Name, Entry: entry, Formals: formals})
	}

	for _, r := range s.CallSites {
		call, err := lookup(r.Call)
		if err != nil {
			return nil, fmt.Errorf("call site: %w", err)
		}
		ins, err := lookupAll(r.ActualIns)
		if err != nil {
			return nil, fmt.Errorf("call site %s: %w", r.Callee, err)
		}
		cs := &CallSite{Call: call, Callee: r.Callee, ActualIns: ins}
		if r.ActualOut >= 0 {
			if cs.ActualOut, err = lookup(r.ActualOut); err != nil {
				return nil, fmt.Errorf("call site %s: %w", r.Callee, err)
			}
		}
		g.AddCallSite(cs)
	}

	for _, d := range s.Diagnostics {
		g.Report(d)
	}
	return g, nil
}

func ids(vs []*Vertex) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = v.ID
	}
	return out
}
