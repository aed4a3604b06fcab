package dfg

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/l3aro/go-sdg/internal/log"
	"github.com/l3aro/go-sdg/pkg/sdg"
)

// Analyze computes reaching definitions for every flow graph of g and adds a
// data edge from each reaching definition to each vertex that reads it.
//
// Flow graphs share no vertices, so they are solved concurrently, up to
// opts.Workers at a time. Data edges are added afterwards in vertex id
// order, which keeps the result independent of scheduling.
func Analyze(ctx context.Context, g *sdg.Graph, opts Options) (*Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	size := setSize(g)
	flows := g.FlowGraphs()
	sweeps := make([]int, len(flows))

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, fg := range flows {
		eg.Go(func() error {
			p := newProblem(fg, size)
			p.reset()
			n, err := p.solve(ectx, opts.MaxIterations)
			sweeps[i] = n
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	stats := &Stats{FlowGraphs: len(flows), Sweeps: make(map[string]int, len(flows))}
	owner := make(map[int]string)
	for i, fg := range flows {
		stats.Sweeps[fg.Name] = sweeps[i]
		for _, v := range fg.Vertices() {
			owner[v.ID] = fg.Name
		}
		logger.Debug("reaching definitions solved", "flow", fg.Name, "vertices", fg.Len(), "sweeps", sweeps[i])
	}

	// actual-ins are evaluated at their call
	for _, cs := range g.CallSites() {
		if cs.Call.In == nil {
			continue
		}
		flow, ok := owner[cs.Call.ID]
		for _, a := range cs.ActualIns {
			a.In = cs.Call.In.Clone()
			a.Out = cs.Call.In.Clone()
			if ok {
				owner[a.ID] = flow
			}
		}
	}

	states := newPlaceholders(g)
	for _, v := range g.Vertices() {
		flow, ok := owner[v.ID]
		if !ok || v.In == nil {
			continue
		}
		for _, name := range distinct(v.Uses) {
			found := false
			for i, more := v.In.NextSet(0); more; i, more = v.In.NextSet(i + 1) {
				d := g.Vertex(int(i))
				if d == nil || d.Def != name || d.Kind == sdg.KindActualIn {
					continue
				}
				found = true
				if g.AddEdge(d, v, sdg.EdgeData) {
					stats.DataEdges++
				}
			}
			if found || !opts.InitialState {
				continue
			}
			p, created := states.get(flow, name)
			if created {
				stats.InitialStates++
			}
			if g.AddEdge(p, v, sdg.EdgeData) {
				stats.DataEdges++
			}
		}
	}

	logger.Info("data flow analysis complete",
		"flow_graphs", stats.FlowGraphs,
		"data_edges", stats.DataEdges,
		"initial_states", stats.InitialStates,
	)
	return stats, nil
}

// placeholders creates initial_state vertices, one per flow graph and
// variable, and finds them again by label on later runs.
type placeholders struct {
	g     *sdg.Graph
	alloc *sdg.Allocator
	seen  map[string]*sdg.Vertex
}

func newPlaceholders(g *sdg.Graph) *placeholders {
	return &placeholders{
		g:     g,
		alloc: sdg.NewAllocatorFrom(g.MaxID() + 1),
		seen:  make(map[string]*sdg.Vertex),
	}
}

// InitialStateLabel is the label of the placeholder for name in flow.
func InitialStateLabel(flow, name string) string {
	return fmt.Sprintf("%s@%s", name, flow)
}

func (p *placeholders) get(flow, name string) (*sdg.Vertex, bool) {
	label := InitialStateLabel(flow, name)
	if v, ok := p.seen[label]; ok {
		return v, false
	}
	for _, v := range p.g.VerticesByLabel(label) {
		if v.Kind == sdg.KindInitialState {
			p.seen[label] = v
			return v, false
		}
	}
	v := p.alloc.NewVertex(sdg.KindInitialState, label)
	v.Def = name
	p.g.AddVertex(v)
	p.seen[label] = v
	return v, true
}

func distinct(names []string) []string {
	if len(names) < 2 {
		return names
	}
	seen := make(map[string]struct{}, len(names))
	out := names[:0:0]
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Edges lists the data edges of g as def-use pairs.
func Edges(g *sdg.Graph) []DataflowEdge {
	var out []DataflowEdge
	for _, e := range g.EdgesOfKind(sdg.EdgeData) {
		out = append(out, DataflowEdge{Def: e.Source.ID, Use: e.Target.ID, VarName: e.Source.Def})
	}
	return out
}
