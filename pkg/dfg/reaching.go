// Package dfg computes reaching definitions over the per-procedure flow
// graphs of a dependence graph and adds the resulting data edges.
package dfg

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/willf/bitset"

	"github.com/l3aro/go-sdg/pkg/sdg"
)

// ErrNoFixpoint means a flow graph did not converge within the iteration
// bound. Well-formed graphs always converge, so this indicates a defect.
var ErrNoFixpoint = errors.New("dfg: reaching definitions did not reach a fixpoint")

// DefaultMaxIterations bounds the number of sweeps per flow graph.
const DefaultMaxIterations = 1000

// problem is the reaching-definitions problem of one flow graph. Bit i of a
// set stands for the definition made by vertex i.
type problem struct {
	fg       *sdg.FlowGraph
	vertices []*sdg.Vertex // id order
	gen      map[int]*bitset.BitSet
	kill     map[int]*bitset.BitSet
	size     uint
}

func newProblem(fg *sdg.FlowGraph, size uint) *problem {
	p := &problem{
		fg:       fg,
		vertices: fg.Vertices(),
		gen:      make(map[int]*bitset.BitSet),
		kill:     make(map[int]*bitset.BitSet),
		size:     size,
	}
	sort.Slice(p.vertices, func(i, j int) bool { return p.vertices[i].ID < p.vertices[j].ID })

	// every definition of a variable kills every other one
	byVar := make(map[string]*bitset.BitSet)
	for _, v := range p.vertices {
		if !definesVariable(v) {
			continue
		}
		if byVar[v.Def] == nil {
			byVar[v.Def] = bitset.New(size)
		}
		byVar[v.Def].Set(uint(v.ID))
	}

	empty := bitset.New(size)
	for _, v := range p.vertices {
		if !definesVariable(v) {
			p.gen[v.ID], p.kill[v.ID] = empty, empty
			continue
		}
		p.gen[v.ID] = bitset.New(size).Set(uint(v.ID))
		p.kill[v.ID] = byVar[v.Def]
	}
	return p
}

// definesVariable reports whether v generates a definition. Conditions are
// pure control vertices and pass their input through.
func definesVariable(v *sdg.Vertex) bool {
	return v.Def != "" && !v.Kind.IsCondition()
}

// normalize gives every vertex In and Out sets of the problem's size,
// keeping any bits already present.
func (p *problem) normalize() {
	for _, v := range p.vertices {
		v.In = resize(v.In, p.size)
		v.Out = resize(v.Out, p.size)
	}
}

func (p *problem) reset() {
	for _, v := range p.vertices {
		v.In = bitset.New(p.size)
		v.Out = bitset.New(p.size)
	}
}

func resize(s *bitset.BitSet, size uint) *bitset.BitSet {
	if s == nil {
		return bitset.New(size)
	}
	if s.Len() == size {
		return s
	}
	out := bitset.New(size)
	out.InPlaceUnion(s)
	return out
}

// solve sweeps the vertices in id order until no In or Out set changes and
// returns the number of sweeps, the final unchanged sweep included.
func (p *problem) solve(ctx context.Context, maxIterations int) (int, error) {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	for sweep := 1; sweep <= maxIterations; sweep++ {
		if err := ctx.Err(); err != nil {
			return sweep - 1, err
		}

		changed := false
		for _, v := range p.vertices {
			in := bitset.New(p.size)
			for _, pred := range p.fg.Predecessors(v) {
				in.InPlaceUnion(pred.Out)
			}
			out := in.Difference(p.kill[v.ID]).Union(p.gen[v.ID])

			if !in.Equal(v.In) || !out.Equal(v.Out) {
				changed = true
			}
			v.In, v.Out = in, out
		}
		if !changed {
			return sweep, nil
		}
	}
	return maxIterations, fmt.Errorf("%w: flow graph %s after %d sweeps", ErrNoFixpoint, p.fg.Name, maxIterations)
}

// Solve runs the fixpoint for fg starting from the vertices' current sets
// and returns the number of sweeps. On an already solved graph it returns 1
// and changes nothing.
func Solve(ctx context.Context, g *sdg.Graph, fg *sdg.FlowGraph, maxIterations int) (int, error) {
	p := newProblem(fg, setSize(g))
	p.normalize()
	return p.solve(ctx, maxIterations)
}

func setSize(g *sdg.Graph) uint {
	return uint(g.MaxID() + 1)
}

// Reaching returns the vertices whose definitions reach v, ordered by id.
func Reaching(g *sdg.Graph, v *sdg.Vertex) []*sdg.Vertex {
	if v.In == nil {
		return nil
	}
	var out []*sdg.Vertex
	for i, ok := v.In.NextSet(0); ok; i, ok = v.In.NextSet(i + 1) {
		if d := g.Vertex(int(i)); d != nil {
			out = append(out, d)
		}
	}
	return out
}
