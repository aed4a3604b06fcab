package engine

import (
	"github.com/l3aro/go-sdg/pkg/sdg"
	"github.com/l3aro/go-sdg/pkg/stmt"
)

// term is either a stmt.Stmt or one of the residual forms below. Residuals
// only ever appear during reduction; each embeds stmt.Residual, which keeps
// the set closed.
type term = stmt.Node

// seqTerm sequences residuals.
type seqTerm struct {
	stmt.Residual

	first, second term
}

// ctrlEdge is the control marker: when body finishes, every pending vertex
// becomes control dependent on each branch.
type ctrlEdge struct {
	stmt.Residual

	branches []branch
	body     term
}

// memberEdge closes pending and frontier vertices onto a unit vertex.
type memberEdge struct {
	stmt.Residual

	unit *sdg.Vertex
	body term
}

// cfgEdge composes two flow interfaces in sequence.
type cfgEdge struct {
	stmt.Residual

	first, second term
}

// ioUnion composes two alternative flow interfaces.
type ioUnion struct {
	stmt.Residual

	first, second term
}

// io is a finished flow interface: where control enters and where it leaves.
// With inheritIn set, the entry set is copied from the interface it is
// composed after, which closes a back edge.
type io struct {
	stmt.Residual

	in, out   []*sdg.Vertex
	inheritIn bool
}

// pendingVertex adds a vertex to the pending sources.
type pendingVertex struct {
	stmt.Residual

	v *sdg.Vertex
}

// frontierVertex exposes a finished member to the enclosing marker.
type frontierVertex struct {
	stmt.Residual

	v *sdg.Vertex
}

// popCtrl leaves the innermost control context.
type popCtrl struct{ stmt.Residual }

// loopExits yields the breaks resolved against the innermost loop.
type loopExits struct{ stmt.Residual }

// loopContinues yields the continues waiting for the innermost loop's update
// statement, or skip when there are none.
type loopContinues struct{ stmt.Residual }

// jump resolves a break or continue against the context depth levels below
// the top of the control stack. A labelled jump only resolves against the
// loop carrying its label.
type jump struct {
	stmt.Residual

	v      *sdg.Vertex
	depth  int
	label  string
	resume bool // continue rather than break
}

type direction int

const (
	actualIn direction = iota
	formalIn
)

// paramTerm expands a parameter list into actual-in or formal-in vertices.
type paramTerm struct {
	stmt.Residual

	dir  direction
	list stmt.ParamList
	proc *sdg.Procedure
	site *sdg.CallSite
	pos  stmt.Pos
}

// formalOutTerm creates the result vertex of a non-void procedure.
type formalOutTerm struct {
	stmt.Residual

	proc *sdg.Procedure
	pos  stmt.Pos
}

// actualOutTerm creates the vertex receiving an assigned call result.
type actualOutTerm struct {
	stmt.Residual

	site   *sdg.CallSite
	target string
	pos    stmt.Pos
}

// procEnd files the innermost flow graph under name once body is done.
type procEnd struct {
	stmt.Residual

	name     string
	body     term
	popsCtrl bool
}

func isSkip(t term) bool {
	_, ok := t.(stmt.Skip)
	return ok
}

func isIO(t term) bool {
	_, ok := t.(io)
	return ok
}

// isDone reports whether t is a finished residual: skip or an interface.
func isDone(t term) bool {
	return isSkip(t) || isIO(t)
}

func ioOf(v *sdg.Vertex) io {
	return io{in: []*sdg.Vertex{v}, out: []*sdg.Vertex{v}}
}

func union(a, b []*sdg.Vertex) []*sdg.Vertex {
	out := make([]*sdg.Vertex, 0, len(a)+len(b))
	seen := make(map[int]bool, len(a)+len(b))
	for _, vs := range [][]*sdg.Vertex{a, b} {
		for _, v := range vs {
			if seen[v.ID] {
				continue
			}
			seen[v.ID] = true
			out = append(out, v)
		}
	}
	return out
}

func orSkip(s stmt.Stmt) term {
	if s == nil {
		return stmt.Skip{}
	}
	return s
}
