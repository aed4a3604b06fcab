// Package sdg defines the System Dependence Graph: vertices for program
// elements, typed edges for control, data, call and parameter dependence, and
// the per-procedure control-flow graphs the data-flow pass runs on.
package sdg

import (
	"fmt"

	"github.com/willf/bitset"
)

// VertexKind classifies a vertex.
type VertexKind string

const (
	KindEntry        VertexKind = "entry"         // Procedure entry
	KindUnit         VertexKind = "unit"          // Unit boundary (package, class)
	KindDecl         VertexKind = "decl"          // Variable declaration
	KindAssign       VertexKind = "assign"        // Assignment
	KindPreUpdate    VertexKind = "pre_update"    // ++x
	KindPostUpdate   VertexKind = "post_update"   // x++
	KindIf           VertexKind = "if"            // Conditional
	KindWhile        VertexKind = "while"         // Pre-tested loop condition
	KindDo           VertexKind = "do"            // Post-tested loop condition
	KindFor          VertexKind = "for"           // Three-clause loop condition
	KindCall         VertexKind = "call"          // Call site
	KindActualIn     VertexKind = "actual_in"     // Argument passed at a call site
	KindActualOut    VertexKind = "actual_out"    // Result received at a call site
	KindFormalIn     VertexKind = "formal_in"     // Declared parameter
	KindFormalOut    VertexKind = "formal_out"    // Procedure result
	KindBreak        VertexKind = "break"         // break
	KindContinue     VertexKind = "continue"      // continue
	KindReturn       VertexKind = "return"        // return
	KindInitialState VertexKind = "initial_state" // Externally defined variable
	KindUnsupported  VertexKind = "unsupported"   // Untranslated construct
)

// IsCondition reports whether vertices of kind k are pure control vertices.
func (k VertexKind) IsCondition() bool {
	switch k {
	case KindIf, KindWhile, KindDo, KindFor:
		return true
	}
	return false
}

// IsLoop reports whether k is a loop condition.
func (k VertexKind) IsLoop() bool {
	return k == KindWhile || k == KindDo || k == KindFor
}

// EdgeKind classifies an edge.
type EdgeKind string

const (
	EdgeCtrlTrue  EdgeKind = "ctrl_true"  // Control dependence on the true outcome
	EdgeCtrlFalse EdgeKind = "ctrl_false" // Control dependence on the false outcome
	EdgeMemberOf  EdgeKind = "member_of"  // Unit membership
	EdgeCall      EdgeKind = "call"       // Call site to procedure entry
	EdgeParamIn   EdgeKind = "param_in"   // Actual-in to formal-in
	EdgeParamOut  EdgeKind = "param_out"  // Formal-out to actual-out
	EdgeData      EdgeKind = "data"       // Definition reaches use
)

// EdgeKinds lists every edge kind in a fixed order.
var EdgeKinds = []EdgeKind{EdgeCtrlTrue, EdgeCtrlFalse, EdgeMemberOf, EdgeCall, EdgeParamIn, EdgeParamOut, EdgeData}

// IsControl reports whether k is a control dependence edge.
func (k EdgeKind) IsControl() bool {
	return k == EdgeCtrlTrue || k == EdgeCtrlFalse
}

// Vertex is a program element in the dependence graph.
type Vertex struct {
	ID        int            `json:"id"`             // Unique within one construction run
	Kind      VertexKind     `json:"kind"`           // Vertex classification
	Label     string         `json:"label"`          // Source text
	Def       string         `json:"def,omitempty"`  // Variable defined, if any
	Uses      []string       `json:"uses,omitempty"` // Variables read
	StartLine int            `json:"start_line"`     // Starting line number in source
	EndLine   int            `json:"end_line"`       // Ending line number in source
	In        *bitset.BitSet `json:"-"`              // Reaching definitions on entry
	Out       *bitset.BitSet `json:"-"`              // Reaching definitions on exit
}

// String renders v as id-kind-label.
func (v *Vertex) String() string {
	return fmt.Sprintf("%d-%s-%s", v.ID, v.Kind, v.Label)
}

// Defines reports whether v defines name.
func (v *Vertex) Defines(name string) bool {
	return v.Def != "" && v.Def == name
}

// Reads reports whether v reads name.
func (v *Vertex) Reads(name string) bool {
	for _, u := range v.Uses {
		if u == name {
			return true
		}
	}
	return false
}

// Edge is a typed dependence between two vertices.
type Edge struct {
	Source *Vertex  `json:"-"`
	Target *Vertex  `json:"-"`
	Kind   EdgeKind `json:"kind"`
}

// String renders e as "src -kind-> tgt".
func (e Edge) String() string {
	return fmt.Sprintf("%s -%s-> %s", e.Source, e.Kind, e.Target)
}

type edgeKey struct {
	src, tgt int
	kind     EdgeKind
}

func (e Edge) key() edgeKey {
	return edgeKey{src: e.Source.ID, tgt: e.Target.ID, kind: e.Kind}
}
