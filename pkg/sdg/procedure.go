package sdg

import "fmt"

// Procedure is the parameter-table entry of one procedure definition.
type Procedure struct {
	Name    string
	Entry   *Vertex
	Formals []*Vertex // formal-ins in declaration order, then the formal-out if any
}

// FormalIns returns the formal-in vertices in declaration order.
func (p *Procedure) FormalIns() []*Vertex {
	var out []*Vertex
	for _, f := range p.Formals {
		if f.Kind == KindFormalIn {
			out = append(out, f)
		}
	}
	return out
}

// FormalOut returns the last formal if it is a formal-out vertex.
func (p *Procedure) FormalOut() (*Vertex, bool) {
	if len(p.Formals) == 0 {
		return nil, false
	}
	last := p.Formals[len(p.Formals)-1]
	return last, last.Kind == KindFormalOut
}

// CallSite records one call: the call vertex, the callee name and the
// actual-parameter vertices created for it.
type CallSite struct {
	Call      *Vertex
	Callee    string
	ActualIns []*Vertex
	ActualOut *Vertex // nil unless the call's result is assigned
}

// DiagnosticKind classifies a non-fatal analysis problem.
type DiagnosticKind string

const (
	DiagUnresolvedCall     DiagnosticKind = "unresolved_call"     // Callee not registered
	DiagArityMismatch      DiagnosticKind = "arity_mismatch"      // Actual and formal counts differ
	DiagFormalOutMismatch  DiagnosticKind = "formal_out_mismatch" // Assigned call to a void procedure
	DiagUnresolvedJump     DiagnosticKind = "unresolved_jump"     // break/continue outside a loop
	DiagDuplicateProcedure DiagnosticKind = "duplicate_procedure" // Two definitions share a name
)

// Diagnostic is a recoverable problem found while building the graph.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind" msgpack:"kind"`
	Vertex  int            `json:"vertex" msgpack:"vertex"`
	Message string         `json:"message" msgpack:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at vertex %d: %s", d.Kind, d.Vertex, d.Message)
}
