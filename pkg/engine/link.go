package engine

import (
	"fmt"
	"strings"

	"github.com/l3aro/go-sdg/internal/log"
	"github.com/l3aro/go-sdg/pkg/sdg"
)

// LinkStats summarizes one Link pass.
type LinkStats struct {
	CallSites  int `json:"call_sites"`
	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`
	Mismatched int `json:"mismatched"`
}

// Link binds every recorded call site to its callee. It runs after
// reduction, when every procedure of the unit is registered, so a call may
// precede the definition it targets.
//
// For each call it adds a call edge to the callee's entry, param-in edges
// pairing actual-ins with formal-ins by position, and for assignment-form
// calls a param-out edge from the callee's formal-out. Unknown callees and
// arity mismatches are reported and leave the call without parameter edges.
// Link is idempotent.
func Link(g *sdg.Graph, logger log.Logger) LinkStats {
	if logger == nil {
		logger = log.Nop()
	}
	var stats LinkStats
	for _, cs := range g.CallSites() {
		stats.CallSites++

		proc, ok := Resolve(g, cs.Callee)
		if !ok {
			stats.Unresolved++
			warn(g, logger, sdg.DiagUnresolvedCall, cs.Call, fmt.Sprintf("unresolved call to %s", cs.Callee))
			continue
		}
		stats.Resolved++
		g.AddEdge(cs.Call, proc.Entry, sdg.EdgeCall)

		formals := proc.FormalIns()
		if len(formals) != len(cs.ActualIns) {
			stats.Mismatched++
			warn(g, logger, sdg.DiagArityMismatch, cs.Call,
				fmt.Sprintf("call to %s passes %d arguments, %s declares %d", cs.Callee, len(cs.ActualIns), proc.Name, len(formals)))
			continue
		}
		for i, a := range cs.ActualIns {
			g.AddEdge(a, formals[i], sdg.EdgeParamIn)
		}

		if cs.ActualOut == nil {
			continue
		}
		out, ok := proc.FormalOut()
		if !ok {
			warn(g, logger, sdg.DiagFormalOutMismatch, cs.Call,
				fmt.Sprintf("result of %s is assigned but %s has no result", cs.Callee, proc.Name))
			continue
		}
		g.AddEdge(out, cs.ActualOut, sdg.EdgeParamOut)
	}

	logger.Debug("linked call sites",
		"call_sites", stats.CallSites,
		"resolved", stats.Resolved,
		"unresolved", stats.Unresolved,
		"mismatched", stats.Mismatched,
	)
	return stats
}

// Resolve finds the procedure a callee name refers to: an exact match first,
// otherwise the only method whose name ends in "."+callee.
func Resolve(g *sdg.Graph, callee string) (*sdg.Procedure, bool) {
	if p, ok := g.Procedure(callee); ok {
		return p, true
	}
	if strings.Contains(callee, ".") {
		return nil, false
	}
	var found *sdg.Procedure
	for _, p := range g.Procedures() {
		if !strings.HasSuffix(p.Name, "."+callee) {
			continue
		}
		if found != nil {
			return nil, false
		}
		found = p
	}
	return found, found != nil
}

func warn(g *sdg.Graph, logger log.Logger, kind sdg.DiagnosticKind, v *sdg.Vertex, msg string) {
	g.Report(sdg.Diagnostic{Kind: kind, Vertex: v.ID, Message: msg})
	logger.Warn(msg, "kind", string(kind), "vertex", v.String())
}
