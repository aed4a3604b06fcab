package dfg

import (
	"github.com/l3aro/go-sdg/internal/log"
)

// Options controls a reaching-definitions run.
type Options struct {
	MaxIterations int        // Sweep bound per flow graph, DefaultMaxIterations when zero
	Workers       int        // Flow graphs solved concurrently, 1 when zero
	InitialState  bool       // Create initial_state vertices for uses nothing reaches
	Logger        log.Logger // Optional
}

// Stats summarizes an analysis run.
type Stats struct {
	FlowGraphs    int            `json:"flow_graphs"`
	Sweeps        map[string]int `json:"sweeps"`         // Per flow graph
	DataEdges     int            `json:"data_edges"`     // Edges added by this run
	InitialStates int            `json:"initial_states"` // Placeholders created by this run
}

// DataflowEdge describes one def-use pair by variable name, for reporting.
type DataflowEdge struct {
	Def     int    `json:"def"`      // Defining vertex id
	Use     int    `json:"use"`      // Using vertex id
	VarName string `json:"var_name"` // Name of the variable being tracked
}
