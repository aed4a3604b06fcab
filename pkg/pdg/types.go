// Package pdg defines the result of a full dependence-graph build and the
// line-oriented queries the command line runs over it.
package pdg

import (
	"github.com/l3aro/go-sdg/internal/log"
	"github.com/l3aro/go-sdg/pkg/dfg"
	"github.com/l3aro/go-sdg/pkg/engine"
	"github.com/l3aro/go-sdg/pkg/sdg"
)

// Options controls a build.
type Options struct {
	Logger   log.Logger
	Dataflow dfg.Options // Logger defaults to Options.Logger
}

// PDGInfo is a built system dependence graph with the statistics of each
// stage that produced it.
type PDGInfo struct {
	Name     string           `json:"name"` // Unit or file the graph was built from
	Graph    *sdg.Graph       `json:"-"`
	Steps    int              `json:"steps"` // Rewriting steps taken by the engine
	Link     engine.LinkStats `json:"link"`
	Dataflow *dfg.Stats       `json:"dataflow"` // Nil when the graph came from the cache
	Cached   bool             `json:"cached,omitempty"`
}

// Summary is the JSON shape printed by the build command.
type Summary struct {
	Name        string               `json:"name"`
	Vertices    int                  `json:"vertices"`
	Edges       map[sdg.EdgeKind]int `json:"edges"`
	Procedures  []string             `json:"procedures"`
	FlowGraphs  []string             `json:"flow_graphs"`
	Link        engine.LinkStats     `json:"link"`
	Diagnostics []sdg.Diagnostic     `json:"diagnostics"`
}

// Summarize counts the vertices and edges of info's graph.
func (info *PDGInfo) Summarize() Summary {
	g := info.Graph
	s := Summary{
		Name:        info.Name,
		Vertices:    g.VertexCount(),
		Edges:       make(map[sdg.EdgeKind]int),
		Link:        info.Link,
		Diagnostics: g.Diagnostics(),
	}
	for _, e := range g.Edges() {
		s.Edges[e.Kind]++
	}
	for _, p := range g.Procedures() {
		s.Procedures = append(s.Procedures, p.Name)
	}
	for _, fg := range g.FlowGraphs() {
		s.FlowGraphs = append(s.FlowGraphs, fg.Name)
	}
	return s
}

// DependencyInfo contains the control and data dependencies for a specific line.
type DependencyInfo struct {
	ControlIn  []sdg.Edge // Control (and membership) edges into this line
	ControlOut []sdg.Edge // Control (and membership) edges from this line
	DataIn     []sdg.Edge // Data and parameter edges into this line
	DataOut    []sdg.Edge // Data and parameter edges from this line
}
