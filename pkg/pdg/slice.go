package pdg

import (
	"container/list"
	"sort"

	"github.com/l3aro/go-sdg/pkg/sdg"
)

// edgeVariable is the variable a data edge carries, or "" for other edges.
func edgeVariable(e sdg.Edge) string {
	if e.Kind != sdg.EdgeData {
		return ""
	}
	return e.Source.Def
}

// verticesStartingAt returns the vertices whose statement begins on line.
// Enclosing procedures and units are not part of a line.
func verticesStartingAt(g *sdg.Graph, line int) []*sdg.Vertex {
	var out []*sdg.Vertex
	for _, v := range g.VerticesAtLine(line) {
		if v.StartLine == line {
			out = append(out, v)
		}
	}
	return out
}

// startLines returns the sorted first lines of vs. A procedure entry stands
// for its header line only.
func startLines(vs []*sdg.Vertex) []int {
	if len(vs) == 0 {
		return nil
	}
	lineSet := make(map[int]struct{})
	for _, v := range vs {
		if v.StartLine > 0 {
			lineSet[v.StartLine] = struct{}{}
		}
	}
	lines := make([]int, 0, len(lineSet))
	for line := range lineSet {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	return lines
}

// BackwardSlice returns the source lines that may affect the statements at
// line. If a variable filter is given, only data edges carrying that
// variable are followed; control and parameter edges are always followed.
func BackwardSlice(info *PDGInfo, line int, variable *string) []int {
	if info == nil {
		return nil
	}
	g := info.Graph
	return startLines(walk(verticesStartingAt(g, line), variable, g.Incoming, func(e sdg.Edge) *sdg.Vertex { return e.Source }))
}

// ForwardSlice returns the source lines that may be affected by the
// statements at line, with the same variable filter as BackwardSlice.
func ForwardSlice(info *PDGInfo, line int, variable *string) []int {
	if info == nil {
		return nil
	}
	g := info.Graph
	return startLines(walk(verticesStartingAt(g, line), variable, g.Outgoing, func(e sdg.Edge) *sdg.Vertex { return e.Target }))
}

func walk(start []*sdg.Vertex, variable *string, next func(*sdg.Vertex) []sdg.Edge, end func(sdg.Edge) *sdg.Vertex) []*sdg.Vertex {
	if len(start) == 0 {
		return nil
	}

	// BFS with visited set to avoid infinite loops
	visited := make(map[int]bool)
	queue := list.New()
	for _, v := range start {
		queue.PushBack(v)
		visited[v.ID] = true
	}

	var result []*sdg.Vertex
	for queue.Len() > 0 {
		v := queue.Remove(queue.Front()).(*sdg.Vertex)
		result = append(result, v)

		for _, e := range next(v) {
			// membership is not a dependence
			if e.Kind == sdg.EdgeMemberOf {
				continue
			}
			if variable != nil && e.Kind == sdg.EdgeData && edgeVariable(e) != *variable {
				continue
			}
			w := end(e)
			if visited[w.ID] {
				continue
			}
			visited[w.ID] = true
			queue.PushBack(w)
		}
	}
	return result
}

// GetDependencies returns all dependencies for a specific line, split into
// control and data edges, incoming and outgoing.
func GetDependencies(info *PDGInfo, line int) DependencyInfo {
	if info == nil {
		return DependencyInfo{}
	}
	g := info.Graph
	vs := verticesStartingAt(g, line)
	if len(vs) == 0 {
		return DependencyInfo{}
	}

	var deps DependencyInfo
	seen := make(map[sdg.Edge]bool)
	add := func(e sdg.Edge, incoming bool) {
		if seen[e] {
			return
		}
		seen[e] = true
		control := e.Kind.IsControl() || e.Kind == sdg.EdgeMemberOf
		switch {
		case control && incoming:
			deps.ControlIn = append(deps.ControlIn, e)
		case control:
			deps.ControlOut = append(deps.ControlOut, e)
		case incoming:
			deps.DataIn = append(deps.DataIn, e)
		default:
			deps.DataOut = append(deps.DataOut, e)
		}
	}
	for _, v := range vs {
		for _, e := range g.Incoming(v) {
			add(e, true)
		}
		for _, e := range g.Outgoing(v) {
			add(e, false)
		}
	}

	for _, edges := range [][]sdg.Edge{deps.ControlIn, deps.ControlOut, deps.DataIn, deps.DataOut} {
		sortEdges(edges)
	}
	return deps
}

func sortEdges(edges []sdg.Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source.ID != edges[j].Source.ID {
			return edges[i].Source.ID < edges[j].Source.ID
		}
		if edges[i].Target.ID != edges[j].Target.ID {
			return edges[i].Target.ID < edges[j].Target.ID
		}
		return edges[i].Kind < edges[j].Kind
	})
}

// GetVariableNames returns the variables carried by data edges, sorted.
func GetVariableNames(info *PDGInfo) []string {
	if info == nil {
		return nil
	}
	varSet := make(map[string]bool)
	for _, e := range info.Graph.EdgesOfKind(sdg.EdgeData) {
		if name := edgeVariable(e); name != "" {
			varSet[name] = true
		}
	}
	variables := make([]string, 0, len(varSet))
	for v := range varSet {
		variables = append(variables, v)
	}
	sort.Strings(variables)
	return variables
}

// FindVerticesByVariable returns the vertices defining or reading varName,
// ordered by id.
func FindVerticesByVariable(info *PDGInfo, varName string) []*sdg.Vertex {
	if info == nil {
		return nil
	}
	var out []*sdg.Vertex
	for _, v := range info.Graph.Vertices() {
		if v.Defines(varName) || v.Reads(varName) {
			out = append(out, v)
		}
	}
	return out
}
