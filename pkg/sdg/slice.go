package sdg

import (
	"container/list"
	"sort"
)

// VerticesAtLine returns the vertices whose line range covers line, ordered by id.
// A line can belong to several vertices (a call and its actual-ins, say).
func (g *Graph) VerticesAtLine(line int) []*Vertex {
	var out []*Vertex
	for _, v := range g.order {
		if v.StartLine == 0 {
			continue
		}
		end := v.EndLine
		if end < v.StartLine {
			end = v.StartLine
		}
		if line >= v.StartLine && line <= end {
			out = append(out, v)
		}
	}
	return out
}

// Lines returns the sorted, de-duplicated source lines covered by vs.
func Lines(vs []*Vertex) []int {
	lineSet := make(map[int]struct{})
	for _, v := range vs {
		if v.StartLine == 0 {
			continue
		}
		end := v.EndLine
		if end < v.StartLine {
			end = v.StartLine
		}
		for line := v.StartLine; line <= end; line++ {
			lineSet[line] = struct{}{}
		}
	}

	lines := make([]int, 0, len(lineSet))
	for line := range lineSet {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	return lines
}

// BackwardSlice returns every vertex that seeds transitively depend on,
// seeds included, ordered by id. When kinds is non-empty only edges of those
// kinds are followed.
func BackwardSlice(g *Graph, seeds []*Vertex, kinds ...EdgeKind) []*Vertex {
	return traverse(g, seeds, kinds, func(v *Vertex) []Edge { return g.Incoming(v) }, func(e Edge) *Vertex { return e.Source })
}

// ForwardSlice returns every vertex transitively depending on seeds, seeds
// included, ordered by id. When kinds is non-empty only edges of those kinds
// are followed.
func ForwardSlice(g *Graph, seeds []*Vertex, kinds ...EdgeKind) []*Vertex {
	return traverse(g, seeds, kinds, func(v *Vertex) []Edge { return g.Outgoing(v) }, func(e Edge) *Vertex { return e.Target })
}

func traverse(g *Graph, seeds []*Vertex, kinds []EdgeKind, next func(*Vertex) []Edge, end func(Edge) *Vertex) []*Vertex {
	if g == nil || len(seeds) == 0 {
		return nil
	}

	allowed := make(map[EdgeKind]bool, len(kinds))
	for _, k := range kinds {
		allowed[k] = true
	}

	visited := make(map[int]bool)
	queue := list.New()
	for _, v := range seeds {
		if !g.Contains(v) || visited[v.ID] {
			continue
		}
		visited[v.ID] = true
		queue.PushBack(v)
	}

	var result []*Vertex
	for queue.Len() > 0 {
		v := queue.Remove(queue.Front()).(*Vertex)
		result = append(result, v)

		for _, e := range next(v) {
			if len(allowed) > 0 && !allowed[e.Kind] {
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

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
