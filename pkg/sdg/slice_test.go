package sdg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackwardSlice(t *testing.T) {
	g, vs := buildChain(t)
	ctrl := &Vertex{ID: 20, Kind: KindWhile, Label: "c"}
	g.AddVertex(ctrl)
	g.AddEdge(ctrl, vs[1], EdgeCtrlTrue)

	tests := []struct {
		name  string
		seed  *Vertex
		kinds []EdgeKind
		want  []*Vertex
	}{
		{"all kinds", vs[2], nil, []*Vertex{vs[0], vs[1], vs[2], ctrl}},
		{"data only", vs[2], []EdgeKind{EdgeData}, []*Vertex{vs[0], vs[1], vs[2]}},
		{"root", vs[0], nil, []*Vertex{vs[0]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BackwardSlice(g, []*Vertex{tt.seed}, tt.kinds...))
		})
	}
}

func TestForwardSlice(t *testing.T) {
	g, vs := buildChain(t)

	assert.Equal(t, vs, ForwardSlice(g, []*Vertex{vs[0]}))
	assert.Equal(t, []*Vertex{vs[0]}, ForwardSlice(g, []*Vertex{vs[0]}, EdgeCall))
	assert.Nil(t, ForwardSlice(g, nil))
}

func TestSliceHandlesCycles(t *testing.T) {
	g, vs := buildChain(t)
	g.AddEdge(vs[2], vs[0], EdgeCtrlTrue)

	assert.Len(t, ForwardSlice(g, []*Vertex{vs[1]}), 3)
}

func TestLinesAndVerticesAtLine(t *testing.T) {
	g := NewGraph()
	a := &Vertex{ID: 0, Kind: KindEntry, Label: "f", StartLine: 1, EndLine: 4}
	b := &Vertex{ID: 1, Kind: KindAssign, Label: "x = 1", StartLine: 2, EndLine: 2}
	c := &Vertex{ID: 2, Kind: KindUnit, Label: "main"}
	g.AddVertex(a)
	g.AddVertex(b)
	g.AddVertex(c)

	assert.Equal(t, []*Vertex{a, b}, g.VerticesAtLine(2))
	assert.Equal(t, []*Vertex{a}, g.VerticesAtLine(4))
	assert.Empty(t, g.VerticesAtLine(9))
	assert.Equal(t, []int{1, 2, 3, 4}, Lines([]*Vertex{b, a, c}))
}
