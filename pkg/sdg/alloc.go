package sdg

// Allocator hands out vertex ids for one construction run. Ids start at the
// allocator's base and increase by one per vertex.
type Allocator struct {
	next int
}

// NewAllocator returns an allocator starting at 0.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// NewAllocatorFrom returns an allocator whose first id is start.
func NewAllocatorFrom(start int) *Allocator {
	return &Allocator{next: start}
}

// Next returns a fresh id.
func (a *Allocator) Next() int {
	id := a.next
	a.next++
	return id
}

// Peek returns the id the next call to Next will return.
func (a *Allocator) Peek() int {
	return a.next
}

// NewVertex allocates a vertex of kind with label.
func (a *Allocator) NewVertex(kind VertexKind, label string) *Vertex {
	return &Vertex{ID: a.Next(), Kind: kind, Label: label}
}
