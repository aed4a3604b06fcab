package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-sdg/pkg/sdg"
)

func snapshotOf(labels ...string) *sdg.Snapshot {
	s := &sdg.Snapshot{}
	for i, l := range labels {
		s.Vertices = append(s.Vertices, sdg.VertexRecord{ID: i, Kind: sdg.KindAssign, Label: l, StartLine: i + 1, EndLine: i + 1})
	}
	return s
}

func testGraph(t *testing.T) *sdg.Graph {
	t.Helper()
	alloc := sdg.NewAllocator()
	g := sdg.NewGraph()
	a := alloc.NewVertex(sdg.KindAssign, "x = 1")
	a.Def = "x"
	b := alloc.NewVertex(sdg.KindAssign, "y = x")
	b.Def, b.Uses = "y", []string{"x"}
	g.AddVertex(a)
	g.AddVertex(b)
	g.AddEdge(a, b, sdg.EdgeData)
	return g
}

func TestLRUCache_Basic(t *testing.T) {
	c := New(Options{MaxSize: 3})

	c.Set("a", "a.go", snapshotOf("x = 1"))
	c.Set("b", "b.go", snapshotOf("y = 2", "z = y"))
	c.Set("c", "c.go", snapshotOf())

	assert.Equal(t, 3, c.Len())

	e, found := c.Get("a")
	require.True(t, found)
	assert.Equal(t, "a.go", e.Name)
	assert.Equal(t, 1, e.Size)

	e, found = c.Get("b")
	require.True(t, found)
	assert.Equal(t, 2, e.Size)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestLRUCache_LRU_Eviction(t *testing.T) {
	var evicted []string
	c := New(Options{MaxSize: 3, OnEvict: func(key string, _ Entry) { evicted = append(evicted, key) }})

	c.Set("a", "a.go", nil)
	c.Set("b", "b.go", nil)
	c.Set("c", "c.go", nil)

	// Access 'a' to make it most recently used
	c.Get("a")

	// Add new item - should evict 'b' (least recently used)
	c.Set("d", "d.go", nil)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"b"}, evicted)

	_, found := c.Get("b")
	assert.False(t, found, "b should have been evicted")
	assert.Equal(t, []string{"d", "a", "c"}, c.Keys())
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := New(Options{MaxSize: 2})
	c.Set("a", "a.go", snapshotOf("x = 1"))
	c.Set("b", "b.go", nil)
	c.Set("a", "a.go", snapshotOf("x = 1", "x = 2"))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"a", "b"}, c.Keys())
	e, _ := c.Get("a")
	assert.Equal(t, 2, e.Size)
}

func TestLRUCache_DeleteAndClear(t *testing.T) {
	var evicted []string
	c := New(Options{OnEvict: func(key string, _ Entry) { evicted = append(evicted, key) }})
	c.Set("a", "a.go", nil)
	c.Set("b", "b.go", nil)

	c.Delete("a")
	c.Delete("missing")
	assert.Equal(t, []string{"a"}, evicted)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Keys())
}

func TestLRUCache_SaveLoad(t *testing.T) {
	c := New(Options{})
	c.Set("old", "old.go", snapshotOf("a = 1"))
	c.Set("new", "new.go", snapshotOf("b = 2", "c = b"))

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	loaded := New(Options{MaxSize: 1})
	require.NoError(t, loaded.Load(&buf))

	// Only the most recently used entry fits.
	assert.Equal(t, []string{"new"}, loaded.Keys())
	e, ok := loaded.Get("new")
	require.True(t, ok)
	require.Len(t, e.Snapshot.Vertices, 2)
	assert.Equal(t, "c = b", e.Snapshot.Vertices[1].Label)
}

func TestLRUCache_LoadGarbage(t *testing.T) {
	c := New(Options{})
	assert.Error(t, c.Load(bytes.NewReader([]byte{0xc1})))
}

func TestPersistToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "graphs.cache")

	c := New(Options{})
	c.Set("k", "k.go", snapshotOf("x = 1"))
	require.NoError(t, PersistToFile(c, path))

	loaded := New(Options{})
	require.NoError(t, LoadFromFile(loaded, path))
	assert.Equal(t, 1, loaded.Len())

	missing := New(Options{})
	assert.NoError(t, LoadFromFile(missing, filepath.Join(t.TempDir(), "none")))
	assert.Equal(t, 0, missing.Len())
}

func TestContentKey(t *testing.T) {
	k := ContentKey([]byte("package a"), "initial_state=false")
	assert.Len(t, k, 64)
	assert.Equal(t, k, ContentKey([]byte("package a"), "initial_state=false"))
	assert.NotEqual(t, k, ContentKey([]byte("package a"), "initial_state=true"))
	assert.NotEqual(t, k, ContentKey([]byte("package b"), "initial_state=false"))
	assert.NotEqual(t, ContentKey([]byte("ab")), ContentKey([]byte("a"), "b"))
}

func TestGraphCache_LookupStore(t *testing.T) {
	c := NewGraphCache(4)
	g := testGraph(t)

	_, err := c.Lookup("k")
	assert.ErrorIs(t, err, ErrNotFound)

	c.Store("k", "k.go", g)
	back, err := c.Lookup("k")
	require.NoError(t, err)
	assert.Equal(t, g.VertexCount(), back.VertexCount())
	assert.Len(t, back.EdgesOfKind(sdg.EdgeData), 1)

	assert.Equal(t, Stats{Length: 1, HitCount: 1, MissCount: 1}, c.Stats())
	assert.NoError(t, c.Flush(), "in-memory cache flush is a no-op")
}

func TestGraphCache_CorruptEntryIsDropped(t *testing.T) {
	c := NewGraphCache(4)
	c.lru.Set("bad", "bad.go", &sdg.Snapshot{Edges: []sdg.EdgeRecord{{Source: 1, Target: 2, Kind: sdg.EdgeData}}})

	_, err := c.Lookup("bad")
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestGraphCache_OpenFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphs.cache")

	c, err := Open(path, 4)
	require.NoError(t, err)
	require.NoError(t, c.Flush())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing stored, nothing written")

	c.Store("k", "k.go", testGraph(t))
	require.NoError(t, c.Flush())

	reopened, err := Open(path, 4)
	require.NoError(t, err)
	g, err := reopened.Lookup("k")
	require.NoError(t, err)
	assert.Equal(t, 2, g.VertexCount())
}
