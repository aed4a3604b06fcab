package cache

import (
	"fmt"
	"testing"

	"github.com/l3aro/go-sdg/pkg/sdg"
)

func benchSnapshot(n int) *sdg.Snapshot {
	s := &sdg.Snapshot{}
	for i := 0; i < n; i++ {
		s.Vertices = append(s.Vertices, sdg.VertexRecord{ID: i, Kind: sdg.KindAssign, Label: fmt.Sprintf("x%d = 1", i)})
	}
	return s
}

func BenchmarkCacheGet(b *testing.B) {
	c := New(Options{MaxSize: 10000})
	s := benchSnapshot(100)
	for i := 0; i < 1000; i++ {
		c.Set(fmt.Sprintf("key%d", i), "bench.go", s)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("key999")
	}
}

func BenchmarkCacheSet(b *testing.B) {
	c := New(Options{MaxSize: 10000})
	s := benchSnapshot(100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(fmt.Sprintf("key%d", i), "bench.go", s)
	}
}

func BenchmarkContentKey(b *testing.B) {
	src := make([]byte, 64*1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ContentKey(src, "initial_state=false")
	}
}
