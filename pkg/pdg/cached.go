package pdg

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/l3aro/go-sdg/internal/log"
	"github.com/l3aro/go-sdg/pkg/cache"
	"github.com/l3aro/go-sdg/pkg/engine"
)

// CacheKey identifies the graph built from src with opts. Only options that
// change the resulting graph take part.
func CacheKey(src []byte, opts Options) string {
	return cache.ContentKey(src, fmt.Sprintf("initial_state=%t", opts.Dataflow.InitialState))
}

// ExtractFileCached is ExtractFile backed by c. On a hit the graph is
// restored from its snapshot and the link statistics are recomputed; the
// restored graph already holds every edge, so no stage runs again.
func ExtractFileCached(ctx context.Context, path string, c *cache.GraphCache, opts Options) (*PDGInfo, error) {
	if c == nil {
		return ExtractFile(ctx, path, opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	key := CacheKey(src, opts)

	g, err := c.Lookup(key)
	switch {
	case err == nil:
		logger.Debug("graph cache hit", "file", path)
		return &PDGInfo{
			Name:   path,
			Graph:  g,
			Link:   engine.Link(g, logger),
			Cached: true,
		}, nil
	case !errors.Is(err, cache.ErrNotFound):
		logger.Warn("dropping cached graph", "file", path, "error", err)
	}

	info, err := ExtractSource(ctx, path, src, opts)
	if err != nil {
		return nil, err
	}
	c.Store(key, path, info.Graph)
	return info, nil
}
