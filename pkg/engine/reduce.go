package engine

import (
	"errors"
	"fmt"

	"github.com/l3aro/go-sdg/internal/log"
	"github.com/l3aro/go-sdg/pkg/sdg"
	"github.com/l3aro/go-sdg/pkg/stmt"
)

// ErrUnbalanced is returned when reduction finishes with leftover pending
// sources, member interfaces, control contexts or open flow graphs.
var ErrUnbalanced = errors.New("engine: unbalanced configuration after reduction")

// Result is the outcome of one reduction run.
type Result struct {
	Graph *sdg.Graph
	Steps int
}

// Reduce rewrites root to completion and returns the resulting graph: all
// vertices, control, member and unit edges, registered procedures, recorded
// call sites and one flow graph per procedure. Calls are not bound yet; see
// Link.
func Reduce(root stmt.Stmt, logger log.Logger) (*Result, error) {
	c := newConfig(root, logger)
	steps := 0
	for !c.Done() {
		c = step(c)
		steps++
	}

	if err := c.checkBalanced(); err != nil {
		return nil, err
	}

	c.log.Debug("reduction finished",
		"steps", steps,
		"vertices", c.graph.VertexCount(),
		"procedures", len(c.graph.Procedures()),
		"call_sites", len(c.graph.CallSites()),
	)
	return &Result{Graph: c.graph, Steps: steps}, nil
}

func (c Config) checkBalanced() error {
	switch {
	case len(c.pending) > 0:
		return fmt.Errorf("%w: %d pending sources", ErrUnbalanced, len(c.pending))
	case len(c.frontier) > 0:
		return fmt.Errorf("%w: %d unclosed members", ErrUnbalanced, len(c.frontier))
	case len(c.ctrl) > 0:
		return fmt.Errorf("%w: %d control contexts left", ErrUnbalanced, len(c.ctrl))
	case len(c.flows) > 0:
		return fmt.Errorf("%w: %d flow graphs left open", ErrUnbalanced, len(c.flows))
	}
	return nil
}
