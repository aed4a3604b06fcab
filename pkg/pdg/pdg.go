package pdg

import (
	"context"
	"fmt"

	"github.com/l3aro/go-sdg/internal/log"
	"github.com/l3aro/go-sdg/pkg/dfg"
	"github.com/l3aro/go-sdg/pkg/engine"
	"github.com/l3aro/go-sdg/pkg/frontend"
	"github.com/l3aro/go-sdg/pkg/sdg"
	"github.com/l3aro/go-sdg/pkg/stmt"
)

// Build constructs the system dependence graph of root: the statement tree
// is reduced to vertices, control and flow edges, calls are linked to their
// procedures, then reaching definitions add the data edges.
func Build(ctx context.Context, name string, root stmt.Stmt, opts Options) (*PDGInfo, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}

	res, err := engine.Reduce(root, logger)
	if err != nil {
		return nil, fmt.Errorf("reducing %s: %w", name, err)
	}
	link := engine.Link(res.Graph, logger)

	dopts := opts.Dataflow
	if dopts.Logger == nil {
		dopts.Logger = logger
	}
	stats, err := dfg.Analyze(ctx, res.Graph, dopts)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", name, err)
	}

	logger.Debug("dependence graph built",
		"name", name,
		"vertices", res.Graph.VertexCount(),
		"edges", len(res.Graph.Edges()),
		"diagnostics", len(res.Graph.Diagnostics()),
	)
	return &PDGInfo{
		Name:     name,
		Graph:    res.Graph,
		Steps:    res.Steps,
		Link:     link,
		Dataflow: stats,
	}, nil
}

// ExtractFile parses the Go file at path and builds its dependence graph.
func ExtractFile(ctx context.Context, path string, opts Options) (*PDGInfo, error) {
	f, err := frontend.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return Build(ctx, path, f.Unit, opts)
}

// ExtractSource builds the dependence graph of Go source held in memory.
func ExtractSource(ctx context.Context, name string, src []byte, opts Options) (*PDGInfo, error) {
	f, err := frontend.Parse(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return Build(ctx, name, f.Unit, opts)
}

// ExtractProcedure builds the graph of the file at path and returns the part
// belonging to one procedure.
func ExtractProcedure(ctx context.Context, path, procedure string, opts Options) (*PDGInfo, error) {
	info, err := ExtractFile(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	sub, ok := info.Graph.ProcedureSubgraph(procedure)
	if !ok {
		return nil, fmt.Errorf("procedure %q not found in %s", procedure, path)
	}
	info.Name = procedure
	info.Graph = sub
	return info, nil
}

// FlowGraph returns the control flow graph of one procedure, or of the
// top-level code when procedure is sdg.TopLevel.
func FlowGraph(info *PDGInfo, procedure string) (*sdg.FlowGraph, error) {
	fg, ok := info.Graph.FlowGraph(procedure)
	if !ok {
		return nil, fmt.Errorf("procedure %q not found in %s", procedure, info.Name)
	}
	return fg, nil
}
