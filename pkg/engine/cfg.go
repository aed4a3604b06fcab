package engine

import (
	"fmt"

	"github.com/l3aro/go-sdg/pkg/sdg"
	"github.com/l3aro/go-sdg/pkg/stmt"
)

// cfgEdgeRule composes two interfaces in sequence: every exit of the first
// flows to every entry of the second.
func (c Config) cfgEdgeRule(t cfgEdge) Config {
	if isSkip(t.first) {
		c.term = t.second
		return c
	}
	first, ok := t.first.(io)
	if !ok {
		return c.congruence(t.first, func(r term) term { return cfgEdge{first: r, second: t.second} })
	}
	if isSkip(t.second) {
		c.term = first
		return c
	}
	// Reassociate a finished prefix so long sequences do not nest.
	if inner, ok := t.second.(cfgEdge); ok {
		if mid, ok := inner.first.(io); ok && !mid.inheritIn {
			c.term = cfgEdge{first: c.connect(first, mid), second: inner.second}
			return c
		}
	}
	second, ok := t.second.(io)
	if !ok {
		return c.congruence(t.second, func(r term) term { return cfgEdge{first: first, second: r} })
	}
	c.term = c.connect(first, second)
	return c
}

func (c *Config) connect(first, second io) io {
	if second.inheritIn {
		second.in = first.in
	}
	fg := c.flow()
	for _, from := range first.out {
		for _, to := range second.in {
			fg.AddEdge(from, to)
		}
	}
	return io{in: first.in, out: second.out}
}

// ioUnionRule composes two alternatives: entries and exits are unioned,
// nothing is connected.
func (c Config) ioUnionRule(t ioUnion) Config {
	if isSkip(t.first) {
		c.term = t.second
		return c
	}
	first, ok := t.first.(io)
	if !ok {
		return c.congruence(t.first, func(r term) term { return ioUnion{first: r, second: t.second} })
	}
	if isSkip(t.second) {
		c.term = first
		return c
	}
	second, ok := t.second.(io)
	if !ok {
		return c.congruence(t.second, func(r term) term { return ioUnion{first: first, second: r} })
	}
	c.term = io{in: union(first.in, second.in), out: union(first.out, second.out)}
	return c
}

// procEndRule files the innermost flow graph once the procedure body is done.
// A procedure yields no interface to its surroundings.
func (c Config) procEndRule(t procEnd) Config {
	if !isDone(t.body) {
		return c.congruence(t.body, func(r term) term {
			return procEnd{name: t.name, body: r, popsCtrl: t.popsCtrl}
		})
	}
	if t.popsCtrl {
		if top := c.popCtrl(); top.kind != contextSequential || !top.boundary {
			panic(fmt.Sprintf("engine: procedure %s closed over a %s context", t.name, top.kind))
		}
	}
	fg := c.flow()
	c.flows = c.flows[:len(c.flows)-1]
	if t.popsCtrl || !fg.Empty() {
		c.graph.AddFlowGraph(fg)
	}
	c.term = stmt.Skip{}
	return c
}

func (c Config) defRule(t stmt.Def) Config {
	v := c.newVertex(sdg.KindEntry, t.Name, t.Pos)
	proc := &sdg.Procedure{Name: t.Name, Entry: v}

	name := t.Name
	if !c.graph.AddProcedure(proc) {
		c.report(sdg.DiagDuplicateProcedure, v, fmt.Sprintf("procedure %s already defined", t.Name))
		name = fmt.Sprintf("%s#%d", t.Name, v.ID)
	}

	fg := sdg.NewFlowGraph(name)
	fg.AddVertex(v)
	c.flows = append(c.flows, fg)
	c.pushCtrl(contextSequential, v, true)

	var body term = orSkip(t.Body)
	if t.HasResult {
		body = seqTerm{first: formalOutTerm{proc: proc, pos: t.Pos}, second: body}
	}
	body = seqTerm{first: paramTerm{dir: formalIn, list: t.Params, proc: proc, pos: t.Pos}, second: body}

	c.term = seqTerm{
		first: procEnd{
			name:     name,
			body:     cfgEdge{first: ioOf(v), second: ctrlEdge{branches: []branch{{true, v}}, body: body}},
			popsCtrl: true,
		},
		second: frontierVertex{v: v},
	}
	return c
}
