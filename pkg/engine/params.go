package engine

import (
	"fmt"

	"github.com/l3aro/go-sdg/pkg/sdg"
	"github.com/l3aro/go-sdg/pkg/stmt"
)

// call creates the call vertex, records the call site and expands the
// arguments under the call's true branch. A non-empty target makes it an
// assignment-form call with an actual-out vertex defining target.
func (c Config) call(call stmt.Call, text, target string, pos stmt.Pos) Config {
	label := text
	if label == "" {
		label = fmt.Sprintf("%s(%s)", call.Callee, stmt.ArgText(call.Args))
	}
	v := c.newVertex(sdg.KindCall, label, pos)
	c.flow().AddVertex(v)

	site := &sdg.CallSite{Call: v, Callee: call.Callee}
	c.graph.AddCallSite(site)

	var args term = paramTerm{dir: actualIn, list: call.Args, site: site, pos: pos}
	if target != "" {
		args = seqTerm{first: args, second: actualOutTerm{site: site, target: target, pos: pos}}
	}

	c.term = seqTerm{
		first:  cfgEdge{first: ioOf(v), second: ctrlEdge{branches: []branch{{true, v}}, body: args}},
		second: pendingVertex{v: v},
	}
	return c
}

// paramRule splits a parameter list head first. Formal-ins join the flow
// graph right after the entry; actual-ins stay outside it.
func (c Config) paramRule(t paramTerm) Config {
	switch l := t.list.(type) {
	case nil, stmt.NoParams:
		c.term = stmt.Skip{}
		return c
	case stmt.Params:
		head := t
		head.list = l.Head
		tail := t
		tail.list = l.Tail
		c.term = seqTerm{first: head, second: tail}
		return c
	case stmt.Param:
		if t.dir == actualIn {
			v := c.newVertex(sdg.KindActualIn, l.Text, t.pos)
			v.Uses = l.Uses
			t.site.ActualIns = append(t.site.ActualIns, v)
			c.markPending(v)
			c.term = stmt.Skip{}
			return c
		}
		v := c.newVertex(sdg.KindFormalIn, l.Text, t.pos)
		v.Def = l.Def
		t.proc.Formals = append(t.proc.Formals, v)
		c.flow().AddVertex(v)
		c.markPending(v)
		c.term = ioOf(v)
		return c
	}
	panic(fmt.Sprintf("engine: unknown parameter list %T", t.list))
}

func (c Config) formalOutRule(t formalOutTerm) Config {
	v := c.newVertex(sdg.KindFormalOut, t.proc.Name+" result", t.pos)
	t.proc.Formals = append(t.proc.Formals, v)
	c.flow().AddVertex(v)
	c.markPending(v)
	c.term = ioOf(v)
	return c
}

func (c Config) actualOutRule(t actualOutTerm) Config {
	v := c.newVertex(sdg.KindActualOut, t.target, t.pos)
	v.Def = t.target
	t.site.ActualOut = v
	c.flow().AddVertex(v)
	c.markPending(v)
	c.term = ioOf(v)
	return c
}
