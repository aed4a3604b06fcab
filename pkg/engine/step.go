package engine

import (
	"fmt"

	"github.com/l3aro/go-sdg/pkg/sdg"
	"github.com/l3aro/go-sdg/pkg/stmt"
)

// step performs one reduction on c.term.
func step(c Config) Config {
	switch t := c.term.(type) {
	case nil:
		c.term = stmt.Skip{}
		return c

	// statement tree
	case stmt.Seq:
		c.term = seqTerm{first: orSkip(t.First), second: orSkip(t.Second)}
		return c
	case stmt.Skip:
		panic("engine: step on skip")
	case stmt.Decl:
		return c.simple(sdg.KindDecl, t.Text, t.Var, t.Uses, t.Pos)
	case stmt.Assign:
		if t.Call != nil {
			return c.call(*t.Call, t.Text, t.Var, t.Pos)
		}
		return c.simple(sdg.KindAssign, t.Text, t.Var, t.Uses, t.Pos)
	case stmt.PreOp:
		return c.simple(sdg.KindPreUpdate, t.Text, t.Var, withVar(t.Uses, t.Var), t.Pos)
	case stmt.PostOp:
		return c.simple(sdg.KindPostUpdate, t.Text, t.Var, withVar(t.Uses, t.Var), t.Pos)
	case stmt.If:
		return c.ifRule(t)
	case stmt.While:
		return c.whileRule(t)
	case stmt.DoWhile:
		return c.doWhileRule(t)
	case stmt.For:
		return c.forRule(t)
	case stmt.Switch:
		return c.switchRule(t)
	case stmt.Break:
		return c.jumpRule(sdg.KindBreak, t.Label, t.Pos, false)
	case stmt.Continue:
		return c.jumpRule(sdg.KindContinue, t.Label, t.Pos, true)
	case stmt.Return:
		return c.returnRule(t)
	case stmt.Call:
		return c.call(t, t.Text, "", t.Pos)
	case stmt.Def:
		return c.defRule(t)
	case stmt.Unit:
		return c.unitRule(t)
	case stmt.Unsupported:
		v := c.newVertex(sdg.KindUnsupported, t.Text, t.Pos)
		c.markPending(v)
		c.term = stmt.Skip{}
		return c

	// residuals
	case seqTerm:
		return c.seqRule(t)
	case ctrlEdge:
		return c.ctrlEdgeRule(t)
	case memberEdge:
		return c.memberEdgeRule(t)
	case cfgEdge:
		return c.cfgEdgeRule(t)
	case ioUnion:
		return c.ioUnionRule(t)
	case pendingVertex:
		c.markPending(t.v)
		c.term = stmt.Skip{}
		return c
	case frontierVertex:
		switch c.scope {
		case scopeMember:
			c.frontier = append(c.frontier, t.v)
		case scopeControl:
			c.pending = append(c.pending, t.v)
		}
		c.term = stmt.Skip{}
		return c
	case popCtrl:
		c.popCtrl()
		c.term = stmt.Skip{}
		return c
	case loopExits:
		top := c.topCtrl()
		if top.kind != contextLoop {
			panic(fmt.Sprintf("engine: loop exits requested in %s context", top.kind))
		}
		c.term = io{out: append([]*sdg.Vertex(nil), top.breaks...)}
		return c
	case loopContinues:
		top := c.topCtrl()
		if top.kind != contextLoop {
			panic(fmt.Sprintf("engine: loop continues requested in %s context", top.kind))
		}
		if len(top.continues) == 0 {
			c.term = stmt.Skip{}
			return c
		}
		c.term = io{out: append([]*sdg.Vertex(nil), top.continues...)}
		return c
	case jump:
		return c.jumpStep(t)
	case paramTerm:
		return c.paramRule(t)
	case formalOutTerm:
		return c.formalOutRule(t)
	case actualOutTerm:
		return c.actualOutRule(t)
	case procEnd:
		return c.procEndRule(t)
	case io:
		panic("engine: step on finished interface")
	}
	panic(fmt.Sprintf("engine: no rule for %T", c.term))
}

func withVar(uses []string, v string) []string {
	if v == "" {
		return uses
	}
	for _, u := range uses {
		if u == v {
			return uses
		}
	}
	return append(append([]string(nil), uses...), v)
}

func (c Config) seqRule(t seqTerm) Config {
	switch first := t.first.(type) {
	case stmt.Skip:
		c.term = t.second
		return c
	case io:
		c.term = cfgEdge{first: first, second: t.second}
		return c
	}
	return c.congruence(t.first, func(r term) term { return seqTerm{first: r, second: t.second} })
}

// simple handles statements that become one flow vertex.
func (c Config) simple(kind sdg.VertexKind, text, def string, uses []string, pos stmt.Pos) Config {
	v := c.newVertex(kind, text, pos)
	v.Def = def
	v.Uses = uses
	c.flow().AddVertex(v)
	c.markPending(v)
	c.term = ioOf(v)
	return c
}

func (c Config) returnRule(t stmt.Return) Config {
	label := "return"
	if t.Value.Text != "" {
		label += " " + t.Value.Text
	}
	v := c.newVertex(sdg.KindReturn, label, t.Pos)
	v.Uses = t.Value.Uses
	c.flow().AddVertex(v)
	c.markPending(v)
	// nothing flows out of a return
	c.term = io{in: []*sdg.Vertex{v}}
	return c
}
