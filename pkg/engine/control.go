package engine

import (
	"fmt"
	"strings"

	"github.com/l3aro/go-sdg/pkg/sdg"
	"github.com/l3aro/go-sdg/pkg/stmt"
)

func (c Config) condition(kind sdg.VertexKind, cond stmt.Expr, pos stmt.Pos) *sdg.Vertex {
	v := c.newVertex(kind, cond.Text, pos)
	v.Uses = cond.Uses
	c.flow().AddVertex(v)
	if kind.IsLoop() {
		c.graph.AddEdge(v, v, sdg.EdgeCtrlTrue)
	}
	return v
}

// closeConstruct makes v pending once the construct's body is done and then
// leaves the construct's control context.
func closeConstruct(v *sdg.Vertex) term {
	return seqTerm{first: pendingVertex{v: v}, second: popCtrl{}}
}

func (c Config) ifRule(t stmt.If) Config {
	v := c.condition(sdg.KindIf, t.Cond, t.Pos)
	c.pushCtrl(contextSequential, v, false)
	c.term = seqTerm{
		first: ioUnion{
			first:  cfgEdge{first: ioOf(v), second: ctrlEdge{branches: []branch{{true, v}}, body: orSkip(t.Then)}},
			second: cfgEdge{first: ioOf(v), second: ctrlEdge{branches: []branch{{false, v}}, body: orSkip(t.Else)}},
		},
		second: closeConstruct(v),
	}
	return c
}

// loopShape is the flow shape of a pre-tested loop: v, then body under v's
// true branch, back to v; the loop exits from v and from its breaks.
func loopShape(v *sdg.Vertex, body term) term {
	return seqTerm{
		first: ioUnion{
			first: cfgEdge{
				first:  cfgEdge{first: ioOf(v), second: ctrlEdge{branches: []branch{{true, v}}, body: body}},
				second: ioOf(v),
			},
			second: loopExits{},
		},
		second: closeConstruct(v),
	}
}

func (c Config) whileRule(t stmt.While) Config {
	v := c.condition(sdg.KindWhile, t.Cond, t.Pos)
	c.pushLoop(v, t.Label, false)
	c.term = loopShape(v, orSkip(t.Body))
	return c
}

func (c Config) doWhileRule(t stmt.DoWhile) Config {
	v := c.condition(sdg.KindDo, t.Cond, t.Pos)
	c.pushLoop(v, t.Label, false)

	// The body runs once before v is tested, so it is also control-true
	// dependent on whatever governed the loop itself, whichever arm that was.
	inner := make([]branch, 0, len(c.branches)+1)
	for _, b := range c.branches {
		inner = append(inner, branch{true, b.vertex})
	}
	inner = append(inner, branch{true, v})

	c.term = seqTerm{
		first: ioUnion{
			first: cfgEdge{
				first:  cfgEdge{first: ctrlEdge{branches: inner, body: orSkip(t.Body)}, second: ioOf(v)},
				second: io{out: []*sdg.Vertex{v}, inheritIn: true},
			},
			second: loopExits{},
		},
		second: closeConstruct(v),
	}
	return c
}

func (c Config) forRule(t stmt.For) Config {
	cond := stmt.Expr{Text: "true"}
	if t.Cond != nil {
		cond = *t.Cond
	}
	v := c.condition(sdg.KindFor, cond, t.Pos)

	// Continues run the update before the condition is tested again. The
	// body keeps its own marker so its statements close before the union.
	var body term = stmt.Sequence(t.Body, t.Update)
	hasUpdate := !isSkip(orSkip(t.Update))
	if hasUpdate {
		body = seqTerm{
			first: ioUnion{
				first:  ctrlEdge{branches: []branch{{true, v}}, body: orSkip(t.Body)},
				second: loopContinues{},
			},
			second: t.Update,
		}
	}
	c.pushLoop(v, t.Label, hasUpdate)
	c.term = seqTerm{
		first:  orSkip(t.Init),
		second: loopShape(v, body),
	}
	return c
}

func (c Config) switchRule(t stmt.Switch) Config {
	if len(stmt.ClauseList(t.Body)) == 0 {
		v := c.condition(sdg.KindIf, t.Scrutinee, t.Pos)
		c.term = seqTerm{first: ioOf(v), second: pendingVertex{v: v}}
		return c
	}
	c.term = DesugarSwitch(t)
	return c
}

// DesugarSwitch rewrites a switch into nested if/else. Each clause tests
// scrutinee == value, several values are joined with ||, and the default
// clause becomes the innermost else.
func DesugarSwitch(t stmt.Switch) stmt.Stmt {
	var clauses []stmt.SingleSwitch
	var def *stmt.SingleSwitch
	for _, cl := range stmt.ClauseList(t.Body) {
		if _, ok := cl.Case.(stmt.DefaultCase); ok {
			cl := cl
			def = &cl
			continue
		}
		clauses = append(clauses, cl)
	}

	if len(clauses) == 0 {
		if def == nil {
			return stmt.Skip{}
		}
		return stmt.If{
			Cond: stmt.Expr{Text: "default", Uses: t.Scrutinee.Uses},
			Then: orSkipStmt(def.Body),
			Else: stmt.Skip{},
			Pos:  t.Pos,
		}
	}

	var out stmt.Stmt = stmt.Skip{}
	if def != nil {
		out = orSkipStmt(def.Body)
	}
	for i := len(clauses) - 1; i >= 0; i-- {
		out = stmt.If{
			Cond: caseCondition(t.Scrutinee, stmt.CaseValues(clauses[i].Case)),
			Then: orSkipStmt(clauses[i].Body),
			Else: out,
			Pos:  t.Pos,
		}
	}
	return out
}

func caseCondition(scrutinee stmt.Expr, values []stmt.Expr) stmt.Expr {
	parts := make([]string, len(values))
	uses := append([]string(nil), scrutinee.Uses...)
	for i, val := range values {
		if scrutinee.Text == "" {
			parts[i] = val.Text
		} else {
			parts[i] = scrutinee.Text + " == " + val.Text
		}
		uses = withVars(uses, val.Uses)
	}
	return stmt.Expr{Text: strings.Join(parts, " || "), Uses: uses}
}

func withVars(uses []string, more []string) []string {
	for _, m := range more {
		uses = withVar(uses, m)
	}
	return uses
}

func orSkipStmt(s stmt.Stmt) stmt.Stmt {
	if s == nil {
		return stmt.Skip{}
	}
	return s
}

func (c Config) jumpRule(kind sdg.VertexKind, target string, pos stmt.Pos, resume bool) Config {
	label := "break"
	if resume {
		label = "continue"
	}
	if target != "" {
		label += " " + target
	}
	v := c.newVertex(kind, label, pos)
	c.flow().AddVertex(v)
	c.markPending(v)
	c.term = jump{v: v, depth: 0, label: target, resume: resume}
	return c
}

// jumpStep looks at one control context. Sequential contexts, and loops
// other than the one a labelled jump names, pass the jump on to the next
// enclosing context; the matching loop context resolves it.
func (c Config) jumpStep(t jump) Config {
	idx := len(c.ctrl) - 1 - t.depth
	if idx < 0 {
		return c.unresolvedJump(t)
	}
	ctx := c.ctrl[idx]
	if ctx.kind != contextLoop || (t.label != "" && ctx.label != t.label) {
		if ctx.boundary {
			return c.unresolvedJump(t)
		}
		t.depth++
		c.term = t
		return c
	}

	c.graph.AddEdge(t.v, ctx.vertex, sdg.EdgeCtrlTrue)
	switch {
	case !t.resume:
		ctx.breaks = append(ctx.breaks, t.v)
	case ctx.deferContinues:
		ctx.continues = append(ctx.continues, t.v)
	default:
		c.flow().AddEdge(t.v, ctx.vertex)
	}
	c.term = io{in: []*sdg.Vertex{t.v}}
	return c
}

func (c Config) unresolvedJump(t jump) Config {
	msg := fmt.Sprintf("%s outside of any loop", t.v.Kind)
	if t.label != "" {
		msg = fmt.Sprintf("%s outside of any loop labelled %s", t.v.Kind, t.label)
	}
	c.report(sdg.DiagUnresolvedJump, t.v, msg)
	c.term = ioOf(t.v)
	return c
}

func (c Config) ctrlEdgeRule(t ctrlEdge) Config {
	switch body := t.body.(type) {
	case seqTerm:
		c.term = seqTerm{
			first:  ctrlEdge{branches: t.branches, body: body.first},
			second: ctrlEdge{branches: t.branches, body: body.second},
		}
		return c
	case stmt.Seq:
		c.term = seqTerm{
			first:  ctrlEdge{branches: t.branches, body: orSkip(body.First)},
			second: ctrlEdge{branches: t.branches, body: orSkip(body.Second)},
		}
		return c
	}
	if isDone(t.body) {
		c.closePending(t.branches)
		c.term = t.body
		return c
	}
	return c.within(t.body, scopeControl, t.branches, func(r term) term {
		return ctrlEdge{branches: t.branches, body: r}
	})
}

func (c Config) unitRule(t stmt.Unit) Config {
	u := c.newVertex(sdg.KindUnit, t.Name, t.Pos)
	c.term = seqTerm{
		first:  memberEdge{unit: u, body: orSkip(t.Body)},
		second: frontierVertex{v: u},
	}
	return c
}

func (c Config) memberEdgeRule(t memberEdge) Config {
	switch body := t.body.(type) {
	case seqTerm:
		c.term = seqTerm{
			first:  memberEdge{unit: t.unit, body: body.first},
			second: memberEdge{unit: t.unit, body: body.second},
		}
		return c
	case stmt.Seq:
		c.term = seqTerm{
			first:  memberEdge{unit: t.unit, body: orSkip(body.First)},
			second: memberEdge{unit: t.unit, body: orSkip(body.Second)},
		}
		return c
	}
	if isDone(t.body) {
		for _, v := range c.pending {
			c.graph.AddEdge(t.unit, v, sdg.EdgeMemberOf)
		}
		for _, v := range c.frontier {
			c.graph.AddEdge(t.unit, v, sdg.EdgeMemberOf)
		}
		c.pending, c.frontier = nil, nil
		c.term = t.body
		return c
	}
	return c.within(t.body, scopeMember, nil, func(r term) term {
		return memberEdge{unit: t.unit, body: r}
	})
}
