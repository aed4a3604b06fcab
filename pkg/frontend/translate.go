package frontend

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/l3aro/go-sdg/pkg/stmt"
)

// translator holds per-file state while statements are translated.
type translator struct {
	src         []byte
	imports     map[string]bool
	importOrder []string

	// innermost breakable construct last
	breakable []breakTarget
	// label of the labelled statement being translated, until a loop or
	// switch takes it
	label string

	// temporaries holding the results of lifted calls, by call span
	temps     map[span]string
	tempCount int
}

type breakTarget struct {
	label  string
	isLoop bool
}

type span [2]uint32

func spanOf(n *sitter.Node) span {
	return span{n.StartByte(), n.EndByte()}
}

func newTranslator(src []byte) *translator {
	return &translator{src: src, imports: make(map[string]bool), temps: make(map[span]string)}
}

func (t *translator) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(t.src)
}

func (t *translator) pos(n *sitter.Node) stmt.Pos {
	return stmt.Pos{StartLine: int(n.StartPoint().Row) + 1, EndLine: int(n.EndPoint().Row) + 1}
}

func (t *translator) expr(n *sitter.Node) stmt.Expr {
	if n == nil {
		return stmt.Expr{}
	}
	return stmt.Expr{Text: t.text(n), Uses: t.uses(n)}
}

// statements flattens the statement children of a block or case clause.
// Newer grammars wrap them in a statement_list node.
func (t *translator) statements(n *sitter.Node, skip int) []*sitter.Node {
	var out []*sitter.Node
	for i := skip; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch {
		case c == nil, c.Type() == "comment":
		case c.Type() == "statement_list":
			out = append(out, t.statements(c, 0)...)
		default:
			out = append(out, c)
		}
	}
	return out
}

func (t *translator) block(n *sitter.Node) stmt.Stmt {
	if n == nil {
		return stmt.Skip{}
	}
	return t.sequence(t.statements(n, 0))
}

func (t *translator) sequence(nodes []*sitter.Node) stmt.Stmt {
	out := make([]stmt.Stmt, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, t.statement(n))
	}
	return stmt.Sequence(out...)
}

func (t *translator) statement(n *sitter.Node) stmt.Stmt {
	switch n.Type() {
	case "block":
		return t.block(n)
	case "empty_statement", "type_declaration":
		return stmt.Skip{}
	case "expression_statement":
		return t.expressionStatement(n)
	case "assignment_statement", "short_var_declaration":
		return t.assignment(n)
	case "inc_statement", "dec_statement":
		return t.update(n)
	case "var_declaration", "const_declaration":
		return t.declaration(n)
	case "return_statement":
		return t.returnStatement(n)
	case "if_statement":
		return t.ifStatement(n)
	case "for_statement":
		return t.forStatement(n)
	case "expression_switch_statement":
		return t.switchStatement(n)
	case "break_statement":
		return t.breakStatement(n)
	case "continue_statement":
		return t.continueStatement(n)
	case "labeled_statement":
		return t.labeled(n)
	}
	// go, defer, goto, select, type switch, send, fallthrough and anything
	// the grammar reports as an error
	return t.unsupported(n)
}

func (t *translator) unsupported(n *sitter.Node) stmt.Stmt {
	text := t.text(n)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[:i]) + " ..."
	}
	return stmt.Unsupported{Text: text, Pos: t.pos(n)}
}

func (t *translator) expressionStatement(n *sitter.Node) stmt.Stmt {
	e := n.NamedChild(0)
	if e != nil && e.Type() == "call_expression" {
		lifted := t.hoist(e, true)
		if call, ok := t.call(e); ok {
			return stmt.Sequence(append(lifted, call)...)
		}
		return stmt.Sequence(append(lifted, stmt.Assign{Text: t.text(n), Uses: t.uses(e), Pos: t.pos(n)})...)
	}
	return t.unsupported(n)
}

// hoist lifts the procedure calls nested in n into assignments to fresh
// temporaries, innermost first, and returns them in evaluation order. Later
// reads of n see each lifted call as its temporary. With keepRoot, n itself
// stays in place. Calls inside function literals are left alone, and so are
// conversions.
func (t *translator) hoist(n *sitter.Node, keepRoot bool) []stmt.Stmt {
	if n == nil {
		return nil
	}
	root := spanOf(n)
	var out []stmt.Stmt
	var walk func(c *sitter.Node)
	walk = func(c *sitter.Node) {
		switch c.Type() {
		case "func_literal", "comment":
			return
		}
		for i := 0; i < int(c.NamedChildCount()); i++ {
			if cc := c.NamedChild(i); cc != nil {
				walk(cc)
			}
		}
		if c.Type() != "call_expression" || (keepRoot && spanOf(c) == root) {
			return
		}
		if _, done := t.temps[spanOf(c)]; done {
			return
		}
		// conversions and calls through values name no procedure
		if fn := c.ChildByFieldName("function"); fn == nil || (fn.Type() != "identifier" && fn.Type() != "selector_expression") {
			return
		}
		call, ok := t.call(c)
		if !ok {
			return
		}
		t.tempCount++
		tmp := fmt.Sprintf("~t%d", t.tempCount)
		t.temps[spanOf(c)] = tmp
		out = append(out, stmt.Assign{Text: call.Text, Var: tmp, Call: &call, Pos: call.Pos})
	}
	walk(n)
	return out
}

// call translates a call expression. Calls to builtins and conversions are
// not procedure calls and report false.
func (t *translator) call(n *sitter.Node) (stmt.Call, bool) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return stmt.Call{}, false
	}
	var (
		callee string
		args   []stmt.Param
	)
	switch fn.Type() {
	case "identifier":
		callee = t.text(fn)
		if isGoBuiltin(callee) {
			return stmt.Call{}, false
		}
	case "selector_expression":
		operand := fn.ChildByFieldName("operand")
		field := t.text(fn.ChildByFieldName("field"))
		if operand != nil && operand.Type() == "identifier" && t.imports[t.text(operand)] {
			callee = t.text(operand) + "." + field
		} else {
			// method call: the receiver is passed first
			callee = field
			args = append(args, stmt.Param{Text: t.text(operand), Uses: t.uses(operand)})
		}
	case "parenthesized_expression", "func_literal":
		return stmt.Call{}, false
	default:
		callee = t.text(fn)
	}

	if list := n.ChildByFieldName("arguments"); list != nil {
		for i := 0; i < int(list.NamedChildCount()); i++ {
			a := list.NamedChild(i)
			if a == nil || a.Type() == "comment" {
				continue
			}
			args = append(args, stmt.Param{Text: t.text(a), Uses: t.uses(a)})
		}
	}
	return stmt.Call{
		Text:   t.text(n),
		Callee: callee,
		Args:   stmt.ParamsOf(args...),
		Pos:    t.pos(n),
	}, true
}

// assignment translates assignments and short variable declarations. Only
// the first non-blank target is recorded as defined.
func (t *translator) assignment(n *sitter.Node) stmt.Stmt {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	op := t.text(n.ChildByFieldName("operator"))

	lifted := t.hoist(left, false)
	target, targetUses := t.targets(left)
	if op != "" && op != "=" && op != ":=" && target != "" {
		targetUses = appendUnique(targetUses, target)
	}

	if right != nil && right.NamedChildCount() == 1 && (op == "" || op == "=" || op == ":=") {
		if rhs := right.NamedChild(0); rhs != nil && rhs.Type() == "call_expression" {
			if _, ok := t.call(rhs); ok {
				lifted = append(lifted, t.hoist(rhs, true)...)
				call, _ := t.call(rhs)
				if target == "" {
					call.Text = t.text(n)
					return stmt.Sequence(append(lifted, call)...)
				}
				return stmt.Sequence(append(lifted, stmt.Assign{Text: t.text(n), Var: target, Call: &call, Pos: t.pos(n)})...)
			}
		}
	}

	lifted = append(lifted, t.hoist(right, false)...)
	uses := append(targetUses, t.uses(right)...)
	return stmt.Sequence(append(lifted, stmt.Assign{Text: t.text(n), Var: target, Uses: dedupe(uses), Pos: t.pos(n)})...)
}

// targets returns the first defined variable of an assignment's left-hand
// side and the variables read while evaluating it (index operands and
// partially updated bases).
func (t *translator) targets(left *sitter.Node) (string, []string) {
	if left == nil {
		return "", nil
	}
	var (
		target string
		uses   []string
	)
	for i := 0; i < int(left.NamedChildCount()); i++ {
		e := left.NamedChild(i)
		if e == nil {
			continue
		}
		base := baseIdentifier(e, t.src)
		if e.Type() != "identifier" {
			uses = append(uses, t.uses(e)...)
		}
		if target == "" && base != "_" {
			target = base
		}
	}
	return target, uses
}

// baseIdentifier finds the variable an lvalue ultimately writes to.
func baseIdentifier(n *sitter.Node, src []byte) string {
	for n != nil {
		switch n.Type() {
		case "identifier":
			return n.Content(src)
		case "selector_expression", "index_expression", "slice_expression":
			n = n.ChildByFieldName("operand")
		case "unary_expression", "parenthesized_expression":
			n = n.NamedChild(int(n.NamedChildCount()) - 1)
		default:
			return ""
		}
	}
	return ""
}

func (t *translator) update(n *sitter.Node) stmt.Stmt {
	e := n.NamedChild(0)
	lifted := t.hoist(e, false)
	return stmt.Sequence(append(lifted, stmt.PostOp{
		Text: t.text(n),
		Var:  baseIdentifier(e, t.src),
		Uses: t.uses(e),
		Pos:  t.pos(n),
	})...)
}

// declaration translates var and const declarations, one statement per value spec.
func (t *translator) declaration(n *sitter.Node) stmt.Stmt {
	var out []stmt.Stmt
	var walk func(*sitter.Node)
	walk = func(c *sitter.Node) {
		switch c.Type() {
		case "var_spec", "const_spec":
			out = append(out, t.valueSpec(c))
			return
		}
		for i := 0; i < int(c.NamedChildCount()); i++ {
			if cc := c.NamedChild(i); cc != nil {
				walk(cc)
			}
		}
	}
	walk(n)
	return stmt.Sequence(out...)
}

func (t *translator) valueSpec(n *sitter.Node) stmt.Stmt {
	var name string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c != nil && c.Type() == "identifier" && t.text(c) != "_" {
			name = t.text(c)
			break
		}
	}
	value := n.ChildByFieldName("value")
	if value != nil && value.NamedChildCount() == 1 && name != "" {
		if rhs := value.NamedChild(0); rhs != nil && rhs.Type() == "call_expression" {
			if _, ok := t.call(rhs); ok {
				lifted := t.hoist(rhs, true)
				call, _ := t.call(rhs)
				return stmt.Sequence(append(lifted, stmt.Assign{Text: t.text(n), Var: name, Call: &call, Pos: t.pos(n)})...)
			}
		}
	}
	lifted := t.hoist(value, false)
	return stmt.Sequence(append(lifted, stmt.Decl{Text: t.text(n), Var: name, Uses: t.uses(value), Pos: t.pos(n)})...)
}

// returnStatement lifts calls out of the returned expression, so the return
// reads their results.
func (t *translator) returnStatement(n *sitter.Node) stmt.Stmt {
	var (
		value  stmt.Expr
		lifted []stmt.Stmt
	)
	if n.NamedChildCount() > 0 {
		lifted = t.hoist(n.NamedChild(0), false)
		value = t.expr(n.NamedChild(0))
	}
	return stmt.Sequence(append(lifted, stmt.Return{Value: value, Pos: t.pos(n)})...)
}

// ifStatement hoists the initializer, then any calls in the condition, in
// front of the condition.
func (t *translator) ifStatement(n *sitter.Node) stmt.Stmt {
	var init stmt.Stmt = stmt.Skip{}
	if i := n.ChildByFieldName("initializer"); i != nil {
		init = t.statement(i)
	}
	condition := n.ChildByFieldName("condition")
	lifted := t.hoist(condition, false)
	cond := t.expr(condition)

	var els stmt.Stmt = stmt.Skip{}
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		els = t.statement(alt)
	}
	pre := append([]stmt.Stmt{init}, lifted...)
	return stmt.Sequence(append(pre, stmt.If{
		Cond: cond,
		Then: t.block(n.ChildByFieldName("consequence")),
		Else: els,
		Pos:  t.pos(n),
	})...)
}

func (t *translator) forStatement(n *sitter.Node) stmt.Stmt {
	body := n.ChildByFieldName("body")
	var clause *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c != nil && c.Type() != "block" && c.Type() != "comment" {
			clause = c
			break
		}
	}

	label := t.takeLabel()
	t.breakable = append(t.breakable, breakTarget{label: label, isLoop: true})
	loopBody := t.block(body)
	t.breakable = t.breakable[:len(t.breakable)-1]

	switch {
	case clause == nil:
		return stmt.For{Init: stmt.Skip{}, Update: stmt.Skip{}, Body: loopBody, Label: label, Pos: t.pos(n)}
	case clause.Type() == "for_clause":
		f := stmt.For{Init: stmt.Skip{}, Update: stmt.Skip{}, Body: loopBody, Label: label, Pos: t.pos(n)}
		if i := clause.ChildByFieldName("initializer"); i != nil {
			f.Init = t.statement(i)
		}
		if c := clause.ChildByFieldName("condition"); c != nil {
			cond := t.expr(c)
			f.Cond = &cond
		}
		if u := clause.ChildByFieldName("update"); u != nil {
			f.Update = t.statement(u)
		}
		return f
	case clause.Type() == "range_clause":
		return t.rangeLoop(n, clause, loopBody, label)
	default:
		return stmt.While{Cond: t.expr(clause), Body: loopBody, Label: label, Pos: t.pos(n)}
	}
}

// rangeLoop desugars a range loop into a while loop over "range x" whose
// body first assigns the iteration variables. The ranged expression is
// evaluated once, so its calls are lifted in front of the loop.
func (t *translator) rangeLoop(n, clause *sitter.Node, body stmt.Stmt, label string) stmt.Stmt {
	right := clause.ChildByFieldName("right")
	lifted := t.hoist(right, false)
	cond := stmt.Expr{Text: "range " + t.text(right), Uses: t.uses(right)}

	if left := clause.ChildByFieldName("left"); left != nil {
		target, uses := t.targets(left)
		if target != "" {
			next := stmt.Assign{
				Text: t.text(clause),
				Var:  target,
				Uses: dedupe(append(uses, cond.Uses...)),
				Pos:  t.pos(clause),
			}
			body = stmt.Sequence(next, body)
		}
	}
	return stmt.Sequence(append(lifted, stmt.While{Cond: cond, Body: body, Label: label, Pos: t.pos(n)})...)
}

// switchStatement translates an expression switch. A tagless switch is
// already an if/else chain and is translated as one.
func (t *translator) switchStatement(n *sitter.Node) stmt.Stmt {
	label := t.takeLabel()
	var init stmt.Stmt = stmt.Skip{}
	if i := n.ChildByFieldName("initializer"); i != nil {
		init = t.statement(i)
	}

	t.breakable = append(t.breakable, breakTarget{label: label})
	defer func() { t.breakable = t.breakable[:len(t.breakable)-1] }()

	type clause struct {
		values []stmt.Expr
		body   stmt.Stmt
		isDef  bool
		pos    stmt.Pos
	}
	var clauses []clause
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "expression_case":
			var values []stmt.Expr
			list := c.ChildByFieldName("value")
			for j := 0; list != nil && j < int(list.NamedChildCount()); j++ {
				if v := list.NamedChild(j); v != nil {
					values = append(values, t.expr(v))
				}
			}
			clauses = append(clauses, clause{values: values, body: t.sequence(t.statements(c, 1)), pos: t.pos(c)})
		case "default_case":
			clauses = append(clauses, clause{body: t.sequence(t.statements(c, 0)), isDef: true, pos: t.pos(c)})
		}
	}

	value := n.ChildByFieldName("value")
	if value == nil {
		// tagless: default goes last, cases keep their order
		var out stmt.Stmt = stmt.Skip{}
		for _, c := range clauses {
			if c.isDef {
				out = c.body
			}
		}
		for i := len(clauses) - 1; i >= 0; i-- {
			c := clauses[i]
			if c.isDef {
				continue
			}
			out = stmt.If{Cond: joinConditions(c.values), Then: c.body, Else: out, Pos: c.pos}
		}
		if _, ok := out.(stmt.If); !ok && len(clauses) > 0 {
			out = stmt.If{Cond: stmt.Expr{Text: "true"}, Then: out, Else: stmt.Skip{}, Pos: t.pos(n)}
		}
		return stmt.Sequence(init, out)
	}

	body := make([]stmt.SingleSwitch, 0, len(clauses))
	for _, c := range clauses {
		var k stmt.Case = stmt.DefaultCase{}
		if !c.isDef {
			k = stmt.CaseOf(c.values...)
		}
		body = append(body, stmt.SingleSwitch{Case: k, Body: c.body})
	}
	pre := append([]stmt.Stmt{init}, t.hoist(value, false)...)
	return stmt.Sequence(append(pre, stmt.Switch{Scrutinee: t.expr(value), Body: stmt.Clauses(body...), Pos: t.pos(n)})...)
}

func joinConditions(values []stmt.Expr) stmt.Expr {
	var (
		texts []string
		uses  []string
	)
	for _, v := range values {
		texts = append(texts, v.Text)
		uses = append(uses, v.Uses...)
	}
	return stmt.Expr{Text: strings.Join(texts, " || "), Uses: dedupe(uses)}
}

// breakStatement drops a break that leaves the innermost switch: the switch
// becomes an if/else chain and the break only ends its case. A labelled
// break out of an outer switch, or to a label the translator does not
// know, has no counterpart and stays unsupported.
func (t *translator) breakStatement(n *sitter.Node) stmt.Stmt {
	label := t.jumpLabel(n)
	target, depth, ok := t.breakTarget(label)
	switch {
	case !ok && label != "":
		return t.unsupported(n)
	case ok && !target.isLoop && depth == 0:
		return stmt.Skip{}
	case ok && !target.isLoop:
		return t.unsupported(n)
	}
	return stmt.Break{Label: label, Pos: t.pos(n)}
}

func (t *translator) continueStatement(n *sitter.Node) stmt.Stmt {
	label := t.jumpLabel(n)
	if label == "" {
		return stmt.Continue{Pos: t.pos(n)}
	}
	if target, _, ok := t.breakTarget(label); !ok || !target.isLoop {
		return t.unsupported(n)
	}
	return stmt.Continue{Label: label, Pos: t.pos(n)}
}

func (t *translator) jumpLabel(n *sitter.Node) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c != nil && c.Type() == "label_name" {
			return t.text(c)
		}
	}
	return ""
}

// breakTarget finds the construct a jump with label leaves, and how many
// breakable constructs lie inside it. An empty label names the innermost.
func (t *translator) breakTarget(label string) (breakTarget, int, bool) {
	for i := len(t.breakable) - 1; i >= 0; i-- {
		if label == "" || t.breakable[i].label == label {
			return t.breakable[i], len(t.breakable) - 1 - i, true
		}
	}
	return breakTarget{}, 0, false
}

func (t *translator) takeLabel() string {
	label := t.label
	t.label = ""
	return label
}

// labeled hands the label to the loop or switch it names. Labels on other
// statements only serve goto, which is unsupported.
func (t *translator) labeled(n *sitter.Node) stmt.Stmt {
	label := t.jumpLabel(n)
	for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
		c := n.NamedChild(i)
		if c == nil || c.Type() == "comment" || c.Type() == "label_name" {
			continue
		}
		switch c.Type() {
		case "for_statement", "expression_switch_statement":
			t.label = label
		}
		return t.statement(c)
	}
	return stmt.Skip{}
}
