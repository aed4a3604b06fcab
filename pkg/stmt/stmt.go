// Package stmt defines the statement tree consumed by the dependence-graph
// engine. A tree is produced by a front end (see pkg/frontend) and is never
// mutated once built.
//
// The set of node types is closed: every type implementing Stmt lives in this
// package, so a type switch over Stmt in the engine covers the whole grammar.
package stmt

// Node is anything the engine can reduce: a statement, or an intermediate
// form that embeds Residual. No other type can implement it.
type Node interface {
	node()
}

// Residual makes the embedding type a Node without making it a Stmt.
type Residual struct{}

func (Residual) node() {}

// Stmt is a node of the statement tree.
type Stmt interface {
	Node
	stmtNode()
}

// Pos is an inclusive source line range. The zero value means unknown.
type Pos struct {
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

// Expr is a source expression together with the variables it reads.
type Expr struct {
	Text string   `json:"text"`
	Uses []string `json:"uses,omitempty"`
}

// Seq runs First then Second.
type Seq struct {
	First  Stmt
	Second Stmt
}

// Skip is the empty statement.
type Skip struct{}

// Decl declares Var, optionally initialised from an expression whose reads are Uses.
type Decl struct {
	Text string
	Var  string
	Uses []string
	Pos  Pos
}

// Assign writes Var. When Call is non-nil the right-hand side is a single
// procedure call whose result is assigned ("x = f(a)").
type Assign struct {
	Text string
	Var  string
	Uses []string
	Call *Call
	Pos  Pos
}

// PreOp is a prefix update such as ++x.
type PreOp struct {
	Text string
	Var  string
	Uses []string
	Pos  Pos
}

// PostOp is a postfix update such as x++.
type PostOp struct {
	Text string
	Var  string
	Uses []string
	Pos  Pos
}

// If is a two-armed conditional. Else is Skip when absent.
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt
	Pos  Pos
}

// While is a pre-tested loop. Label names the loop for labelled jumps.
type While struct {
	Cond  Expr
	Body  Stmt
	Label string
	Pos   Pos
}

// DoWhile is a post-tested loop; Body runs at least once.
type DoWhile struct {
	Cond  Expr
	Body  Stmt
	Label string
	Pos   Pos
}

// For is a three-clause loop. A nil Cond loops forever.
type For struct {
	Init   Stmt
	Cond   *Expr
	Update Stmt
	Body   Stmt
	Label  string
	Pos    Pos
}

// Switch selects among case clauses by comparing Scrutinee to each case value.
type Switch struct {
	Scrutinee Expr
	Body      SwitchBody
	Pos       Pos
}

// Break leaves the nearest enclosing loop, or the enclosing loop named
// Label when it is set.
type Break struct {
	Label string
	Pos   Pos
}

// Continue starts the next iteration of the nearest enclosing loop, or of
// the enclosing loop named Label when it is set.
type Continue struct {
	Label string
	Pos   Pos
}

// Return leaves the current procedure. Value.Text is empty for a bare return.
type Return struct {
	Value Expr
	Pos   Pos
}

// Call invokes Callee with positional arguments.
type Call struct {
	Text   string
	Callee string
	Args   ParamList
	Pos    Pos
}

// Def defines a procedure. HasResult reports a non-void procedure.
type Def struct {
	Name      string
	Params    ParamList
	Body      Stmt
	HasResult bool
	Pos       Pos
}

// Unit groups top-level members (a package, a class) under one boundary vertex.
type Unit struct {
	Name string
	Body Stmt
	Pos  Pos
}

// Unsupported stands in for a construct the front end could not translate.
type Unsupported struct {
	Text string
	Pos  Pos
}

func (Seq) stmtNode()         {}
func (Skip) stmtNode()        {}
func (Decl) stmtNode()        {}
func (Assign) stmtNode()      {}
func (PreOp) stmtNode()       {}
func (PostOp) stmtNode()      {}
func (If) stmtNode()          {}
func (While) stmtNode()       {}
func (DoWhile) stmtNode()     {}
func (For) stmtNode()         {}
func (Switch) stmtNode()      {}
func (Break) stmtNode()       {}
func (Continue) stmtNode()    {}
func (Return) stmtNode()      {}
func (Call) stmtNode()        {}
func (Def) stmtNode()         {}
func (Unit) stmtNode()        {}
func (Unsupported) stmtNode() {}

func (Seq) node()         {}
func (Skip) node()        {}
func (Decl) node()        {}
func (Assign) node()      {}
func (PreOp) node()       {}
func (PostOp) node()      {}
func (If) node()          {}
func (While) node()       {}
func (DoWhile) node()     {}
func (For) node()         {}
func (Switch) node()      {}
func (Break) node()       {}
func (Continue) node()    {}
func (Return) node()      {}
func (Call) node()        {}
func (Def) node()         {}
func (Unit) node()        {}
func (Unsupported) node() {}

// Sequence right-nests stmts into Seq nodes, dropping Skip operands.
// An empty argument list yields Skip.
func Sequence(stmts ...Stmt) Stmt {
	var out Stmt = Skip{}
	for i := len(stmts) - 1; i >= 0; i-- {
		s := stmts[i]
		if s == nil {
			continue
		}
		if _, ok := s.(Skip); ok {
			continue
		}
		if _, ok := out.(Skip); ok {
			out = s
			continue
		}
		out = Seq{First: s, Second: out}
	}
	return out
}

// Size returns the number of nodes in the tree rooted at s.
func Size(s Stmt) int {
	switch n := s.(type) {
	case nil:
		return 0
	case Seq:
		return 1 + Size(n.First) + Size(n.Second)
	case If:
		return 1 + Size(n.Then) + Size(n.Else)
	case While:
		return 1 + Size(n.Body)
	case DoWhile:
		return 1 + Size(n.Body)
	case For:
		return 1 + Size(n.Init) + Size(n.Update) + Size(n.Body)
	case Switch:
		return 1 + switchSize(n.Body)
	case Def:
		return 1 + paramLen(n.Params) + Size(n.Body)
	case Unit:
		return 1 + Size(n.Body)
	case Call:
		return 1 + paramLen(n.Args)
	case Assign:
		if n.Call != nil {
			return 1 + Size(*n.Call)
		}
		return 1
	default:
		return 1
	}
}

func switchSize(b SwitchBody) int {
	switch n := b.(type) {
	case SingleSwitch:
		return 1 + Size(n.Body)
	case MultiSwitch:
		return switchSize(n.First) + switchSize(n.Rest)
	default:
		return 1
	}
}

func paramLen(l ParamList) int {
	if l == nil {
		return 0
	}
	return l.Len()
}
