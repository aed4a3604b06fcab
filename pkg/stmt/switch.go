package stmt

// SwitchBody is the clause list of a Switch: empty, one clause, or a clause
// followed by more clauses.
type SwitchBody interface {
	switchNode()
}

// EmptySwitch has no clauses.
type EmptySwitch struct{}

// SingleSwitch is one case clause.
type SingleSwitch struct {
	Case Case
	Body Stmt
}

// MultiSwitch is First followed by the remaining clauses.
type MultiSwitch struct {
	First SingleSwitch
	Rest  SwitchBody
}

func (EmptySwitch) switchNode()  {}
func (SingleSwitch) switchNode() {}
func (MultiSwitch) switchNode()  {}

// Case is the label of a clause: default, one value, or several values.
type Case interface {
	caseNode()
}

// DefaultCase matches when no other clause does.
type DefaultCase struct{}

// SingleCase matches one value.
type SingleCase struct {
	Value Expr
}

// MultiCase matches First or any of Rest.
type MultiCase struct {
	First SingleCase
	Rest  Case
}

func (DefaultCase) caseNode() {}
func (SingleCase) caseNode()  {}
func (MultiCase) caseNode()   {}

// Clauses builds a SwitchBody from clauses in order.
func Clauses(cs ...SingleSwitch) SwitchBody {
	switch len(cs) {
	case 0:
		return EmptySwitch{}
	case 1:
		return cs[0]
	}
	return MultiSwitch{First: cs[0], Rest: Clauses(cs[1:]...)}
}

// CaseOf builds a Case matching any of values; no values means default.
func CaseOf(values ...Expr) Case {
	switch len(values) {
	case 0:
		return DefaultCase{}
	case 1:
		return SingleCase{Value: values[0]}
	}
	return MultiCase{First: SingleCase{Value: values[0]}, Rest: CaseOf(values[1:]...)}
}

// ClauseList returns the clauses of b in order.
func ClauseList(b SwitchBody) []SingleSwitch {
	var out []SingleSwitch
	for b != nil {
		switch n := b.(type) {
		case SingleSwitch:
			return append(out, n)
		case MultiSwitch:
			out = append(out, n.First)
			b = n.Rest
		default:
			return out
		}
	}
	return out
}

// CaseValues returns the values of c; nil for DefaultCase.
func CaseValues(c Case) []Expr {
	var out []Expr
	for c != nil {
		switch n := c.(type) {
		case SingleCase:
			return append(out, n.Value)
		case MultiCase:
			out = append(out, n.First.Value)
			c = n.Rest
		default:
			return out
		}
	}
	return out
}
