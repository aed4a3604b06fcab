package stmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence(t *testing.T) {
	a := Assign{Text: "x = 1", Var: "x"}
	b := Assign{Text: "y = x", Var: "y", Uses: []string{"x"}}

	tests := []struct {
		name  string
		input []Stmt
		want  Stmt
	}{
		{"empty", nil, Skip{}},
		{"single", []Stmt{a}, a},
		{"drops skip", []Stmt{Skip{}, a, Skip{}}, a},
		{"right nested", []Stmt{a, b, a}, Seq{First: a, Second: Seq{First: b, Second: a}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sequence(tt.input...))
		})
	}
}

func TestParamsOfAndFlatten(t *testing.T) {
	ps := []Param{{Text: "a"}, {Text: "b"}, {Text: "c"}}
	l := ParamsOf(ps...)

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, ps, Flatten(l))
	assert.Equal(t, "a, b, c", ArgText(l))

	assert.Equal(t, NoParams{}, ParamsOf())
	assert.Empty(t, Flatten(NoParams{}))
	assert.Equal(t, Param{Text: "a"}, ParamsOf(Param{Text: "a"}))
}

func TestClausesAndCases(t *testing.T) {
	one := Expr{Text: "1"}
	two := Expr{Text: "2"}
	c1 := SingleSwitch{Case: CaseOf(one, two), Body: Break{}}
	c2 := SingleSwitch{Case: CaseOf(), Body: Skip{}}

	body := Clauses(c1, c2)
	assert.Equal(t, []SingleSwitch{c1, c2}, ClauseList(body))
	assert.Equal(t, []Expr{one, two}, CaseValues(c1.Case))
	assert.Nil(t, CaseValues(c2.Case))
	assert.Equal(t, EmptySwitch{}, Clauses())
	assert.Empty(t, ClauseList(EmptySwitch{}))
}

func TestSize(t *testing.T) {
	tree := Sequence(
		Assign{Var: "x"},
		While{Cond: Expr{Text: "c"}, Body: Sequence(PostOp{Var: "x"}, Break{})},
	)
	// seq + assign + seq(while body) + while + postop + break
	assert.Equal(t, 6, Size(tree))
	assert.Equal(t, 3, Size(Call{Args: ParamsOf(Param{}, Param{})}))
}

type marker struct {
	Residual
}

func TestResidualIsNodeButNotStmt(t *testing.T) {
	var n Node = marker{}
	_, isStmt := n.(Stmt)
	assert.False(t, isStmt)

	n = Skip{}
	_, isStmt = n.(Stmt)
	assert.True(t, isStmt)
}
