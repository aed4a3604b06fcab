package stmt

import "strings"

// ParamList is a possibly nested parameter or argument list:
// NoParams, a single Param, or Params (first :: rest).
type ParamList interface {
	paramNode()
	// Len returns the number of Param leaves.
	Len() int
}

// NoParams is the empty list.
type NoParams struct{}

// Param is one formal parameter or actual argument. Formals set Def to the
// parameter name; actuals carry the variables the argument expression reads.
type Param struct {
	Text string
	Def  string
	Uses []string
}

// Params is a non-empty list: Head followed by Tail.
type Params struct {
	Head Param
	Tail ParamList
}

func (NoParams) paramNode() {}
func (Param) paramNode()    {}
func (Params) paramNode()   {}

func (NoParams) Len() int { return 0 }
func (Param) Len() int    { return 1 }
func (p Params) Len() int { return 1 + p.Tail.Len() }

// ParamsOf builds a ParamList from ps in order.
func ParamsOf(ps ...Param) ParamList {
	switch len(ps) {
	case 0:
		return NoParams{}
	case 1:
		return ps[0]
	}
	return Params{Head: ps[0], Tail: ParamsOf(ps[1:]...)}
}

// Flatten returns the Param leaves of l head-first.
func Flatten(l ParamList) []Param {
	var out []Param
	for l != nil {
		switch n := l.(type) {
		case Param:
			return append(out, n)
		case Params:
			out = append(out, n.Head)
			l = n.Tail
		default:
			return out
		}
	}
	return out
}

// ArgText renders l as a comma separated argument list.
func ArgText(l ParamList) string {
	ps := Flatten(l)
	texts := make([]string, len(ps))
	for i, p := range ps {
		texts[i] = p.Text
	}
	return strings.Join(texts, ", ")
}
