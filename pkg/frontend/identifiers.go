package frontend

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// uses returns the variables read by the expression n, in first-occurrence
// order. Builtins, callee names, imported package names, struct literal
// keys and the insides of function literals are not variables here. A call
// lifted into a temporary reads only that temporary.
func (t *translator) uses(n *sitter.Node) []string {
	if n == nil {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "identifier":
			name := t.text(n)
			if name == "_" || isGoBuiltin(name) || t.imports[name] {
				return
			}
			add(name)
			return
		case "func_literal", "comment":
			return
		case "call_expression":
			if tmp, ok := t.temps[spanOf(n)]; ok {
				add(tmp)
				return
			}
			if fn := n.ChildByFieldName("function"); fn != nil && fn.Type() != "identifier" {
				walk(fn)
			}
			if args := n.ChildByFieldName("arguments"); args != nil {
				walk(args)
			}
			return
		case "keyed_element":
			if c := n.NamedChildCount(); c > 1 {
				walk(n.NamedChild(int(c) - 1))
			}
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c != nil {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

func dedupe(names []string) []string {
	var out []string
	for _, n := range names {
		out = appendUnique(out, n)
	}
	return out
}

func appendUnique(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}

var goBuiltins = map[string]bool{
	"append": true, "cap": true, "clear": true, "close": true, "complex": true,
	"copy": true, "delete": true, "imag": true, "len": true,
	"make": true, "max": true, "min": true, "new": true, "panic": true, "print": true,
	"println": true, "real": true, "recover": true,
	"true": true, "false": true, "nil": true, "iota": true,
	"any": true, "bool": true, "byte": true, "comparable": true,
	"complex64": true, "complex128": true,
	"error": true, "float32": true, "float64": true, "int": true,
	"int8": true, "int16": true, "int32": true, "int64": true,
	"rune": true, "string": true, "uint": true, "uint8": true,
	"uint16": true, "uint32": true, "uint64": true, "uintptr": true,
}

func isGoBuiltin(name string) bool {
	return goBuiltins[name]
}
