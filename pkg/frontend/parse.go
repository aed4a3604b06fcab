// Package frontend translates Go source into the statement tree consumed by
// the dependence-graph engine. Parsing is done with tree-sitter, so files
// with syntax errors still produce a tree; constructs that cannot be
// translated become stmt.Unsupported placeholders.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/l3aro/go-sdg/pkg/stmt"
)

// ErrNoFunctions is returned for a file that declares no function or method.
var ErrNoFunctions = errors.New("frontend: no function declarations")

// File is the translation of one Go source file.
type File struct {
	Path      string    `json:"path,omitempty"`
	Package   string    `json:"package"`
	Imports   []string  `json:"imports,omitempty"`   // Local package names
	Functions []string  `json:"functions"`           // Procedure names in source order
	Unit      stmt.Unit `json:"-"`
}

// ParseFile reads and translates the Go file at path.
func ParseFile(ctx context.Context, path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	f, err := Parse(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse translates Go source into a stmt.Unit named after the package,
// holding package-level declarations and one stmt.Def per function or
// method, in source order.
func Parse(ctx context.Context, src []byte) (*File, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	t := newTranslator(src)

	// imports first: they decide which selector operands are packages
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if n := root.NamedChild(i); n != nil && n.Type() == "import_declaration" {
			t.collectImports(n)
		}
	}

	f := &File{}
	var members []stmt.Stmt
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		if n == nil {
			continue
		}
		switch n.Type() {
		case "package_clause":
			f.Package = t.packageName(n)
		case "function_declaration", "method_declaration":
			def := t.function(n)
			f.Functions = append(f.Functions, def.Name)
			members = append(members, def)
		case "var_declaration", "const_declaration":
			members = append(members, t.declaration(n))
		}
	}
	if len(f.Functions) == 0 {
		return nil, ErrNoFunctions
	}

	f.Imports = t.importNames()
	f.Unit = stmt.Unit{Name: f.Package, Body: stmt.Sequence(members...), Pos: t.pos(root)}
	return f, nil
}

func (t *translator) packageName(n *sitter.Node) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c != nil && c.Type() == "package_identifier" {
			return t.text(c)
		}
	}
	return ""
}

func (t *translator) collectImports(n *sitter.Node) {
	if n.Type() == "import_spec" {
		name := ""
		if alias := n.ChildByFieldName("name"); alias != nil {
			name = t.text(alias)
		}
		if name == "" {
			path := strings.Trim(t.text(n.ChildByFieldName("path")), "\"`")
			name = path[strings.LastIndex(path, "/")+1:]
		}
		if name != "_" && name != "." && name != "" {
			t.imports[name] = true
			t.importOrder = append(t.importOrder, name)
		}
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c != nil {
			t.collectImports(c)
		}
	}
}

func (t *translator) importNames() []string {
	out := make([]string, len(t.importOrder))
	copy(out, t.importOrder)
	return out
}

// function translates a function or method declaration. A method's receiver
// becomes its first formal and its name is qualified by the receiver type.
func (t *translator) function(n *sitter.Node) stmt.Def {
	name := t.text(n.ChildByFieldName("name"))
	var params []stmt.Param
	if recv := n.ChildByFieldName("receiver"); recv != nil {
		if typ := receiverType(recv, t.src); typ != "" {
			name = typ + "." + name
		}
		params = append(params, t.formals(recv)...)
	}
	params = append(params, t.formals(n.ChildByFieldName("parameters"))...)

	var body stmt.Stmt = stmt.Skip{}
	if b := n.ChildByFieldName("body"); b != nil {
		body = t.block(b)
	}
	return stmt.Def{
		Name:      name,
		Params:    stmt.ParamsOf(params...),
		Body:      body,
		HasResult: n.ChildByFieldName("result") != nil,
		Pos:       t.pos(n),
	}
}

// formals lists one formal per declared name. An unnamed parameter still
// occupies a position.
func (t *translator) formals(list *sitter.Node) []stmt.Param {
	if list == nil {
		return nil
	}
	var out []stmt.Param
	for i := 0; i < int(list.NamedChildCount()); i++ {
		decl := list.NamedChild(i)
		if decl == nil || (decl.Type() != "parameter_declaration" && decl.Type() != "variadic_parameter_declaration") {
			continue
		}
		named := false
		for j := 0; j < int(decl.NamedChildCount()); j++ {
			c := decl.NamedChild(j)
			if c == nil || c.Type() != "identifier" {
				continue
			}
			named = true
			name := t.text(c)
			p := stmt.Param{Text: name}
			if name != "_" {
				p.Def = name
			}
			out = append(out, p)
		}
		if !named {
			out = append(out, stmt.Param{Text: t.text(decl)})
		}
	}
	return out
}

func receiverType(recv *sitter.Node, src []byte) string {
	var find func(n *sitter.Node) string
	find = func(n *sitter.Node) string {
		if n.Type() == "type_identifier" {
			return n.Content(src)
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c != nil {
				if s := find(c); s != "" {
					return s
				}
			}
		}
		return ""
	}
	return find(recv)
}
