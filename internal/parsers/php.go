package parsers

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"

	"github.com/daanhaitsma/classtools/internal/ast"
)

// PhpParser parses PHP source into an ast statement tree.
type PhpParser struct {
	*treeSitterParser
}

// NewPhpParser creates a new PHP parser.
func NewPhpParser() *PhpParser {
	lang := sitter.NewLanguage(php.LanguagePHP())
	return &PhpParser{
		treeSitterParser: newTreeSitterParser(lang, "php"),
	}
}

// Parse parses a PHP snippet. Source containing syntax errors yields a *SyntaxError.
//
// Statements following an unbraced `namespace Foo;` declaration become the body
// of that namespace, up to the next namespace declaration.
func (p *PhpParser) Parse(ctx context.Context, source []byte) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	err := p.parseTree(ctx, source, func(root *sitter.Node) error {
		stmts = p.convertProgram(root, source)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stmts, nil
}

// convertProgram converts the top-level statements and folds statements into
// their unbraced namespaces.
func (p *PhpParser) convertProgram(root *sitter.Node, source []byte) []ast.Stmt {
	var (
		stmts []ast.Stmt
		open  *ast.Namespace
	)

	for _, stmt := range p.convertList(namedChildren(root), source) {
		if ns, ok := stmt.(*ast.Namespace); ok {
			open = nil
			if !ns.Braced {
				open = ns
			}
			stmts = append(stmts, ns)
			continue
		}

		if open != nil {
			open.Stmts = append(open.Stmts, stmt)
			open.Span.EndLine = stmt.Position().EndLine
			continue
		}

		stmts = append(stmts, stmt)
	}

	return stmts
}

// convertList converts sibling nodes, attaching doc comments to the class-like
// definition directly below them.
func (p *PhpParser) convertList(nodes []*sitter.Node, source []byte) []ast.Stmt {
	stmts := make([]ast.Stmt, 0, len(nodes))

	for i := 0; i < len(nodes); i++ {
		node := nodes[i]

		if node.Kind() == "comment" && i+1 < len(nodes) {
			doc := nodeText(node, source)
			next := nodes[i+1]
			if strings.HasPrefix(doc, "/**") && next.StartPosition().Row <= node.EndPosition().Row+1 {
				if def, ok := p.convertClassLike(next, source); ok {
					def.Doc = doc
					stmts = append(stmts, def)
					i++
					continue
				}
			}
		}

		stmts = append(stmts, p.convertNode(node, source))
	}

	return stmts
}

// convertNode classifies a single statement node.
func (p *PhpParser) convertNode(node *sitter.Node, source []byte) ast.Stmt {
	switch node.Kind() {
	case "namespace_definition":
		return p.convertNamespace(node, source)
	case "namespace_use_declaration":
		return &ast.Use{
			Text: nodeText(node, source),
			Span: nodeSpan(node),
		}
	}

	if def, ok := p.convertClassLike(node, source); ok {
		return def
	}

	return &ast.Other{
		Type: node.Kind(),
		Text: nodeText(node, source),
		Span: nodeSpan(node),
	}
}

// convertNamespace converts a namespace definition. Unbraced namespaces get an
// empty body here; convertProgram fills it.
func (p *PhpParser) convertNamespace(node *sitter.Node, source []byte) *ast.Namespace {
	ns := &ast.Namespace{
		Name: extractNodeText(node.ChildByFieldName("name"), source),
		Span: nodeSpan(node),
	}

	if body := node.ChildByFieldName("body"); body != nil {
		ns.Braced = true
		ns.Stmts = p.convertList(namedChildren(body), source)
	}

	return ns
}

var classKinds = map[string]ast.ClassKind{
	"class_declaration":     ast.Class,
	"interface_declaration": ast.Interface,
	"trait_declaration":     ast.Trait,
}

// convertClassLike converts class, interface and trait declarations.
// Declarations without a name are not recognised.
func (p *PhpParser) convertClassLike(node *sitter.Node, source []byte) (*ast.ClassLike, bool) {
	kind, ok := classKinds[node.Kind()]
	if !ok {
		return nil, false
	}

	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil, false
	}

	return &ast.ClassLike{
		Kind: kind,
		Name: extractNodeText(nameNode, source),
		Text: nodeText(node, source),
		Span: nodeSpan(node),
	}, true
}
