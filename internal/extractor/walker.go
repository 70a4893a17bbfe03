package extractor

import (
	"slices"

	"github.com/daanhaitsma/classtools/internal/ast"
)

// scope is the namespace context of one walk invocation. It is passed by
// value; every namespace block starts a new scope with no imports.
type scope struct {
	namespace *ast.Namespace
	imports   []ast.Stmt
}

// walk registers every class-like definition in stmts.
//
// Imports collected in an enclosing scope are not visible inside a nested
// namespace block, and a definition only sees the imports that precede it.
func (e *Extractor) walk(stmts []ast.Stmt, sc scope) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.Namespace:
			e.walk(s.Stmts, scope{namespace: s})
		case *ast.Use:
			sc.imports = append(sc.imports, s)
		case *ast.ClassLike:
			e.register(sc, s)
		case *ast.Other:
			// not part of any fragment
		}
	}
}

// register builds the standalone fragment for def and stores it.
func (e *Extractor) register(sc scope, def *ast.ClassLike) {
	body := append(slices.Clone(sc.imports), def)

	stmts := body
	if sc.namespace.Name != "" {
		stmts = []ast.Stmt{ast.WithStmts(sc.namespace, body)}
	}

	d := Definition{
		Name:      ast.QualifiedName(sc.namespace.Name, def.Name),
		Kind:      def.Kind,
		Namespace: sc.namespace.Name,
		Span:      def.Span,
	}

	previous, replaced := e.defs.store(d, newFragment(stmts))
	if replaced {
		e.logger.Warn().
			Str("name", d.Name).
			Str("previous", previous.Name).
			Int("line", d.Span.StartLine).
			Msg("definition replaces a case-insensitive duplicate")
		return
	}

	e.logger.Debug().
		Str("name", d.Name).
		Str("kind", string(d.Kind)).
		Int("imports", len(sc.imports)).
		Msg("registered definition")
}
