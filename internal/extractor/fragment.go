package extractor

import "github.com/daanhaitsma/classtools/internal/ast"

// Fragment is an ordered statement list that can be rendered as standalone
// source: either one definition with its imports and namespace, or a whole
// snippet.
type Fragment struct {
	stmts []ast.Stmt
}

func newFragment(stmts []ast.Stmt) *Fragment {
	return &Fragment{stmts: stmts}
}

// Statements returns the fragment's statements in order.
// The returned slice is a copy; the statements themselves are shared.
func (f *Fragment) Statements() []ast.Stmt {
	out := make([]ast.Stmt, len(f.stmts))
	copy(out, f.stmts)
	return out
}

// Len returns the number of top-level statements in the fragment.
func (f *Fragment) Len() int {
	return len(f.stmts)
}
