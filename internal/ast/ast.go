// Package ast defines the statement tree the extractor works on.
//
// The tree is a closed variant: only the kinds declared here implement Stmt,
// so a type switch over them covers every statement a parser can produce.
package ast

import "strings"

// Separator joins namespace segments and short names in qualified names.
const Separator = `\`

// Span is the 1-indexed line range a statement occupies in the source.
type Span struct {
	StartLine int
	EndLine   int
}

// Stmt is a single top-level or namespace-level statement.
type Stmt interface {
	// Position returns where the statement appears in the source.
	Position() Span
	stmt()
}

// ClassKind distinguishes the class-like definitions.
type ClassKind string

const (
	Class     ClassKind = "class"
	Interface ClassKind = "interface"
	Trait     ClassKind = "trait"
)

// Namespace is a namespace block. An empty Name is the unnamed namespace.
type Namespace struct {
	Name   string
	Stmts  []Stmt
	Braced bool // namespace Name { ... } rather than namespace Name;
	Span   Span
}

// Use brings external names into scope for the enclosing namespace block.
type Use struct {
	Text string
	Span Span
}

// ClassLike is a class, interface or trait definition.
type ClassLike struct {
	Kind ClassKind
	Name string
	Doc  string // doc comment directly above the definition, if any
	Text string
	Span Span
}

// Other is any statement the extractor does not classify.
type Other struct {
	Type string // parser node kind, e.g. "function_definition"
	Text string
	Span Span
}

func (n *Namespace) Position() Span { return n.Span }
func (u *Use) Position() Span       { return u.Span }
func (c *ClassLike) Position() Span { return c.Span }
func (o *Other) Position() Span     { return o.Span }

func (*Namespace) stmt() {}
func (*Use) stmt()       {}
func (*ClassLike) stmt() {}
func (*Other) stmt()     {}

// WithStmts returns a copy of ns whose body is stmts. ns itself is left untouched.
func WithStmts(ns *Namespace, stmts []Stmt) *Namespace {
	body := make([]Stmt, len(stmts))
	copy(body, stmts)
	return &Namespace{
		Name:   ns.Name,
		Stmts:  body,
		Braced: ns.Braced,
		Span:   ns.Span,
	}
}

// QualifiedName joins a namespace and a short name.
// Examples: ("", "Foo") -> "Foo", ("App\Model", "User") -> "App\Model\User"
func QualifiedName(namespace, short string) string {
	if namespace == "" {
		return short
	}
	return namespace + Separator + short
}

// FoldKey returns the case-insensitive lookup key for a qualified name.
func FoldKey(name string) string {
	return strings.ToLower(name)
}
