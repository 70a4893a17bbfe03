// Package extractor finds class, interface and trait definitions in a PHP
// snippet and builds a standalone fragment for each of them.
//
// A fragment holds the use statements in scope where the definition appears,
// followed by the definition, wrapped in its namespace when it has one. Names
// are matched case-insensitively but reported with their original casing.
//
// An Extractor is fully built by New and never changes afterwards, so it is
// safe for concurrent readers.
package extractor

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/daanhaitsma/classtools/internal/ast"
	"github.com/daanhaitsma/classtools/internal/parsers"
)

// Parser turns a snippet into a statement tree.
type Parser interface {
	Parse(ctx context.Context, src []byte) ([]ast.Stmt, error)
}

// Option configures an Extractor.
type Option func(*options)

type options struct {
	parser Parser
	logger zerolog.Logger
}

// WithParser replaces the default tree-sitter PHP parser.
func WithParser(p Parser) Option {
	return func(o *options) {
		o.parser = p
	}
}

// WithLogger sets the logger used while registering definitions.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Extractor holds the definitions found in one snippet.
type Extractor struct {
	global []ast.Stmt
	defs   *registry
	logger zerolog.Logger
}

// New parses snippet and registers every definition in it.
// Errors from the parser are returned as is.
func New(ctx context.Context, snippet []byte, opts ...Option) (*Extractor, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.parser == nil {
		o.parser = parsers.NewPhpParser()
	}

	global, err := o.parser.Parse(ctx, snippet)
	if err != nil {
		return nil, err
	}

	e := &Extractor{
		global: global,
		defs:   newRegistry(),
		logger: o.logger,
	}
	e.walk(global, scope{namespace: &ast.Namespace{}})

	return e, nil
}

// DefinitionNames returns the qualified names of all definitions in the order
// they were first found.
func (e *Extractor) DefinitionNames() []string {
	return e.defs.names()
}

// Definitions returns a description of every definition, ordered like DefinitionNames.
func (e *Extractor) Definitions() []Definition {
	return e.defs.definitions()
}

// HasDefinition reports whether name is defined. The check ignores case.
func (e *Extractor) HasDefinition(name string) bool {
	_, ok := e.defs.lookup(name)
	return ok
}

// Extract returns the standalone fragment for name.
// A missing name yields a *NotFoundError matching ErrNotFound.
func (e *Extractor) Extract(name string) (*Fragment, error) {
	entry, ok := e.defs.lookup(name)
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return entry.fragment, nil
}

// ExtractAll returns the whole snippet as parsed.
func (e *Extractor) ExtractAll() *Fragment {
	return newFragment(e.global)
}
