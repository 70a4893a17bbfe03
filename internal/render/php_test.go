package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daanhaitsma/classtools/internal/ast"
	"github.com/daanhaitsma/classtools/internal/extractor"
)

func TestPHP_TopLevel(t *testing.T) {
	t.Parallel()

	stmts := []ast.Stmt{
		&ast.Other{Type: "php_tag", Text: "<?php"},
		&ast.Use{Text: `use Psr\Log\LoggerInterface;`},
		&ast.ClassLike{Kind: ast.Class, Name: "A", Doc: "/** Doc */", Text: "class A {}"},
	}

	want := "use Psr\\Log\\LoggerInterface;\n\n/** Doc */\nclass A {}\n"
	assert.Equal(t, want, PHP(stmts))
}

func TestPHP_OpenTag(t *testing.T) {
	t.Parallel()

	stmts := []ast.Stmt{&ast.ClassLike{Kind: ast.Class, Name: "A", Text: "class A {}"}}

	assert.Equal(t, "<?php\n\nclass A {}\n", PHP(stmts, WithOpenTag()))
}

func TestPHP_UnbracedNamespace(t *testing.T) {
	t.Parallel()

	ns := &ast.Namespace{
		Name: `App\Model`,
		Stmts: []ast.Stmt{
			&ast.Use{Text: "use DateTimeImmutable;"},
			&ast.ClassLike{Kind: ast.Interface, Name: "Clock", Text: "interface Clock {}"},
		},
	}

	want := "namespace App\\Model;\n\nuse DateTimeImmutable;\n\ninterface Clock {}\n"
	assert.Equal(t, want, PHP([]ast.Stmt{ns}))
}

func TestPHP_BracedNamespace(t *testing.T) {
	t.Parallel()

	ns := &ast.Namespace{
		Name:   "Foo",
		Braced: true,
		Stmts: []ast.Stmt{
			&ast.ClassLike{Kind: ast.Class, Name: "A", Text: "class A\n{\n    public $x;\n}"},
		},
	}

	want := "namespace Foo {\n    class A\n    {\n        public $x;\n    }\n}\n"
	assert.Equal(t, want, PHP([]ast.Stmt{ns}))
}

func TestPHP_UnnamedNamespaceIsBraced(t *testing.T) {
	t.Parallel()

	ns := &ast.Namespace{Stmts: []ast.Stmt{&ast.ClassLike{Kind: ast.Trait, Name: "T", Text: "trait T {}"}}}

	assert.Equal(t, "namespace {\n    trait T {}\n}\n", PHP([]ast.Stmt{ns}))
}

func TestPHP_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", PHP(nil))
	assert.Equal(t, "namespace Foo;\n", PHP([]ast.Stmt{&ast.Namespace{Name: "Foo"}}))
}

func TestPHP_ExtractedFragment(t *testing.T) {
	t.Parallel()

	src := []byte(`<?php
use Outer\Thing;

namespace Foo {
    use Bar\Baz;

    /**
     * A widget.
     */
    class Widget extends Baz
    {
        public function run(): void {}
    }

    function helper() {}
}
`)

	e, err := extractor.New(context.Background(), src)
	require.NoError(t, err)

	fragment, err := e.Extract(`foo\WIDGET`)
	require.NoError(t, err)

	want := `<?php

namespace Foo {
    use Bar\Baz;

    /**
     * A widget.
     */
    class Widget extends Baz
    {
        public function run(): void {}
    }
}
`
	assert.Equal(t, want, PHP(fragment.Statements(), WithOpenTag()))
}
