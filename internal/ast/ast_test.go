package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualifiedName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		namespace string
		short     string
		want      string
	}{
		{"", "Foo", "Foo"},
		{"Foo", "Bar", `Foo\Bar`},
		{`App\Model`, "User", `App\Model\User`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, QualifiedName(tt.namespace, tt.short))
	}
}

func TestFoldKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `app\model\user`, FoldKey(`App\Model\User`))
	assert.Equal(t, FoldKey("WIDGET"), FoldKey("widget"))
}

func TestWithStmts_DoesNotMutateOriginal(t *testing.T) {
	t.Parallel()

	use := &Use{Text: `use Bar\Baz;`}
	class := &ClassLike{Kind: Class, Name: "A", Text: "class A {}"}
	other := &Other{Type: "function_definition", Text: "function f() {}"}

	ns := &Namespace{Name: "Foo", Stmts: []Stmt{use, other, class}, Braced: true, Span: Span{1, 9}}
	body := []Stmt{use, class}

	cp := WithStmts(ns, body)

	require.NotSame(t, ns, cp)
	assert.Equal(t, "Foo", cp.Name)
	assert.True(t, cp.Braced)
	assert.Equal(t, Span{1, 9}, cp.Span)
	assert.Equal(t, []Stmt{use, class}, cp.Stmts)
	assert.Equal(t, []Stmt{use, other, class}, ns.Stmts, "original body must be unchanged")

	// Mutating the input slice afterwards must not leak into the copy.
	body[0] = other
	assert.Same(t, use, cp.Stmts[0])
}
