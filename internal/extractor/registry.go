package extractor

import "github.com/daanhaitsma/classtools/internal/ast"

// Definition describes a registered class-like definition.
type Definition struct {
	Name      string // canonical qualified name, original casing
	Kind      ast.ClassKind
	Namespace string
	Span      ast.Span
}

type entry struct {
	def      Definition
	fragment *Fragment
}

// registry maps fold keys to definitions. The canonical name and fragment of
// an entry always change together. Entries keep the position of their first
// insertion; a later store under the same fold key replaces the contents.
type registry struct {
	index   map[string]int
	entries []entry
}

func newRegistry() *registry {
	return &registry{index: make(map[string]int)}
}

// store registers def, returning the definition it replaced, if any.
func (r *registry) store(def Definition, fragment *Fragment) (Definition, bool) {
	key := ast.FoldKey(def.Name)
	e := entry{def: def, fragment: fragment}

	if i, ok := r.index[key]; ok {
		previous := r.entries[i].def
		r.entries[i] = e
		return previous, true
	}

	r.index[key] = len(r.entries)
	r.entries = append(r.entries, e)
	return Definition{}, false
}

func (r *registry) lookup(name string) (entry, bool) {
	i, ok := r.index[ast.FoldKey(name)]
	if !ok {
		return entry{}, false
	}
	return r.entries[i], true
}

func (r *registry) names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.def.Name
	}
	return names
}

func (r *registry) definitions() []Definition {
	defs := make([]Definition, len(r.entries))
	for i, e := range r.entries {
		defs[i] = e.def
	}
	return defs
}
