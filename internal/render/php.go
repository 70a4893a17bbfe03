// Package render turns statement lists back into PHP source text.
package render

import (
	"strings"

	"github.com/daanhaitsma/classtools/internal/ast"
)

const indent = "    "

// Option configures rendering.
type Option func(*printer)

// WithOpenTag prefixes the output with "<?php".
func WithOpenTag() Option {
	return func(p *printer) {
		p.openTag = true
	}
}

type printer struct {
	openTag bool
}

// PHP renders stmts as PHP source. Statements are separated by a blank line
// and the output ends with a newline. Open tags in stmts are dropped.
func PHP(stmts []ast.Stmt, opts ...Option) string {
	p := &printer{}
	for _, opt := range opts {
		opt(p)
	}

	var sb strings.Builder
	if p.openTag {
		sb.WriteString("<?php\n\n")
	}

	body := p.block(stmts)
	if body != "" {
		sb.WriteString(body)
		sb.WriteString("\n")
	}

	return sb.String()
}

func (p *printer) block(stmts []ast.Stmt) string {
	parts := make([]string, 0, len(stmts))
	for _, stmt := range stmts {
		if text := p.stmt(stmt); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (p *printer) stmt(stmt ast.Stmt) string {
	switch s := stmt.(type) {
	case *ast.Namespace:
		return p.namespace(s)
	case *ast.Use:
		return s.Text
	case *ast.ClassLike:
		if s.Doc != "" {
			return s.Doc + "\n" + s.Text
		}
		return s.Text
	case *ast.Other:
		if s.Type == "php_tag" {
			return ""
		}
		return s.Text
	}
	return ""
}

// namespace renders a namespace block. The unnamed namespace can only be
// written in braced form.
func (p *printer) namespace(ns *ast.Namespace) string {
	body := p.block(ns.Stmts)

	if !ns.Braced && ns.Name != "" {
		if body == "" {
			return "namespace " + ns.Name + ";"
		}
		return "namespace " + ns.Name + ";\n\n" + body
	}

	open := "namespace {"
	if ns.Name != "" {
		open = "namespace " + ns.Name + " {"
	}
	if body == "" {
		return open + "\n}"
	}
	return open + "\n" + indentLines(body) + "\n}"
}

// indentLines indents every non-empty line of text by one level.
func indentLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}
