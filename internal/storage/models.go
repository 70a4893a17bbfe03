package storage

import (
	"errors"
	"time"

	"github.com/daanhaitsma/classtools/internal/ast"
)

// ErrNotFound is returned by Reader lookups that match no row.
var ErrNotFound = errors.New("not found in index")

// Record is one indexed definition.
type Record struct {
	Name      string
	Kind      ast.ClassKind
	Namespace string
	FilePath  string
	StartLine int
	EndLine   int
	Code      string // rendered fragment
	ScanID    string
}

// Scan describes one WriteScan call.
type Scan struct {
	ScanID          string
	Root            string
	StartedAt       time.Time
	FileCount       int
	DefinitionCount int
}
