package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/daanhaitsma/classtools/internal/ast"
)

// Writer writes scans and their definitions to the index.
type Writer struct {
	db *sql.DB
}

// NewWriter creates a Writer. DB must have schema already created via CreateSchema().
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

var definitionColumns = []string{
	"fold_key", "name", "kind", "namespace", "file_path",
	"start_line", "end_line", "code", "scan_id",
}

// WriteScan records a scan of root and replaces every definition previously
// indexed for the same root with records, all in one transaction. It returns
// the new scan id.
func (w *Writer) WriteScan(ctx context.Context, root string, records []Record) (string, error) {
	scanID := uuid.New().String()

	files := make(map[string]struct{})
	for _, r := range records {
		files[r.FilePath] = struct{}{}
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	sqlStr, args, err := sq.Insert("scans").
		Columns("scan_id", "root", "started_at", "file_count", "definition_count").
		Values(scanID, root, time.Now().UTC().Format(timeFormat), len(files), len(records)).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return "", fmt.Errorf("failed to insert scan: %w", err)
	}

	sqlStr, args, err = sq.Delete("definitions").
		Where(sq.Expr("scan_id IN (SELECT scan_id FROM scans WHERE root = ? AND scan_id <> ?)", root, scanID)).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return "", fmt.Errorf("failed to clear previous scan of %s: %w", root, err)
	}

	if err := insertDefinitions(ctx, tx, scanID, records); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit scan: %w", err)
	}

	return scanID, nil
}

// WriteFile replaces the definitions indexed for one file and attributes the
// new records to scanID.
func (w *Writer) WriteFile(ctx context.Context, scanID, path string, records []Record) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteFile(ctx, tx, path); err != nil {
		return err
	}
	if err := insertDefinitions(ctx, tx, scanID, records); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", path, err)
	}
	return nil
}

// DeleteFile removes every definition indexed for path.
func (w *Writer) DeleteFile(ctx context.Context, path string) error {
	return deleteFile(ctx, w.db, path)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func deleteFile(ctx context.Context, db execer, path string) error {
	sqlStr, args, err := sq.Delete("definitions").Where(sq.Eq{"file_path": path}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to delete definitions for %s: %w", path, err)
	}
	return nil
}

func insertDefinitions(ctx context.Context, tx *sql.Tx, scanID string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	// Build the query once with Squirrel, then prepare it for every row
	sqlStr, _, err := sq.Insert("definitions").
		Columns(definitionColumns...).
		Values("", "", "", "", "", 0, 0, "", "").
		Options("OR REPLACE").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			ast.FoldKey(r.Name),
			r.Name,
			string(r.Kind),
			r.Namespace,
			r.FilePath,
			r.StartLine,
			r.EndLine,
			r.Code,
			scanID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert definition %s: %w", r.Name, err)
		}
	}

	return nil
}
