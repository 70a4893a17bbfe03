package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/daanhaitsma/classtools/internal/ast"
)

// Reader queries the index.
type Reader struct {
	db *sql.DB
}

// NewReader creates a Reader. DB should have schema already created.
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// Get returns the definition indexed under name, ignoring case. When several
// files define the name, the one with the greatest path wins, as in a scan.
func (r *Reader) Get(ctx context.Context, name string) (*Record, error) {
	sqlStr, args, err := sq.Select(recordColumns...).
		From("definitions").
		Where(sq.Eq{"fold_key": ast.FoldKey(name)}).
		OrderBy("file_path DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	rec, err := scanRecord(r.db.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("definition %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get definition %s: %w", name, err)
	}
	return rec, nil
}

// List returns every indexed definition ordered by file and line.
func (r *Reader) List(ctx context.Context) ([]*Record, error) {
	sqlStr, args, err := sq.Select(recordColumns...).
		From("definitions").
		OrderBy("file_path", "start_line").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query definitions: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan definition: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate definitions: %w", err)
	}
	return records, nil
}

// LatestScan returns the most recent scan, or ErrNotFound for an empty index.
func (r *Reader) LatestScan(ctx context.Context) (*Scan, error) {
	sqlStr, args, err := sq.Select("scan_id", "root", "started_at", "file_count", "definition_count").
		From("scans").
		OrderBy("started_at DESC", "rowid DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	scan := &Scan{}
	var startedAt string
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&scan.ScanID,
		&scan.Root,
		&startedAt,
		&scan.FileCount,
		&scan.DefinitionCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scan: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest scan: %w", err)
	}

	scan.StartedAt, err = time.Parse(timeFormat, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse start time of scan %s: %w", scan.ScanID, err)
	}
	return scan, nil
}

var recordColumns = []string{
	"name", "kind", "namespace", "file_path",
	"start_line", "end_line", "code", "scan_id",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	rec := &Record{}
	var kind string
	err := row.Scan(
		&rec.Name,
		&kind,
		&rec.Namespace,
		&rec.FilePath,
		&rec.StartLine,
		&rec.EndLine,
		&rec.Code,
		&rec.ScanID,
	)
	if err != nil {
		return nil, err
	}
	rec.Kind = ast.ClassKind(kind)
	return rec, nil
}
