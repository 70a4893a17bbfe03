package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daanhaitsma/classtools/internal/catalog"
	"github.com/daanhaitsma/classtools/internal/render"
	"github.com/daanhaitsma/classtools/internal/storage"
)

func newIndexCmd(opts *globalOptions) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "index [DIR]",
		Short: "Scan a directory and store its definitions in the index",
		Long: `Index scans DIR (default: the current directory) like the scan command and
writes every definition, rendered as a standalone fragment, to the SQLite
index configured by storage.database. Use lookup to query it afterwards.
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			root, err := rootArg(args)
			if err != nil {
				return err
			}
			cfg, logger, err := opts.setup(cmd, root)
			if err != nil {
				return err
			}

			cat, _, err := scanCatalog(ctx, cmd, cfg, logger, root, quiet)
			if err != nil {
				return err
			}
			defer cat.Close()

			db, err := storage.Open(databasePath(cfg, root))
			if err != nil {
				return err
			}
			defer db.Close()

			scanID, count, err := writeIndex(ctx, db, cat, root)
			if err != nil {
				return err
			}

			logger.Info().Str("scan_id", scanID).Str("database", databasePath(cfg, root)).Msg("index written")
			if !quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "✓ Indexed %d definitions\n", count)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "disable the progress bar")
	return cmd
}

// writeIndex stores every definition of every scanned file as a new scan of
// root. Definitions shadowed by a later file are stored too, so the index
// still answers for them once the shadowing file goes away. It returns the scan
// id and the number of records stored.
func writeIndex(ctx context.Context, db *sql.DB, cat *catalog.Catalog, root string) (string, int, error) {
	var records []storage.Record
	for _, path := range cat.Files() {
		fileRecords, err := buildFileRecords(cat, path)
		if err != nil {
			return "", 0, err
		}
		records = append(records, fileRecords...)
	}
	scanID, err := storage.NewWriter(db).WriteScan(ctx, root, records)
	return scanID, len(records), err
}

// buildFileRecords renders the fragment of each definition in path for storage.
func buildFileRecords(cat *catalog.Catalog, path string) ([]storage.Record, error) {
	entries := cat.FileEntries(path)
	records := make([]storage.Record, 0, len(entries))
	for _, entry := range entries {
		fragment, err := cat.ExtractFile(path, entry.Name)
		if err != nil {
			return nil, err
		}

		records = append(records, storage.Record{
			Name:      entry.Name,
			Kind:      entry.Kind,
			Namespace: entry.Namespace,
			FilePath:  entry.File,
			StartLine: entry.Span.StartLine,
			EndLine:   entry.Span.EndLine,
			Code:      render.PHP(fragment.Statements()),
		})
	}
	return records, nil
}
