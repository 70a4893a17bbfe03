package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/daanhaitsma/classtools/internal/catalog"
	"github.com/daanhaitsma/classtools/internal/storage"
	"github.com/daanhaitsma/classtools/internal/watcher"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "watch [DIR]",
		Short: "Index a directory and keep the index current as files change",
		Long: `Watch runs index once, then watches DIR for changes to PHP files and
re-indexes the changed files until interrupted with Ctrl+C.
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

			scanID, _, err := writeIndex(ctx, db, cat, root)
			if err != nil {
				return err
			}

			w, err := watcher.New([]string{root}, []string{".php"},
				watcher.WithLogger(logger),
				watcher.WithSkipDir(cat.IgnoresDir),
			)
			if err != nil {
				return fmt.Errorf("failed to start watcher: %w", err)
			}
			defer w.Stop()

			r := &reindexer{cat: cat, writer: storage.NewWriter(db), scanID: scanID, logger: logger}
			if err := w.Start(ctx, func(files []string) { r.apply(ctx, files) }); err != nil {
				return err
			}

			logger.Info().Str("root", root).Msg("watching for changes, press Ctrl+C to stop")
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "disable the progress bar")
	return cmd
}

// reindexer applies batches of changed files to the catalog and the index.
type reindexer struct {
	cat    *catalog.Catalog
	writer *storage.Writer
	scanID string
	logger zerolog.Logger
}

func (r *reindexer) apply(ctx context.Context, files []string) {
	if _, err := r.cat.Update(ctx, files); err != nil {
		r.logger.Error().Err(err).Msg("failed to update catalog")
		return
	}

	tracked := r.cat.Files()

	for _, path := range files {
		if !slices.Contains(tracked, path) {
			if err := r.writer.DeleteFile(ctx, path); err != nil {
				r.logger.Error().Err(err).Str("file", path).Msg("failed to remove file from index")
			}
			continue
		}

		records, err := buildFileRecords(r.cat, path)
		if err == nil {
			err = r.writer.WriteFile(ctx, r.scanID, path, records)
		}
		if err != nil {
			r.logger.Error().Err(err).Str("file", path).Msg("failed to re-index file")
			continue
		}
		r.logger.Info().Str("file", path).Int("definitions", len(records)).Msg("re-indexed")
	}
}
