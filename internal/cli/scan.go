package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/daanhaitsma/classtools/internal/catalog"
	"github.com/daanhaitsma/classtools/internal/config"
)

func newScanCmd(opts *globalOptions) *cobra.Command {
	var (
		match string
		quiet bool
	)

	cmd := &cobra.Command{
		Use:   "scan [DIR]",
		Short: "List every definition in the PHP files below a directory",
		Long: `Scan extracts every PHP file matched by the configured include patterns
below DIR (default: the current directory) and prints one line per
definition: the qualified name and the file that defines it, separated by a
tab. When two files define the same name, ignoring case, the later file in
lexical order wins.
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

			entries := cat.Entries()
			if match != "" {
				if entries, err = cat.Match(match); err != nil {
					return err
				}
			}

			for _, entry := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", entry.Name, entry.File)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&match, "match", "", "only print names matching this glob")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "disable the progress bar")
	return cmd
}

// rootArg returns the absolute directory named by args, or the working directory.
func rootArg(args []string) (string, error) {
	if len(args) == 0 {
		return workingDir()
	}
	root, err := filepath.Abs(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}
	return root, nil
}

// scanCatalog creates a catalog for cfg and scans root. Progress goes to stderr.
func scanCatalog(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger zerolog.Logger, root string, quiet bool) (*catalog.Catalog, *catalog.ScanResult, error) {
	cat, err := catalog.New(cfg,
		catalog.WithLogger(logger),
		catalog.WithProgress(NewCLIProgressReporter(cmd.ErrOrStderr(), quiet)),
	)
	if err != nil {
		return nil, nil, err
	}

	result, err := cat.Scan(ctx, root)
	if err != nil {
		cat.Close()
		return nil, nil, err
	}
	return cat, result, nil
}
