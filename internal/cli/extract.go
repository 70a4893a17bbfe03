package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/daanhaitsma/classtools/internal/catalog"
	"github.com/daanhaitsma/classtools/internal/extractor"
	"github.com/daanhaitsma/classtools/internal/render"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	var match string

	cmd := &cobra.Command{
		Use:   "list FILE",
		Short: "List the classes, interfaces and traits defined in a PHP file",
		Long: `List prints the qualified name of every class-like definition in FILE, one
per line, in source order.

Examples:
  # All definitions
  classtools list src/Model/User.php

  # Only those in the App\Model namespace
  classtools list src/models.php --match 'App\Model\*'
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.extractFile(cmd, args[0])
			if err != nil {
				return err
			}

			var pattern *catalog.NamePattern
			if match != "" {
				if pattern, err = catalog.CompileNamePattern(match); err != nil {
					return err
				}
			}

			for _, name := range e.DefinitionNames() {
				if pattern == nil || pattern.Match(name) {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&match, "match", "", "only list names matching this glob")
	return cmd
}

func newExtractCmd(opts *globalOptions) *cobra.Command {
	var (
		all     bool
		openTag bool
	)

	cmd := &cobra.Command{
		Use:   "extract FILE [NAME]",
		Short: "Print one definition of a PHP file as a standalone fragment",
		Long: `Extract prints the definition NAME from FILE wrapped in its namespace and
preceded by the use statements in effect where it is declared. Names are
qualified and matched without regard to case.

Examples:
  classtools extract src/Model/User.php 'App\Model\User' --open-tag

  # Print the whole file as parsed
  classtools extract src/Model/User.php --all
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.extractFile(cmd, args[0])
			if err != nil {
				return err
			}

			var renderOpts []render.Option
			if openTag {
				renderOpts = append(renderOpts, render.WithOpenTag())
			}

			fragment := e.ExtractAll()
			if !all {
				if fragment, err = e.Extract(args[1]); err != nil {
					return err
				}
			}

			fmt.Fprint(cmd.OutOrStdout(), render.PHP(fragment.Statements(), renderOpts...))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "print every statement of the file")
	cmd.Flags().BoolVar(&openTag, "open-tag", false, "start the output with <?php")
	return cmd
}

// extractFile loads config from the working directory and builds an
// extractor for path.
func (o *globalOptions) extractFile(cmd *cobra.Command, path string) (*extractor.Extractor, error) {
	wd, err := workingDir()
	if err != nil {
		return nil, err
	}
	_, logger, err := o.setup(cmd, wd)
	if err != nil {
		return nil, err
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return newExtractor(cmd.Context(), source, logger.With().Str("file", path).Logger())
}

func newExtractor(ctx context.Context, source []byte, logger zerolog.Logger) (*extractor.Extractor, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return extractor.New(ctx, source, extractor.WithLogger(logger))
}
