package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daanhaitsma/classtools/internal/storage"
)

func newLookupCmd(opts *globalOptions) *cobra.Command {
	var (
		dir      string
		location bool
		openTag  bool
	)

	cmd := &cobra.Command{
		Use:   "lookup NAME",
		Short: "Print an indexed definition",
		Long: `Lookup finds NAME in the index written by the index command, ignoring case,
and prints its standalone fragment. With --location it prints the defining
file and line range instead.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := rootArg(nonEmpty(dir))
			if err != nil {
				return err
			}
			cfg, _, err := opts.setup(cmd, root)
			if err != nil {
				return err
			}

			db, err := storage.Open(databasePath(cfg, root))
			if err != nil {
				return err
			}
			defer db.Close()

			rec, err := storage.NewReader(db).Get(cmd.Context(), args[0])
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%s is not indexed, run classtools index first if the index is stale", args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if location {
				fmt.Fprintf(out, "%s\t%s:%d-%d\n", rec.Name, rec.FilePath, rec.StartLine, rec.EndLine)
				return nil
			}
			if openTag {
				fmt.Fprint(out, "<?php\n\n")
			}
			fmt.Fprint(out, rec.Code)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "C", "", "project directory holding the index (default: current directory)")
	cmd.Flags().BoolVar(&location, "location", false, "print the file and lines instead of the code")
	cmd.Flags().BoolVar(&openTag, "open-tag", false, "start the output with <?php")
	return cmd
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
