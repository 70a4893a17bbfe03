// Package cli implements the classtools command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/daanhaitsma/classtools/internal/config"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	cfgFile  string
	verbose  bool
	logLevel string
}

// NewRootCmd builds the classtools command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "classtools",
		Short: "Extract standalone PHP class definitions",
		Long: `classtools finds the classes, interfaces and traits in PHP source and
extracts each one as a standalone fragment, together with its namespace
and the use statements it depends on.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is <dir>/.classtools/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level, overrides the config (debug, info, warn, error)")

	rootCmd.AddCommand(
		newListCmd(opts),
		newExtractCmd(opts),
		newScanCmd(opts),
		newIndexCmd(opts),
		newLookupCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads configuration for rootDir, or from --config when given.
func (o *globalOptions) loadConfig(rootDir string) (*config.Config, error) {
	if o.cfgFile != "" {
		return config.NewFileLoader(o.cfgFile).Load()
	}
	return config.LoadConfigFromDir(rootDir)
}

// newLogger builds the logger described by cfg, adjusted by --verbose and --log-level.
func (o *globalOptions) newLogger(cfg *config.Config, w io.Writer) (zerolog.Logger, error) {
	levelName := cfg.Log.Level
	if o.logLevel != "" {
		levelName = o.logLevel
	}
	if o.verbose {
		levelName = "debug"
	}

	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", levelName, err)
	}

	if strings.EqualFold(cfg.Log.Format, "json") {
		return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger(), nil
}

// setup loads config for rootDir and builds the matching logger.
func (o *globalOptions) setup(cmd *cobra.Command, rootDir string) (*config.Config, zerolog.Logger, error) {
	cfg, err := o.loadConfig(rootDir)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger, err := o.newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

// signalContext returns a context cancelled on Ctrl+C or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// databasePath resolves the configured index path against rootDir.
func databasePath(cfg *config.Config, rootDir string) string {
	if filepath.IsAbs(cfg.Storage.Database) {
		return cfg.Storage.Database
	}
	return filepath.Join(rootDir, cfg.Storage.Database)
}

// workingDir returns the current directory, used as the project root for
// commands that take a single file or name.
func workingDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}
