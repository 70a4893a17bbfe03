// Package catalog runs the extractor over every PHP file below a directory
// and answers name queries across all of them.
package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/maypok86/otter"
	"github.com/rs/zerolog"

	"github.com/daanhaitsma/classtools/internal/ast"
	"github.com/daanhaitsma/classtools/internal/config"
	"github.com/daanhaitsma/classtools/internal/extractor"
)

// Entry locates a definition in a scanned file.
type Entry struct {
	extractor.Definition
	File string
}

// FileError records a file that could not be read or parsed.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ScanResult summarizes a scan.
type ScanResult struct {
	Root        string
	Files       int
	Definitions int
	CacheHits   int
	Errors      []FileError
	Duration    time.Duration
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger for scan diagnostics. It is also handed to each extractor.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// WithParser replaces the parser used for every file.
func WithParser(p extractor.Parser) Option {
	return func(c *Catalog) {
		c.parser = p
	}
}

// WithProgress sets the reporter notified during scans.
func WithProgress(reporter ProgressReporter) Option {
	return func(c *Catalog) {
		c.progress = reporter
	}
}

// Catalog holds one extractor per scanned file. Extractors are cached by file
// path and content hash, so rescanning unchanged files does not parse them again.
type Catalog struct {
	discovery *Discovery
	cache     otter.Cache[string, *extractor.Extractor]
	parser    extractor.Parser
	logger    zerolog.Logger
	progress  ProgressReporter

	mu    sync.RWMutex
	root  string
	files map[string]*extractor.Extractor
	names map[string]Entry // fold key -> entry, later files win
	order []string         // fold keys in file order, then definition order
}

// New creates a catalog from the paths and cache sections of cfg.
func New(cfg *config.Config, opts ...Option) (*Catalog, error) {
	discovery, err := NewDiscovery(cfg.Paths.Include, cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to compile path patterns: %w", err)
	}

	builder, err := otter.NewBuilder[string, *extractor.Extractor](cfg.Cache.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor cache: %w", err)
	}

	var cache otter.Cache[string, *extractor.Extractor]
	if cfg.Cache.TTL > 0 {
		cache, err = builder.WithTTL(cfg.Cache.TTL).Build()
	} else {
		cache, err = builder.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor cache: %w", err)
	}

	c := &Catalog{
		discovery: discovery,
		cache:     cache,
		logger:    zerolog.Nop(),
		progress:  &NoOpProgressReporter{},
		files:     make(map[string]*extractor.Extractor),
		names:     make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Close releases the extractor cache.
func (c *Catalog) Close() {
	c.cache.Close()
}

// Scan discovers and extracts every matching file below root, replacing the
// previous contents of the catalog. Files that fail to parse are reported in
// the result and skipped.
func (c *Catalog) Scan(ctx context.Context, root string) (*ScanResult, error) {
	start := time.Now()

	paths, err := c.discovery.Discover(root)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files in %s: %w", root, err)
	}
	c.progress.OnDiscoveryComplete(len(paths))

	result := &ScanResult{Root: root}
	files := make(map[string]*extractor.Extractor, len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e, hit, err := c.load(ctx, path)
		c.progress.OnFileScanned(path)
		if err != nil {
			c.logger.Warn().Err(err).Str("file", path).Msg("skipping file")
			result.Errors = append(result.Errors, FileError{Path: path, Err: err})
			continue
		}
		if hit {
			result.CacheHits++
		}
		files[path] = e
	}

	c.mu.Lock()
	c.root = root
	c.files = files
	c.rebuild()
	result.Files = len(files)
	result.Definitions = len(c.order)
	c.mu.Unlock()

	result.Duration = time.Since(start)
	c.progress.OnComplete(result)

	c.logger.Info().
		Str("root", root).
		Int("files", result.Files).
		Int("definitions", result.Definitions).
		Int("cache_hits", result.CacheHits).
		Int("errors", len(result.Errors)).
		Dur("duration", result.Duration).
		Msg("scan complete")

	return result, nil
}

// Update re-extracts the given files after they changed on disk. Files that no
// longer exist or no longer match the path patterns are dropped.
func (c *Catalog) Update(ctx context.Context, paths []string) ([]FileError, error) {
	c.Invalidate(paths...)

	c.mu.RLock()
	root := c.root
	c.mu.RUnlock()

	var errs []FileError
	loaded := make(map[string]*extractor.Extractor)
	removed := make(map[string]bool)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !c.tracks(root, path) {
			removed[path] = true
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			removed[path] = true
			continue
		}

		e, _, err := c.load(ctx, path)
		if err != nil {
			c.logger.Warn().Err(err).Str("file", path).Msg("skipping file")
			errs = append(errs, FileError{Path: path, Err: err})
			removed[path] = true
			continue
		}
		loaded[path] = e
	}

	c.mu.Lock()
	for path := range removed {
		delete(c.files, path)
	}
	for path, e := range loaded {
		c.files[path] = e
	}
	c.rebuild()
	c.mu.Unlock()

	return errs, nil
}

// Invalidate drops cached extractors for the given files.
func (c *Catalog) Invalidate(paths ...string) {
	if len(paths) == 0 {
		return
	}

	drop := make(map[string]bool, len(paths))
	for _, p := range paths {
		drop[p] = true
	}

	c.cache.DeleteByFunc(func(key string, _ *extractor.Extractor) bool {
		path, _, _ := strings.Cut(key, "\x00")
		return drop[path]
	})
}

// Names returns the qualified names of all definitions, files in lexical
// order and definitions in source order within a file.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.order))
	for _, key := range c.order {
		names = append(names, c.names[key].Name)
	}
	return names
}

// Entries returns every definition with its file, ordered like Names.
func (c *Catalog) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]Entry, 0, len(c.order))
	for _, key := range c.order {
		entries = append(entries, c.names[key])
	}
	return entries
}

// Files returns the scanned files in lexical order.
func (c *Catalog) Files() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.sortedFiles()
}

// Lookup finds the file defining name. The lookup ignores case.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.names[ast.FoldKey(name)]
	return entry, ok
}

// Extract returns the standalone fragment for name from whichever file defines it.
func (c *Catalog) Extract(name string) (*extractor.Fragment, Entry, error) {
	c.mu.RLock()
	entry, ok := c.names[ast.FoldKey(name)]
	e := c.files[entry.File]
	c.mu.RUnlock()

	if !ok || e == nil {
		return nil, Entry{}, &extractor.NotFoundError{Name: name}
	}

	fragment, err := e.Extract(name)
	if err != nil {
		return nil, Entry{}, err
	}
	return fragment, entry, nil
}

// FileEntries returns every definition in one scanned file, including those
// shadowed by a later file, in source order. It returns nil for untracked files.
func (c *Catalog) FileEntries(path string) []Entry {
	c.mu.RLock()
	e := c.files[path]
	c.mu.RUnlock()

	if e == nil {
		return nil
	}

	defs := e.Definitions()
	entries := make([]Entry, 0, len(defs))
	for _, def := range defs {
		entries = append(entries, Entry{Definition: def, File: path})
	}
	return entries
}

// ExtractFile returns the fragment for name as defined in path, whether or
// not another file shadows it.
func (c *Catalog) ExtractFile(path, name string) (*extractor.Fragment, error) {
	c.mu.RLock()
	e := c.files[path]
	c.mu.RUnlock()

	if e == nil {
		return nil, &extractor.NotFoundError{Name: name}
	}
	return e.Extract(name)
}

// Match returns the entries whose qualified name matches a glob pattern.
// See CompileNamePattern for the pattern syntax.
func (c *Catalog) Match(pattern string) ([]Entry, error) {
	np, err := CompileNamePattern(pattern)
	if err != nil {
		return nil, err
	}

	var matched []Entry
	for _, entry := range c.Entries() {
		if np.Match(entry.Name) {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

// NamePattern is a compiled glob over qualified names.
type NamePattern struct {
	glob glob.Glob
}

// CompileNamePattern compiles a glob over qualified names. Matching ignores
// case and treats the namespace separator as the glob separator, so `App\*`
// matches `App\User` but not `App\Model\User`, while `App\**` matches both.
func CompileNamePattern(pattern string) (*NamePattern, error) {
	g, err := glob.Compile(globKey(pattern), '/')
	if err != nil {
		return nil, fmt.Errorf("invalid name pattern %q: %w", pattern, err)
	}
	return &NamePattern{glob: g}, nil
}

// Match reports whether name matches the pattern.
func (p *NamePattern) Match(name string) bool {
	return p.glob.Match(globKey(name))
}

// globKey folds a name and swaps namespace separators for slashes, since a
// backslash escapes the next character in glob syntax.
func globKey(name string) string {
	return strings.ReplaceAll(ast.FoldKey(name), ast.Separator, "/")
}

// load returns the extractor for path, parsing it unless an extractor for the
// same content is cached.
func (c *Catalog) load(ctx context.Context, path string) (*extractor.Extractor, bool, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}

	sum := sha256.Sum256(source)
	key := path + "\x00" + hex.EncodeToString(sum[:])

	if e, ok := c.cache.Get(key); ok {
		return e, true, nil
	}

	opts := []extractor.Option{extractor.WithLogger(c.logger.With().Str("file", path).Logger())}
	if c.parser != nil {
		opts = append(opts, extractor.WithParser(c.parser))
	}

	e, err := extractor.New(ctx, source, opts...)
	if err != nil {
		return nil, false, err
	}

	c.cache.Set(key, e)
	return e, false, nil
}

// IgnoresDir reports whether dir, below the scanned root, is excluded by the
// ignore patterns and need not be watched.
func (c *Catalog) IgnoresDir(dir string) bool {
	c.mu.RLock()
	root := c.root
	c.mu.RUnlock()

	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return false
	}
	return c.discovery.shouldIgnore(filepath.ToSlash(rel))
}

// tracks reports whether path belongs to the scanned root and matches the
// path patterns.
func (c *Catalog) tracks(root, path string) bool {
	if root == "" {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return c.discovery.Matches(filepath.ToSlash(rel))
}

// rebuild recomputes the name table from c.files. Callers hold c.mu.
func (c *Catalog) rebuild() {
	c.names = make(map[string]Entry)
	c.order = c.order[:0]

	for _, path := range c.sortedFiles() {
		for _, def := range c.files[path].Definitions() {
			key := ast.FoldKey(def.Name)
			if previous, ok := c.names[key]; ok {
				c.logger.Warn().
					Str("name", def.Name).
					Str("file", path).
					Str("previous_file", previous.File).
					Msg("definition shadows one in another file")
			} else {
				c.order = append(c.order, key)
			}
			c.names[key] = Entry{Definition: def, File: path}
		}
	}
}

func (c *Catalog) sortedFiles() []string {
	files := make([]string, 0, len(c.files))
	for path := range c.files {
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}
