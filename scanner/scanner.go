// Package scanner extracts translation key usage records from TypeScript and
// JavaScript sources that use next-intl style translators.
package scanner

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/better-i18n/i18n-sync/usage"
)

// DefaultExtensions are scanned when no extensions are configured.
var DefaultExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	".next":        true,
	"vendor":       true,
}

// Scanner walks source directories and parses every matching file.
type Scanner struct {
	fs      afero.Fs
	root    string
	exts    map[string]bool
	workers int
	logger  *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExtensions limits scanning to files with the given extensions.
func WithExtensions(exts ...string) Option {
	return func(s *Scanner) {
		s.exts = make(map[string]bool, len(exts))
		for _, e := range exts {
			s.exts[e] = true
		}
	}
}

// WithWorkers sets how many files are parsed concurrently.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the logger for per-file diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// New creates a scanner. Record locations are reported relative to root.
func New(afs afero.Fs, root string, opts ...Option) *Scanner {
	s := &Scanner{
		fs:      afs,
		root:    root,
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	WithExtensions(DefaultExtensions...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Files returns the source files below dirs. Relative dirs are resolved
// against the root.
func (s *Scanner) Files(dirs ...string) ([]string, error) {
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	var files []string
	for _, dir := range dirs {
		start := dir
		if !filepath.IsAbs(dir) {
			start = filepath.Join(s.root, dir)
		}
		err := afero.Walk(s.fs, start, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if path != start && skipDirs[info.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if s.exts[filepath.Ext(path)] {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", start, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Scan parses every source file below dirs and returns the records sorted by
// file, line and key.
func (s *Scanner) Scan(ctx context.Context, dirs ...string) ([]usage.Record, error) {
	files, err := s.Files(dirs...)
	if err != nil {
		return nil, err
	}

	results := make([][]usage.Record, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := afero.ReadFile(s.fs, file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			rel, err := filepath.Rel(s.root, file)
			if err != nil {
				rel = file
			}
			results[i] = ParseSource(filepath.ToSlash(rel), data)
			s.logger.DebugContext(ctx, "scanned file", "file", rel, "records", len(results[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := []usage.Record{}
	for _, rs := range results {
		records = append(records, rs...)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return usage.Less(records[i], records[j])
	})
	s.logger.InfoContext(ctx, "scan complete", "files", len(files), "records", len(records))
	return records, nil
}

// trimQuotes strips matching quotes around a JavaScript string literal.
func trimQuotes(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	q := s[0]
	if (q != '\'' && q != '"' && q != '`') || s[len(s)-1] != q {
		return "", false
	}
	return s[1 : len(s)-1], true
}

func hasInterpolation(s string) bool {
	return strings.Contains(s, "${")
}
