// Package project loads a TypeScript/JavaScript project from disk into an
// immutable snapshot the rename computation reads from.
package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/tristendillon/relocate/core/logger"
	"github.com/tristendillon/relocate/core/models"
	"github.com/tristendillon/relocate/core/parser"
	"github.com/tristendillon/relocate/core/paths"
	"github.com/tristendillon/relocate/core/tsconfig"
)

// DefaultExclude lists directory names that are never walked.
var DefaultExclude = []string{".git", "node_modules", "dist", "build", ".next", "coverage"}

// Options controls what Load reads.
type Options struct {
	// TSConfig is the project configuration, relative to the root.
	TSConfig string
	// Exclude holds directory names skipped during the walk.
	Exclude []string
	Policy  paths.Policy
	// Concurrency bounds parallel file reads; zero means one per CPU.
	Concurrency int
}

// Snapshot is a read-only view of the project at load time.
type Snapshot struct {
	Root string

	policy   paths.Policy
	files    []models.SourceFile
	contents map[string][]byte
	config   *tsconfig.Config
}

type loaded struct {
	path    string
	content []byte
	source  *models.SourceFile
}

// Load walks root and parses every source file it finds.
func Load(ctx context.Context, root string, opts Options) (*Snapshot, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}
	if len(opts.Exclude) == 0 {
		opts.Exclude = DefaultExclude
	}
	if opts.TSConfig == "" {
		opts.TSConfig = "tsconfig.json"
	}

	found, err := discover(abs, opts.Exclude)
	if err != nil {
		return nil, err
	}
	logger.Debug("Project: discovered %d files under %s", len(found), abs)

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	results := make([]*loaded, len(found))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, file := range found {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = load(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	snap := &Snapshot{
		Root:     paths.Normalize(filepath.ToSlash(abs)),
		policy:   opts.Policy,
		contents: make(map[string][]byte, len(results)),
	}
	for _, res := range results {
		if res == nil {
			continue
		}
		snap.contents[opts.Policy.Canonical(res.path)] = res.content
		if res.source != nil {
			snap.files = append(snap.files, *res.source)
		}
	}

	if cfg, content := loadConfig(filepath.Join(abs, filepath.FromSlash(opts.TSConfig))); cfg != nil {
		snap.config = cfg
		snap.contents[opts.Policy.Canonical(cfg.Path)] = content
	}
	logger.Info("Loaded %d source files from %s", len(snap.files), snap.Root)
	return snap, nil
}

// discover returns, in lexical order, every file the snapshot keeps.
func discover(root string, exclude []string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Debug("Project: skipping %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			if path != root && slices.Contains(exclude, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == "package.json" || paths.Extension(d.Name()) != "" {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return found, nil
}

func load(file string) *loaded {
	content, err := os.ReadFile(file)
	if err != nil {
		logger.Debug("Project: failed to read %s: %v", file, err)
		return nil
	}
	slashed := paths.Normalize(filepath.ToSlash(file))
	res := &loaded{path: slashed, content: content}
	if paths.Extension(slashed) != "" {
		parsed := parser.Parse(slashed, content)
		res.source = &parsed
	}
	return res
}

func loadConfig(path string) (*tsconfig.Config, []byte) {
	content, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Failed to read %s: %v", path, err)
		}
		return nil, nil
	}
	cfg, err := tsconfig.Parse(filepath.ToSlash(path), content)
	if err != nil {
		logger.Warn("Ignoring project configuration: %v", err)
		return nil, nil
	}
	return cfg, content
}

// Files returns the parsed sources in walk order.
func (s *Snapshot) Files() []models.SourceFile {
	return s.files
}

// FileExists reports whether path was loaded into the snapshot.
func (s *Snapshot) FileExists(path string) bool {
	_, ok := s.contents[s.policy.Canonical(paths.Normalize(path))]
	return ok
}

// ReadFile returns the contents captured at load time.
func (s *Snapshot) ReadFile(path string) ([]byte, error) {
	content, ok := s.contents[s.policy.Canonical(paths.Normalize(path))]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}
	return content, nil
}

// Config returns the parsed tsconfig, or nil when the project has none.
func (s *Snapshot) Config() *tsconfig.Config {
	return s.config
}

// ConfigFile exposes the tsconfig file list to the rename.
func (s *Snapshot) ConfigFile() *models.ConfigFile {
	return s.config.ConfigFile()
}

// BaseURL returns the tsconfig baseUrl as an absolute path, or "".
func (s *Snapshot) BaseURL() string {
	if s.config == nil {
		return ""
	}
	return s.config.BaseURL
}

// Policy returns the case policy the snapshot was loaded with.
func (s *Snapshot) Policy() paths.Policy {
	return s.policy
}
