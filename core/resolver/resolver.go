// Package resolver implements node-style module resolution over a project
// snapshot, recording every candidate it misses.
package resolver

import (
	"github.com/tidwall/gjson"

	"github.com/tristendillon/relocate/core/logger"
	"github.com/tristendillon/relocate/core/models"
	"github.com/tristendillon/relocate/core/paths"
)

// DefaultExtensions is the lookup order used when none is configured.
var DefaultExtensions = []string{".ts", ".tsx", ".d.ts", ".js", ".jsx"}

// packageEntryFields are read from package.json in order.
var packageEntryFields = []string{"types", "typings", "main"}

// Host answers file queries for the resolver.
type Host interface {
	FileExists(path string) bool
	ReadFile(path string) ([]byte, error)
}

// Options tunes resolution.
type Options struct {
	Extensions []string
	// BaseURL is an absolute directory bare specifiers are tried against
	// before node_modules.
	BaseURL string
}

// Resolver resolves specifiers the way TypeScript's node resolution does,
// without path mapping.
type Resolver struct {
	host Host
	opts Options
}

// New creates a Resolver.
func New(host Host, opts Options) *Resolver {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	return &Resolver{host: host, opts: opts}
}

// lookup accumulates missed candidates for one resolution.
type lookup struct {
	failed []string
}

// Resolve resolves specifier as written in containingFile.
func (r *Resolver) Resolve(specifier, containingFile string) models.Resolution {
	l := &lookup{}
	dir := paths.DirOf(containingFile)

	var resolved string
	if paths.Classify(specifier) == paths.Relative || paths.IsAbs(specifier) {
		resolved = r.loadFileOrDirectory(paths.Combine(dir, specifier), l)
	} else {
		if r.opts.BaseURL != "" {
			resolved = r.loadFileOrDirectory(paths.Combine(r.opts.BaseURL, specifier), l)
		}
		if resolved == "" {
			resolved = r.loadNodeModules(specifier, dir, l)
		}
	}

	if resolved != "" {
		logger.Debug("Resolver: %q from %s -> %s", specifier, containingFile, resolved)
		return models.Resolution{ResolvedPath: resolved}
	}
	logger.Debug("Resolver: %q from %s unresolved after %d lookups", specifier, containingFile, len(l.failed))
	return models.Resolution{FailedLookups: l.failed}
}

func (r *Resolver) try(candidate string, l *lookup) bool {
	if r.host.FileExists(candidate) {
		return true
	}
	l.failed = append(l.failed, candidate)
	return false
}

func (r *Resolver) loadFileOrDirectory(candidate string, l *lookup) string {
	if resolved := r.loadAsFile(candidate, l); resolved != "" {
		return resolved
	}
	return r.loadAsDirectory(candidate, l)
}

func (r *Resolver) loadAsFile(candidate string, l *lookup) string {
	if ext := paths.Extension(candidate); ext != "" {
		if r.try(candidate, l) {
			return candidate
		}
		// "./x.js" is how ESM-style TypeScript names ./x.ts
		base := paths.StripExtension(candidate)
		for _, substitute := range substitutes(ext) {
			if r.try(base+substitute, l) {
				return base + substitute
			}
		}
		return ""
	}
	for _, ext := range r.opts.Extensions {
		if r.try(candidate+ext, l) {
			return candidate + ext
		}
	}
	return ""
}

func substitutes(ext string) []string {
	switch ext {
	case ".js":
		return []string{".ts", ".tsx", ".d.ts"}
	case ".jsx":
		return []string{".tsx", ".d.ts"}
	case ".mjs":
		return []string{".mts", ".d.mts"}
	case ".cjs":
		return []string{".cts", ".d.cts"}
	}
	return nil
}

func (r *Resolver) loadAsDirectory(candidate string, l *lookup) string {
	pkg := paths.Combine(candidate, "package.json")
	if r.try(pkg, l) {
		if data, err := r.host.ReadFile(pkg); err == nil {
			for _, field := range packageEntryFields {
				entry := gjson.GetBytes(data, field)
				if entry.Type != gjson.String || entry.Str == "" {
					continue
				}
				target := paths.Combine(candidate, entry.Str)
				if resolved := r.loadAsFile(target, l); resolved != "" {
					return resolved
				}
				if resolved := r.loadIndex(target, l); resolved != "" {
					return resolved
				}
			}
		} else {
			logger.Debug("Resolver: failed to read %s: %v", pkg, err)
		}
	}
	return r.loadIndex(candidate, l)
}

func (r *Resolver) loadIndex(dir string, l *lookup) string {
	for _, ext := range r.opts.Extensions {
		candidate := paths.Combine(dir, "index"+ext)
		if r.try(candidate, l) {
			return candidate
		}
	}
	return ""
}

func (r *Resolver) loadNodeModules(specifier, dir string, l *lookup) string {
	for {
		for _, root := range []string{"node_modules", "node_modules/@types"} {
			candidate := paths.Combine(paths.Combine(dir, root), specifier)
			if resolved := r.loadFileOrDirectory(candidate, l); resolved != "" {
				return resolved
			}
		}
		parent := paths.DirOf(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
