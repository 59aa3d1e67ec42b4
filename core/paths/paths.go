package paths

import (
	"path"
	"strings"
)

// Kind classifies the text of an import.
type Kind int

const (
	// Relative texts start with "./" or "../" (or are exactly "." or "..").
	Relative Kind = iota
	// ModuleName covers everything else: bare package names, baseUrl paths and rooted paths.
	ModuleName
)

func (k Kind) String() string {
	if k == Relative {
		return "relative"
	}
	return "module"
}

// Extensions recognised as source extensions. Compound forms come before their tails.
var Extensions = []string{".d.mts", ".d.cts", ".d.ts", ".mts", ".cts", ".tsx", ".ts", ".mjs", ".cjs", ".jsx", ".js"}

var indexSuffixes = []string{"/index.d.ts", "/index.tsx", "/index.ts", "/index.jsx", "/index.js", "/package.json"}

// Policy decides how path segments compare. Every comparison in a rename
// goes through the same Policy.
type Policy struct {
	CaseSensitive bool
}

// NewPolicy returns a Policy with the given case sensitivity.
func NewPolicy(caseSensitive bool) Policy {
	return Policy{CaseSensitive: caseSensitive}
}

// Canonical returns the form of p used as a map key under this policy.
func (p Policy) Canonical(s string) string {
	if p.CaseSensitive {
		return s
	}
	return strings.ToLower(s)
}

// Equal reports whether a and b name the same path.
func (p Policy) Equal(a, b string) bool {
	if p.CaseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

// HasSuffix is strings.HasSuffix under the policy.
func (p Policy) HasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && p.Equal(s[len(s)-len(suffix):], suffix)
}

// HasPrefix is strings.HasPrefix under the policy.
func (p Policy) HasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && p.Equal(s[:len(prefix)], prefix)
}

// Normalize converts separators to "/" and removes "." and ".." segments
// where possible. The empty path normalizes to ".".
func Normalize(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

// IsAbs reports whether p is rooted, either "/..." or a drive path like "C:/...".
func IsAbs(p string) bool {
	p = strings.ReplaceAll(p, "\\", "/")
	if strings.HasPrefix(p, "/") {
		return true
	}
	return len(p) >= 3 && p[1] == ':' && p[2] == '/' && isLetter(p[0])
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// DirOf returns the directory portion of p.
func DirOf(p string) string {
	return path.Dir(Normalize(p))
}

// Base returns the last segment of p.
func Base(p string) string {
	return path.Base(Normalize(p))
}

// Combine joins rel onto base. A rooted rel replaces base entirely.
func Combine(base, rel string) string {
	if IsAbs(rel) {
		return Normalize(rel)
	}
	return Normalize(path.Join(strings.ReplaceAll(base, "\\", "/"), strings.ReplaceAll(rel, "\\", "/")))
}

// RelativePath returns the path that leads from the directory fromDir to
// target. Equal paths yield ".".
func (p Policy) RelativePath(fromDir, target string) string {
	from := segments(Normalize(fromDir))
	to := segments(Normalize(target))

	common := 0
	for common < len(from) && common < len(to) && p.Equal(from[common], to[common]) {
		common++
	}

	parts := make([]string, 0, len(from)-common+len(to)-common)
	for range from[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[common:]...)
	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, "/")
}

func segments(p string) []string {
	trimmed := strings.TrimPrefix(p, "/")
	if trimmed == "" || trimmed == "." {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// RemoveDirectoryPrefix returns the part of target below dir. It fails when
// target is dir itself or lies outside it; the match must end on a separator.
func (p Policy) RemoveDirectoryPrefix(dir, target string) (string, bool) {
	dir = Normalize(dir)
	target = Normalize(target)
	prefix := strings.TrimSuffix(dir, "/") + "/"
	if len(target) <= len(prefix) || !p.HasPrefix(target, prefix) {
		return "", false
	}
	return target[len(prefix):], true
}

// Extension returns the recognised source extension of p, or "".
func Extension(p string) string {
	base := Base(p)
	for _, ext := range Extensions {
		if len(base) > len(ext) && strings.HasSuffix(strings.ToLower(base), ext) {
			return base[len(base)-len(ext):]
		}
	}
	return ""
}

// StripExtension removes a recognised source extension from p.
func StripExtension(p string) string {
	return strings.TrimSuffix(p, Extension(p))
}

// StripIndexOrPackageSuffix removes a trailing "/index.<ext>" or
// "/package.json", and otherwise a recognised source extension.
func StripIndexOrPackageSuffix(p string) string {
	for _, suffix := range indexSuffixes {
		if strings.HasSuffix(p, suffix) {
			return p[:len(p)-len(suffix)]
		}
	}
	return StripExtension(p)
}

// IsIndexLike reports whether the last segment of p is an index module
// ("index" with or without extension) or a package.json.
func IsIndexLike(p string) bool {
	base := Base(p)
	return base == "package.json" || StripExtension(base) == "index"
}

// ToModuleSpecifier renders a path the way an import would spell it.
func ToModuleSpecifier(p string) string {
	specifier := StripIndexOrPackageSuffix(p)
	if specifier == "" {
		return "."
	}
	return specifier
}

// Classify tells relative texts apart from module names.
func Classify(text string) Kind {
	if text == "." || text == ".." || strings.HasPrefix(text, "./") || strings.HasPrefix(text, "../") {
		return Relative
	}
	return ModuleName
}

// EnsureRelative prefixes "./" onto p unless it is already relative or rooted.
func EnsureRelative(p string) string {
	if Classify(p) == Relative || IsAbs(p) {
		return p
	}
	return "./" + p
}

// IsInternalTo reports whether text, resolved from sourceFile, lands strictly inside dir.
func (p Policy) IsInternalTo(dir, sourceFile, text string) bool {
	_, ok := p.RemoveDirectoryPrefix(dir, Combine(DirOf(sourceFile), text))
	return ok
}
