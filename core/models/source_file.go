package models

// Range is a half-open span of byte offsets into a file's text.
type Range struct {
	Pos int `json:"pos"`
	End int `json:"end"`
}

func (r Range) Len() int {
	return r.End - r.Pos
}

// ImportReference is a single path string found in a source file: either a
// reference directive or an import specifier. For string literals the range
// excludes the quotes.
type ImportReference struct {
	ContainingFile    string `json:"containing_file"`
	Text              string `json:"text"`
	IsModuleSpecifier bool   `json:"is_module_specifier"`
	Range             Range  `json:"range"`
}

type SourceFile struct {
	Path            string            `json:"path"`
	ReferencedFiles []ImportReference `json:"referenced_files"` // /// <reference path="..." />
	Imports         []ImportReference `json:"imports"`          // import/export/require specifiers
}

// ConfigEntry is one string literal from a project configuration's declared
// file list.
type ConfigEntry struct {
	Text  string `json:"text"`
	Range Range  `json:"range"`
}

type ConfigFile struct {
	Path  string        `json:"path"`
	Files []ConfigEntry `json:"files"`
}

// Resolution is the outcome of resolving a module specifier. Exactly one of
// ResolvedPath or FailedLookups is meaningful; the zero value means nothing
// could be resolved and nothing was tried.
type Resolution struct {
	ResolvedPath  string   `json:"resolved_path,omitempty"`
	FailedLookups []string `json:"failed_lookups,omitempty"`
}

func (r Resolution) IsResolved() bool {
	return r.ResolvedPath != ""
}
