package rename

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/relocate/core/models"
	"github.com/tristendillon/relocate/core/paths"
)

type fileSet []models.SourceFile

func (f fileSet) Files() []models.SourceFile { return f }

type configFile struct{ cfg *models.ConfigFile }

func (c configFile) ConfigFile() *models.ConfigFile { return c.cfg }

// memoryResolver resolves relative specifiers against a fixed set of files,
// trying the bare path, ".ts" and "/index.ts" in that order.
type memoryResolver map[string]bool

func (m memoryResolver) Resolve(specifier, containingFile string) models.Resolution {
	if paths.Classify(specifier) != paths.Relative {
		return models.Resolution{}
	}
	base := paths.Combine(paths.DirOf(containingFile), specifier)
	var failed []string
	for _, candidate := range []string{base, base + ".ts", base + "/index.ts"} {
		if m[candidate] {
			return models.Resolution{ResolvedPath: candidate}
		}
		failed = append(failed, candidate)
	}
	return models.Resolution{FailedLookups: failed}
}

// source builds a SourceFile whose import ranges are synthetic but unique.
func source(path string, imports ...string) models.SourceFile {
	file := models.SourceFile{Path: path}
	for i, text := range imports {
		file.Imports = append(file.Imports, models.ImportReference{
			ContainingFile:    path,
			Text:              text,
			IsModuleSpecifier: true,
			Range:             models.Range{Pos: i * 100, End: i*100 + len(text)},
		})
	}
	return file
}

func withReferences(file models.SourceFile, refs ...string) models.SourceFile {
	for i, text := range refs {
		file.ReferencedFiles = append(file.ReferencedFiles, models.ImportReference{
			ContainingFile: file.Path,
			Text:           text,
			Range:          models.Range{Pos: 1000 + i*100, End: 1000 + i*100 + len(text)},
		})
	}
	return file
}

var policy = paths.NewPolicy(true)

func renameOp(oldPath, newPath string) models.RenameOperation {
	return models.RenameOperation{OldPath: oldPath, NewPath: newPath}
}

func newTexts(changes []models.FileTextChanges) map[string][]string {
	out := make(map[string][]string)
	for _, fc := range changes {
		for _, e := range fc.Edits {
			out[fc.FilePath] = append(out[fc.FilePath], e.NewText)
		}
	}
	return out
}

func TestComputeRenameEdits(t *testing.T) {
	t.Run("renamed file updates its importer", func(t *testing.T) {
		files := fileSet{source("/p/old.ts"), source("/p/a.ts", "./old")}
		resolver := memoryResolver{"/p/old.ts": true, "/p/a.ts": true}

		changes := ComputeRenameEdits(renameOp("/p/old.ts", "/p/new.ts"), files, resolver, nil, policy)

		require.Len(t, changes, 1)
		assert.Equal(t, "/p/a.ts", changes[0].FilePath)
		require.Len(t, changes[0].Edits, 1)
		assert.Equal(t, "./new", changes[0].Edits[0].NewText)
		assert.Equal(t, models.Range{Pos: 0, End: len("./old")}, changes[0].Edits[0].Range)
	})

	t.Run("moved directory rebases outgoing imports", func(t *testing.T) {
		files := fileSet{source("/p/dir/inner.ts", "../outside"), source("/p/outside.ts")}
		resolver := memoryResolver{"/p/outside.ts": true}

		changes := ComputeRenameEdits(renameOp("/p/dir", "/p/sub/dir"), files, resolver, nil, policy)

		assert.Equal(t, map[string][]string{"/p/dir/inner.ts": {"../../outside"}}, newTexts(changes))
	})

	t.Run("renaming a directory in place leaves internal imports alone", func(t *testing.T) {
		files := fileSet{source("/p/dir/a.ts", "./b"), source("/p/dir/b.ts")}
		resolver := memoryResolver{"/p/dir/a.ts": true, "/p/dir/b.ts": true}

		changes := ComputeRenameEdits(renameOp("/p/dir", "/p/dir2"), files, resolver, nil, policy)

		assert.Empty(t, changes)
	})

	t.Run("no-op rename", func(t *testing.T) {
		files := fileSet{source("/p/a.ts", "./old")}
		resolver := memoryResolver{"/p/old.ts": true}
		cfg := configFile{&models.ConfigFile{Path: "/p/tsconfig.json", Files: []models.ConfigEntry{{Text: "/p/old.ts"}}}}

		assert.Empty(t, ComputeRenameEdits(renameOp("/p/old.ts", "/p/old.ts"), files, resolver, cfg, policy))
	})

	t.Run("case-only rename under a case-insensitive policy", func(t *testing.T) {
		files := fileSet{source("/p/Foo.ts"), source("/p/a.ts", "./Foo")}
		resolver := memoryResolver{"/p/Foo.ts": true}

		changes := ComputeRenameEdits(renameOp("/p/Foo.ts", "/p/foo.ts"), files, resolver, nil, paths.NewPolicy(false))

		assert.Equal(t, map[string][]string{"/p/a.ts": {"./foo"}}, newTexts(changes))
	})

	t.Run("config entries come first", func(t *testing.T) {
		files := fileSet{source("/p/a.ts", "./old")}
		resolver := memoryResolver{"/p/old.ts": true}
		cfg := configFile{&models.ConfigFile{
			Path: "/p/tsconfig.json",
			Files: []models.ConfigEntry{
				{Text: "/p/old.ts", Range: models.Range{Pos: 20, End: 29}},
				{Text: "old.ts", Range: models.Range{Pos: 33, End: 39}},
				{Text: "other.ts", Range: models.Range{Pos: 43, End: 51}},
			},
		}}

		changes := ComputeRenameEdits(renameOp("/p/old.ts", "/p/lib/new.ts"), files, resolver, cfg, policy)

		require.Len(t, changes, 2)
		assert.Equal(t, "/p/tsconfig.json", changes[0].FilePath)
		assert.Equal(t, []models.TextEdit{
			{Range: models.Range{Pos: 20, End: 29}, NewText: "/p/lib/new.ts"},
			{Range: models.Range{Pos: 33, End: 39}, NewText: "lib/new.ts"},
		}, changes[0].Edits)
		assert.Equal(t, "/p/a.ts", changes[1].FilePath)
		assert.Equal(t, "./lib/new", changes[1].Edits[0].NewText)
	})

	t.Run("config entries inside a moved directory", func(t *testing.T) {
		cfg := configFile{&models.ConfigFile{
			Path:  "/p/tsconfig.json",
			Files: []models.ConfigEntry{{Text: "./src/util.ts"}},
		}}

		changes := ComputeRenameEdits(renameOp("/p/src", "/p/lib"), nil, nil, cfg, policy)

		assert.Equal(t, map[string][]string{"/p/tsconfig.json": {"./lib/util.ts"}}, newTexts(changes))
	})

	t.Run("reference directives in referencing files", func(t *testing.T) {
		files := fileSet{withReferences(source("/p/a.ts"), "./old.d.ts", "unrelated.d.ts")}

		changes := ComputeRenameEdits(renameOp("/p/old.d.ts", "/p/types/new.d.ts"), files, memoryResolver{}, nil, policy)

		assert.Equal(t, map[string][]string{"/p/a.ts": {"./types/new.d.ts"}}, newTexts(changes))
	})

	t.Run("suffix preserved for imports into a moved directory", func(t *testing.T) {
		files := fileSet{
			source("/p/main.ts", "./dir/util", "./dir", "./dir/deep/x", "react"),
			source("/p/dir/util.ts"),
		}
		resolver := memoryResolver{"/p/dir/util.ts": true, "/p/dir/index.ts": true, "/p/dir/deep/x.ts": true}

		changes := ComputeRenameEdits(renameOp("/p/dir", "/p/lib/dir"), files, resolver, nil, policy)

		assert.Equal(t, map[string][]string{
			"/p/main.ts": {"./lib/dir/util", "./lib/dir", "./lib/dir/deep/x"},
		}, newTexts(changes))
	})

	t.Run("project already moved falls back to failed lookups", func(t *testing.T) {
		files := fileSet{source("/p/new.ts"), source("/p/a.ts", "./old")}
		resolver := memoryResolver{"/p/new.ts": true}

		changes := ComputeRenameEdits(renameOp("/p/old.ts", "/p/new.ts"), files, resolver, nil, policy)

		assert.Equal(t, map[string][]string{"/p/a.ts": {"./new"}}, newTexts(changes))
	})

	t.Run("first failed lookup with a replacement wins", func(t *testing.T) {
		// "./old" fails as /p/old, /p/old.ts and /p/old/index.ts. The bare
		// directory candidate comes first and names the moved directory.
		files := fileSet{source("/p/a.ts", "./old")}

		changes := ComputeRenameEdits(renameOp("/p/old", "/p/moved"), files, memoryResolver{}, nil, policy)

		assert.Equal(t, map[string][]string{"/p/a.ts": {"./moved"}}, newTexts(changes))
	})

	t.Run("moving file reported at its new location", func(t *testing.T) {
		files := fileSet{source("/p/deep/x.ts", "./y")}

		changes := ComputeRenameEdits(renameOp("/p/x.ts", "/p/deep/x.ts"), files, memoryResolver{}, nil, policy)

		assert.Equal(t, map[string][]string{"/p/deep/x.ts": {"../y"}}, newTexts(changes))
	})
}

func TestEmitRenameEditsStreams(t *testing.T) {
	var got []string
	emitter := emitterFunc(func(filePath string, r models.Range, newText string) {
		got = append(got, filePath+":"+newText)
	})
	files := fileSet{source("/p/b.ts", "./old"), source("/p/a.ts", "./old", "./old")}
	resolver := memoryResolver{"/p/old.ts": true}

	EmitRenameEdits(renameOp("/p/old.ts", "/p/new.ts"), files, resolver, nil, policy, emitter)

	assert.Equal(t, []string{"/p/b.ts:./new", "/p/a.ts:./new", "/p/a.ts:./new"}, got)
}

type emitterFunc func(filePath string, r models.Range, newText string)

func (f emitterFunc) Emit(filePath string, r models.Range, newText string) { f(filePath, r, newText) }

func TestChangeTracker(t *testing.T) {
	tracker := NewChangeTracker()
	tracker.Emit("/b.ts", models.Range{Pos: 1, End: 2}, "x")
	tracker.Emit("/a.ts", models.Range{Pos: 3, End: 4}, "y")
	tracker.Emit("/b.ts", models.Range{Pos: 5, End: 6}, "z")

	changes := tracker.Changes()
	require.Len(t, changes, 2)
	assert.Equal(t, "/b.ts", changes[0].FilePath)
	assert.Len(t, changes[0].Edits, 2)
	assert.Equal(t, "/a.ts", changes[1].FilePath)
	assert.Equal(t, 3, tracker.Len())
}

func TestJSONEscape(t *testing.T) {
	assert.Equal(t, `C:\\src\\a.ts`, jsonEscape(`C:\src\a.ts`))
	assert.Equal(t, `say \"hi\"`, jsonEscape(`say "hi"`))
	assert.Equal(t, "<a>", jsonEscape("<a>"))
}
