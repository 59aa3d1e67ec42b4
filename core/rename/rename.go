// Package rename computes the text edits a file or directory rename requires
// across a project: moved files get their outgoing relative references
// rebased, other files get their references into the moved path rewritten,
// and the project configuration's file list follows along.
package rename

import (
	"encoding/json"
	"strings"

	"github.com/tristendillon/relocate/core/logger"
	"github.com/tristendillon/relocate/core/models"
	"github.com/tristendillon/relocate/core/paths"
	"github.com/tristendillon/relocate/core/updater"
)

// ComputeRenameEdits returns the edits needed for op, grouped per file.
func ComputeRenameEdits(op models.RenameOperation, files FileSetProvider, resolver ModuleResolver, config ConfigFileProvider, policy paths.Policy) []models.FileTextChanges {
	tracker := NewChangeTracker()
	EmitRenameEdits(op, files, resolver, config, policy, tracker)
	logger.Debug("Rename: %s produced %d edits", op, tracker.Len())
	return tracker.Changes()
}

// EmitRenameEdits sends every edit needed for op to emitter, configuration
// entries first and then each project file in provider order.
func EmitRenameEdits(op models.RenameOperation, files FileSetProvider, resolver ModuleResolver, config ConfigFileProvider, policy paths.Policy, emitter ChangeEmitter) {
	op = models.RenameOperation{OldPath: paths.Normalize(op.OldPath), NewPath: paths.Normalize(op.NewPath)}
	// case-only renames still need edits, even under a case-insensitive policy
	if op.OldPath == op.NewPath {
		logger.Debug("Rename: %s is a no-op", op)
		return
	}

	r := &renamer{
		op:       op,
		policy:   policy,
		resolver: resolver,
		emitter:  emitter,
		internal: updater.NewInternal(op, policy),
		external: updater.NewExternal(op, policy),
	}

	if config != nil {
		if cfg := config.ConfigFile(); cfg != nil {
			r.updateConfig(cfg)
		}
	}
	if files == nil {
		return
	}
	for _, file := range files.Files() {
		if _, _, moving := updater.Locate(op, policy, file.Path); moving {
			r.updateMoving(file)
		} else {
			r.updateReferencing(file)
		}
	}
}

type renamer struct {
	op       models.RenameOperation
	policy   paths.Policy
	resolver ModuleResolver
	emitter  ChangeEmitter
	internal *updater.Internal
	external *updater.External
}

func (r *renamer) emit(file string, rng models.Range, original, replacement string) {
	logger.Debug("Rename: %s [%d,%d) %q -> %q", file, rng.Pos, rng.End, original, replacement)
	r.emitter.Emit(file, rng, replacement)
}

func (r *renamer) updateConfig(cfg *models.ConfigFile) {
	configDir := paths.DirOf(cfg.Path)
	for _, entry := range cfg.Files {
		resolved := paths.Combine(configDir, entry.Text)
		if updated, ok := r.external.Update(resolved, entry.Text, false); ok {
			r.emit(cfg.Path, entry.Range, entry.Text, jsonEscape(updated))
		}
	}
}

func (r *renamer) updateMoving(file models.SourceFile) {
	for _, refs := range [][]models.ImportReference{file.ReferencedFiles, file.Imports} {
		for _, ref := range refs {
			if updated, ok := r.internal.Update(file.Path, ref); ok {
				r.emit(file.Path, ref.Range, ref.Text, updated)
			}
		}
	}
}

func (r *renamer) updateReferencing(file models.SourceFile) {
	dir := paths.DirOf(file.Path)
	for _, ref := range file.ReferencedFiles {
		resolved := paths.Combine(dir, ref.Text)
		if updated, ok := r.external.Update(resolved, ref.Text, false); ok {
			r.emit(file.Path, ref.Range, ref.Text, updated)
		}
	}

	if r.resolver == nil {
		return
	}
	for _, imp := range file.Imports {
		if updated, ok := r.updateImport(file.Path, imp); ok {
			r.emit(file.Path, imp.Range, imp.Text, updated)
		}
	}
}

func (r *renamer) updateImport(file string, imp models.ImportReference) (string, bool) {
	resolution := r.resolver.Resolve(imp.Text, file)
	if resolution.IsResolved() {
		return r.external.Update(resolution.ResolvedPath, imp.Text, true)
	}
	// The first candidate that yields a replacement wins, even if a later one
	// would point somewhere else.
	for _, candidate := range resolution.FailedLookups {
		if updated, ok := r.external.Update(candidate, imp.Text, true); ok {
			logger.Debug("Rename: %q in %s matched failed lookup %s", imp.Text, file, candidate)
			return updated, true
		}
	}
	return "", false
}

// jsonEscape encodes s for use between the quotes of a JSON string.
func jsonEscape(s string) string {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return s
	}
	out := strings.TrimSpace(sb.String())
	return out[1 : len(out)-1]
}
