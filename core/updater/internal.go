package updater

import (
	"github.com/tristendillon/relocate/core/models"
	"github.com/tristendillon/relocate/core/paths"
)

// Internal rewrites relative references written inside the moving file or
// directory so they keep pointing at the same targets from the new location.
type Internal struct {
	op     models.RenameOperation
	policy paths.Policy

	// deltaNewToOld leads from the new parent directory to the old one and
	// deltaOldToNew the other way round.
	deltaNewToOld string
	deltaOldToNew string
}

// NewInternal prepares an Internal updater for op.
func NewInternal(op models.RenameOperation, policy paths.Policy) *Internal {
	oldDir := paths.DirOf(op.OldPath)
	newDir := paths.DirOf(op.NewPath)
	return &Internal{
		op:            op,
		policy:        policy,
		deltaNewToOld: policy.RelativePath(newDir, oldDir),
		deltaOldToNew: policy.RelativePath(oldDir, newDir),
	}
}

// Update returns the replacement for ref, written in sourceFile, or ok=false
// when the reference needs no change. sourceFile may be given at its old or
// its new location.
func (u *Internal) Update(sourceFile string, ref models.ImportReference) (string, bool) {
	if u.deltaNewToOld == "." {
		return "", false
	}

	text := ref.Text
	if !isRelativeText(text, ref.IsModuleSpecifier) {
		return "", false
	}

	before, after, ok := Locate(u.op, u.policy, sourceFile)
	if !ok {
		return "", false
	}
	if u.policy.IsInternalTo(u.op.OldPath, before, text) || u.policy.IsInternalTo(u.op.NewPath, after, text) {
		return "", false
	}

	updated := u.relocate(before, after, text)
	updated = keepStyle(updated, text)
	if updated == text {
		return "", false
	}
	return updated, true
}

// relocate re-expresses text, written in before, as seen from after.
func (u *Internal) relocate(before, after, text string) string {
	if u.policy.Equal(paths.DirOf(before), paths.DirOf(u.op.OldPath)) {
		// text climbs from the old parent into the new one
		if rest, ok := u.policy.RemoveDirectoryPrefix(u.deltaOldToNew, paths.Normalize(text)); ok {
			return paths.EnsureRelative(rest)
		}
	}
	target := paths.Combine(paths.DirOf(before), text)
	return paths.EnsureRelative(u.policy.RelativePath(paths.DirOf(after), target))
}
