// Package updater computes replacement texts for import references touched
// by a rename. Internal handles references written inside the moving file or
// directory; External handles references elsewhere that point into it.
package updater

import (
	"strings"

	"github.com/tristendillon/relocate/core/models"
	"github.com/tristendillon/relocate/core/paths"
)

// Locate maps a file that takes part in the rename to its location before
// and after the move. ok is false for files the rename leaves alone.
func Locate(op models.RenameOperation, policy paths.Policy, file string) (before, after string, ok bool) {
	file = paths.Normalize(file)
	if policy.Equal(file, op.OldPath) {
		return op.OldPath, op.NewPath, true
	}
	if rest, inside := policy.RemoveDirectoryPrefix(op.OldPath, file); inside {
		return file, paths.Combine(op.NewPath, rest), true
	}
	if policy.Equal(file, op.NewPath) {
		return op.OldPath, op.NewPath, true
	}
	if rest, inside := policy.RemoveDirectoryPrefix(op.NewPath, file); inside {
		return paths.Combine(op.OldPath, rest), file, true
	}
	return "", "", false
}

// isRelativeText reports whether text is resolved against the containing
// file. Module specifiers must use the "./" or "../" form; reference paths
// are relative unless rooted.
func isRelativeText(text string, isModuleSpecifier bool) bool {
	if isModuleSpecifier {
		return paths.Classify(text) == paths.Relative
	}
	return text != "" && !paths.IsAbs(text)
}

// keepStyle drops the "./" that EnsureRelative added when the original text
// was written without one.
func keepStyle(updated, original string) string {
	if !strings.HasPrefix(original, ".") && strings.HasPrefix(updated, "./") {
		return updated[2:]
	}
	return updated
}
