// Package apply writes computed rename edits back into file contents.
package apply

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/tristendillon/relocate/core/logger"
	"github.com/tristendillon/relocate/core/models"
)

var (
	// ErrOverlap is returned when two edits for one file touch the same bytes.
	ErrOverlap = errors.New("overlapping edits")
	// ErrOutOfRange is returned when an edit reaches outside the file.
	ErrOutOfRange = errors.New("edit out of range")
)

// Apply returns src with edits applied. Edit ranges refer to src.
func Apply(src []byte, edits []models.TextEdit) ([]byte, error) {
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b models.TextEdit) int {
		return a.Range.Pos - b.Range.Pos
	})

	prevEnd := 0
	for _, e := range sorted {
		if e.Range.Pos < 0 || e.Range.Len() < 0 || e.Range.End > len(src) {
			return nil, fmt.Errorf("%w: [%d,%d) in %d bytes", ErrOutOfRange, e.Range.Pos, e.Range.End, len(src))
		}
		if e.Range.Pos < prevEnd {
			return nil, fmt.Errorf("%w: [%d,%d) starts before %d", ErrOverlap, e.Range.Pos, e.Range.End, prevEnd)
		}
		prevEnd = e.Range.End
	}

	out := slices.Clone(src)
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		out = slices.Replace(out, e.Range.Pos, e.Range.End, []byte(e.NewText)...)
	}
	return out, nil
}

// WriteChanges applies every FileTextChanges to the file on disk, keeping
// its permissions. Files are validated before any of them is written.
func WriteChanges(changes []models.FileTextChanges) error {
	type pending struct {
		path    string
		content []byte
		mode    os.FileMode
	}

	var writes []pending
	for _, fc := range changes {
		info, err := os.Stat(fc.FilePath)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", fc.FilePath, err)
		}
		src, err := os.ReadFile(fc.FilePath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", fc.FilePath, err)
		}
		updated, err := Apply(src, fc.Edits)
		if err != nil {
			return fmt.Errorf("failed to apply edits to %s: %w", fc.FilePath, err)
		}
		writes = append(writes, pending{path: fc.FilePath, content: updated, mode: info.Mode().Perm()})
	}

	for _, w := range writes {
		if err := os.WriteFile(w.path, w.content, w.mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", w.path, err)
		}
		logger.Debug("Apply: wrote %s", w.path)
	}
	return nil
}
