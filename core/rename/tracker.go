package rename

import "github.com/tristendillon/relocate/core/models"

// ChangeTracker collects emitted edits grouped per file, keeping files in the
// order their first edit arrived.
type ChangeTracker struct {
	order   []string
	changes map[string]*models.FileTextChanges
}

// NewChangeTracker returns an empty tracker.
func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{changes: make(map[string]*models.FileTextChanges)}
}

// Emit records a single edit.
func (t *ChangeTracker) Emit(filePath string, r models.Range, newText string) {
	fc, ok := t.changes[filePath]
	if !ok {
		fc = &models.FileTextChanges{FilePath: filePath}
		t.changes[filePath] = fc
		t.order = append(t.order, filePath)
	}
	fc.Edits = append(fc.Edits, models.TextEdit{Range: r, NewText: newText})
}

// Changes returns the collected edits.
func (t *ChangeTracker) Changes() []models.FileTextChanges {
	out := make([]models.FileTextChanges, 0, len(t.order))
	for _, path := range t.order {
		out = append(out, *t.changes[path])
	}
	return out
}

// Len returns the number of edits recorded so far.
func (t *ChangeTracker) Len() int {
	n := 0
	for _, fc := range t.changes {
		n += len(fc.Edits)
	}
	return n
}
