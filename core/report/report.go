// Package report renders a computed rename plan for humans or tools.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/tristendillon/relocate/core/models"
)

// SourceReader supplies original file contents so edits can be shown in context.
type SourceReader interface {
	ReadFile(path string) ([]byte, error)
}

// Plan is the JSON form of a rename plan.
type Plan struct {
	Operation models.RenameOperation   `json:"operation"`
	Files     int                      `json:"files"`
	Edits     int                      `json:"edits"`
	Changes   []models.FileTextChanges `json:"changes"`
}

// Count returns the number of files and edits in changes.
func Count(changes []models.FileTextChanges) (files, edits int) {
	for _, fc := range changes {
		edits += len(fc.Edits)
	}
	return len(changes), edits
}

// Table writes one row per edit: file, line, old text and new text. File
// paths are shown relative to root when they live under it.
func Table(w io.Writer, root string, changes []models.FileTextChanges, sources SourceReader) error {
	if len(changes) == 0 {
		_, err := fmt.Fprintln(w, "No edits needed.")
		return err
	}

	var tableBuffer bytes.Buffer
	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"File", "Line", "Old", "New"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, fc := range changes {
		var src []byte
		if sources != nil {
			src, _ = sources.ReadFile(fc.FilePath)
		}
		name := displayPath(root, fc.FilePath)
		for _, e := range fc.Edits {
			line, old := locate(src, e.Range)
			table.Append([]string{name, line, old, e.NewText})
		}
	}

	files, edits := Count(changes)
	table.SetFooter([]string{fmt.Sprintf("Total Files %d", files), "", "", fmt.Sprintf("%d edits", edits)})
	table.Render()

	_, err := io.Copy(w, &tableBuffer)
	return err
}

// JSON writes the plan as indented JSON.
func JSON(w io.Writer, op models.RenameOperation, changes []models.FileTextChanges) error {
	if changes == nil {
		changes = []models.FileTextChanges{}
	}
	files, edits := Count(changes)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Plan{Operation: op, Files: files, Edits: edits, Changes: changes}); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return nil
}

// locate returns the 1-based line of r and the text it covers in src.
func locate(src []byte, r models.Range) (string, string) {
	if src == nil || r.Pos < 0 || r.End > len(src) || r.Pos > r.End {
		return "?", "?"
	}
	line := bytes.Count(src[:r.Pos], []byte("\n")) + 1
	return fmt.Sprintf("%d", line), string(src[r.Pos:r.End])
}

func displayPath(root, path string) string {
	if root == "" {
		return path
	}
	prefix := strings.TrimSuffix(root, "/") + "/"
	return strings.TrimPrefix(path, prefix)
}
