package models

import "fmt"

// RenameOperation describes a single file or directory move. Both paths are
// normalized absolute paths.
type RenameOperation struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

func (op RenameOperation) String() string {
	return fmt.Sprintf("%s -> %s", op.OldPath, op.NewPath)
}

type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"new_text"`
}

// FileTextChanges holds every edit computed for one file, in the order the
// edits were produced.
type FileTextChanges struct {
	FilePath string     `json:"file_path"`
	Edits    []TextEdit `json:"edits"`
}
