package rename

import "github.com/tristendillon/relocate/core/models"

// FileSetProvider enumerates the project's source files in a stable order.
type FileSetProvider interface {
	Files() []models.SourceFile
}

// ModuleResolver resolves an import specifier as seen from containingFile.
type ModuleResolver interface {
	Resolve(specifier, containingFile string) models.Resolution
}

// ConfigFileProvider returns the project configuration, or nil when there is none.
type ConfigFileProvider interface {
	ConfigFile() *models.ConfigFile
}

// ChangeEmitter receives one edit per rewritten reference.
type ChangeEmitter interface {
	Emit(filePath string, r models.Range, newText string)
}
