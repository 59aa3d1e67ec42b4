// Package tsconfig reads the parts of a tsconfig.json the rename needs: the
// declared "files" list with byte ranges, and compilerOptions.baseUrl.
package tsconfig

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/tristendillon/relocate/core/models"
	"github.com/tristendillon/relocate/core/paths"
)

// Config is a parsed tsconfig.json.
type Config struct {
	Path    string
	BaseURL string
	Files   []models.ConfigEntry
}

// Parse reads src, the contents of the tsconfig at path. Comments and
// trailing commas are tolerated.
func Parse(path string, src []byte) (*Config, error) {
	json := string(Sanitize(src))
	if !gjson.Valid(json) {
		return nil, fmt.Errorf("failed to parse %s: invalid JSON", path)
	}

	cfg := &Config{Path: paths.Normalize(path)}

	if files := gjson.Get(json, "files"); files.IsArray() {
		files.ForEach(func(_, value gjson.Result) bool {
			if value.Type != gjson.String {
				return true
			}
			end := value.Index + len(value.Raw) - 1
			if value.Index <= 0 || json[value.Index] != '"' || end > len(json) {
				return true
			}
			cfg.Files = append(cfg.Files, models.ConfigEntry{
				Text:  value.Str,
				Range: models.Range{Pos: value.Index + 1, End: end},
			})
			return true
		})
	}

	if baseURL := gjson.Get(json, "compilerOptions.baseUrl"); baseURL.Type == gjson.String {
		cfg.BaseURL = paths.Combine(paths.DirOf(cfg.Path), baseURL.Str)
	}
	return cfg, nil
}

// ConfigFile exposes the declared file list to the rename.
func (c *Config) ConfigFile() *models.ConfigFile {
	if c == nil {
		return nil
	}
	return &models.ConfigFile{Path: c.Path, Files: c.Files}
}

// Sanitize blanks out comments and trailing commas so the result is plain
// JSON with every remaining byte at its original offset.
func Sanitize(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	inString := false
	lastSignificant := -1
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch {
		case inString:
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		case c == '"':
			inString = true
		case c == '/' && i+1 < len(out) && out[i+1] == '/':
			for ; i < len(out) && out[i] != '\n'; i++ {
				out[i] = ' '
			}
			continue
		case c == '/' && i+1 < len(out) && out[i+1] == '*':
			out[i], out[i+1] = ' ', ' '
			for i += 2; i < len(out); i++ {
				if out[i] == '*' && i+1 < len(out) && out[i+1] == '/' {
					out[i], out[i+1] = ' ', ' '
					i++
					break
				}
				if out[i] != '\n' {
					out[i] = ' '
				}
			}
			continue
		case c == '}' || c == ']':
			if lastSignificant >= 0 && out[lastSignificant] == ',' {
				out[lastSignificant] = ' '
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			continue
		}
		lastSignificant = i
	}
	return out
}
