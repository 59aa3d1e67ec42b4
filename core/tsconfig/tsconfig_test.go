package tsconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	src := `{
  // project settings
  "compilerOptions": {
    "baseUrl": "./src", /* resolved against this file */
  },
  "files": [
    "/p/old.ts",
    42,
    "src/a.ts",
    null,
    "src/b.ts",
  ]
}`
	cfg, err := Parse("/p/tsconfig.json", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "/p/tsconfig.json", cfg.Path)
	assert.Equal(t, "/p/src", cfg.BaseURL)
	require.Len(t, cfg.Files, 3)
	for _, entry := range cfg.Files {
		assert.Equal(t, entry.Text, src[entry.Range.Pos:entry.Range.End])
	}
	assert.Equal(t, "/p/old.ts", cfg.Files[0].Text)
	assert.Equal(t, "src/b.ts", cfg.Files[2].Text)

	file := cfg.ConfigFile()
	require.NotNil(t, file)
	assert.Equal(t, "/p/tsconfig.json", file.Path)
	assert.Len(t, file.Files, 3)
}

func TestParseWithoutFiles(t *testing.T) {
	cfg, err := Parse("/p/tsconfig.json", []byte(`{"files": "not-an-array", "include": ["src"]}`))
	require.NoError(t, err)
	assert.Empty(t, cfg.Files)
	assert.Empty(t, cfg.BaseURL)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("/p/tsconfig.json", []byte(`{"files": [`))
	assert.Error(t, err)
}

func TestSanitizeKeepsOffsets(t *testing.T) {
	src := []byte(`{"a": "http://x", /* c */ "b": [1, 2,], // tail
}`)
	out := Sanitize(src)
	assert.Len(t, out, len(src))
	assert.Equal(t, `{"a": "http://x",         "b": [1, 2 ]         `+"\n"+`}`, string(out))
}

func TestNilConfigFile(t *testing.T) {
	var cfg *Config
	assert.Nil(t, cfg.ConfigFile())
}
