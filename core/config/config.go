package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tristendillon/relocate/core/logger"
	"github.com/tristendillon/relocate/core/paths"
	"github.com/tristendillon/relocate/core/resolver"
)

// FileName is looked up in the project root.
const FileName = "relocate.yaml"

type Config struct {
	Project Project `yaml:"project"`
	Resolve Resolve `yaml:"resolve"`
	Output  Output  `yaml:"output"`
	Watch   Watch   `yaml:"watch"`
}

type Project struct {
	TSConfig string   `yaml:"tsconfig"`
	Exclude  []string `yaml:"exclude"`
	// CaseSensitive falls back to the host file system's behavior when unset.
	CaseSensitive *bool `yaml:"case_sensitive"`
}

type Resolve struct {
	Extensions []string `yaml:"extensions"`
}

type Output struct {
	Format string `yaml:"format"`
}

type Watch struct {
	Debounce time.Duration `yaml:"debounce"`
}

func Default() *Config {
	return &Config{
		Project: Project{
			TSConfig: "tsconfig.json",
			Exclude:  []string{"node_modules", ".git", "dist", "build"},
		},
		Resolve: Resolve{
			Extensions: append([]string(nil), resolver.DefaultExtensions...),
		},
		Output: Output{Format: "table"},
		Watch:  Watch{Debounce: 200 * time.Millisecond},
	}
}

// Load reads relocate.yaml from dir. A missing file yields Default().
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile reads the config at path. Fields the file leaves out keep their
// default values. A missing file yields Default().
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Debug("No config file found at %s, using default config", path)
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	logger.Debug("Config file found: %s", path)
	logger.Debug("Config: %+v", *cfg)

	return cfg, nil
}

// Validate rejects values the commands cannot act on.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "table", "json":
	default:
		return fmt.Errorf("output.format must be table or json, got %q", c.Output.Format)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// Policy returns the path comparison policy for the project.
func (c *Config) Policy() paths.Policy {
	if c.Project.CaseSensitive != nil {
		return paths.NewPolicy(*c.Project.CaseSensitive)
	}
	return paths.NewPolicy(hostCaseSensitive())
}

// hostCaseSensitive reports the usual default of the host's file system.
func hostCaseSensitive() bool {
	switch runtime.GOOS {
	case "windows", "darwin", "ios":
		return false
	}
	return true
}
