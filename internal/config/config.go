// Package config provides configuration loading and validation for taskhub.
//
// The configuration file may be TOML (canonical), YAML, or JSON; the format
// is selected by file extension. A loaded Config is a plain value: callers
// that want runtime reloading own the sharing and locking themselves.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Defaults Defaults      `json:"defaults" toml:"defaults" yaml:"defaults"`
	Runners  RunnersConfig `json:"runners" toml:"runners" yaml:"runners"`
}

// Defaults holds settings applied to all projects.
type Defaults struct {
	// RunnerPriority is the backend detection order; first found wins.
	RunnerPriority []string `json:"runner_priority" toml:"runner_priority" yaml:"runner_priority"`
	// DefaultScript is the script used when a script backend is forced
	// without naming one.
	DefaultScript string `json:"default_script" toml:"default_script" yaml:"default_script"`
	// Timeout is the execution timeout in seconds applied when a run does
	// not override it.
	Timeout int64 `json:"timeout" toml:"timeout" yaml:"timeout"`
	// TaskAliases maps a canonical task name to backend-specific spellings.
	TaskAliases map[string][]string `json:"task_aliases,omitempty" toml:"task_aliases" yaml:"task_aliases"`
}

// RunnersConfig holds per-backend configuration.
type RunnersConfig struct {
	Make   MakeConfig   `json:"make" toml:"make" yaml:"make"`
	Just   JustConfig   `json:"just" toml:"just" yaml:"just"`
	Script ScriptConfig `json:"script" toml:"script" yaml:"script"`
}

// MakeConfig configures the Make backend.
type MakeConfig struct {
	// Command is the make executable to invoke.
	Command string `json:"command" toml:"command" yaml:"command"`
	// BuiltinVars extends the set of variable names excluded from implicit
	// argument discovery.
	BuiltinVars []string `json:"builtin_vars,omitempty" toml:"builtin_vars" yaml:"builtin_vars"`
}

// JustConfig configures the Just backend.
type JustConfig struct {
	// Command is the just executable to invoke.
	Command string `json:"command" toml:"command" yaml:"command"`
}

// ScriptConfig configures the Script backend.
type ScriptConfig struct {
	// Scripts are the candidate filenames probed during detection, in order.
	Scripts []string `json:"scripts" toml:"scripts" yaml:"scripts"`
	// Shell is the interpreter used to run scripts.
	Shell string `json:"shell" toml:"shell" yaml:"shell"`
}

// Load reads a configuration file, applies defaults, and validates the result
// against the embedded schema. The decoder is chosen by extension: .toml,
// .yaml/.yml, or .json.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configFileNames are probed in order when no config file is named explicitly.
var configFileNames = []string{
	"taskhub.toml",
	".taskhub.toml",
	"taskhub.yaml",
	"taskhub.yml",
	"taskhub.json",
}

// Discover loads the first config file found in dir, falling back to the
// built-in defaults when none exists.
func Discover(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return Load(path)
		}
	}
	return Default(), nil
}

// Default returns a fully-defaulted configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
