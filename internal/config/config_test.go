package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	want := []string{"make", "just", "script"}
	if len(cfg.Defaults.RunnerPriority) != 3 {
		t.Fatalf("expected priority %v, got %v", want, cfg.Defaults.RunnerPriority)
	}
	for i, backend := range want {
		if cfg.Defaults.RunnerPriority[i] != backend {
			t.Errorf("expected priority %v, got %v", want, cfg.Defaults.RunnerPriority)
			break
		}
	}
	if cfg.Defaults.Timeout != 300 {
		t.Errorf("expected default timeout 300, got %d", cfg.Defaults.Timeout)
	}
	if cfg.Defaults.DefaultScript != "./run.sh" {
		t.Errorf("unexpected default script: %q", cfg.Defaults.DefaultScript)
	}
	if cfg.Runners.Make.Command != "make" || cfg.Runners.Just.Command != "just" {
		t.Errorf("unexpected backend commands: %+v", cfg.Runners)
	}
	if cfg.Runners.Script.Shell != "bash" {
		t.Errorf("unexpected shell: %q", cfg.Runners.Script.Shell)
	}
	if len(cfg.Runners.Script.Scripts) != 3 {
		t.Errorf("unexpected script candidates: %v", cfg.Runners.Script.Scripts)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "taskhub.toml", `
[defaults]
runner_priority = ["just", "make"]
timeout = 60

[defaults.task_aliases]
build = ["build", "compile"]

[runners.make]
command = "gmake"
builtin_vars = ["GOFLAGS"]

[runners.script]
scripts = ["./do.sh"]
shell = "zsh"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Defaults.RunnerPriority[0] != "just" {
		t.Errorf("unexpected priority: %v", cfg.Defaults.RunnerPriority)
	}
	if cfg.Defaults.Timeout != 60 {
		t.Errorf("unexpected timeout: %d", cfg.Defaults.Timeout)
	}
	if got := cfg.Defaults.TaskAliases["build"]; len(got) != 2 || got[1] != "compile" {
		t.Errorf("unexpected aliases: %v", got)
	}
	if cfg.Runners.Make.Command != "gmake" {
		t.Errorf("unexpected make command: %q", cfg.Runners.Make.Command)
	}
	if len(cfg.Runners.Make.BuiltinVars) != 1 || cfg.Runners.Make.BuiltinVars[0] != "GOFLAGS" {
		t.Errorf("unexpected builtin vars: %v", cfg.Runners.Make.BuiltinVars)
	}
	if cfg.Runners.Script.Shell != "zsh" {
		t.Errorf("unexpected shell: %q", cfg.Runners.Script.Shell)
	}

	// Unset fields fall back to defaults.
	if cfg.Defaults.DefaultScript != "./run.sh" {
		t.Errorf("default not applied: %q", cfg.Defaults.DefaultScript)
	}
	if cfg.Runners.Just.Command != "just" {
		t.Errorf("default not applied: %q", cfg.Runners.Just.Command)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "taskhub.yaml", `
defaults:
  runner_priority: [script]
  timeout: 10
runners:
  just:
    command: /opt/just
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Defaults.RunnerPriority) != 1 || cfg.Defaults.RunnerPriority[0] != "script" {
		t.Errorf("unexpected priority: %v", cfg.Defaults.RunnerPriority)
	}
	if cfg.Runners.Just.Command != "/opt/just" {
		t.Errorf("unexpected just command: %q", cfg.Runners.Just.Command)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "taskhub.json", `{
  "defaults": {"timeout": 5},
  "runners": {"script": {"shell": "sh"}}
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Defaults.Timeout != 5 {
		t.Errorf("unexpected timeout: %d", cfg.Defaults.Timeout)
	}
	if cfg.Runners.Script.Shell != "sh" {
		t.Errorf("unexpected shell: %q", cfg.Runners.Script.Shell)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "taskhub.ini", "[defaults]\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRejectsInvalidPriority(t *testing.T) {
	path := writeConfig(t, "taskhub.toml", `
[defaults]
runner_priority = ["cargo"]
`)
	if _, err := Load(path); err == nil {
		t.Fatal("schema should reject unknown backend names")
	}
}

func TestLoadRejectsNegativeTimeout(t *testing.T) {
	path := writeConfig(t, "taskhub.toml", `
[defaults]
timeout = -1
`)
	if _, err := Load(path); err == nil {
		t.Fatal("schema should reject negative timeouts")
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()

	// No config file: defaults.
	cfg, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if cfg.Defaults.Timeout != 300 {
		t.Errorf("expected defaults, got timeout %d", cfg.Defaults.Timeout)
	}

	if err := os.WriteFile(filepath.Join(dir, "taskhub.toml"), []byte("[defaults]\ntimeout = 42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Discover(dir)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if cfg.Defaults.Timeout != 42 {
		t.Errorf("expected discovered config, got timeout %d", cfg.Defaults.Timeout)
	}
}

func TestValidateDefaultConfig(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}
