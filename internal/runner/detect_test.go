package runner

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/taskhub/taskhub/internal/config"
	"github.com/taskhub/taskhub/internal/model"
)

func writeFile(t *testing.T, dir, name, content string, mode os.FileMode) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), mode); err != nil {
		t.Fatal(err)
	}
}

func TestDetectEmptyDir(t *testing.T) {
	result := Detect(t.TempDir(), config.Default())

	if result.Detected != nil {
		t.Errorf("expected no detection, got %v", result.Detected)
	}
	if len(result.Available) != 0 {
		t.Errorf("expected no available backends, got %v", result.Available)
	}
}

func TestDetectMakefile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Makefile", "build:\n", 0o644)

	result := Detect(dir, config.Default())

	if result.Detected == nil || result.Detected.Backend != model.BackendMake {
		t.Fatalf("expected make, got %v", result.Detected)
	}
	if result.Evidence.MakefilePath != "Makefile" {
		t.Errorf("unexpected evidence path: %q", result.Evidence.MakefilePath)
	}
}

func TestDetectMakefileVariants(t *testing.T) {
	for _, name := range []string{"Makefile", "makefile", "GNUmakefile"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, name, "build:\n", 0o644)

			result := Detect(dir, config.Default())
			if result.Evidence.MakefilePath != name {
				t.Errorf("expected evidence %q, got %q", name, result.Evidence.MakefilePath)
			}
		})
	}
}

func TestDetectJustfileVariants(t *testing.T) {
	for _, name := range []string{"justfile", "Justfile", ".justfile"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, name, "build:\n", 0o644)

			result := Detect(dir, config.Default())
			if result.Detected == nil || result.Detected.Backend != model.BackendJust {
				t.Fatalf("expected just, got %v", result.Detected)
			}
			if result.Evidence.JustfilePath != name {
				t.Errorf("expected evidence %q, got %q", name, result.Evidence.JustfilePath)
			}
		})
	}
}

func TestDetectPriorityOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Makefile", "build:\n", 0o644)
	writeFile(t, dir, "justfile", "build:\n", 0o644)

	cfg := config.Default()
	result := Detect(dir, cfg)
	if result.Detected == nil || result.Detected.Backend != model.BackendMake {
		t.Errorf("default priority should detect make, got %v", result.Detected)
	}
	if len(result.Available) != 2 {
		t.Errorf("expected 2 available backends, got %v", result.Available)
	}

	cfg.Defaults.RunnerPriority = []string{"just", "make"}
	result = Detect(dir, cfg)
	if result.Detected == nil || result.Detected.Backend != model.BackendJust {
		t.Errorf("just-first priority should detect just, got %v", result.Detected)
	}
}

func TestDetectedIsMemberOfAvailable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Makefile", "build:\n", 0o644)
	writeFile(t, dir, "justfile", "build:\n", 0o644)
	writeFile(t, dir, "run.sh", "#!/bin/sh\n", 0o755)

	priorities := [][]string{
		{"make", "just", "script"},
		{"just", "script", "make"},
		{"script", "make", "just"},
		{"script"},
		{"just"},
	}
	for _, priority := range priorities {
		cfg := config.Default()
		cfg.Defaults.RunnerPriority = priority

		result := Detect(dir, cfg)
		if result.Detected == nil {
			t.Fatalf("priority %v: expected a detection", priority)
		}
		found := false
		for _, k := range result.Available {
			if k == *result.Detected {
				found = true
			}
		}
		if !found {
			t.Errorf("priority %v: detected %v not in available %v", priority, result.Detected, result.Available)
		}
		if result.Available[0] != *result.Detected {
			t.Errorf("priority %v: detected %v is not the highest-priority match", priority, result.Detected)
		}
	}
}

func TestDetectScriptRequiresExecutableBit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit is a Unix concept")
	}

	dir := t.TempDir()
	writeFile(t, dir, "run.sh", "#!/bin/sh\n", 0o644)

	result := Detect(dir, config.Default())
	if result.Detected != nil {
		t.Errorf("non-executable script should not be detected, got %v", result.Detected)
	}

	if err := os.Chmod(filepath.Join(dir, "run.sh"), 0o755); err != nil {
		t.Fatal(err)
	}
	result = Detect(dir, config.Default())
	if result.Detected == nil || result.Detected.Backend != model.BackendScript {
		t.Fatalf("executable script should be detected, got %v", result.Detected)
	}
	if result.Detected.Script != "./run.sh" {
		t.Errorf("unexpected script path: %q", result.Detected.Script)
	}
}

func TestDetectMultipleScripts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "run.sh", "#!/bin/sh\n", 0o755)
	writeFile(t, dir, "build.sh", "#!/bin/sh\n", 0o755)

	result := Detect(dir, config.Default())
	if len(result.Evidence.Scripts) != 2 {
		t.Fatalf("expected 2 scripts, got %v", result.Evidence.Scripts)
	}
	// Configured script order decides which one wins.
	if result.Detected == nil || result.Detected.Script != "./run.sh" {
		t.Errorf("expected ./run.sh detected, got %v", result.Detected)
	}
}

func TestDetectSkipsUnknownPriorityEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Makefile", "build:\n", 0o644)

	cfg := config.Default()
	cfg.Defaults.RunnerPriority = []string{"cargo", "make"}

	result := Detect(dir, cfg)
	if result.Detected == nil || result.Detected.Backend != model.BackendMake {
		t.Errorf("unknown entries should be skipped, got %v", result.Detected)
	}
}

func TestForDetectionNoBackend(t *testing.T) {
	_, _, err := ForDetection(t.TempDir(), config.Default())
	if err == nil {
		t.Fatal("expected NoBackend error")
	}
}

func TestForKindSelectsBackend(t *testing.T) {
	cfg := config.Default()

	if name := ForKind(model.Make(), cfg).Name(); name != "make" {
		t.Errorf("unexpected make runner name: %q", name)
	}
	if name := ForKind(model.Just(), cfg).Name(); name != "just" {
		t.Errorf("unexpected just runner name: %q", name)
	}
	if name := ForKind(model.Script("./task.sh"), cfg).Name(); name != "./task.sh" {
		t.Errorf("unexpected script runner name: %q", name)
	}
}
