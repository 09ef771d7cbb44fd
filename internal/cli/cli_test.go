package cli

import (
	"testing"
)

func TestParseGlobalFlags(t *testing.T) {
	opts, remaining, err := parseGlobalFlags([]string{"-C", "/proj", "--config", "cfg.toml", "run", "build"})
	if err != nil {
		t.Fatalf("parseGlobalFlags failed: %v", err)
	}
	if opts.Dir != "/proj" {
		t.Errorf("unexpected dir: %q", opts.Dir)
	}
	if opts.ConfigPath != "cfg.toml" {
		t.Errorf("unexpected config path: %q", opts.ConfigPath)
	}
	if len(remaining) != 2 || remaining[0] != "run" || remaining[1] != "build" {
		t.Errorf("unexpected remaining args: %v", remaining)
	}
}

func TestParseGlobalFlagsEqualsForm(t *testing.T) {
	opts, _, err := parseGlobalFlags([]string{"--directory=/proj", "--config=cfg.yaml", "detect"})
	if err != nil {
		t.Fatalf("parseGlobalFlags failed: %v", err)
	}
	if opts.Dir != "/proj" || opts.ConfigPath != "cfg.yaml" {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestParseGlobalFlagsPassthrough(t *testing.T) {
	_, remaining, err := parseGlobalFlags([]string{"run", "test", "--", "-C", "--config"})
	if err != nil {
		t.Fatalf("parseGlobalFlags failed: %v", err)
	}
	// Flags after -- belong to the task, not taskhub.
	want := []string{"run", "test", "--", "-C", "--config"}
	if len(remaining) != len(want) {
		t.Fatalf("expected %v, got %v", want, remaining)
	}
	for i := range want {
		if remaining[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, remaining)
		}
	}
}

func TestParseGlobalFlagsMissingValue(t *testing.T) {
	if _, _, err := parseGlobalFlags([]string{"-C"}); err == nil {
		t.Fatal("expected error for missing -C value")
	}
	if _, _, err := parseGlobalFlags([]string{"--config"}); err == nil {
		t.Fatal("expected error for missing --config value")
	}
}
