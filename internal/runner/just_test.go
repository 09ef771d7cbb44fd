package runner

import (
	"context"
	"testing"

	"github.com/taskhub/taskhub/internal/model"
)

func TestJustParseDumpJSON(t *testing.T) {
	dump := `{
		"recipes": {
			"deploy": {
				"doc": "Deploy the application",
				"parameters": [
					{"name": "env", "default": "prod", "kind": "Singular"},
					{"name": "version", "kind": "Singular"},
					{"name": "flags", "kind": "Star"}
				]
			},
			"build": {
				"doc": null,
				"parameters": []
			}
		}
	}`

	tasks, err := parseDumpJSON(dump)
	if err != nil {
		t.Fatalf("parseDumpJSON failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 recipes, got %v", model.TaskNames(tasks))
	}
	if tasks[0].Name != "build" || tasks[1].Name != "deploy" {
		t.Errorf("expected sorted names, got %v", model.TaskNames(tasks))
	}

	deploy := tasks[1]
	if deploy.Description != "Deploy the application" {
		t.Errorf("unexpected description: %q", deploy.Description)
	}
	if len(deploy.Arguments) != 3 {
		t.Fatalf("expected 3 parameters, got %v", deploy.Arguments)
	}

	env := deploy.Arguments[0]
	if env.Name != "env" || env.Required || env.Default != "prod" {
		t.Errorf("defaulted parameter must be optional: %+v", env)
	}
	version := deploy.Arguments[1]
	if version.Name != "version" || !version.Required {
		t.Errorf("parameter without default must be required: %+v", version)
	}
	flags := deploy.Arguments[2]
	if flags.Name != "flags" || flags.Required {
		t.Errorf("variadic parameter must be optional: %+v", flags)
	}
}

func TestJustParseDumpJSONInvalid(t *testing.T) {
	if _, err := parseDumpJSON("not json at all {"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestJustParseRecipeArgs(t *testing.T) {
	tests := []struct {
		input string
		want  []model.TaskArgument
	}{
		{"", nil},
		{"target", []model.TaskArgument{{Name: "target", Required: true}}},
		{"target='release'", []model.TaskArgument{{Name: "target", Default: "release"}}},
		{"+files", []model.TaskArgument{{Name: "files"}}},
		{"*extra", []model.TaskArgument{{Name: "extra"}}},
		{
			"env version='1.0' +rest",
			[]model.TaskArgument{
				{Name: "env", Required: true},
				{Name: "version", Default: "1.0"},
				{Name: "rest"},
			},
		},
	}

	for _, tt := range tests {
		got := parseRecipeArgs(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.want, got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%q: arg %d: expected %+v, got %+v", tt.input, i, tt.want[i], got[i])
			}
		}
	}
}

func TestJustParseJustfile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "justfile", `# Build the project
build target='release':
    cargo build --{{target}}

# Run the test suite
test:
    cargo test

@quiet-task:
    echo silent

plain:
    echo plain
`, 0o644)

	runner := NewJustRunner("just")
	tasks, err := runner.parseJustfile(dir + "/justfile")
	if err != nil {
		t.Fatalf("parseJustfile failed: %v", err)
	}

	build := findTask(t, tasks, "build")
	if build.Description != "Build the project" {
		t.Errorf("unexpected description: %q", build.Description)
	}
	if len(build.Arguments) != 1 || build.Arguments[0].Default != "release" {
		t.Errorf("unexpected arguments: %+v", build.Arguments)
	}

	if desc := findTask(t, tasks, "test").Description; desc != "Run the test suite" {
		t.Errorf("unexpected description: %q", desc)
	}
	findTask(t, tasks, "quiet-task")
	if desc := findTask(t, tasks, "plain").Description; desc != "" {
		t.Errorf("expected no description, got %q", desc)
	}
}

func TestJustListTasksNoJustfile(t *testing.T) {
	runner := NewJustRunner("just")
	if _, err := runner.ListTasks(context.Background(), t.TempDir()); err == nil {
		t.Fatal("expected NoBackend error")
	}
}

func TestJustBuildCommand(t *testing.T) {
	runner := NewJustRunner("just")

	cmd := runner.BuildCommand("deploy", model.ExecutionOptions{
		Args:       map[string]string{"env": "prod"},
		Positional: []string{"extra"},
	})
	if cmd != "just deploy env=prod extra" {
		t.Errorf("unexpected command: %q", cmd)
	}

	custom := NewJustRunner("/opt/just")
	if cmd := custom.BuildCommand("build", model.ExecutionOptions{}); cmd != "/opt/just build" {
		t.Errorf("custom command not honored: %q", cmd)
	}
}
