package model

import (
	"testing"
	"time"
)

func TestRunnerKindNames(t *testing.T) {
	tests := []struct {
		kind    RunnerKind
		name    string
		display string
	}{
		{Make(), "make", "make"},
		{Just(), "just", "just"},
		{Script("./run.sh"), "./run.sh", "script:./run.sh"},
	}

	for _, tt := range tests {
		if got := tt.kind.Name(); got != tt.name {
			t.Errorf("Name() = %q, want %q", got, tt.name)
		}
		if got := tt.kind.String(); got != tt.display {
			t.Errorf("String() = %q, want %q", got, tt.display)
		}
	}
}

func TestSortTasks(t *testing.T) {
	tasks := []TaskDescriptor{{Name: "test"}, {Name: "build"}, {Name: "clean"}}
	SortTasks(tasks)

	names := TaskNames(tasks)
	want := []string{"build", "clean", "test"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestSortedArgKeys(t *testing.T) {
	opts := ExecutionOptions{
		Args: map[string]string{"ZED": "1", "ALPHA": "2", "MID": "3"},
	}

	keys := opts.SortedArgKeys()
	want := []string{"ALPHA", "MID", "ZED"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keys)
		}
	}

	if keys := (ExecutionOptions{}).SortedArgKeys(); len(keys) != 0 {
		t.Errorf("expected no keys, got %v", keys)
	}
}

func TestJoinCommand(t *testing.T) {
	if got := JoinCommand("make", nil); got != "make" {
		t.Errorf("unexpected command: %q", got)
	}
	if got := JoinCommand("make", []string{"build", "TARGET=release"}); got != "make build TARGET=release" {
		t.Errorf("unexpected command: %q", got)
	}
}

func TestExecutionOptionsZeroValue(t *testing.T) {
	var opts ExecutionOptions
	if opts.Timeout != time.Duration(0) || opts.MaxOutput != 0 || opts.Dir != "" {
		t.Errorf("zero value should be all-defaults: %+v", opts)
	}
}
