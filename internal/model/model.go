// Package model provides shared data types used across multiple internal packages.
// This package exists to break import cycles between packages like runner and
// executor that need to share type definitions.
package model

import (
	"sort"
	"strings"
	"time"
)

// RunnerKind identifies a build backend. The set is closed: Make, Just, and
// Script. Script kinds additionally carry the script filename.
type RunnerKind struct {
	Backend Backend
	// Script is the script path (e.g. "./run.sh"); empty for Make and Just.
	Script string
}

// Backend is the backend family of a RunnerKind.
type Backend string

const (
	BackendMake   Backend = "make"
	BackendJust   Backend = "just"
	BackendScript Backend = "script"
)

// Make returns the RunnerKind for GNU Make.
func Make() RunnerKind { return RunnerKind{Backend: BackendMake} }

// Just returns the RunnerKind for the just command runner.
func Just() RunnerKind { return RunnerKind{Backend: BackendJust} }

// Script returns the RunnerKind for a custom script.
func Script(name string) RunnerKind {
	return RunnerKind{Backend: BackendScript, Script: name}
}

// Name returns the display name: "make", "just", or the script path.
func (k RunnerKind) Name() string {
	if k.Backend == BackendScript {
		return k.Script
	}
	return string(k.Backend)
}

// String returns "make", "just", or "script:<name>".
func (k RunnerKind) String() string {
	if k.Backend == BackendScript {
		return "script:" + k.Script
	}
	return string(k.Backend)
}

// Evidence records which marker files were found during detection.
type Evidence struct {
	MakefilePath string   `json:"makefile_path,omitempty"`
	JustfilePath string   `json:"justfile_path,omitempty"`
	Scripts      []string `json:"scripts,omitempty"`
}

// DetectionResult is the outcome of probing a directory for build backends.
// Detected, when non-nil, is always a member of Available and is the
// highest-priority backend with evidence.
type DetectionResult struct {
	Detected  *RunnerKind  `json:"detected,omitempty"`
	Available []RunnerKind `json:"available"`
	Evidence  Evidence     `json:"evidence"`
}

// TaskArgument describes a single task argument. Required is false whenever
// Default is non-empty or the argument is variadic.
type TaskArgument struct {
	Name        string `json:"name"`
	Required    bool   `json:"required"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
}

// TaskDescriptor describes a named task exposed by a backend. Names are
// unique within one discovery call.
type TaskDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Arguments   []TaskArgument `json:"arguments,omitempty"`
}

// SortTasks orders descriptors by name in place. Discovery strategies sort
// before returning so output is deterministic regardless of source ordering.
func SortTasks(tasks []TaskDescriptor) {
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })
}

// TaskNames extracts the names from a descriptor list.
func TaskNames(tasks []TaskDescriptor) []string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	return names
}

// ExecutionOptions configures a single task execution. The zero value runs in
// the current directory with no arguments, no timeout, and the default output
// cap.
type ExecutionOptions struct {
	// Dir is the working directory for the command.
	Dir string
	// Args holds named key=value arguments.
	Args map[string]string
	// Positional holds ordered positional arguments.
	Positional []string
	// Env holds environment variable overrides applied on top of the
	// inherited environment.
	Env map[string]string
	// Timeout bounds the whole execution; zero means no timeout.
	Timeout time.Duration
	// MaxOutput caps each captured stream in bytes; zero selects the default.
	MaxOutput int
}

// SortedArgKeys returns the named-argument keys in sorted order. Command
// rendering iterates in this order so output is deterministic.
func (o ExecutionOptions) SortedArgKeys() []string {
	keys := make([]string, 0, len(o.Args))
	for k := range o.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ExecutionResult is the outcome of running a task whose process was
// successfully spawned. Success reflects exit code zero; a nonzero exit is
// still a result, not an error.
type ExecutionResult struct {
	Success         bool          `json:"success"`
	ExitCode        *int          `json:"exit_code,omitempty"`
	Stdout          string        `json:"stdout"`
	StdoutTruncated bool          `json:"stdout_truncated,omitempty"`
	Stderr          string        `json:"stderr"`
	StderrTruncated bool          `json:"stderr_truncated,omitempty"`
	Duration        time.Duration `json:"-"`
	DurationMs      int64         `json:"duration_ms"`
	Command         string        `json:"command"`
}

// JoinCommand renders a program and its arguments as a display string.
func JoinCommand(program string, args []string) string {
	if len(args) == 0 {
		return program
	}
	return program + " " + strings.Join(args, " ")
}
