// Package errors provides structured error types and exit codes for taskhub.
package errors

import (
	"fmt"
	"time"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess          = 0 // Success
	ExitRuntimeError     = 1 // Runtime error (task failed, timeout, etc.)
	ExitConfigError      = 2 // Configuration error (invalid config, bad flags)
	ExitEnvironmentError = 3 // Environment error (missing binary, no backend)
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNoBackend
	KindTaskNotFound
	KindSpawnFailed
	KindTimeout
	KindEnvironment
)

// TaskError is the base error type for taskhub. It carries enough context
// (backend name, rendered command, stderr excerpt, live task list) for a
// presentation layer to produce an actionable message without re-deriving it.
type TaskError struct {
	Kind       ErrorKind
	Message    string
	Runner     string   // Backend name if applicable
	Command    string   // Rendered command if applicable
	Task       string   // Task name if applicable
	Stderr     string   // Captured stderr excerpt if applicable
	ExitCode   *int     // Process exit code if applicable
	Available  []string // Known task or backend names if applicable
	Suggestion string   // Best-effort fix hint
	Cause      error    // Underlying error
}

func (e *TaskError) Error() string {
	if e.Runner != "" && e.Task != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Runner, e.Task, e.Message)
	}
	if e.Runner != "" {
		return fmt.Sprintf("[%s] %s", e.Runner, e.Message)
	}
	return e.Message
}

func (e *TaskError) Unwrap() error {
	return e.Cause
}

// ExitCodeFor returns the appropriate exit code for this error.
func (e *TaskError) ExitCodeFor() int {
	switch e.Kind {
	case KindConfig:
		return ExitConfigError
	case KindNoBackend, KindSpawnFailed, KindEnvironment:
		return ExitEnvironmentError
	default:
		return ExitRuntimeError
	}
}

// New creates a new runtime error.
func New(message string) *TaskError {
	return &TaskError{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *TaskError {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *TaskError {
	return &TaskError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *TaskError {
	return Config(fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *TaskError {
	return &TaskError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// NoBackendDetected reports that no configured backend left evidence in dir.
func NoBackendDetected(dir string, available []string) *TaskError {
	return &TaskError{
		Kind:       KindNoBackend,
		Message:    fmt.Sprintf("no build system detected in %s", dir),
		Available:  available,
		Suggestion: "Add a Makefile, justfile, or run.sh to the project",
	}
}

// TaskNotFound reports that a backend explicitly rejected a task name.
// The available list is recomputed by the caller immediately before
// constructing the error, never served from a stale snapshot.
func TaskNotFound(runner, task string, available []string, suggestion string) *TaskError {
	return &TaskError{
		Kind:       KindTaskNotFound,
		Message:    fmt.Sprintf("task %q not found", task),
		Runner:     runner,
		Task:       task,
		Available:  available,
		Suggestion: suggestion,
	}
}

// SpawnFailed reports that process creation itself failed.
func SpawnFailed(command string, cause error) *TaskError {
	return &TaskError{
		Kind:       KindSpawnFailed,
		Message:    fmt.Sprintf("failed to spawn command: %s", command),
		Command:    command,
		Cause:      cause,
		Suggestion: fmt.Sprintf("Check if the command exists: %v", cause),
	}
}

// Timeout reports that a command exceeded its deadline. No ExecutionResult is
// produced; output captured before expiry is discarded.
func Timeout(command string, timeout time.Duration) *TaskError {
	return &TaskError{
		Kind:       KindTimeout,
		Message:    fmt.Sprintf("command timed out after %s: %s", timeout, command),
		Command:    command,
		Suggestion: "Try increasing the timeout or checking if the command hangs",
	}
}

// IsTimeout reports whether err is a timeout error.
func IsTimeout(err error) bool {
	te, ok := err.(*TaskError)
	return ok && te.Kind == KindTimeout
}

// IsTaskNotFound reports whether err is a task-not-found error.
func IsTaskNotFound(err error) bool {
	te, ok := err.(*TaskError)
	return ok && te.Kind == KindTaskNotFound
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if te, ok := err.(*TaskError); ok {
		return te.ExitCodeFor()
	}
	return ExitRuntimeError
}
