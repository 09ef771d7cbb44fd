// Package runner abstracts build backends (Make, Just, custom scripts)
// behind a single Runner interface. Detection finds backend evidence in a
// directory, the factory instantiates the matching runner, and each runner
// implements task discovery with ordered fallback strategies plus execution
// through the executor package.
package runner

import (
	"context"
	"strings"
	"time"

	"github.com/taskhub/taskhub/internal/config"
	taskerrors "github.com/taskhub/taskhub/internal/errors"
	"github.com/taskhub/taskhub/internal/model"
)

// probeTimeout bounds discovery subprocesses (help probes, database dumps)
// so a hanging script cannot stall task listing.
const probeTimeout = 10 * time.Second

// Runner is a build backend. Implementations are stateless aside from
// configuration captured at construction; every call re-reads the project
// directory, so discovery results are never stale.
type Runner interface {
	// Name returns the display name: "make", "just", or the script path.
	Name() string

	// ListTasks discovers the tasks the backend exposes in dir, sorted by
	// name with unique names.
	ListTasks(ctx context.Context, dir string) ([]model.TaskDescriptor, error)

	// RunTask executes a task. A nonzero exit is reported through the
	// result, not an error; errors mean the task could not be run at all.
	RunTask(ctx context.Context, dir, task string, opts model.ExecutionOptions) (*model.ExecutionResult, error)

	// BuildCommand renders the command line RunTask would execute, for
	// display. Named arguments appear in sorted key order.
	BuildCommand(task string, opts model.ExecutionOptions) string
}

// ForKind returns the runner for a backend kind using command overrides
// from cfg.
func ForKind(kind model.RunnerKind, cfg *config.Config) Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	switch kind.Backend {
	case model.BackendJust:
		return NewJustRunner(cfg.Runners.Just.Command)
	case model.BackendScript:
		return NewScriptRunner(kind.Script, cfg.Runners.Script.Shell)
	default:
		return NewMakeRunner(cfg.Runners.Make.Command, cfg.Runners.Make.BuiltinVars)
	}
}

// ForDetection detects the backend in dir and returns its runner. Returns a
// NoBackend error when no configured backend left evidence.
func ForDetection(dir string, cfg *config.Config) (Runner, model.DetectionResult, error) {
	result := Detect(dir, cfg)
	if result.Detected == nil {
		names := make([]string, len(result.Available))
		for i, k := range result.Available {
			names[i] = k.Name()
		}
		return nil, result, taskerrors.NoBackendDetected(dir, names)
	}
	return ForKind(*result.Detected, cfg), result, nil
}

// stderrMatches reports whether stderr contains any of the phrases a backend
// prints when it rejects a task name.
func stderrMatches(stderr string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(stderr, p) {
			return true
		}
	}
	return false
}

// taskNotFound re-runs discovery and builds a TaskNotFound error carrying
// the fresh task list, never a stale snapshot.
func taskNotFound(ctx context.Context, r Runner, dir, task, command, stderr string) error {
	tasks, err := r.ListTasks(ctx, dir)
	if err != nil {
		tasks = nil
	}
	return taskerrors.TaskNotFound(r.Name(), task, model.TaskNames(tasks), taskerrors.Suggest(command, stderr))
}
