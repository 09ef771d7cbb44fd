package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/taskhub/taskhub/internal/config"
	"github.com/taskhub/taskhub/internal/errors"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/output"
	"github.com/taskhub/taskhub/internal/runner"
)

// cmdDetect prints the detection result for the project directory.
func cmdDetect(opts *GlobalOptions, cfg *config.Config) int {
	result := runner.Detect(opts.Dir, cfg)
	out.Detection(opts.Dir, result)
	return errors.ExitSuccess
}

// cmdTasks lists the tasks of the detected (or forced) backend.
func cmdTasks(ctx context.Context, args []string, opts *GlobalOptions, cfg *config.Config) int {
	forced, args, err := extractRunnerFlag(args, cfg)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}
	if len(args) > 0 {
		out.ErrorPrefix("unexpected argument %q", args[0])
		return errors.ExitConfigError
	}

	r, kind, code := selectRunner(forced, opts, cfg)
	if code != errors.ExitSuccess {
		return code
	}

	tasks, err := r.ListTasks(ctx, opts.Dir)
	if err != nil {
		return printTaskError(err)
	}

	out.Info("%s tasks:", output.BackendTitle(kind))
	out.Println("")
	out.TaskTable(tasks)
	return errors.ExitSuccess
}

// runFlags holds flags accepted by the run command.
type runFlags struct {
	forced  *model.RunnerKind
	timeout *time.Duration
	env     map[string]string
	task    string
	args    map[string]string
	pos     []string
}

// cmdRun executes a task and exits with its status.
func cmdRun(ctx context.Context, args []string, opts *GlobalOptions, cfg *config.Config) int {
	flags, err := parseRunArgs(args, cfg)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}
	if flags.task == "" {
		out.ErrorPrefix("run requires a task name")
		out.Hint("usage: taskhub run <task> [key=value ...] [-- positional ...]")
		return errors.ExitConfigError
	}

	r, _, code := selectRunner(flags.forced, opts, cfg)
	if code != errors.ExitSuccess {
		return code
	}

	task := resolveAlias(ctx, r, opts.Dir, cfg, flags.task)

	execOpts := model.ExecutionOptions{
		Args:       flags.args,
		Positional: flags.pos,
		Env:        flags.env,
		Timeout:    time.Duration(cfg.Defaults.Timeout) * time.Second,
	}
	if flags.timeout != nil {
		execOpts.Timeout = *flags.timeout
	}

	out.RunHeader(r.BuildCommand(task, execOpts))

	result, err := r.RunTask(ctx, opts.Dir, task, execOpts)
	if err != nil {
		return printTaskError(err)
	}

	out.RunResult(result)
	if result.Success {
		return errors.ExitSuccess
	}
	// Propagate the task's own exit code so wrapping taskhub in scripts
	// behaves like calling the backend directly.
	if result.ExitCode != nil && *result.ExitCode > 0 {
		return *result.ExitCode
	}
	return errors.ExitRuntimeError
}

// cmdConfig prints the effective configuration as TOML.
func cmdConfig(cfg *config.Config) int {
	if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
		out.ErrorPrefix("failed to encode config: %v", err)
		return errors.ExitRuntimeError
	}
	return errors.ExitSuccess
}

// parseRunArgs parses the run command's arguments: flags, the task name,
// key=value task arguments, and positional arguments after --.
func parseRunArgs(args []string, cfg *config.Config) (*runFlags, error) {
	flags := &runFlags{
		args: map[string]string{},
		env:  map[string]string{},
	}

	i := 0
	for i < len(args) {
		arg := args[i]

		switch {
		case arg == "--":
			flags.pos = append(flags.pos, args[i+1:]...)
			i = len(args)
		case arg == "--runner" || strings.HasPrefix(arg, "--runner="):
			value, n, err := flagValue(args, i, "--runner")
			if err != nil {
				return nil, err
			}
			kind, err := parseRunnerKind(value, cfg)
			if err != nil {
				return nil, err
			}
			flags.forced = &kind
			i += n
		case arg == "--timeout" || strings.HasPrefix(arg, "--timeout="):
			value, n, err := flagValue(args, i, "--timeout")
			if err != nil {
				return nil, err
			}
			secs, err := strconv.ParseInt(value, 10, 64)
			if err != nil || secs < 0 {
				return nil, fmt.Errorf("invalid --timeout value %q", value)
			}
			d := time.Duration(secs) * time.Second
			flags.timeout = &d
			i += n
		case arg == "--env" || strings.HasPrefix(arg, "--env="):
			value, n, err := flagValue(args, i, "--env")
			if err != nil {
				return nil, err
			}
			key, val, ok := strings.Cut(value, "=")
			if !ok || key == "" {
				return nil, fmt.Errorf("--env requires K=V, got %q", value)
			}
			flags.env[key] = val
			i += n
		case flags.task == "":
			flags.task = arg
			i++
		default:
			if key, val, ok := strings.Cut(arg, "="); ok && key != "" {
				flags.args[key] = val
			} else {
				flags.pos = append(flags.pos, arg)
			}
			i++
		}
	}

	return flags, nil
}

// flagValue reads a flag's value from either "--flag=value" or "--flag value"
// form, returning the value and how many arguments were consumed.
func flagValue(args []string, i int, name string) (string, int, error) {
	if value, ok := strings.CutPrefix(args[i], name+"="); ok {
		return value, 1, nil
	}
	if i+1 >= len(args) {
		return "", 0, fmt.Errorf("%s requires a value", name)
	}
	return args[i+1], 2, nil
}

// extractRunnerFlag pulls a --runner flag out of args, leaving the rest.
func extractRunnerFlag(args []string, cfg *config.Config) (*model.RunnerKind, []string, error) {
	var forced *model.RunnerKind
	var rest []string

	i := 0
	for i < len(args) {
		if args[i] == "--runner" || strings.HasPrefix(args[i], "--runner=") {
			value, n, err := flagValue(args, i, "--runner")
			if err != nil {
				return nil, nil, err
			}
			kind, err := parseRunnerKind(value, cfg)
			if err != nil {
				return nil, nil, err
			}
			forced = &kind
			i += n
			continue
		}
		rest = append(rest, args[i])
		i++
	}
	return forced, rest, nil
}

// parseRunnerKind parses a --runner value: "make", "just", "script",
// "script:<path>", or a bare script path.
func parseRunnerKind(value string, cfg *config.Config) (model.RunnerKind, error) {
	switch {
	case value == "make":
		return model.Make(), nil
	case value == "just":
		return model.Just(), nil
	case value == "script":
		return model.Script(cfg.Defaults.DefaultScript), nil
	case strings.HasPrefix(value, "script:"):
		return model.Script(strings.TrimPrefix(value, "script:")), nil
	case strings.HasPrefix(value, "./"):
		return model.Script(value), nil
	default:
		return model.RunnerKind{}, fmt.Errorf("invalid --runner value %q (expected make, just, or script[:path])", value)
	}
}

// selectRunner resolves the forced or detected backend.
func selectRunner(forced *model.RunnerKind, opts *GlobalOptions, cfg *config.Config) (runner.Runner, model.RunnerKind, int) {
	if forced != nil {
		return runner.ForKind(*forced, cfg), *forced, errors.ExitSuccess
	}

	r, detection, err := runner.ForDetection(opts.Dir, cfg)
	if err != nil {
		return nil, model.RunnerKind{}, printTaskError(err)
	}
	return r, *detection.Detected, errors.ExitSuccess
}

// resolveAlias maps a configured task alias to the first spelling the
// backend actually exposes. Unknown aliases and discovery failures leave the
// name untouched; the backend will report it if it does not exist.
func resolveAlias(ctx context.Context, r runner.Runner, dir string, cfg *config.Config, task string) string {
	candidates, ok := cfg.Defaults.TaskAliases[task]
	if !ok || len(candidates) == 0 {
		return task
	}

	tasks, err := r.ListTasks(ctx, dir)
	if err != nil {
		return task
	}
	known := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		known[t.Name] = true
	}
	for _, candidate := range candidates {
		if known[candidate] {
			return candidate
		}
	}
	return task
}

// printTaskError renders an error with its context and returns the exit code.
func printTaskError(err error) int {
	out.ErrorPrefix("%v", err)

	if taskErr, ok := err.(*errors.TaskError); ok {
		if len(taskErr.Available) > 0 {
			out.Errorln("")
			out.Errorln("Available tasks:")
			for _, name := range taskErr.Available {
				out.Errorln("  - %s", name)
			}
		}
		if taskErr.Suggestion != "" {
			out.Hint("hint: %s", taskErr.Suggestion)
		}
	}

	return errors.GetExitCode(err)
}
