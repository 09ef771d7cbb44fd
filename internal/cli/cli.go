// Package cli provides command-line interface functionality for taskhub.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/taskhub/taskhub/internal/config"
	"github.com/taskhub/taskhub/internal/errors"
	"github.com/taskhub/taskhub/internal/output"
)

// Version is set at build time.
var Version = "dev"

var out = output.New()

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return errors.ExitSuccess
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return errors.ExitSuccess
	case "--version", "version":
		fmt.Printf("taskhub %s\n", Version)
		return errors.ExitSuccess
	}

	opts, remaining, err := parseGlobalFlags(args)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}

	if len(remaining) == 0 {
		printUsage()
		return errors.ExitSuccess
	}
	cmd := remaining[0]
	cmdArgs := remaining[1:]

	cfg, err := loadConfig(opts)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	// Interrupt cancels the context so a running task is killed and reaped
	// before the CLI exits.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case "detect":
		return cmdDetect(opts, cfg)
	case "tasks", "list":
		return cmdTasks(ctx, cmdArgs, opts, cfg)
	case "run":
		return cmdRun(ctx, cmdArgs, opts, cfg)
	case "config":
		return cmdConfig(cfg)
	default:
		out.ErrorPrefix("unknown command %q", cmd)
		out.Hint("did you mean 'taskhub run %s'?", cmd)
		return errors.ExitConfigError
	}
}

// GlobalOptions holds parsed global flags.
type GlobalOptions struct {
	Dir        string
	ConfigPath string
	Quiet      bool
}

// parseGlobalFlags manually parses global flags from arguments.
//
// Manual parsing is used instead of the stdlib flag package because flags may
// appear anywhere in the argument list and everything after -- must be
// preserved verbatim for the task.
func parseGlobalFlags(args []string) (*GlobalOptions, []string, error) {
	opts := &GlobalOptions{Dir: "."}
	var remaining []string

	i := 0
	for i < len(args) {
		arg := args[i]

		switch {
		case arg == "-C" || arg == "--directory":
			if i+1 >= len(args) {
				return nil, nil, fmt.Errorf("%s requires a value", arg)
			}
			opts.Dir = args[i+1]
			i += 2
		case strings.HasPrefix(arg, "--directory="):
			opts.Dir = strings.TrimPrefix(arg, "--directory=")
			i++
		case arg == "--config":
			if i+1 >= len(args) {
				return nil, nil, fmt.Errorf("--config requires a value")
			}
			opts.ConfigPath = args[i+1]
			i += 2
		case strings.HasPrefix(arg, "--config="):
			opts.ConfigPath = strings.TrimPrefix(arg, "--config=")
			i++
		case arg == "-q" || arg == "--quiet":
			opts.Quiet = true
			i++
		case arg == "--":
			// Everything after -- is passed through to the task.
			remaining = append(remaining, args[i:]...)
			i = len(args)
		default:
			remaining = append(remaining, arg)
			i++
		}
	}

	out.SetQuiet(opts.Quiet)

	return opts, remaining, nil
}

func loadConfig(opts *GlobalOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}
	return config.Discover(opts.Dir)
}

func printUsage() {
	w := output.New()

	w.HelpTitle("taskhub - unified task runner for Make, Just, and shell scripts")

	w.HelpSection("Usage:")
	w.HelpUsage("taskhub [-C dir] [--config file] <command> [args]")

	w.HelpSection("Commands:")
	w.HelpCommand("detect", "Show which build system the project uses", 22)
	w.HelpCommand("tasks", "List tasks exposed by the detected backend", 22)
	w.HelpCommand("run <task> [k=v ...]", "Execute a task with optional arguments", 22)
	w.HelpCommand("config", "Print the effective configuration", 22)
	w.HelpCommand("version", "Show version information", 22)

	w.HelpSection("Run Flags:")
	w.HelpFlag("--runner <backend>", "Force a backend: make, just, script[:path]", 20)
	w.HelpFlag("--timeout <seconds>", "Override the execution timeout", 20)
	w.HelpFlag("--env K=V", "Set an environment variable (repeatable)", 20)

	w.HelpSection("Global Flags:")
	w.HelpFlag("-C, --directory <dir>", "Project directory (default .)", 21)
	w.HelpFlag("--config <file>", "Config file (default: discover taskhub.toml)", 21)
	w.HelpFlag("-q, --quiet", "Minimal output (errors only)", 21)
	w.HelpFlag("-h, --help", "Show this help", 21)

	w.HelpSection("Examples:")
	w.HelpExample("taskhub detect", "Show the detected build system")
	w.HelpExample("taskhub tasks", "List available tasks")
	w.HelpExample("taskhub run build TARGET=release", "Run make build TARGET=release")
	w.HelpExample("taskhub run test -- -v ./...", "Pass positional args through")
	w.HelpExample("taskhub run deploy --runner just env=prod", "Force the just backend")
	w.Println("")
}
