package runner

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	taskerrors "github.com/taskhub/taskhub/internal/errors"
	"github.com/taskhub/taskhub/internal/executor"
	"github.com/taskhub/taskhub/internal/model"
)

var (
	// Matches "Commands:" section headers in help output, case-insensitive.
	scriptSectionRe = regexp.MustCompile(`(?i)commands?:`)

	// Matches command lines in help output: "  name    description".
	scriptCmdLineRe = regexp.MustCompile(`^\s{2,4}([a-zA-Z_][a-zA-Z0-9_-]*)\s+(.*)$`)

	// Matches "  name - description" or "  name : description".
	scriptAltCmdRe = regexp.MustCompile(`^\s{2,4}([a-zA-Z_][a-zA-Z0-9_-]*)\s+[-:]?\s*(.*)$`)

	// Matches case labels: "  name)", "  'name')", "  \"name\")".
	scriptCaseRe = regexp.MustCompile(`^\s*["']?([a-zA-Z_][a-zA-Z0-9_-]*)["']?\s*\)`)

	// Matches function definitions: "name() {" or "function name()".
	scriptFuncRe = regexp.MustCompile(`^(?:function\s+)?([a-zA-Z_][a-zA-Z0-9_-]*)\s*\(\s*\)`)

	// Matches comment lines preceding a case label or function.
	scriptCommentRe = regexp.MustCompile(`^\s*#\s*(.*)$`)
)

// Stderr phrases shell scripts commonly print for an unknown subcommand.
var scriptNotFoundPhrases = []string{
	"Unknown command",
	"not a valid command",
	"Invalid command",
	"unrecognized command",
}

// Prose words that show up in the first column of help output but are never
// subcommands.
var commonHelpWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"into": true, "usage": true, "options": true, "arguments": true,
	"description": true, "example": true, "examples": true, "note": true,
	"notes": true, "see": true, "also": true, "more": true, "info": true,
}

// Function names that are script plumbing rather than user-facing commands.
var internalFuncNames = map[string]bool{
	"main": true, "usage": true, "help": true, "error": true, "log": true,
	"debug": true, "info": true, "warn": true, "die": true, "abort": true,
	"exit": true, "cleanup": true, "setup": true, "init": true, "check": true,
}

// ScriptRunner runs subcommands of an ad-hoc shell script like ./run.sh.
// Discovery first probes `<shell> <script> --help` and parses the help text;
// when that yields nothing it statically parses the script body for case
// labels and function definitions.
type ScriptRunner struct {
	script string
	shell  string
}

// NewScriptRunner creates a runner for the given script path. shell
// overrides the interpreter (default bash).
func NewScriptRunner(script, shell string) *ScriptRunner {
	if script == "" {
		script = "./run.sh"
	}
	if shell == "" {
		shell = "bash"
	}
	return &ScriptRunner{script: script, shell: shell}
}

func (r *ScriptRunner) Name() string { return r.script }

// findScript returns the script path relative to dir when it exists and is
// executable.
func (r *ScriptRunner) findScript(dir string) (string, bool) {
	name := strings.TrimPrefix(r.script, "./")
	if !isExecutableFile(filepath.Join(dir, name)) {
		return "", false
	}
	return "./" + name, true
}

func (r *ScriptRunner) ListTasks(ctx context.Context, dir string) ([]model.TaskDescriptor, error) {
	scriptPath, ok := r.findScript(dir)
	if !ok {
		return nil, taskerrors.NoBackendDetected(dir, nil)
	}

	tasks, err := r.listViaHelp(ctx, dir, scriptPath)
	if err != nil {
		log.Debug().Err(err).Msg("help probe failed, parsing script body")
	} else if len(tasks) > 0 {
		return tasks, nil
	} else {
		log.Debug().Msg("no commands found in help output, parsing script body")
	}

	return r.parseScriptBody(dir, scriptPath)
}

// listViaHelp runs the script with --help and parses the output. Scripts
// print help to either stream, so both are combined before parsing.
func (r *ScriptRunner) listViaHelp(ctx context.Context, dir, scriptPath string) ([]model.TaskDescriptor, error) {
	result, err := executor.Execute(ctx, r.shell, []string{scriptPath, "--help"}, model.ExecutionOptions{
		Dir:     dir,
		Timeout: probeTimeout,
	})
	if err != nil {
		return nil, err
	}
	return parseHelpOutput(result.Stdout + "\n" + result.Stderr), nil
}

// parseHelpOutput extracts subcommands from help text. A "Commands:" section
// is authoritative when present; otherwise any indented two-column line is a
// candidate, filtered against common prose words.
func parseHelpOutput(output string) []model.TaskDescriptor {
	var tasks []model.TaskDescriptor
	seen := make(map[string]bool)

	inSection := false
	for _, line := range strings.Split(output, "\n") {
		if scriptSectionRe.MatchString(line) {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		if strings.TrimSpace(line) == "" && len(tasks) > 0 {
			inSection = false
			continue
		}
		if caps := scriptCmdLineRe.FindStringSubmatch(line); caps != nil && !seen[caps[1]] {
			seen[caps[1]] = true
			tasks = append(tasks, model.TaskDescriptor{
				Name:        caps[1],
				Description: strings.TrimSpace(caps[2]),
			})
		}
	}

	if len(tasks) == 0 {
		for _, line := range strings.Split(output, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "-") {
				continue
			}
			caps := scriptAltCmdRe.FindStringSubmatch(line)
			if caps == nil || commonHelpWords[strings.ToLower(caps[1])] || seen[caps[1]] {
				continue
			}
			seen[caps[1]] = true
			tasks = append(tasks, model.TaskDescriptor{
				Name:        caps[1],
				Description: strings.TrimSpace(caps[2]),
			})
		}
	}

	model.SortTasks(tasks)
	return tasks
}

// parseScriptBody statically extracts subcommands from the script source:
// case labels in the dispatch switch and top-level function definitions,
// minus internal plumbing names. The comment line above a match becomes the
// description.
func (r *ScriptRunner) parseScriptBody(dir, scriptPath string) ([]model.TaskDescriptor, error) {
	lines, err := readLines(filepath.Join(dir, strings.TrimPrefix(scriptPath, "./")))
	if err != nil {
		return nil, err
	}

	var tasks []model.TaskDescriptor
	seen := make(map[string]bool)

	add := func(name, desc string) {
		if seen[name] {
			return
		}
		seen[name] = true
		tasks = append(tasks, model.TaskDescriptor{Name: name, Description: desc})
	}

	for i, line := range lines {
		desc := ""
		if i > 0 {
			if caps := scriptCommentRe.FindStringSubmatch(lines[i-1]); caps != nil {
				desc = strings.TrimSpace(caps[1])
			}
		}

		if caps := scriptCaseRe.FindStringSubmatch(line); caps != nil {
			name := caps[1]
			// A help case label after real commands is the usage fallback,
			// not a command.
			if !(name == "help" && len(tasks) > 0) {
				add(name, desc)
			}
		}

		if caps := scriptFuncRe.FindStringSubmatch(line); caps != nil {
			name := caps[1]
			if !strings.HasPrefix(name, "_") && !internalFuncNames[name] {
				add(name, desc)
			}
		}
	}

	model.SortTasks(tasks)
	return tasks, nil
}

func (r *ScriptRunner) RunTask(ctx context.Context, dir, task string, opts model.ExecutionOptions) (*model.ExecutionResult, error) {
	scriptPath, ok := r.findScript(dir)
	if !ok {
		return nil, taskerrors.NoBackendDetected(dir, nil)
	}

	args := []string{scriptPath, task}
	args = append(args, opts.Positional...)
	args = append(args, namedScriptArgs(opts)...)

	opts.Dir = dir
	result, err := executor.Execute(ctx, r.shell, args, opts)
	if err != nil {
		return nil, err
	}
	result.Command = r.BuildCommand(task, opts)

	if !result.Success && stderrMatches(result.Stderr, scriptNotFoundPhrases) {
		return nil, taskNotFound(ctx, r, dir, task, result.Command, result.Stderr)
	}
	return result, nil
}

func (r *ScriptRunner) BuildCommand(task string, opts model.ExecutionOptions) string {
	parts := []string{r.script, task}
	parts = append(parts, opts.Positional...)
	parts = append(parts, namedScriptArgs(opts)...)
	return strings.Join(parts, " ")
}

// namedScriptArgs renders named arguments as long flags: --key=value, or a
// bare --key when the value is empty.
func namedScriptArgs(opts model.ExecutionOptions) []string {
	var args []string
	for _, key := range opts.SortedArgKeys() {
		if value := opts.Args[key]; value == "" {
			args = append(args, "--"+key)
		} else {
			args = append(args, "--"+key+"="+opts.Args[key])
		}
	}
	return args
}
