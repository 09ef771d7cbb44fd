package runner

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	taskerrors "github.com/taskhub/taskhub/internal/errors"
	"github.com/taskhub/taskhub/internal/executor"
	"github.com/taskhub/taskhub/internal/model"
)

var (
	// Matches target definitions: "name:".
	makeTargetRe = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_-]*)\s*:`)

	// Matches "## description" or "# target: description" comment lines.
	makeCommentRe = regexp.MustCompile(`^##\s*(.+)$|^#\s*([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*(.+)$`)

	// Matches variable references in recipes: $(VAR) or ${VAR}.
	makeVarRe = regexp.MustCompile(`\$[({]([A-Z_][A-Z0-9_]*)[)}]`)
)

// Variables make defines itself or inherits from the environment; recipe
// references to these are not task arguments.
var builtinMakeVars = map[string]bool{
	"MAKE": true, "MAKEFLAGS": true, "MAKEFILES": true, "MAKELEVEL": true,
	"MAKECMDGOALS": true, "CURDIR": true, "SHELL": true, "PATH": true,
	"HOME": true, "USER": true, "CC": true, "CXX": true, "CFLAGS": true,
	"CXXFLAGS": true, "LDFLAGS": true, "AR": true, "RM": true, "ARFLAGS": true,
}

// MakeRunner runs targets through GNU Make. Task discovery parses the
// makefile directly for targets, descriptions, and variable arguments, and
// falls back to make's database dump when direct parsing finds nothing.
type MakeRunner struct {
	command     string
	builtinVars map[string]bool
}

// NewMakeRunner creates a Make runner. command overrides the make binary;
// extraBuiltins extends the built-in variable stoplist.
func NewMakeRunner(command string, extraBuiltins []string) *MakeRunner {
	if command == "" {
		command = "make"
	}
	builtins := make(map[string]bool, len(builtinMakeVars)+len(extraBuiltins))
	for v := range builtinMakeVars {
		builtins[v] = true
	}
	for _, v := range extraBuiltins {
		builtins[v] = true
	}
	return &MakeRunner{command: command, builtinVars: builtins}
}

func (r *MakeRunner) Name() string { return "make" }

func (r *MakeRunner) ListTasks(ctx context.Context, dir string) ([]model.TaskDescriptor, error) {
	name, ok := findMakefile(dir)
	if !ok {
		return nil, taskerrors.NoBackendDetected(dir, nil)
	}

	tasks, err := r.parseMakefile(filepath.Join(dir, name))
	if err != nil {
		log.Warn().Err(err).Msg("failed to parse makefile directly")
	} else if len(tasks) > 0 {
		return tasks, nil
	} else {
		log.Debug().Msg("no targets found in makefile, querying make database")
	}

	return r.listViaDatabase(ctx, dir)
}

// parseMakefile extracts targets from the makefile itself. This is the
// preferred strategy since it sees descriptions and recipe variables that
// make's database dump does not.
func (r *MakeRunner) parseMakefile(path string) ([]model.TaskDescriptor, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	var tasks []model.TaskDescriptor
	seen := make(map[string]bool)

	for i, line := range lines {
		caps := makeTargetRe.FindStringSubmatch(line)
		if caps == nil {
			continue
		}
		name := caps[1]

		// Variable assignments (:=, ::=, ?=, +=) look like targets to the
		// regex; skip the whole line when any assignment operator appears.
		if strings.Contains(line, ":=") || strings.Contains(line, "?=") ||
			strings.Contains(line, "+=") {
			continue
		}
		if seen[name] || strings.HasPrefix(name, ".") {
			continue
		}
		seen[name] = true

		desc := ""
		if i > 0 {
			desc = makeDescription(lines[i-1], name)
		}

		tasks = append(tasks, model.TaskDescriptor{
			Name:        name,
			Description: desc,
			Arguments:   r.recipeArguments(lines, i),
		})
	}

	model.SortTasks(tasks)
	return tasks, nil
}

// makeDescription extracts a description from the comment line preceding a
// target: either "## text" or "# <target>: text".
func makeDescription(prev, target string) string {
	caps := makeCommentRe.FindStringSubmatch(prev)
	if caps == nil {
		return ""
	}
	if caps[1] != "" {
		return strings.TrimSpace(caps[1])
	}
	if caps[2] == target {
		return strings.TrimSpace(caps[3])
	}
	return ""
}

// recipeArguments scans the recipe lines following a target for $(VAR) and
// ${VAR} references, minus make's built-in variables. Recipe lines start
// with a tab; the first non-tab non-empty line ends the recipe.
func (r *MakeRunner) recipeArguments(lines []string, targetLine int) []model.TaskArgument {
	vars := make(map[string]bool)
	for _, line := range lines[targetLine+1:] {
		if !strings.HasPrefix(line, "\t") && line != "" {
			break
		}
		for _, caps := range makeVarRe.FindAllStringSubmatch(line, -1) {
			if !r.builtinVars[caps[1]] {
				vars[caps[1]] = true
			}
		}
	}

	if len(vars) == 0 {
		return nil
	}
	names := make([]string, 0, len(vars))
	for v := range vars {
		names = append(names, v)
	}
	sort.Strings(names)

	args := make([]model.TaskArgument, len(names))
	for i, v := range names {
		// Make variables always have some value, so they are optional.
		args[i] = model.TaskArgument{Name: v, Required: false}
	}
	return args
}

// listViaDatabase queries make's rule database with -pRrq and extracts
// target names. No descriptions or arguments are available this way.
func (r *MakeRunner) listViaDatabase(ctx context.Context, dir string) ([]model.TaskDescriptor, error) {
	result, err := executor.Execute(ctx, r.command, []string{"-pRrq", ":"}, model.ExecutionOptions{
		Dir:     dir,
		Timeout: probeTimeout,
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, line := range strings.Split(result.Stdout, "\n") {
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "\t") {
			continue
		}
		caps := makeTargetRe.FindStringSubmatch(line)
		if caps == nil || strings.HasPrefix(caps[1], ".") {
			continue
		}
		seen[caps[1]] = true
	}

	tasks := make([]model.TaskDescriptor, 0, len(seen))
	for name := range seen {
		tasks = append(tasks, model.TaskDescriptor{Name: name})
	}
	model.SortTasks(tasks)
	return tasks, nil
}

func (r *MakeRunner) RunTask(ctx context.Context, dir, task string, opts model.ExecutionOptions) (*model.ExecutionResult, error) {
	if _, ok := findMakefile(dir); !ok {
		return nil, taskerrors.NoBackendDetected(dir, nil)
	}

	args := []string{task}
	for _, key := range opts.SortedArgKeys() {
		args = append(args, key+"="+opts.Args[key])
	}
	if len(opts.Positional) > 0 {
		args = append(args, "--")
		args = append(args, opts.Positional...)
	}

	opts.Dir = dir
	result, err := executor.Execute(ctx, r.command, args, opts)
	if err != nil {
		return nil, err
	}
	result.Command = r.BuildCommand(task, opts)

	if !result.Success && stderrMatches(result.Stderr, []string{"No rule to make target"}) {
		return nil, taskNotFound(ctx, r, dir, task, result.Command, result.Stderr)
	}
	return result, nil
}

func (r *MakeRunner) BuildCommand(task string, opts model.ExecutionOptions) string {
	parts := []string{r.command, task}
	for _, key := range opts.SortedArgKeys() {
		parts = append(parts, key+"="+opts.Args[key])
	}
	if len(opts.Positional) > 0 {
		parts = append(parts, "--")
		parts = append(parts, opts.Positional...)
	}
	return strings.Join(parts, " ")
}

// readLines reads a whole file as a line slice.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
