package runner

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	taskerrors "github.com/taskhub/taskhub/internal/errors"
	"github.com/taskhub/taskhub/internal/executor"
	"github.com/taskhub/taskhub/internal/model"
)

var (
	// Matches recipe lines in `just --list` output:
	// "    name args # description".
	justListRe = regexp.MustCompile(`^\s{4}([a-zA-Z_][a-zA-Z0-9_-]*)\s*([^#]*?)(?:\s*#\s*(.*))?$`)

	// Matches recipe parameters: name, name='default', +variadic, *variadic.
	justArgRe = regexp.MustCompile(`([+*]?)([a-zA-Z_][a-zA-Z0-9_-]*)(?:=['"]?([^'"]*)?['"]?)?`)

	// Matches recipe headers in a justfile: "name args:" or "@name args:".
	justRecipeRe = regexp.MustCompile(`^@?([a-zA-Z_][a-zA-Z0-9_-]*)\s*([^:]*?):\s*.*$`)

	// Matches doc comment lines preceding a recipe.
	justDocRe = regexp.MustCompile(`^#\s*(.*)$`)
)

// Stderr phrases just prints when a recipe name does not exist; the exact
// wording varies across just versions.
var justNotFoundPhrases = []string{
	"Justfile does not contain recipe",
	"Just was unable to find",
	"Unknown recipe",
}

// JustRunner runs recipes through the just command runner. Discovery
// strategies in order: `just --dump --format json` (richest: docs, defaults,
// variadic kinds), `just --list --unsorted` line parsing, and finally a
// direct justfile parse for when just itself is not installed.
type JustRunner struct {
	command string
}

// NewJustRunner creates a Just runner. command overrides the just binary.
func NewJustRunner(command string) *JustRunner {
	if command == "" {
		command = "just"
	}
	return &JustRunner{command: command}
}

func (r *JustRunner) Name() string { return "just" }

func (r *JustRunner) ListTasks(ctx context.Context, dir string) ([]model.TaskDescriptor, error) {
	name, ok := findJustfile(dir)
	if !ok {
		return nil, taskerrors.NoBackendDetected(dir, nil)
	}

	if tasks, err := r.listViaDump(ctx, dir); err == nil && len(tasks) > 0 {
		return tasks, nil
	} else if err != nil {
		log.Debug().Err(err).Msg("just dump failed, parsing justfile directly")
	}

	return r.parseJustfile(filepath.Join(dir, name))
}

// listViaDump asks just for its AST as JSON, falling back to --list parsing
// when the dump command is unsupported.
func (r *JustRunner) listViaDump(ctx context.Context, dir string) ([]model.TaskDescriptor, error) {
	result, err := executor.Execute(ctx, r.command, []string{"--dump", "--format", "json"}, model.ExecutionOptions{
		Dir:     dir,
		Timeout: probeTimeout,
	})
	if err != nil {
		return nil, err
	}
	if !result.Success {
		log.Debug().Msg("just --dump unsupported, falling back to --list")
		return r.listViaList(ctx, dir)
	}
	return parseDumpJSON(result.Stdout)
}

// parseDumpJSON extracts recipes from `just --dump --format json` output.
// The dump schema shifts between just versions, so fields are read leniently
// rather than bound to a fixed structure.
func parseDumpJSON(data string) ([]model.TaskDescriptor, error) {
	if !gjson.Valid(data) {
		return nil, taskerrors.Config("failed to parse just dump output: invalid JSON")
	}

	var tasks []model.TaskDescriptor
	gjson.Get(data, "recipes").ForEach(func(name, recipe gjson.Result) bool {
		var args []model.TaskArgument
		recipe.Get("parameters").ForEach(func(_, param gjson.Result) bool {
			def := ""
			hasDefault := false
			if d := param.Get("default"); d.Exists() && d.Type != gjson.Null {
				hasDefault = true
				if d.Type == gjson.String {
					def = d.String()
				} else {
					def = d.Raw
				}
			}
			kind := param.Get("kind").String()
			variadic := kind == "Plus" || kind == "Star"
			args = append(args, model.TaskArgument{
				Name:     param.Get("name").String(),
				Required: !hasDefault && !variadic,
				Default:  def,
			})
			return true
		})

		tasks = append(tasks, model.TaskDescriptor{
			Name:        name.String(),
			Description: recipe.Get("doc").String(),
			Arguments:   args,
		})
		return true
	})

	model.SortTasks(tasks)
	return tasks, nil
}

// listViaList parses `just --list --unsorted` output.
func (r *JustRunner) listViaList(ctx context.Context, dir string) ([]model.TaskDescriptor, error) {
	result, err := executor.Execute(ctx, r.command, []string{"--list", "--unsorted"}, model.ExecutionOptions{
		Dir:     dir,
		Timeout: probeTimeout,
	})
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, taskerrors.Newf("just --list failed: %s", strings.TrimSpace(result.Stderr))
	}

	var tasks []model.TaskDescriptor
	for _, line := range strings.Split(result.Stdout, "\n") {
		if strings.HasPrefix(line, "Available") || strings.TrimSpace(line) == "" {
			continue
		}
		caps := justListRe.FindStringSubmatch(line)
		if caps == nil {
			continue
		}
		tasks = append(tasks, model.TaskDescriptor{
			Name:        caps[1],
			Description: strings.TrimSpace(caps[3]),
			Arguments:   parseRecipeArgs(strings.TrimSpace(caps[2])),
		})
	}

	model.SortTasks(tasks)
	return tasks, nil
}

// parseRecipeArgs parses a recipe parameter list as rendered by just:
// `target='release' +flags`.
func parseRecipeArgs(argsStr string) []model.TaskArgument {
	if argsStr == "" {
		return nil
	}

	var args []model.TaskArgument
	for _, caps := range justArgRe.FindAllStringSubmatch(argsStr, -1) {
		prefix, name, def := caps[1], caps[2], caps[3]
		hasDefault := strings.Contains(caps[0], "=")
		args = append(args, model.TaskArgument{
			Name:     name,
			Required: prefix == "" && !hasDefault,
			Default:  def,
		})
	}
	return args
}

// parseJustfile extracts recipes from the justfile itself, for when just is
// not installed. Descriptions come from the comment line preceding a recipe.
func (r *JustRunner) parseJustfile(path string) ([]model.TaskDescriptor, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	var tasks []model.TaskDescriptor
	seen := make(map[string]bool)

	for i, line := range lines {
		caps := justRecipeRe.FindStringSubmatch(line)
		if caps == nil {
			continue
		}
		name := caps[1]
		if seen[name] {
			continue
		}
		seen[name] = true

		desc := ""
		if i > 0 {
			if doc := justDocRe.FindStringSubmatch(lines[i-1]); doc != nil {
				desc = strings.TrimSpace(doc[1])
			}
		}

		tasks = append(tasks, model.TaskDescriptor{
			Name:        name,
			Description: desc,
			Arguments:   parseRecipeArgs(strings.TrimSpace(caps[2])),
		})
	}

	model.SortTasks(tasks)
	return tasks, nil
}

func (r *JustRunner) RunTask(ctx context.Context, dir, task string, opts model.ExecutionOptions) (*model.ExecutionResult, error) {
	if _, ok := findJustfile(dir); !ok {
		return nil, taskerrors.NoBackendDetected(dir, nil)
	}

	args := []string{task}
	for _, key := range opts.SortedArgKeys() {
		args = append(args, key+"="+opts.Args[key])
	}
	args = append(args, opts.Positional...)

	opts.Dir = dir
	result, err := executor.Execute(ctx, r.command, args, opts)
	if err != nil {
		return nil, err
	}
	result.Command = r.BuildCommand(task, opts)

	if !result.Success && stderrMatches(result.Stderr, justNotFoundPhrases) {
		return nil, taskNotFound(ctx, r, dir, task, result.Command, result.Stderr)
	}
	return result, nil
}

func (r *JustRunner) BuildCommand(task string, opts model.ExecutionOptions) string {
	parts := []string{r.command, task}
	for _, key := range opts.SortedArgKeys() {
		parts = append(parts, key+"="+opts.Args[key])
	}
	parts = append(parts, opts.Positional...)
	return strings.Join(parts, " ")
}
