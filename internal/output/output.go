// Package output provides formatted output utilities for the CLI.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/taskhub/taskhub/internal/model"
)

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

var titleCaser = cases.Title(language.English)

// Writer handles CLI output formatting.
type Writer struct {
	out   io.Writer
	err   io.Writer
	color bool
	quiet bool
}

// New creates a new Writer with default settings.
func New() *Writer {
	return &Writer{
		out:   os.Stdout,
		err:   os.Stderr,
		color: isTerminal(),
	}
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{
		out:   out,
		err:   err,
		color: color,
	}
}

// SetQuiet enables or disables quiet mode.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// Print writes to stdout.
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Error writes a line to stderr.
func (w *Writer) Errorln(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// Info prints an info message (skipped in quiet mode).
func (w *Writer) Info(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println(format, args...)
}

// ErrorPrefix prints an error message with taskhub prefix to stderr.
func (w *Writer) ErrorPrefix(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Errorln("%staskhub:%s %s", red, reset, msg)
	} else {
		w.Errorln("taskhub: %s", msg)
	}
}

// Hint prints a dimmed hint message for the user.
func (w *Writer) Hint(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Errorln("%s%s%s", dim, msg, reset)
	} else {
		w.Errorln("%s", msg)
	}
}

// Section prints a section header.
func (w *Writer) Section(title string) {
	if w.quiet {
		return
	}
	w.Println("")
	if w.color {
		w.Println("%s=== %s ===%s", bold, title, reset)
	} else {
		w.Println("=== %s ===", title)
	}
}

// List prints a list of items.
func (w *Writer) List(items []string) {
	for _, item := range items {
		w.Println("  - %s", item)
	}
}

// Table prints a simple aligned table.
func (w *Writer) Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var headerParts []string
	for i, h := range headers {
		headerParts = append(headerParts, fmt.Sprintf("%-*s", widths[i], h))
	}
	w.Println(strings.Join(headerParts, "  "))

	var sepParts []string
	for _, width := range widths {
		sepParts = append(sepParts, strings.Repeat("-", width))
	}
	w.Println(strings.Join(sepParts, "  "))

	for _, row := range rows {
		var rowParts []string
		for i, cell := range row {
			if i < len(widths) {
				rowParts = append(rowParts, fmt.Sprintf("%-*s", widths[i], cell))
			}
		}
		w.Println(strings.TrimRight(strings.Join(rowParts, "  "), " "))
	}
}

// BackendTitle returns the display title for a backend kind: "Make", "Just",
// or the script path unchanged.
func BackendTitle(kind model.RunnerKind) string {
	if kind.Backend == model.BackendScript {
		return kind.Script
	}
	return titleCaser.String(string(kind.Backend))
}

// Detection renders a detection result.
func (w *Writer) Detection(dir string, result model.DetectionResult) {
	if result.Detected == nil {
		w.Println("No build system detected in %s", dir)
		return
	}

	w.Println("Detected: %s", BackendTitle(*result.Detected))

	if len(result.Available) > 1 {
		names := make([]string, len(result.Available))
		for i, k := range result.Available {
			names[i] = k.String()
		}
		w.Println("Available: %s", strings.Join(names, ", "))
	}

	if result.Evidence.MakefilePath != "" {
		w.Println("  makefile: %s", result.Evidence.MakefilePath)
	}
	if result.Evidence.JustfilePath != "" {
		w.Println("  justfile: %s", result.Evidence.JustfilePath)
	}
	for _, script := range result.Evidence.Scripts {
		w.Println("  script:   %s", script)
	}
}

// TaskTable renders discovered tasks as an aligned table.
func (w *Writer) TaskTable(tasks []model.TaskDescriptor) {
	if len(tasks) == 0 {
		w.Println("No tasks found")
		return
	}

	rows := make([][]string, len(tasks))
	for i, task := range tasks {
		rows[i] = []string{task.Name, argSummary(task.Arguments), task.Description}
	}
	w.Table([]string{"TASK", "ARGUMENTS", "DESCRIPTION"}, rows)
}

// argSummary renders an argument list the way just displays parameters:
// required args bare, defaults as name=value, variadic-looking args last.
func argSummary(args []model.TaskArgument) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		switch {
		case arg.Default != "":
			parts[i] = fmt.Sprintf("%s=%s", arg.Name, arg.Default)
		case arg.Required:
			parts[i] = arg.Name
		default:
			parts[i] = "[" + arg.Name + "]"
		}
	}
	return strings.Join(parts, " ")
}

// RunHeader prints the rendered command before execution.
func (w *Writer) RunHeader(command string) {
	if w.quiet {
		return
	}
	if w.color {
		w.Println("%s$ %s%s", bold+cyan, command, reset)
	} else {
		w.Println("$ %s", command)
	}
}

// RunResult streams a finished execution's output and status line.
func (w *Writer) RunResult(result *model.ExecutionResult) {
	if result.Stdout != "" {
		w.Print("%s", result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprint(w.err, result.Stderr)
	}
	if result.StdoutTruncated {
		w.Hint("stdout was truncated")
	}
	if result.StderrTruncated {
		w.Hint("stderr was truncated")
	}

	if w.quiet {
		return
	}
	if result.Success {
		if w.color {
			w.Println("%s✓ done%s (%dms)", green, reset, result.DurationMs)
		} else {
			w.Println("done (%dms)", result.DurationMs)
		}
	} else {
		code := "?"
		if result.ExitCode != nil {
			code = fmt.Sprintf("%d", *result.ExitCode)
		}
		if w.color {
			w.Errorln("%s✗ failed%s (exit %s, %dms)", red, reset, code, result.DurationMs)
		} else {
			w.Errorln("failed (exit %s, %dms)", code, result.DurationMs)
		}
	}
}

// HelpTitle formats the main help title line.
func (w *Writer) HelpTitle(title string) {
	if w.color {
		w.Println("%s%s%s", bold+cyan, title, reset)
	} else {
		w.Println("%s", title)
	}
}

// HelpSection formats a help section header.
func (w *Writer) HelpSection(title string) {
	w.Println("")
	if w.color {
		w.Println("%s%s%s", bold+yellow, title, reset)
	} else {
		w.Println("%s", title)
	}
}

// HelpCommand formats a command with its description.
func (w *Writer) HelpCommand(name, description string, width int) {
	if w.color {
		w.Println("  %s%-*s%s  %s%s%s", bold+cyan, width, name, reset, dim, description, reset)
	} else {
		w.Println("  %-*s  %s", width, name, description)
	}
}

// HelpFlag formats a flag with its description.
func (w *Writer) HelpFlag(name, description string, width int) {
	if w.color {
		w.Println("  %s%-*s%s  %s%s%s", yellow, width, name, reset, dim, description, reset)
	} else {
		w.Println("  %-*s  %s", width, name, description)
	}
}

// HelpExample formats an example command with description.
func (w *Writer) HelpExample(command, description string) {
	if w.color {
		w.Println("  %s%s%s", cyan, command, reset)
		if description != "" {
			w.Println("      %s%s%s", dim, description, reset)
		}
	} else {
		w.Println("  %s", command)
		if description != "" {
			w.Println("      %s", description)
		}
	}
}

// HelpUsage formats usage lines.
func (w *Writer) HelpUsage(usage string) {
	w.Println("  %s", usage)
}

// isTerminal returns true if stdout is a terminal.
func isTerminal() bool {
	if fi, _ := os.Stdout.Stat(); fi != nil {
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
