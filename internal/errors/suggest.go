package errors

import "strings"

// Suggest inspects a failed command and its stderr for well-known failure
// patterns and returns a fix hint, or "" when nothing matches.
func Suggest(command, stderr string) string {
	// Docker-related errors
	if strings.Contains(stderr, "docker") || strings.Contains(stderr, "Docker") {
		if strings.Contains(stderr, "not running") || strings.Contains(stderr, "Cannot connect") {
			return "Docker daemon is not running. Start Docker Desktop or the Docker service."
		}
		if strings.Contains(stderr, "No such container") {
			return "Container not found. Try running 'up' first to start the services."
		}
		if strings.Contains(stderr, "port is already allocated") {
			return "Port conflict. Stop the conflicting service or use a different port."
		}
	}

	if strings.Contains(stderr, "Permission denied") {
		return "Permission denied. Check file permissions or run with appropriate access."
	}

	if strings.Contains(stderr, "command not found") || strings.Contains(stderr, "not found") {
		if strings.Contains(command, "make") {
			return "'make' command not found. Install build-essential or make."
		}
		if strings.Contains(command, "just") {
			return "'just' command not found. Install just: cargo install just"
		}
		return "Required command not found. Check PATH and dependencies."
	}

	if strings.Contains(stderr, "No such file") {
		if strings.Contains(command, ".sh") {
			return "Script not found. Verify the working directory is correct."
		}
		return "File not found. Check the project path and file existence."
	}

	if strings.Contains(stderr, "No rule to make target") {
		return "Target not found in Makefile. List tasks to see available targets."
	}

	if strings.Contains(stderr, "Justfile does not contain recipe") {
		return "Recipe not found in justfile. List tasks to see available recipes."
	}

	return ""
}
