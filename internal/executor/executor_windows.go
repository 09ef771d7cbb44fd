//go:build windows

package executor

import "os/exec"

// setProcessGroup is a no-op on Windows; CommandContext's default Kill
// cancellation applies.
func setProcessGroup(cmd *exec.Cmd) {}
