//go:build unix

package executor

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup starts the child in its own process group and kills the
// whole group on context cancellation, so shell children spawned by the
// task cannot survive a timeout as orphans.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if err == syscall.ESRCH {
			return os.ErrProcessDone
		}
		return err
	}
}
