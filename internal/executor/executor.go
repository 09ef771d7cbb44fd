// Package executor runs subprocesses with deadline enforcement, concurrent
// output capture, and size-bounded truncation.
//
// The package is stateless: Execute shares nothing between calls, so any
// number of executions may be in flight concurrently. Within one execution
// stdout and stderr are copied by independent goroutines into bounded
// capture buffers, so a child that floods one stream cannot stall
// consumption of the other. Byte order is preserved within each stream; no
// ordering holds between the two.
package executor

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	taskerrors "github.com/taskhub/taskhub/internal/errors"
	"github.com/taskhub/taskhub/internal/model"
)

// DefaultMaxOutput is the per-stream capture cap in bytes when
// ExecutionOptions.MaxOutput is zero.
const DefaultMaxOutput = 100_000

// TruncationMarker is appended exactly once to a capped stream.
const TruncationMarker = "\n... [output truncated] ...\n"

// waitDelay bounds how long Wait blocks on pipe teardown after the child
// exits or the context is canceled. A descendant that inherited the pipe
// write ends and keeps running cannot hold Execute past this delay: Wait
// force-closes the pipes and returns.
const waitDelay = 5 * time.Second

// Execute spawns program with args and captures its output.
//
// A configured timeout races the whole spawn-wait-drain sequence; on expiry
// the child's process group is killed, Wait reaps it, and a Timeout error is
// returned with no result; output captured before expiry is discarded.
// Execute returns within timeout plus waitDelay even when a grandchild
// inherited the output pipes and outlived the kill. Canceling ctx has the
// same reaping guarantee: the child never outlives an abandoned execution.
//
// A nonzero exit is not an error; it yields a result with Success=false.
// Only spawn failure, timeout, and I/O breakage surface as errors.
func Execute(ctx context.Context, program string, args []string, opts model.ExecutionOptions) (*model.ExecutionResult, error) {
	commandStr := model.JoinCommand(program, args)

	maxOutput := opts.MaxOutput
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutput
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	cmd.Env = os.Environ()
	for k, v := range opts.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	stdout := &captureWriter{max: maxOutput}
	stderr := &captureWriter{max: maxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	log.Debug().Str("command", commandStr).Str("dir", opts.Dir).Msg("executing")

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, taskerrors.SpawnFailed(commandStr, err)
	}

	// Wait drives exec's per-stream copy goroutines: it blocks until the
	// child is reaped and both pipes reach EOF, bounded by WaitDelay once
	// the child is gone. A stuck pipe yields ErrWaitDelay, not a hang.
	waitErr := cmd.Wait()
	duration := time.Since(start)

	if opts.Timeout > 0 && ctx.Err() == context.DeadlineExceeded {
		log.Debug().Str("command", commandStr).Dur("timeout", opts.Timeout).Msg("execution timed out")
		return nil, taskerrors.Timeout(commandStr, opts.Timeout)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	exitCode := exitCodeOf(waitErr, cmd.ProcessState)
	if waitErr != nil && exitCode == nil {
		if _, ok := waitErr.(*exec.ExitError); !ok && waitErr != exec.ErrWaitDelay {
			return nil, taskerrors.Wrap(waitErr, "waiting for command: "+commandStr)
		}
	}

	stdoutText, stdoutTruncated := stdout.result()
	stderrText, stderrTruncated := stderr.result()

	success := exitCode != nil && *exitCode == 0
	return &model.ExecutionResult{
		Success:         success,
		ExitCode:        exitCode,
		Stdout:          stdoutText,
		StdoutTruncated: stdoutTruncated,
		Stderr:          stderrText,
		StderrTruncated: stderrTruncated,
		Duration:        duration,
		DurationMs:      duration.Milliseconds(),
		Command:         commandStr,
	}, nil
}

// captureWriter accumulates one stream up to a byte cap. A write that
// crosses the cap is cut at the remaining budget and the truncation marker
// is appended once; later writes are acknowledged and discarded, so the
// child keeps its pipe and is never blocked or killed merely for producing
// excess output.
type captureWriter struct {
	mu        sync.Mutex
	buf       strings.Builder
	max       int
	truncated bool
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.truncated {
		if w.buf.Len()+len(p) > w.max {
			remaining := w.max - w.buf.Len()
			if remaining > 0 {
				w.buf.Write(p[:remaining])
			}
			w.buf.WriteString(TruncationMarker)
			w.truncated = true
		} else {
			w.buf.Write(p)
		}
	}
	return len(p), nil
}

// result returns the captured text and whether the cap was hit. The lock
// matters: after WaitDelay expires, Wait abandons a copy goroutine that may
// still be delivering its final write.
func (w *captureWriter) result() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String(), w.truncated
}

// exitCodeOf extracts the exit code from Wait's error. A nil error is exit
// zero; a signal-terminated child has no exit code. ErrWaitDelay means the
// child exited but a descendant held the pipes open, so the exit status
// comes from the process state.
func exitCodeOf(waitErr error, state *os.ProcessState) *int {
	if waitErr == nil {
		zero := 0
		return &zero
	}
	if waitErr == exec.ErrWaitDelay {
		if state != nil {
			if code := state.ExitCode(); code >= 0 {
				return &code
			}
		}
		return nil
	}
	if ee, ok := waitErr.(*exec.ExitError); ok {
		if code := ee.ExitCode(); code >= 0 {
			return &code
		}
	}
	return nil
}
