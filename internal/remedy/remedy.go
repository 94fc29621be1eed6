// Package remedy executes the local recovery command when an alarm fires.
package remedy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/moriyoshi-k/aws-metric-responder/internal/alarm"
)

// Runner executes the configured recovery command with a bounded wall-clock
// timeout.
type Runner struct {
	path    string
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a Runner for the given command path.
func New(path string, timeout time.Duration, log zerolog.Logger) *Runner {
	return &Runner{path: path, timeout: timeout, log: log}
}

// Recover runs the recovery command once. A missing path is a skip, not a
// failure, and spawns no process. All other ends are succeeded or failed
// outcomes; a timeout kills the process and is not retried within the
// invocation.
func (r *Runner) Recover(ctx context.Context) alarm.Outcome {
	if _, err := os.Stat(r.path); err != nil {
		r.log.Warn().Str("path", r.path).Msg("recovery script path does not exist, skipping recovery")
		return alarm.Skipped("recover", fmt.Sprintf("script not found at %s", r.path))
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	r.log.Info().Str("path", r.path).Msg("executing recovery script")
	cmd := exec.CommandContext(runCtx, r.path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// The script runs in its own process group and the whole group is
	// killed on timeout: a surviving descendant would otherwise hold the
	// output pipes open and block Wait past the deadline.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
	// Backstop for anything that escapes the group kill: abandon the
	// pipes rather than wait on them.
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return alarm.Failed("recover", fmt.Errorf("recovery script timed out after %s", r.timeout))
	}
	if err == nil {
		r.log.Info().Str("stdout", strings.TrimSpace(stdout.String())).Msg("recovery script finished")
		return alarm.Succeeded("recover", "exit 0")
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		return alarm.Failed("recover", fmt.Errorf("recovery script exit %d: %s",
			exitErr.ExitCode(), strings.TrimSpace(stderr.String())))
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
		// The path existed at the pre-check but was gone by exec time.
		return alarm.Failed("recover", fmt.Errorf("recovery script not found at execution: %w", err))
	default:
		return alarm.Failed("recover", fmt.Errorf("recovery script execution: %w", err))
	}
}
