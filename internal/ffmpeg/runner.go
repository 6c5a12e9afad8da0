// Package ffmpeg runs the external media tool as a subprocess.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is returned when an invocation exceeds its timeout and was killed
var ErrTimeout = errors.New("process timed out and was killed")

// Result holds the outcome of a finished invocation
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Output returns stderr followed by stdout. ffmpeg writes its diagnostics
// to stderr.
func (r Result) Output() string {
	return r.Stderr + r.Stdout
}

// Runner invokes the media tool. A non-zero exit is reported through
// Result.ExitCode, not as an error. Errors are reserved for failures to
// start the process and for ErrTimeout.
type Runner interface {
	Run(ctx context.Context, args []string, timeout time.Duration) (Result, error)
}

// ExecRunner runs a binary with os/exec
type ExecRunner struct {
	Binary string
}

// NewExecRunner creates a runner for the given binary ("ffmpeg" if empty)
func NewExecRunner(binary string) *ExecRunner {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &ExecRunner{Binary: binary}
}

// Run executes the binary. When the timeout expires the process is killed
// with SIGKILL rather than asked to stop.
func (r *ExecRunner) Run(ctx context.Context, args []string, timeout time.Duration) (Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	setSysProcAttr(cmd)
	cmd.Cancel = func() error {
		return killProcess(cmd)
	}
	// Bound the wait for pipes held open by orphaned children
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return result, fmt.Errorf("%s after %s: %w", r.Binary, timeout, ErrTimeout)
		}
		return result, ctxErr
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("failed to start %s: %w", r.Binary, err)
	}

	return result, nil
}

// CommandLine renders an invocation for display, quoting arguments that
// contain spaces or shell metacharacters
func CommandLine(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quote(binary))
	for _, a := range args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`*?[](){}<>|&;#~!") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// LastLines returns the last n lines of s, used to keep error messages short
func LastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
