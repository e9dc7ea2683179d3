// Package tool runs the external executables gait wraps (git, gh).
package tool

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	apperrors "github.com/gait/gait/internal/pkg/errors"
)

// Mode selects how a child process's standard streams are wired.
type Mode int

const (
	// ModeStream passes the runner's stdin/stdout/stderr straight to the child.
	ModeStream Mode = iota
	// ModeCapture collects stdout and stderr into the Result.
	ModeCapture
)

// String returns the string representation of the Mode.
func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeCapture:
		return "capture"
	default:
		return "unknown"
	}
}

// InterruptGracePeriod is how long a child gets to exit after an interrupt
// before it is killed.
const InterruptGracePeriod = 5 * time.Second

// Result holds the outcome of a finished child process.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner runs one executable. The zero value of the stream fields means the
// process's own standard streams.
type Runner struct {
	Executable string
	Dir        string
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
}

// NewRunner creates a Runner for executable wired to the process's standard streams.
func NewRunner(executable string) *Runner {
	return &Runner{
		Executable: executable,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

// Run executes the runner's executable with args.
//
// A non-zero exit is reported both in Result.ExitCode and as an
// ErrUnderlyingToolFailure AppError carrying the same status, so callers that
// only forward the status can ignore the error and callers that need success
// can return it. A missing executable yields ErrExecutableNotFound and a nil Result.
func (r *Runner) Run(ctx context.Context, mode Mode, args ...string) (*Result, error) {
	path, err := exec.LookPath(r.Executable)
	if err != nil {
		return nil, apperrors.NewExecutableNotFoundError(r.Executable, err)
	}

	apperrors.LogCommand(r.Executable, args, mode.String())

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = r.Dir
	// Let the child clean up on cancellation instead of killing it outright.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = InterruptGracePeriod

	var stdout, stderr bytes.Buffer
	switch mode {
	case ModeCapture:
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	default:
		cmd.Stdin = r.Stdin
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr
	}

	err = cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitCode(exitErr)
		return result, apperrors.NewToolFailureError(r.Executable, result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	if errors.Is(err, exec.ErrNotFound) {
		return nil, apperrors.NewExecutableNotFoundError(r.Executable, err)
	}

	return nil, apperrors.Wrap(err, apperrors.ErrUnderlyingToolFailure, "failed to run "+r.Executable).
		WithContext("args", strings.Join(args, " "))
}

// signalExitBase is added to the signal number of a child killed by a
// signal, the way shells report it.
const signalExitBase = 128

func exitCode(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return signalExitBase + int(status.Signal())
	}
	if code := exitErr.ExitCode(); code >= 0 {
		return code
	}
	return 1
}

// Capture runs args in capture mode and returns stdout.
func (r *Runner) Capture(ctx context.Context, args ...string) (string, error) {
	res, err := r.Run(ctx, ModeCapture, args...)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// Stream runs args in stream mode and returns the child's exit code.
// A non-zero exit code is not an error here; only failing to start the child is.
func (r *Runner) Stream(ctx context.Context, args ...string) (int, error) {
	res, err := r.Run(ctx, ModeStream, args...)
	if res == nil {
		return apperrors.GetExitCode(err), err
	}
	return res.ExitCode, nil
}
