// Package executor runs confirmed commands in the session shell.
package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/ports"
)

// waitDelay bounds how long Execute waits for output pipes after the
// process was killed on cancellation.
const waitDelay = 2 * time.Second

// LocalExecutor runs commands on the host shell. Output is streamed to the
// terminal while being captured for error recovery.
type LocalExecutor struct {
	shell  domain.ShellContext
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewLocalExecutor builds an executor for the session shell that streams to
// the process's standard streams.
func NewLocalExecutor(shell domain.ShellContext) *LocalExecutor {
	return &LocalExecutor{shell: shell, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
}

// WithStreams replaces the terminal streams; nil writers discard.
func (e *LocalExecutor) WithStreams(stdin io.Reader, stdout, stderr io.Writer) *LocalExecutor {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	e.stdin, e.stdout, e.stderr = stdin, stdout, stderr
	return e
}

// Execute implements ports.CommandExecutor. A non-zero exit is reported in
// the result, not as an error; the error is reserved for a command that
// could not be started or was cancelled.
func (e *LocalExecutor) Execute(ctx context.Context, command string) (domain.ExecutionResult, error) {
	name, args := invocation(e.shell, command)
	c := exec.CommandContext(ctx, name, args...)
	c.WaitDelay = waitDelay
	c.Dir = e.shell.WorkingDir
	c.Stdin = e.stdin

	var stdout, stderr bytes.Buffer
	c.Stdout = io.MultiWriter(e.stdout, &stdout)
	c.Stderr = io.MultiWriter(e.stderr, &stderr)

	start := time.Now()
	err := c.Run()

	result := domain.ExecutionResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		return result, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		result.ExitCode = -1
		return result, err
	}
	return result, nil
}

// invocation builds the argv for the shell family. The command string is
// passed through as a single argument, never rewritten.
func invocation(shell domain.ShellContext, command string) (string, []string) {
	binary := shell.Binary
	switch shell.Family {
	case domain.ShellPowerShell:
		if binary == "" {
			binary = "pwsh"
		}
		return binary, []string{"-NoProfile", "-NonInteractive", "-Command", command}
	case domain.ShellCmd:
		if binary == "" {
			binary = "cmd.exe"
		}
		return binary, []string{"/C", command}
	default:
		if binary == "" {
			binary = "/bin/sh"
		}
		return binary, []string{"-c", command}
	}
}

var _ ports.CommandExecutor = (*LocalExecutor)(nil)
