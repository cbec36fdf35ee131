package executor

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/nlsh/internal/domain"
)

func posixExecutor(t *testing.T, stdout, stderr io.Writer) *LocalExecutor {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("posix shell required")
	}
	shell := domain.ShellContext{Family: domain.ShellPOSIX, Binary: "/bin/sh", WorkingDir: t.TempDir()}
	return NewLocalExecutor(shell).WithStreams(strings.NewReader(""), stdout, stderr)
}

func TestExecuteCapturesAndTees(t *testing.T) {
	var stdout, stderr bytes.Buffer
	runner := posixExecutor(t, &stdout, &stderr)

	result, err := runner.Execute(context.Background(), "echo hello; echo oops >&2")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.True(t, result.Succeeded())
	assert.Equal(t, "hello\n", result.Stdout)
	assert.Equal(t, "oops\n", result.Stderr)
	assert.Equal(t, "hello\n", stdout.String())
	assert.Equal(t, "oops\n", stderr.String())
}

func TestExecuteNonZeroExitIsNotAnError(t *testing.T) {
	runner := posixExecutor(t, nil, nil)

	result, err := runner.Execute(context.Background(), "echo nope >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "nope\n", result.Stderr)

	failure := result.Failure("x")
	assert.Equal(t, 3, failure.ExitCode)
}

func TestExecuteRunsInWorkingDir(t *testing.T) {
	var stdout bytes.Buffer
	runner := posixExecutor(t, &stdout, nil)

	result, err := runner.Execute(context.Background(), "pwd")
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, filepath.Base(runner.shell.WorkingDir))
}

func TestExecuteCancelled(t *testing.T) {
	runner := posixExecutor(t, nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result, err := runner.Execute(ctx, "sleep 5")
	require.Error(t, err)
	assert.Equal(t, -1, result.ExitCode)
}

func TestExecuteMissingShell(t *testing.T) {
	shell := domain.ShellContext{Family: domain.ShellPOSIX, Binary: "/nonexistent/shell"}
	runner := NewLocalExecutor(shell).WithStreams(nil, nil, nil)

	_, err := runner.Execute(context.Background(), "true")
	assert.Error(t, err)
}

func TestInvocation(t *testing.T) {
	name, args := invocation(domain.ShellContext{Family: domain.ShellPowerShell}, "Get-ChildItem -Force")
	assert.Equal(t, "pwsh", name)
	assert.Equal(t, []string{"-NoProfile", "-NonInteractive", "-Command", "Get-ChildItem -Force"}, args)

	name, args = invocation(domain.ShellContext{Family: domain.ShellCmd}, "dir /a:h")
	assert.Equal(t, "cmd.exe", name)
	assert.Equal(t, []string{"/C", "dir /a:h"}, args)

	name, args = invocation(domain.ShellContext{Family: domain.ShellPOSIX, Binary: "/bin/zsh"}, "ls -la")
	assert.Equal(t, "/bin/zsh", name)
	assert.Equal(t, []string{"-c", "ls -la"}, args)
}
