package contextcollector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/nlsh/internal/domain"
)

func TestBasicCollectorListsDirectoriesFirst(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "b.txt"), []byte("test"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "a.txt"), []byte("test"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("SECRET=1"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(tmp, "src"), 0o755))

	collector := &BasicCollector{getwd: func() (string, error) { return tmp, nil }}
	cfg := domain.Config{Context: domain.ContextSettings{IncludeFiles: true, MaxFiles: 5}}

	local, err := collector.Collect(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, tmp, local.WorkingDir)
	require.Len(t, local.Entries, 3)
	assert.Equal(t, "src/", local.Entries[0].DisplayName())
	assert.Equal(t, "a.txt", local.Entries[1].Path)
	assert.Equal(t, "b.txt", local.Entries[2].Path)
	assert.Zero(t, local.Truncated)
	assert.Nil(t, local.Git)
}

func TestBasicCollectorTruncates(t *testing.T) {
	tmp := t.TempDir()
	for _, name := range []string{"1", "2", "3", "4"} {
		require.NoError(t, os.WriteFile(filepath.Join(tmp, name), nil, 0o644))
	}
	collector := &BasicCollector{getwd: func() (string, error) { return tmp, nil }}
	cfg := domain.Config{Context: domain.ContextSettings{IncludeFiles: true, MaxFiles: 2}}

	local, err := collector.Collect(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, local.Entries, 2)
	assert.Equal(t, 2, local.Truncated)
}

func TestBasicCollectorSkipsFilesWhenDisabled(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "a.txt"), nil, 0o644))
	collector := &BasicCollector{getwd: func() (string, error) { return tmp, nil }}

	local, err := collector.Collect(context.Background(), domain.Config{})
	require.NoError(t, err)
	assert.Empty(t, local.Entries)
}

func TestBasicCollectorWorkingDirError(t *testing.T) {
	collector := &BasicCollector{getwd: func() (string, error) { return "", errors.New("gone") }}
	_, err := collector.Collect(context.Background(), domain.Config{})
	assert.Error(t, err)
}

func newTestDetector(goos string, env map[string]string, tools ...string) *ShellDetector {
	return &ShellDetector{
		goos:   goos,
		getenv: func(key string) string { return env[key] },
		getwd:  func() (string, error) { return "/work", nil },
		lookPath: func(name string) (string, error) {
			for _, tool := range tools {
				if tool == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", errors.New("not found")
		},
	}
}

func TestShellDetector(t *testing.T) {
	tests := []struct {
		name       string
		goos       string
		env        map[string]string
		pref       string
		tools      []string
		wantFamily domain.ShellFamily
		wantBinary string
	}{
		{
			name:       "zsh on macOS",
			goos:       "darwin",
			env:        map[string]string{"SHELL": "/bin/zsh"},
			wantFamily: domain.ShellPOSIX,
			wantBinary: "/bin/zsh",
		},
		{
			name:       "no SHELL on linux",
			goos:       "linux",
			wantFamily: domain.ShellPOSIX,
			wantBinary: "/bin/sh",
		},
		{
			name:       "fish runs commands through sh",
			goos:       "linux",
			env:        map[string]string{"SHELL": "/usr/bin/fish"},
			wantFamily: domain.ShellPOSIX,
			wantBinary: "/bin/sh",
		},
		{
			name:       "pwsh as login shell",
			goos:       "linux",
			env:        map[string]string{"SHELL": "/usr/bin/pwsh"},
			tools:      []string{"pwsh"},
			wantFamily: domain.ShellPowerShell,
			wantBinary: "pwsh",
		},
		{
			name:       "windows powershell session",
			goos:       "windows",
			env:        map[string]string{"PSModulePath": `C:\Users\me\Documents\WindowsPowerShell\Modules;C:\Program Files\WindowsPowerShell\Modules`},
			wantFamily: domain.ShellPowerShell,
			wantBinary: "powershell",
		},
		{
			name:       "windows cmd session",
			goos:       "windows",
			env:        map[string]string{"PSModulePath": `C:\Program Files\WindowsPowerShell\Modules`, "ComSpec": `C:\Windows\system32\cmd.exe`},
			wantFamily: domain.ShellCmd,
			wantBinary: `C:\Windows\system32\cmd.exe`,
		},
		{
			name:       "preference overrides environment",
			goos:       "linux",
			env:        map[string]string{"SHELL": "/bin/bash"},
			pref:       "cmd",
			wantFamily: domain.ShellCmd,
			wantBinary: "cmd.exe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := newTestDetector(tt.goos, tt.env, tt.tools...)
			cfg := domain.Config{Preferences: domain.Preferences{Shell: tt.pref}}

			shell := detector.Detect(context.Background(), cfg)
			assert.Equal(t, tt.wantFamily, shell.Family)
			assert.Equal(t, tt.wantBinary, shell.Binary)
			assert.Equal(t, "/work", shell.WorkingDir)
			assert.Equal(t, domain.OSFamilyFromGOOS(tt.goos), shell.OS)
		})
	}
}
