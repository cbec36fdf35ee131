package contextcollector

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/ports"
)

// ShellDetector resolves the session shell from preferences.shell or, when
// that is "auto", from the environment.
type ShellDetector struct {
	goos     string
	getenv   func(string) string
	getwd    func() (string, error)
	lookPath func(string) (string, error)
}

func NewShellDetector() *ShellDetector {
	return &ShellDetector{
		goos:     runtime.GOOS,
		getenv:   os.Getenv,
		getwd:    os.Getwd,
		lookPath: exec.LookPath,
	}
}

// Detect implements ports.ShellDetector.
func (d *ShellDetector) Detect(_ context.Context, cfg domain.Config) domain.ShellContext {
	wd, _ := d.getwd()
	shell := domain.ShellContext{
		OS:         domain.OSFamilyFromGOOS(d.goos),
		WorkingDir: wd,
	}

	family, ok := domain.ParseShellFamily(cfg.Preferences.Shell)
	if !ok {
		family = d.detectFamily()
	}
	shell.Family = family
	shell.Binary = d.binaryFor(family)
	return shell
}

func (d *ShellDetector) detectFamily() domain.ShellFamily {
	if login := d.getenv("SHELL"); login != "" {
		if family, ok := domain.ParseShellFamily(shellName(login)); ok {
			return family
		}
	}
	if d.goos != "windows" {
		return domain.ShellPOSIX
	}
	// PowerShell adds the per-user module directory to PSModulePath; a bare
	// cmd.exe session only inherits the system entries.
	modulePath := strings.ToLower(d.getenv("PSModulePath"))
	if strings.Contains(modulePath, `documents\windowspowershell`) || strings.Contains(modulePath, `documents\powershell`) {
		return domain.ShellPowerShell
	}
	return domain.ShellCmd
}

func (d *ShellDetector) binaryFor(family domain.ShellFamily) string {
	switch family {
	case domain.ShellPowerShell:
		if _, err := d.lookPath("pwsh"); err == nil {
			return "pwsh"
		}
		return "powershell"
	case domain.ShellCmd:
		if comspec := d.getenv("ComSpec"); comspec != "" {
			return comspec
		}
		return "cmd.exe"
	default:
		if login := d.getenv("SHELL"); login != "" {
			if family, ok := domain.ParseShellFamily(shellName(login)); ok && family == domain.ShellPOSIX && shellName(login) != "fish" {
				return login
			}
		}
		return "/bin/sh"
	}
}

// shellName strips directories and an .exe suffix.
func shellName(path string) string {
	base := filepath.Base(strings.ReplaceAll(path, `\`, "/"))
	return strings.TrimSuffix(strings.ToLower(base), ".exe")
}

var _ ports.ShellDetector = (*ShellDetector)(nil)
