package domain

import "strings"

// ShellFamily is the closed set of shell dialects a suggestion can target.
type ShellFamily string

const (
	ShellPOSIX      ShellFamily = "posix"
	ShellPowerShell ShellFamily = "powershell"
	ShellCmd        ShellFamily = "cmd"
)

// ParseShellFamily maps user/config input onto a family. ok is false for
// anything outside the closed set (including "auto").
func ParseShellFamily(value string) (ShellFamily, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "posix", "sh", "bash", "zsh", "fish", "dash", "ksh":
		return ShellPOSIX, true
	case "powershell", "pwsh", "ps":
		return ShellPowerShell, true
	case "cmd", "cmd.exe":
		return ShellCmd, true
	default:
		return "", false
	}
}

// DisplayName is the name used when talking to a backend about the shell.
func (f ShellFamily) DisplayName() string {
	switch f {
	case ShellPowerShell:
		return "PowerShell"
	case ShellCmd:
		return "Windows CMD"
	default:
		return "bash/sh"
	}
}

// OSFamily is the operating system family the session runs on.
type OSFamily string

const (
	OSLinux   OSFamily = "linux"
	OSMacOS   OSFamily = "macos"
	OSWindows OSFamily = "windows"
	OSOther   OSFamily = "other"
)

// OSFamilyFromGOOS maps runtime.GOOS onto an OSFamily.
func OSFamilyFromGOOS(goos string) OSFamily {
	switch goos {
	case "linux":
		return OSLinux
	case "darwin":
		return OSMacOS
	case "windows":
		return OSWindows
	default:
		return OSOther
	}
}

// ShellContext is the per-session snapshot every prompt is built against.
// It is created once at startup and never mutated.
type ShellContext struct {
	Family     ShellFamily
	OS         OSFamily
	WorkingDir string
	// Binary is the interpreter the executor launches (e.g. /bin/zsh, pwsh).
	Binary string
}
