package cli

import "github.com/charmbracelet/lipgloss"

// Styles is the palette shared by the renderer and the prompters.
type Styles struct {
	Prompt  lipgloss.Style
	Command lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Dim     lipgloss.Style
}

// DefaultStyles uses ANSI colors so the terminal theme decides the shade.
func DefaultStyles() Styles {
	return Styles{
		Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		Command: lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// PlainStyles renders every style as unadorned text.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Prompt: plain, Command: plain, Success: plain, Error: plain, Warning: plain, Dim: plain}
}
