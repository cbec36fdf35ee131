package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/ports"
)

// FormPrompter confirms through a huh form. The cursor starts on Cancel and
// Esc or Ctrl-C inside the form declines.
type FormPrompter struct {
	styles Styles
}

// NewFormPrompter builds a form based prompter.
func NewFormPrompter(styles Styles) *FormPrompter {
	return &FormPrompter{styles: styles}
}

// Confirm implements ports.ConfirmationPrompter.
func (p *FormPrompter) Confirm(ctx context.Context, req domain.ConfirmationRequest) (bool, error) {
	approved := false
	title := "Run this command?"
	if req.Recovery {
		title = "Run the suggested fix?"
	}
	description := strings.TrimSpace(req.Command)
	if req.Explanation != "" {
		description += "\n" + req.Explanation
	}
	description += "\nrisk: " + riskSummary(req.Risk)
	if req.Backend != "" {
		description += "\nvia " + req.Backend
	}

	confirm := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Run").
		Negative("Cancel").
		Value(&approved)

	err := huh.NewForm(huh.NewGroup(confirm)).
		WithTheme(huh.ThemeCharm()).
		RunWithContext(ctx)
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation form: %w", err)
	}
	return approved, nil
}

// NewConfirmationPrompter picks the prompter for confirm.style. The form is
// only used when both stdin and stdout are terminals.
func NewConfirmationPrompter(settings domain.ConfirmSettings, in *LineReader, out io.Writer, styles Styles) ports.ConfirmationPrompter {
	switch strings.ToLower(settings.Style) {
	case "plain":
		return NewPrompter(in, out, styles, settings.TypedYesForDangerous)
	case "form":
		return NewFormPrompter(styles)
	}
	// A typed "yes" needs a text prompt.
	if settings.TypedYesForDangerous || !interactive() {
		return NewPrompter(in, out, styles, settings.TypedYesForDangerous)
	}
	return NewFormPrompter(styles)
}

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

var _ ports.ConfirmationPrompter = (*FormPrompter)(nil)
