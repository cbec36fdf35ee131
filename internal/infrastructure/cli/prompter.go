package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/ports"
)

// Prompter implements ConfirmationPrompter as a plain [y/N] line prompt.
// Anything but y or yes declines, including an empty line and EOF.
type Prompter struct {
	in     *LineReader
	out    io.Writer
	styles Styles
	// typedYes requires the full word "yes" for dangerous commands.
	typedYes bool
}

// NewPrompter constructs a line prompter.
func NewPrompter(in *LineReader, out io.Writer, styles Styles, typedYes bool) *Prompter {
	return &Prompter{in: in, out: out, styles: styles, typedYes: typedYes}
}

// Confirm shows the command and its risk and waits for an answer.
func (p *Prompter) Confirm(ctx context.Context, req domain.ConfirmationRequest) (bool, error) {
	fmt.Fprint(p.out, describeRequest(p.styles, req))

	explicit := p.typedYes && req.Risk.IsDangerous()
	if explicit {
		fmt.Fprint(p.out, p.styles.Warning.Render("Type 'yes' to run it: "))
	} else {
		fmt.Fprint(p.out, p.styles.Prompt.Render("Run this command? [y/N] "))
	}

	line, err := p.in.ReadLine(ctx)
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	if explicit {
		return answer == "yes", nil
	}
	return answer == "y" || answer == "yes", nil
}

// describeRequest renders what the user is about to approve.
func describeRequest(styles Styles, req domain.ConfirmationRequest) string {
	var b strings.Builder
	b.WriteString("\n")
	if req.Recovery && req.Failure != nil {
		b.WriteString(styles.Error.Render(fmt.Sprintf("Previous command failed (exit %d): %s", req.Failure.ExitCode, req.Failure.Command)))
		b.WriteString("\n")
		b.WriteString(styles.Dim.Render("Suggested fix:"))
		b.WriteString("\n")
	}
	b.WriteString("  ")
	b.WriteString(styles.Command.Render(req.Command))
	b.WriteString("\n")
	if req.Explanation != "" {
		for _, line := range strings.Split(req.Explanation, "\n") {
			b.WriteString(styles.Dim.Render("  " + line))
			b.WriteString("\n")
		}
	}
	if req.Risk.IsDangerous() {
		b.WriteString(styles.Warning.Render("! " + riskSummary(req.Risk)))
		b.WriteString("\n")
	}
	if req.Backend != "" {
		b.WriteString(styles.Dim.Render("  via " + req.Backend))
		b.WriteString("\n")
	}
	return b.String()
}

func riskSummary(risk domain.RiskAssessment) string {
	if !risk.IsDangerous() {
		return "safe"
	}
	summary := "dangerous"
	if risk.Description != "" {
		summary += ": " + risk.Description
	}
	if risk.MatchedRule != "" {
		summary += " [" + risk.MatchedRule + "]"
	}
	if risk.BackendFlagged && risk.MatchedRule == "" {
		summary += " [backend]"
	}
	return summary
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
