package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/ports"
)

// Renderer prints turn progress and outcomes. It implements
// ports.TurnObserver so the spinner runs while a backend is thinking.
type Renderer struct {
	out     io.Writer
	styles  Styles
	spinner *Spinner
	now     func() time.Time

	mu      sync.Mutex
	started time.Time
}

// NewRenderer builds a renderer. spinner may be nil for non-terminal output.
func NewRenderer(out io.Writer, styles Styles, spinner *Spinner) *Renderer {
	return &Renderer{out: out, styles: styles, spinner: spinner, now: time.Now}
}

// GenerationStarted implements ports.TurnObserver.
func (r *Renderer) GenerationStarted(backend string, recovery bool) {
	r.mu.Lock()
	r.started = r.now()
	r.mu.Unlock()

	if r.spinner == nil {
		return
	}
	label := "asking " + backend
	if recovery {
		label = "asking " + backend + " for a fix"
	}
	r.spinner.Start(r.styles.Dim.Render(label + "..."))
}

// GenerationFinished implements ports.TurnObserver.
func (r *Renderer) GenerationFinished(backend string, err error) {
	if r.spinner != nil {
		r.spinner.Stop()
	}
	r.mu.Lock()
	elapsed := r.now().Sub(r.started)
	r.mu.Unlock()

	if err != nil {
		fmt.Fprintln(r.out, r.styles.Dim.Render(fmt.Sprintf("%s failed after %s: %v", backend, formatElapsed(elapsed), err)))
		return
	}
	fmt.Fprintln(r.out, r.styles.Dim.Render(fmt.Sprintf("%s answered in %s", backend, formatElapsed(elapsed))))
}

// Outcome prints the end of a turn. Executed commands already streamed their
// output, so only non-zero results and non-executions get a line.
func (r *Renderer) Outcome(outcome domain.PipelineOutcome) {
	switch outcome.Kind {
	case domain.OutcomeExecuted:
		if outcome.Recovered {
			fmt.Fprintln(r.out, r.styles.Success.Render("fixed command succeeded"))
		}
	case domain.OutcomeDeclined:
		fmt.Fprintln(r.out, r.styles.Dim.Render("not run"))
	case domain.OutcomeParseFailed:
		fmt.Fprintln(r.out, r.styles.Warning.Render(outcome.Reason))
	case domain.OutcomeBackendUnavailable:
		fmt.Fprintln(r.out, r.styles.Error.Render(outcome.Summary()))
	case domain.OutcomeFailed:
		msg := outcome.Summary()
		if outcome.Recovered {
			msg += " after one fix attempt"
		}
		fmt.Fprintln(r.out, r.styles.Error.Render(msg))
	case domain.OutcomeCancelled:
		fmt.Fprintln(r.out, r.styles.Dim.Render("interrupted"))
	}
}

// Banner is printed when the REPL starts.
func (r *Renderer) Banner(shell domain.ShellContext, order []string) {
	fmt.Fprintln(r.out, r.styles.Prompt.Render("nlsh")+r.styles.Dim.Render(
		fmt.Sprintf(" %s on %s, backends %s. Type fix to retry the last failed command, exit to quit.", shell.Family.DisplayName(), shell.OS, strings.Join(order, " > "))))
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

var _ ports.TurnObserver = (*Renderer)(nil)
