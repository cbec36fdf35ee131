package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
)

// runREPL reads requests until exit, quit or EOF. Each turn gets its own
// interrupt context, so Ctrl-C cancels the turn and the session goes on.
// "fix" asks for a corrected version of the last command that failed.
func runREPL(ctx context.Context, s *session) error {
	if _, err := s.Controller(ctx); err != nil {
		return err
	}
	out := s.opts.Stdout
	s.renderer.Banner(s.container.Shell, s.container.Config.PreferenceOrder())

	for {
		fmt.Fprint(out, s.styles.Prompt.Render("nlsh> "))

		line, err := readInterruptible(ctx, s.lines)
		switch {
		case errors.Is(err, io.EOF):
			fmt.Fprintln(out)
			return nil
		case errors.Is(err, errInterrupted):
			fmt.Fprintln(out)
			continue
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		if strings.EqualFold(line, "fix") {
			err = s.runFix(turnCtx)
		} else {
			_, err = s.runTurn(turnCtx, line)
		}
		stop()
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

var errInterrupted = errors.New("interrupted")

// readInterruptible turns Ctrl-C at the prompt into errInterrupted instead
// of killing the session.
func readInterruptible(ctx context.Context, lines *LineReader) (string, error) {
	readCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	line, err := lines.ReadLine(readCtx)
	if err != nil && ctx.Err() == nil && readCtx.Err() != nil {
		return "", errInterrupted
	}
	return line, err
}
