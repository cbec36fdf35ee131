// Package cli is the cobra command tree and the terminal adapters behind it.
package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/doeshing/nlsh/internal/app"
	"github.com/doeshing/nlsh/internal/application/pipeline"
	"github.com/doeshing/nlsh/internal/infrastructure/cli/commands"
	"github.com/doeshing/nlsh/internal/infrastructure/config"
)

// Options holds CLI-level configuration.
type Options struct {
	Debug  bool
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// session is the state shared by every command of one process: the lazily
// built container and, for the REPL, the controller that carries the last
// failure and disabled backends from turn to turn.
type session struct {
	opts       Options
	configPath string
	debug      bool
	copy       bool
	query      string

	lines      *LineReader
	styles     Styles
	container  *app.Container
	controller *pipeline.Controller
	renderer   *Renderer
}

// NewRootCmd wires the cobra root command. The returned func releases
// whatever the command built and must be called before the process exits.
func NewRootCmd(opts Options) (*cobra.Command, func() error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	s := &session{opts: opts, lines: NewLineReader(opts.Stdin)}
	s.styles = PlainStyles()
	if isTerminal(opts.Stdout) {
		s.styles = DefaultStyles()
	}

	root := &cobra.Command{
		Use:   "nlsh [request]",
		Short: "nlsh - natural language to shell commands",
		Long: "nlsh turns a request in plain language into a command for your shell, " +
			"shows it with a safety verdict and runs it only after you confirm.\n" +
			"Without arguments it starts an interactive session.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.query != "" {
				return runQuery(cmd.Context(), s, s.query)
			}
			if len(args) > 0 {
				return runQuery(cmd.Context(), s, strings.Join(args, " "))
			}
			return runREPL(cmd.Context(), s)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(opts.Stdin)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	root.PersistentFlags().StringVar(&s.configPath, "config", "", "Config file (default $NLSH_CONFIG or ~/.nlsh/config.yaml)")
	root.PersistentFlags().BoolVar(&s.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVarP(&s.copy, "copy", "c", false, "Copy each suggested command to the clipboard")
	root.Flags().StringVarP(&s.query, "query", "q", "", "Run a single request and exit")

	deps := &commands.Deps{
		Container: s.Container,
		Loader:    func() *config.FileLoader { return config.NewFileLoader(s.configPath) },
	}
	root.AddCommand(
		newQueryCommand(s),
		commands.NewConfigCommand(deps),
		commands.NewHistoryCommand(deps),
		commands.NewDoctorCommand(deps),
		commands.NewRulesCommand(deps),
		commands.NewBackendsCommand(deps),
	)
	return root, s.Close
}

func newQueryCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "query [natural language]",
		Short: "Generate, confirm and run a single command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), s, strings.Join(args, " "))
		},
	}
}

// Container builds the dependency graph on first use.
func (s *session) Container(ctx context.Context) (*app.Container, error) {
	if s.container != nil {
		return s.container, nil
	}
	c, err := app.BuildContainer(ctx, app.Options{
		ConfigPath: s.configPath,
		Debug:      s.debug || s.opts.Debug,
		Stdin:      s.opts.Stdin,
		Stdout:     s.opts.Stdout,
		Stderr:     s.opts.Stderr,
	})
	if err != nil {
		return nil, err
	}
	s.container = c
	return c, nil
}

// Controller builds the turn controller on first use.
func (s *session) Controller(ctx context.Context) (*pipeline.Controller, error) {
	if s.controller != nil {
		return s.controller, nil
	}
	c, err := s.Container(ctx)
	if err != nil {
		return nil, err
	}

	var spinner *Spinner
	if isTerminal(s.opts.Stdout) {
		spinner = NewSpinner(s.opts.Stdout)
	}
	s.renderer = NewRenderer(s.opts.Stdout, s.styles, spinner)

	ctrl, err := c.NewPipeline(app.UI{
		Prompter:        NewConfirmationPrompter(c.Config.Confirm, s.lines, s.opts.Stdout, s.styles),
		Observer:        s.renderer,
		Clipboard:       NewClipboard(),
		CopyToClipboard: s.copy,
	})
	if err != nil {
		return nil, err
	}
	s.controller = ctrl
	return ctrl, nil
}

// Close releases the container.
func (s *session) Close() error {
	if s.container == nil {
		return nil
	}
	err := s.container.Close()
	s.container = nil
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
