// Package prompt renders the user prompt for a pipeline request.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/pkg/redact"
)

const replyFormat = `Reply ONLY in this exact format (2 lines, no explanation):
DANGEROUS:false
COMMAND:your_command_here

Set DANGEROUS:true only for destructive commands (rm -rf, format, dd, etc).`

var (
	commandTemplate = template.Must(template.New("command").Parse(
		`{{if .Context}}{{.Context}}

{{end}}Convert to a {{.Shell}} command: {{.Utterance}}

` + replyFormat))

	recoveryTemplate = template.Must(template.New("recovery").Parse(
		`{{if .Context}}{{.Context}}

{{end}}Command '{{.Command}}' failed with exit code {{.ExitCode}}.
Output: {{.Stdout}}
Error: {{.Stderr}}
{{if .Utterance}}The original request was: {{.Utterance}}
{{end}}Provide a fixed {{.Shell}} command.

` + replyFormat))
)

// Options controls what goes into a prompt.
type Options struct {
	IncludeFiles   bool
	MaxFiles       int
	IncludeGit     bool
	RedactSecrets  bool
	MaxOutputBytes int
}

// OptionsFromConfig reads prompt options from configuration.
func OptionsFromConfig(cfg domain.Config) Options {
	return Options{
		IncludeFiles:   cfg.Context.IncludeFiles,
		MaxFiles:       cfg.GetMaxContextFiles(),
		IncludeGit:     cfg.Context.IncludeGit,
		RedactSecrets:  cfg.Recovery.RedactSecrets,
		MaxOutputBytes: cfg.GetMaxOutputBytes(),
	}
}

// Builder renders prompts. It holds no per-turn state.
type Builder struct {
	opts Options
}

// NewBuilder creates a Builder.
func NewBuilder(opts Options) *Builder {
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = domain.DefaultMaxContextFiles
	}
	if opts.MaxOutputBytes <= 0 {
		opts.MaxOutputBytes = domain.DefaultMaxOutputBytes
	}
	return &Builder{opts: opts}
}

type templateData struct {
	Context   string
	Shell     string
	Utterance string
	Command   string
	ExitCode  int
	Stdout    string
	Stderr    string
}

// Build renders the command prompt, or the recovery prompt when req.Failure is set.
func (b *Builder) Build(req domain.PipelineRequest) (string, error) {
	data := templateData{
		Context:   b.contextBlock(req),
		Shell:     req.Shell.Family.DisplayName(),
		Utterance: strings.TrimSpace(req.Utterance),
	}

	tmpl := commandTemplate
	if req.Failure != nil {
		tmpl = recoveryTemplate
		data.Command = b.scrub(req.Failure.Command)
		data.ExitCode = req.Failure.ExitCode
		data.Stdout = orNone(b.scrub(tail(req.Failure.Stdout, b.opts.MaxOutputBytes)))
		data.Stderr = orNone(b.scrub(tail(req.Failure.Stderr, b.opts.MaxOutputBytes)))
		data.Utterance = b.scrub(data.Utterance)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// contextBlock formats the working directory details as CWD/Files/Git lines.
func (b *Builder) contextBlock(req domain.PipelineRequest) string {
	var lines []string

	cwd := req.Local.WorkingDir
	if cwd == "" {
		cwd = req.Shell.WorkingDir
	}
	if cwd != "" {
		lines = append(lines, "CWD: "+cwd)
	}

	if b.opts.IncludeFiles && len(req.Local.Entries) > 0 {
		entries := req.Local.Entries
		extra := req.Local.Truncated
		if len(entries) > b.opts.MaxFiles {
			extra += len(entries) - b.opts.MaxFiles
			entries = entries[:b.opts.MaxFiles]
		}
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.DisplayName())
		}
		line := fmt.Sprintf("Files: [%s]", strings.Join(names, ", "))
		if extra > 0 {
			line += fmt.Sprintf(" (+%d more)", extra)
		}
		lines = append(lines, line)
	}

	if b.opts.IncludeGit && req.Local.Git != nil {
		if req.Local.Git.Branch != "" {
			lines = append(lines, fmt.Sprintf("Git: branch '%s'", req.Local.Git.Branch))
		} else {
			lines = append(lines, "Git: yes")
		}
	}

	return strings.Join(lines, "\n")
}

func (b *Builder) scrub(text string) string {
	if !b.opts.RedactSecrets {
		return text
	}
	return redact.Text(text)
}

// tail keeps the last max bytes of s, where errors usually are.
func tail(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	cut := strings.ToValidUTF8(s[len(s)-max:], "")
	return "[truncated] ..." + cut
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
