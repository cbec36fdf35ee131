package ai

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/doeshing/nlsh/internal/domain"
)

var systemTemplate = template.Must(template.New("system").Parse(
	`You are nlsh, a cautious assistant that turns requests into {{.Shell}} commands.
Environment: {{.OS}}{{if .WorkingDir}}, working directory {{.WorkingDir}}{{end}}.
Answer with exactly one command for {{.Shell}}. Do not chain unrelated commands.
Reply format:
DANGEROUS:<true|false>
COMMAND:<command>
{{- if .AskConfidence}}
CONFIDENCE:<0.0-1.0, how sure you are that the command does what was asked>
{{- end}}
If the request is unclear or cannot be done, leave COMMAND empty and ask one short question on the next line.`))

type systemData struct {
	Shell         string
	OS            string
	WorkingDir    string
	AskConfidence bool
}

// renderSystemInstruction expands the per-backend system instruction for the
// session shell. Local models are also asked for a confidence score.
func renderSystemInstruction(kind domain.BackendKind, shell domain.ShellContext) (string, error) {
	osName := string(shell.OS)
	if osName == "" {
		osName = string(domain.OSOther)
	}
	data := systemData{
		Shell:         shell.Family.DisplayName(),
		OS:            osName,
		WorkingDir:    shell.WorkingDir,
		AskConfidence: kind == domain.BackendLocal,
	}
	var buf bytes.Buffer
	if err := systemTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
