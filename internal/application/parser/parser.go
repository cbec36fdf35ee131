// Package parser turns a backend's raw text into a CommandSuggestion.
//
// The expected shape is two tagged lines in any order:
//
//	DANGEROUS:false
//	COMMAND:ls -la
//
// Tags match case-insensitively at the start of a line and the first
// occurrence of each wins. Code-fence lines are dropped before matching.
// Every other non-empty line is explanation text.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/doeshing/nlsh/internal/domain"
)

const (
	tagCommand     = "command:"
	tagDangerous   = "dangerous:"
	tagConfidence  = "confidence:"
	tagExplanation = "explanation:"
	fence          = "```"
)

// Error is a parse failure. Kind is domain.ErrNoCommand or domain.ErrRefusal;
// Detail carries the backend text to surface verbatim.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Kind }

// Parse extracts a suggestion from raw backend text.
func Parse(raw string) (domain.CommandSuggestion, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return domain.CommandSuggestion{}, &Error{Kind: domain.ErrNoCommand, Detail: "empty response"}
	}

	var (
		suggestion     domain.CommandSuggestion
		commandFound   bool
		dangerousFound bool
		inFence        bool
		body           []bodyLine
	)

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, fence) {
			// A one-line fence such as ```ls -la``` holds content too.
			if closedFence(trimmed) {
				if inner, ok := unfence(trimmed); ok {
					body = append(body, bodyLine{text: inner, fenced: true})
				}
				continue
			}
			inFence = !inFence
			continue
		}
		if trimmed == "" {
			continue
		}

		if value, ok := cutTag(trimmed, tagCommand); ok {
			if !commandFound {
				commandFound = true
				// An unclosed fence after COMMAND: usually puts the command
				// on the next lines.
				if strings.HasPrefix(value, fence) && !closedFence(value) {
					inFence = true
					suggestion.Command = dropLanguage(strings.TrimPrefix(value, fence))
					continue
				}
				suggestion.Command = stripBackticks(value)
			}
			continue
		}
		if value, ok := cutTag(trimmed, tagDangerous); ok {
			if !dangerousFound {
				dangerousFound = true
				suggestion.Dangerous = parseDangerToken(value)
			}
			continue
		}
		if value, ok := cutTag(trimmed, tagConfidence); ok {
			if suggestion.Confidence == nil {
				suggestion.Confidence = parseConfidence(value)
			}
			continue
		}
		if value, ok := cutTag(trimmed, tagExplanation); ok {
			trimmed = value
			if trimmed == "" {
				continue
			}
		}

		body = append(body, bodyLine{text: trimmed, fenced: inFence})
	}

	fenced := fencedLines(body)
	fromFence := suggestion.Command == "" && len(fenced) == 1
	if fromFence {
		suggestion.Command = stripBackticks(fenced[0])
	}
	suggestion.Explanation = explanationText(body, fromFence)

	if suggestion.Command == "" {
		if commandFound && looksLikeRefusal(suggestion.Explanation) {
			return domain.CommandSuggestion{}, &Error{Kind: domain.ErrRefusal, Detail: suggestion.Explanation}
		}
		return domain.CommandSuggestion{}, &Error{Kind: domain.ErrNoCommand, Detail: text}
	}

	return suggestion, nil
}

// bodyLine is a non-tag line of the response.
type bodyLine struct {
	text   string
	fenced bool
}

func fencedLines(body []bodyLine) []string {
	var out []string
	for _, line := range body {
		if line.fenced {
			out = append(out, line.text)
		}
	}
	return out
}

// explanationText joins every body line, leaving out the fenced line when it
// became the command.
func explanationText(body []bodyLine, skipFenced bool) string {
	lines := make([]string, 0, len(body))
	for _, line := range body {
		if skipFenced && line.fenced {
			continue
		}
		lines = append(lines, line.text)
	}
	return strings.Join(lines, "\n")
}

// cutTag reports whether line starts with tag (case-insensitive) and returns
// the trimmed remainder.
func cutTag(line, tag string) (string, bool) {
	if len(line) < len(tag) || !strings.EqualFold(line[:len(tag)], tag) {
		return "", false
	}
	return strings.TrimSpace(line[len(tag):]), true
}

// stripBackticks removes a wrapping ``` fence (and its language tag) or one
// pair of wrapping backticks. Commands that use backticks internally (two or
// more pairs) are left alone.
func stripBackticks(value string) string {
	value = strings.TrimSpace(value)
	if closedFence(value) {
		inner, _ := unfence(value)
		return inner
	}
	if len(value) >= 2 && strings.HasPrefix(value, "`") && strings.HasSuffix(value, "`") && strings.Count(value, "`") == 2 {
		return strings.TrimSpace(value[1 : len(value)-1])
	}
	return value
}

// fenceLanguages are the info strings models put after an opening fence.
// Tags that are also common commands (ps, cmd, bat) are not listed.
var fenceLanguages = map[string]bool{
	"bash": true, "sh": true, "zsh": true, "shell": true,
	"console": true, "terminal": true, "text": true,
	"powershell": true, "pwsh": true, "ps1": true, "batch": true,
}

func closedFence(value string) bool {
	return len(value) > 2*len(fence) && strings.HasPrefix(value, fence) && strings.HasSuffix(value, fence)
}

// unfence unwraps a single-line ```lang cmd``` block. It reports false when
// value is not a closed fence or holds nothing but a language tag.
func unfence(value string) (string, bool) {
	if !closedFence(value) {
		return "", false
	}
	inner := dropLanguage(value[len(fence) : len(value)-len(fence)])
	if inner == "" {
		return "", false
	}
	return inner, true
}

// dropLanguage trims a leading fence info string such as "bash". A tag
// followed by a flag is kept since "bash -c ..." is itself a command.
func dropLanguage(value string) string {
	value = strings.TrimSpace(value)
	lang, rest, _ := strings.Cut(value, " ")
	if !fenceLanguages[strings.ToLower(lang)] {
		return value
	}
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "-") {
		return value
	}
	return rest
}

// parseDangerToken reads the DANGEROUS: value. Anything that is not a clear
// "no" counts as dangerous.
func parseDangerToken(value string) bool {
	token := strings.ToLower(strings.Trim(value, " \t`*.\"'"))
	if fields := strings.Fields(token); len(fields) > 0 {
		token = fields[0]
	}
	switch token {
	case "false", "no", "0", "n":
		return false
	default:
		return true
	}
}

func parseConfidence(value string) *float64 {
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "%"))
	score, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	if score > 1 && score <= 100 {
		score /= 100
	}
	if score < 0 || score > 1 {
		return nil
	}
	return &score
}

var refusalMarkers = []string{
	"sorry",
	"i cannot",
	"i can't",
	"i can not",
	"unable to",
	"not able to",
	"i won't",
	"please clarify",
	"could you clarify",
	"could you please",
	"can you clarify",
	"more details",
	"more information",
	"not sure what",
}

func looksLikeRefusal(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if strings.HasSuffix(text, "?") {
		return true
	}
	lower := strings.ToLower(text)
	for _, marker := range refusalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
