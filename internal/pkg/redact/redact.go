// Package redact scrubs credentials from text before it leaves the machine.
//
// Recovery prompts fold a failed command and its output into a request to a
// backend; this package removes the obvious secrets first.
package redact

import "regexp"

// Placeholder replaces every redacted value.
const Placeholder = "<redacted>"

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

const (
	keyword = `(?:token|secret|password|passwd|api[_-]?key|access[_-]?key)`
	value   = `([^\s"']+|"[^"]*"|'[^']*')`
)

var rules = []rule{
	// KEY=value and key: value
	{regexp.MustCompile(`(?i)\b([a-z0-9_]*` + keyword + `[a-z0-9_]*)\s*[=:]\s*` + value), `$1=` + Placeholder},
	{regexp.MustCompile(`(?i)\b(authorization\s*:\s*bearer)\s+([^\s"']+)`), `$1 ` + Placeholder},
	// --password=value and --api-key value
	{regexp.MustCompile(`(?i)(--[a-z0-9_-]*` + keyword + `[a-z0-9_-]*)\s*=\s*` + value), `$1=` + Placeholder},
	{regexp.MustCompile(`(?i)(--[a-z0-9_-]*(?:` + keyword + `|authorization)[a-z0-9_-]*)\s+` + value), `$1 ` + Placeholder},
	// positional: `token abc123`
	{regexp.MustCompile(`(?i)(^|\s)([a-z0-9_]*` + keyword + `[a-z0-9_]*)\s+` + value), `$1$2 ` + Placeholder},
	// well-known key shapes that show up without a label
	{regexp.MustCompile(`\bsk-(?:ant-)?[A-Za-z0-9_-]{16,}`), Placeholder},
	{regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{20,}`), Placeholder},
	{regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`), Placeholder},
	{regexp.MustCompile(`\bAIza[0-9A-Za-z_-]{35}`), Placeholder},
}

// Text scrubs common secret, token and password patterns from free-form text.
func Text(input string) string {
	redacted := input
	for _, r := range rules {
		redacted = r.pattern.ReplaceAllString(redacted, r.replacement)
	}
	return redacted
}
