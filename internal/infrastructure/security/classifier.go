package security

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/nlsh/assets"
	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/pkg/filesystem"
	"github.com/doeshing/nlsh/internal/ports"
)

// Rule is one data-driven danger pattern.
type Rule struct {
	ID          string `yaml:"id"`
	Pattern     string `yaml:"pattern"`
	Description string `yaml:"description"`

	re *regexp.Regexp
}

// Compile prepares the rule for matching.
func (r *Rule) Compile() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("rule without id")
	}
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return fmt.Errorf("rule %s: %w", r.ID, err)
	}
	r.re = re
	return nil
}

// Matches reports whether the command triggers the rule. An uncompiled rule
// never matches.
func (r Rule) Matches(command string) bool {
	return r.re != nil && r.re.MatchString(command)
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Version int    `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

// ParseRules decodes and compiles a rules document.
func ParseRules(data []byte) ([]Rule, error) {
	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode safety rules: %w", err)
	}
	rules := make([]Rule, 0, len(file.Rules))
	for _, rule := range file.Rules {
		if err := rule.Compile(); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// DefaultRules returns the built-in rule set.
func DefaultRules() ([]Rule, error) {
	return ParseRules(assets.DefaultSafetyRulesYAML)
}

// Classifier implements ports.SafetyClassifier. It performs no I/O after
// construction.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a classifier over already compiled rules.
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: append([]Rule(nil), rules...)}
}

// Load builds a classifier from the built-in rules plus the optional user
// file. User rules extend the defaults; they can never remove one.
func Load(userRulesPath string) (*Classifier, error) {
	rules, err := DefaultRules()
	if err != nil {
		return nil, err
	}

	path := filesystem.ExpandPath(userRulesPath)
	if path == "" {
		return NewClassifier(rules), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewClassifier(rules), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read safety rules %s: %w", path, err)
	}
	extra, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewClassifier(append(rules, extra...)), nil
}

// Rules returns the active rules in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Classify implements ports.SafetyClassifier. The command is checked as
// written and again with quoting and escapes removed, so `r"m" -rf` does not
// slip past a rule.
func (c *Classifier) Classify(command string) domain.RiskAssessment {
	assessment := domain.RiskAssessment{Level: domain.RiskSafe}
	if strings.TrimSpace(command) == "" {
		return assessment
	}

	candidates := []string{command}
	if normalized := normalize(command); normalized != command {
		candidates = append(candidates, normalized)
	}

	for _, rule := range c.rules {
		for _, candidate := range candidates {
			if rule.Matches(candidate) {
				assessment.Level = domain.RiskDangerous
				assessment.MatchedRule = rule.ID
				assessment.Description = rule.Description
				return assessment
			}
		}
	}
	return assessment
}

var quoteStripper = strings.NewReplacer(`"`, "", `'`, "", "`", "", `\`+"\n", " ")

func normalize(command string) string {
	stripped := quoteStripper.Replace(command)
	// drop POSIX backslash escapes such as r\m, but keep Windows paths intact
	if !strings.Contains(stripped, `:\`) {
		stripped = strings.ReplaceAll(stripped, `\`, "")
	}
	return strings.Join(strings.Fields(stripped), " ")
}

var _ ports.SafetyClassifier = (*Classifier)(nil)
