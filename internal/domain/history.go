package domain

import "time"

// TurnRecord captures one pipeline turn for the history store.
type TurnRecord struct {
	ID          string      `json:"id"`
	Timestamp   time.Time   `json:"timestamp"`
	Utterance   string      `json:"utterance"`
	Backend     string      `json:"backend"`
	Command     string      `json:"command"`
	RiskLevel   RiskLevel   `json:"risk_level"`
	MatchedRule string      `json:"matched_rule,omitempty"`
	Outcome     OutcomeKind `json:"outcome"`
	ExitCode    int         `json:"exit_code"`
	Recovered   bool        `json:"recovered"`
	Escalated   bool        `json:"escalated"`
	Reason      string      `json:"reason,omitempty"`
	DurationMS  int64       `json:"duration_ms"`
}

// NewTurnRecord flattens an outcome for persistence.
func NewTurnRecord(utterance string, outcome PipelineOutcome, started time.Time, finished time.Time) TurnRecord {
	rec := TurnRecord{
		ID:          outcome.TurnID,
		Timestamp:   started.UTC(),
		Utterance:   utterance,
		Backend:     outcome.Backend,
		RiskLevel:   outcome.Risk.Level,
		MatchedRule: outcome.Risk.MatchedRule,
		Outcome:     outcome.Kind,
		ExitCode:    outcome.ExitCode,
		Recovered:   outcome.Recovered,
		Escalated:   outcome.Escalated,
		Reason:      outcome.Reason,
		DurationMS:  finished.Sub(started).Milliseconds(),
	}
	if outcome.Suggestion != nil {
		rec.Command = outcome.Suggestion.Command
	}
	return rec
}
