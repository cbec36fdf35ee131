package domain

// RiskLevel enumerates classifier outcomes.
type RiskLevel string

const (
	RiskSafe      RiskLevel = "safe"
	RiskDangerous RiskLevel = "dangerous"
)

// RiskAssessment is the verdict for one command string.
type RiskAssessment struct {
	Level RiskLevel
	// MatchedRule is the id of the first rule that matched, empty if none.
	MatchedRule string
	Description string
	// BackendFlagged records that the backend itself reported the command as dangerous.
	BackendFlagged bool
}

// IsDangerous reports whether either the classifier or the backend flagged the command.
func (r RiskAssessment) IsDangerous() bool {
	return r.Level == RiskDangerous || r.BackendFlagged
}

// Combine ORs the backend's self-reported flag into the classifier verdict.
// The flag can only raise the level, never lower it.
func (r RiskAssessment) Combine(backendFlag bool) RiskAssessment {
	if !backendFlag {
		return r
	}
	r.BackendFlagged = true
	if r.Level != RiskDangerous {
		r.Level = RiskDangerous
		if r.Description == "" {
			r.Description = "flagged as destructive by the backend"
		}
	}
	return r
}
