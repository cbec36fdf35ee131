package domain

// CommandSuggestion is the parsed result of one backend call.
type CommandSuggestion struct {
	Command     string
	Dangerous   bool
	Explanation string
	// Confidence is the optional self-reported score in [0,1]; nil when absent.
	Confidence *float64
}

// ConfirmationRequest is what the user is shown before anything runs.
type ConfirmationRequest struct {
	Command     string
	Explanation string
	Risk        RiskAssessment
	Backend     string
	// Recovery is set when the command is a proposed fix for a failed one.
	Recovery bool
	Failure  *FailureContext
}

// BackendSelection is the Fallback Policy's answer.
type BackendSelection struct {
	Backend string
	OK      bool
	Reason  string
}
