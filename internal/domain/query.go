package domain

import "time"

// PipelineRequest is one user utterance plus everything needed to prompt a backend.
type PipelineRequest struct {
	Utterance string
	Shell     ShellContext
	Local     LocalContext
	// Failure is only set when re-entering after a failed execution.
	Failure *FailureContext
}

// FailureContext describes a command that exited non-zero.
type FailureContext struct {
	// Utterance is the request the failed command was generated for.
	Utterance string
	Command   string
	ExitCode  int
	Stdout    string
	Stderr    string
}

// ExecutionResult wraps details from the command executor.
type ExecutionResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Succeeded reports a zero exit status.
func (r ExecutionResult) Succeeded() bool {
	return r.ExitCode == 0
}

// Failure converts a failed execution into recovery context.
func (r ExecutionResult) Failure(command string) *FailureContext {
	return &FailureContext{
		Command:  command,
		ExitCode: r.ExitCode,
		Stdout:   r.Stdout,
		Stderr:   r.Stderr,
	}
}
