package pipeline

import "fmt"

// ContextValidationError means a phase's entry contract was not met: a
// required input is missing or has the wrong type. Fatal to the run, never
// retried.
type ContextValidationError struct {
	Phase  string
	Detail string
}

func (e *ContextValidationError) Error() string {
	return fmt.Sprintf("[%s] invalid pipeline context: %s", e.Phase, e.Detail)
}

// ContextApplyError means a phase could not turn parsed model output into
// a document mutation. Snippet carries the offending output so a batch
// operator can diagnose the failure from the per-job result line alone.
type ContextApplyError struct {
	Phase   string
	Detail  string
	Snippet string
}

func (e *ContextApplyError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("[%s] failed to apply model output: %s (output snippet: %s)", e.Phase, e.Detail, e.Snippet)
	}
	return fmt.Sprintf("[%s] failed to apply model output: %s", e.Phase, e.Detail)
}
