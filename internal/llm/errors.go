package llm

import "fmt"

// ExhaustionError means every option for completing an LLM call failed:
// all key slots for the primary model were unusable or retried out, and
// the fallback model failed too. Both causes are kept for diagnosis.
type ExhaustionError struct {
	PrimaryErr  error
	FallbackErr error
}

func (e *ExhaustionError) Error() string {
	return fmt.Sprintf("all LLM options exhausted: primary: %v; fallback: %v",
		e.PrimaryErr, e.FallbackErr)
}

func (e *ExhaustionError) Unwrap() error {
	return e.PrimaryErr
}
