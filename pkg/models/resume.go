package models

// Document is a nested resume document as parsed from YAML. Keys are section
// names (profile, skills, experience, ...); values are nested maps, lists or
// scalars.
type Document = map[string]any

// Chat roles used in phase conversational memory.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry in a phase's conversational memory.
type ChatMessage struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// TailorResult is the pipeline's return contract, consumed by the output
// writer and the HTTP handler. WorkingDocument is always present;
// FormattedDocument only when the formatting phase produced one.
type TailorResult struct {
	WorkingDocument   Document                 `json:"working_document"`
	FormattedDocument Document                 `json:"formatted_document,omitempty"`
	Intermediates     map[string]any           `json:"intermediates"`
	ChatHistories     map[string][]ChatMessage `json:"chat_histories"`
}

// DishonestyScore returns the last validation score recorded by the pipeline,
// or -1 if no validation pass ran. Callers should inspect this even when the
// run completed: a run that hit the validation retry ceiling terminates with
// the document unvalidated.
func (r *TailorResult) DishonestyScore() int {
	if r.Intermediates == nil {
		return -1
	}
	if v, ok := r.Intermediates["dishonesty_score"].(int); ok {
		return v
	}
	return -1
}

// FinalDocument returns the formatted document when present, otherwise the
// working document.
func (r *TailorResult) FinalDocument() Document {
	if r.FormattedDocument != nil {
		return r.FormattedDocument
	}
	return r.WorkingDocument
}
