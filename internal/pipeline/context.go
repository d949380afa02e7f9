package pipeline

import (
	"jobforge/internal/docedit"
	"jobforge/pkg/models"
)

// Intermediate keys shared between phases. Everything a phase produces for
// a later phase or for the transcript goes through these.
const (
	keyVersions           = "working_document_versions"
	keyValidationAttempts = "validation_attempts"
	keyIsValid            = "is_valid"
	keyDishonestyScore    = "dishonesty_score"
	keyAppliedUpdates     = "applied_updates"
	keyRefinementLog      = "refinement_changelog"
	keyFormattedResume    = "formatted_resume"
)

// Context is the state threaded through every phase of one pipeline run.
// InputDocument is never mutated; all edits land on WorkingDocument.
// Intermediates collects raw prompts, raw responses, parsed structures and
// flags; ChatHistories collects the per-phase conversation transcripts.
type Context struct {
	InputDocument   models.Document
	WorkingDocument models.Document
	JobDescription  string
	ExperienceText  string
	AllowedPaths    []string

	Intermediates map[string]any
	ChatHistories map[string][]models.ChatMessage
}

// appendChat records one exchange in a phase's transcript.
func (pc *Context) appendChat(phase, prompt, response string) {
	pc.ChatHistories[phase] = append(pc.ChatHistories[phase],
		models.ChatMessage{Role: models.RoleUser, Content: prompt},
		models.ChatMessage{Role: models.RoleAssistant, Content: response},
	)
}

// snapshotVersion appends a deep copy of the working document to the
// ordered version history.
func (pc *Context) snapshotVersion() {
	versions, _ := pc.Intermediates[keyVersions].([]models.Document)
	pc.Intermediates[keyVersions] = append(versions, docedit.CopyDocument(pc.WorkingDocument))
}

// VersionHistory returns the ordered document snapshots taken so far.
func (pc *Context) VersionHistory() []models.Document {
	versions, _ := pc.Intermediates[keyVersions].([]models.Document)
	return versions
}

func (pc *Context) validationAttempts() int {
	n, _ := pc.Intermediates[keyValidationAttempts].(int)
	return n
}

func (pc *Context) isValid() bool {
	v, _ := pc.Intermediates[keyIsValid].(bool)
	return v
}

// stringIntermediate fetches a previously stored string value, reporting
// whether it was present and non-empty.
func (pc *Context) stringIntermediate(key string) (string, bool) {
	s, ok := pc.Intermediates[key].(string)
	return s, ok && s != ""
}
