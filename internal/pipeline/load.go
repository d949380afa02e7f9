package pipeline

import (
	"jobforge/internal/docedit"
	"jobforge/pkg/models"
)

// loadInputs validates the run's inputs and builds the initial context:
// a deep working copy of the input document, empty intermediates and
// transcripts, and the version-0 snapshot.
func (e *Engine) loadInputs(inputDoc models.Document, jobDescription, experienceText string) (*Context, error) {
	if len(inputDoc) == 0 {
		return nil, &ContextValidationError{Phase: "load_inputs", Detail: "input document is missing or empty"}
	}
	if jobDescription == "" {
		return nil, &ContextValidationError{Phase: "load_inputs", Detail: "job description is required"}
	}
	if experienceText == "" {
		return nil, &ContextValidationError{Phase: "load_inputs", Detail: "experience text is required"}
	}

	allowedPaths := e.sectionPaths
	if len(allowedPaths) == 0 {
		allowedPaths = docedit.InferTopLevelPaths(inputDoc)
		e.log.WithField("paths", allowedPaths).Debug("No section paths configured, inferred from input document")
	}

	pc := &Context{
		InputDocument:   inputDoc,
		WorkingDocument: docedit.CopyDocument(inputDoc),
		JobDescription:  jobDescription,
		ExperienceText:  experienceText,
		AllowedPaths:    allowedPaths,
		Intermediates:   make(map[string]any),
		ChatHistories:   make(map[string][]models.ChatMessage),
	}
	pc.snapshotVersion()

	e.log.WithField("sections", len(inputDoc)).Info("Pipeline inputs loaded")
	return pc, nil
}
