package pipeline

import (
	"context"

	"jobforge/internal/docedit"
	"jobforge/internal/parser"
	"jobforge/pkg/models"
	"jobforge/pkg/utils"
)

// formatting asks the model to apply keyword emphasis markup to the
// working document, producing the presentation variant. The "sections"
// table of contents is copied verbatim from the input document no matter
// what the model returned; templates depend on it surviving untouched.
func (e *Engine) formatting(ctx context.Context, pc *Context) error {
	resumeYAML, err := docedit.Render(pc.WorkingDocument, false)
	if err != nil {
		return &ContextApplyError{Phase: "formatting", Detail: err.Error()}
	}
	keywords, _ := pc.stringIntermediate("jd_analysis_output")

	out, err := e.askLLM(ctx, pc, "formatting", "formatting_prompt",
		buildFormattingPrompt(resumeYAML, keywords), false)
	if err != nil {
		return err
	}

	formatted := models.Document(parser.ParseFirstBlock(out))
	if len(formatted) == 0 {
		return &ContextApplyError{
			Phase:   "formatting",
			Detail:  "no structured resume found in formatting output",
			Snippet: utils.Truncate(out, 300),
		}
	}

	if sections, ok := pc.InputDocument["sections"]; ok {
		formatted["sections"] = docedit.DeepCopy(sections)
	} else {
		delete(formatted, "sections")
	}

	pc.Intermediates[keyFormattedResume] = formatted
	e.log.Info("Formatting phase: produced presentation document")
	return nil
}
