package pipeline

import (
	"context"

	"jobforge/internal/docedit"
	"jobforge/internal/parser"
	"jobforge/pkg/utils"
)

// trailerMarkers delimit the changelog a refinement response appends after
// the revised resume block.
var trailerMarkers = []string{"CHANGES_MADE:", "CHANGELOG:"}

// refinement sends the validator's feedback and the current working
// document back to the model for a revision, splits the response into
// resume and changelog, and applies the filtered updates. No snapshot is
// taken here; the re-optimization that follows captures the next version.
func (e *Engine) refinement(ctx context.Context, pc *Context) error {
	feedback, _ := pc.stringIntermediate("validation_prompt_output")
	score, _ := toInt(pc.Intermediates[keyDishonestyScore])

	resumeYAML, err := docedit.Render(pc.WorkingDocument, false)
	if err != nil {
		return &ContextApplyError{Phase: "refinement", Detail: err.Error()}
	}

	out, err := e.askLLM(ctx, pc, "refinement", "feedback_prompt",
		buildRefinementPrompt(feedback, score, resumeYAML), false)
	if err != nil {
		return err
	}

	primary, changelog := parser.SplitPrimaryAndTrailer(out, trailerMarkers)
	updates := parser.ParseFirstBlock(primary)
	if len(updates) == 0 {
		return &ContextApplyError{
			Phase:   "refinement",
			Detail:  "no structured resume found in revision output",
			Snippet: utils.Truncate(out, 300),
		}
	}

	allowed := docedit.FilterUpdates(updates, pc.AllowedPaths)
	docedit.ApplyUpdates(pc.WorkingDocument, allowed, pc.AllowedPaths)
	pc.Intermediates[keyRefinementLog] = changelog

	e.log.WithField("updated_paths", len(allowed)).Info("Refinement phase: applied revision")
	return nil
}
