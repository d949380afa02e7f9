package pipeline

import (
	"context"

	"jobforge/internal/docedit"
	"jobforge/internal/parser"
	"jobforge/pkg/utils"
)

// optimization asks the model for a full candidate resume built from the
// planning outputs and the original document, then filters the candidate
// to the allowed section paths and applies it to the working document.
// Each successful application appends a version snapshot. The optimizer
// keeps its own chat memory, so re-entries after refinement see their
// earlier candidates.
func (e *Engine) optimization(ctx context.Context, pc *Context) error {
	profilePlan, ok := pc.stringIntermediate("profile_planning_output")
	if !ok {
		return &ContextValidationError{Phase: "optimization", Detail: "missing profile_planning_output from planning phase"}
	}
	bulletPlan, ok := pc.stringIntermediate("bullet_points_output")
	if !ok {
		return &ContextValidationError{Phase: "optimization", Detail: "missing bullet_points_output from planning phase"}
	}

	resumeYAML, err := docedit.Render(pc.InputDocument, false)
	if err != nil {
		return &ContextApplyError{Phase: "optimization", Detail: err.Error()}
	}

	out, err := e.askLLM(ctx, pc, "optimizer", "optimizer_prompt",
		buildOptimizerPrompt(resumeYAML, profilePlan, bulletPlan), true)
	if err != nil {
		return err
	}

	updates := parser.ParseFirstBlock(out)
	if len(updates) == 0 {
		return &ContextApplyError{
			Phase:   "optimization",
			Detail:  "no structured resume found in model output",
			Snippet: utils.Truncate(out, 300),
		}
	}

	allowed := docedit.FilterUpdates(updates, pc.AllowedPaths)
	docedit.ApplyUpdates(pc.WorkingDocument, allowed, pc.AllowedPaths)
	pc.Intermediates[keyAppliedUpdates] = allowed
	pc.snapshotVersion()

	e.log.WithField("updated_paths", len(allowed)).Info("Optimization phase: applied candidate updates")
	return nil
}
