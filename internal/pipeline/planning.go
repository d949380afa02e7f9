package pipeline

import (
	"context"

	"jobforge/internal/docedit"
	"jobforge/internal/parser"
)

// planning runs the four-step planning conversation. All steps share one
// chat memory so later prompts can reference earlier answers: keyword
// extraction, evidence mapping, profile planning, bullet planning. A
// parseable profile replacement from step three is applied to the working
// document immediately; everything else waits for optimization.
func (e *Engine) planning(ctx context.Context, pc *Context) error {
	e.log.Info("Planning phase: starting 4-step planning conversation")

	if _, err := e.askLLM(ctx, pc, "planning", "jd_analysis",
		buildJDAnalysisPrompt(pc.JobDescription), true); err != nil {
		return err
	}

	if _, err := e.askLLM(ctx, pc, "planning", "skill_mapping",
		buildSkillMappingPrompt(pc.ExperienceText), true); err != nil {
		return err
	}

	profileDraft, _ := docedit.Extract(pc.WorkingDocument, "profile.description").(string)
	planOut, err := e.askLLM(ctx, pc, "planning", "profile_planning",
		buildProfilePlanPrompt(profileDraft), true)
	if err != nil {
		return err
	}
	e.applyProfilePlan(pc, planOut)

	resumeYAML, err := docedit.Render(pc.WorkingDocument, false)
	if err != nil {
		return &ContextApplyError{Phase: "planning", Detail: err.Error()}
	}
	if _, err := e.askLLM(ctx, pc, "planning", "bullet_points",
		buildBulletPointsPrompt(resumeYAML), true); err != nil {
		return err
	}

	return nil
}

// applyProfilePlan updates profile.description in the working document
// when the planning output contains a parseable replacement. A plan that
// yields nothing usable is not an error at this stage; optimization will
// still see the raw plan text.
func (e *Engine) applyProfilePlan(pc *Context, planOut string) {
	parsed := parser.ParseFirstBlock(planOut)
	if len(parsed) == 0 {
		return
	}

	profile, _ := parsed["profile"].(map[string]any)
	description, _ := profile["description"].(string)
	if description == "" {
		return
	}

	docedit.ApplyUpdates(pc.WorkingDocument, docedit.Document{
		"profile": map[string]any{"description": description},
	}, []string{"profile.description"})

	e.log.Debug("Planning phase: applied replacement profile description")
}
