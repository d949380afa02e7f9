package pipeline

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"

	"jobforge/internal/docedit"
	"jobforge/internal/parser"
)

// validation shows the model only the allowed sections of the original and
// working documents and asks for a 0-100 dishonesty score. The score and
// the resulting validity flag land in intermediates; the attempt counter
// increments every pass. At the retry ceiling validity is forced true so
// the run terminates; the recorded score still reflects the last real
// evaluation, and consumers are expected to inspect it regardless of the
// flag.
func (e *Engine) validation(ctx context.Context, pc *Context) error {
	initialSections, err := docedit.RenderSections(pc.InputDocument, pc.AllowedPaths)
	if err != nil {
		return &ContextApplyError{Phase: "validation", Detail: err.Error()}
	}
	editedSections, err := docedit.RenderSections(pc.WorkingDocument, pc.AllowedPaths)
	if err != nil {
		return &ContextApplyError{Phase: "validation", Detail: err.Error()}
	}

	out, err := e.askLLM(ctx, pc, "validation", "validation_prompt",
		buildValidationPrompt(pc.JobDescription, pc.ExperienceText, initialSections, editedSections), false)
	if err != nil {
		return err
	}

	attempts := pc.validationAttempts() + 1
	pc.Intermediates[keyValidationAttempts] = attempts

	score := parseDishonestyScore(parser.ParseFirstBlock(out))
	valid := score <= e.dishonestyThreshold
	pc.Intermediates[keyDishonestyScore] = score
	pc.Intermediates[keyIsValid] = valid

	e.log.WithFields(logrus.Fields{
		"attempt":          attempts,
		"dishonesty_score": score,
		"is_valid":         valid,
	}).Info("Validation phase: scored working document")

	if attempts >= e.maxValidationRetries && !valid {
		e.log.WithField("attempts", attempts).Warn(
			"Validation retry ceiling reached, forcing validity to terminate; dishonesty score stands")
		pc.Intermediates[keyIsValid] = true
	}

	return nil
}

// parseDishonestyScore digs DISHONESTY_SCORE out of the parsed validation
// block. An unparseable response scores zero, matching the contract that
// the score defaults to clean when the validator produced nothing usable.
func parseDishonestyScore(parsed map[string]any) int {
	results, ok := parsed["VALIDATION_RESULTS"].(map[string]any)
	if !ok {
		results = parsed
	}
	if n, ok := toInt(results["DISHONESTY_SCORE"]); ok {
		return n
	}
	return 0
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}
