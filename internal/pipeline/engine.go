package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"jobforge/internal/llm"
	"jobforge/pkg/models"
	"jobforge/pkg/utils"
)

// Engine runs the resume optimization state machine:
//
//	LoadInputs -> Planning -> Optimization -> Validation
//	Validation --valid--> Formatting -> OutputCompile
//	Validation --invalid--> Refinement -> Optimization (loop)
//
// The loop is bounded by the validation attempt ceiling: once reached,
// validity is forced so the run terminates. Each phase either completes
// and hands the context forward or returns a typed error; there are no
// silent skips.
type Engine struct {
	llm                  llm.Invoker
	sectionPaths         []string
	maxValidationRetries int
	dishonestyThreshold  int
	log                  *logrus.Logger
}

// NewEngine builds a pipeline engine. sectionPaths may be empty, in which
// case allowed paths are inferred from the input document's top-level keys
// at load time.
func NewEngine(invoker llm.Invoker, sectionPaths []string, maxValidationRetries, dishonestyThreshold int) *Engine {
	if maxValidationRetries < 1 {
		maxValidationRetries = 5
	}
	if dishonestyThreshold <= 0 {
		dishonestyThreshold = 20
	}
	return &Engine{
		llm:                  invoker,
		sectionPaths:         sectionPaths,
		maxValidationRetries: maxValidationRetries,
		dishonestyThreshold:  dishonestyThreshold,
		log:                  utils.GetLogger(),
	}
}

// Run executes one full pipeline over an input document, returning the
// tailored result. The input document is never mutated.
func (e *Engine) Run(ctx context.Context, inputDoc models.Document, jobDescription, experienceText string) (*models.TailorResult, error) {
	pc, err := e.loadInputs(inputDoc, jobDescription, experienceText)
	if err != nil {
		return nil, err
	}

	if err := e.planning(ctx, pc); err != nil {
		return nil, err
	}
	if err := e.optimization(ctx, pc); err != nil {
		return nil, err
	}

	for {
		if err := e.validation(ctx, pc); err != nil {
			return nil, err
		}
		if pc.isValid() {
			break
		}
		if err := e.refinement(ctx, pc); err != nil {
			return nil, err
		}
		if err := e.optimization(ctx, pc); err != nil {
			return nil, err
		}
	}

	if err := e.formatting(ctx, pc); err != nil {
		return nil, err
	}

	return e.compileOutput(pc), nil
}

// askLLM sends one prompt on behalf of a phase, records the raw prompt and
// response in intermediates under promptKey, and appends the exchange to
// the phase transcript. useMemory controls whether the phase's prior
// transcript is sent as chat history.
func (e *Engine) askLLM(ctx context.Context, pc *Context, phase, promptKey, prompt string, useMemory bool) (string, error) {
	var history []models.ChatMessage
	if useMemory {
		history = pc.ChatHistories[phase]
	}

	response, err := e.llm.Invoke(ctx, prompt, history)
	if err != nil {
		return "", fmt.Errorf("%s call failed: %w", promptKey, err)
	}

	pc.Intermediates[promptKey+"_inputs"] = prompt
	pc.Intermediates[promptKey+"_output"] = response
	pc.appendChat(phase, prompt, response)

	e.log.WithFields(logrus.Fields{
		"phase":           phase,
		"prompt_key":      promptKey,
		"response_length": len(response),
	}).Debug("LLM exchange completed")

	return response, nil
}

// compileOutput assembles the pipeline's return contract.
func (e *Engine) compileOutput(pc *Context) *models.TailorResult {
	result := &models.TailorResult{
		WorkingDocument: pc.WorkingDocument,
		Intermediates:   pc.Intermediates,
		ChatHistories:   pc.ChatHistories,
	}
	if formatted, ok := pc.Intermediates[keyFormattedResume].(models.Document); ok {
		result.FormattedDocument = formatted
	}

	e.log.WithFields(logrus.Fields{
		"validation_attempts": pc.validationAttempts(),
		"dishonesty_score":    pc.Intermediates[keyDishonestyScore],
		"versions":            len(pc.VersionHistory()),
	}).Info("Pipeline run completed")

	return result
}
