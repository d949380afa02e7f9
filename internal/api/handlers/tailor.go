package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"jobforge/internal/llm"
	"jobforge/internal/output"
	"jobforge/internal/pipeline"
	"jobforge/pkg/models"
	"jobforge/pkg/utils"
)

var validate = validator.New()

// TailorDeps carries everything the tailor endpoint needs: the model
// client, the candidate's base resume and experience text loaded at
// startup, default pipeline settings, and the output writer.
type TailorDeps struct {
	Invoker             llm.Invoker
	Writer              *output.Writer
	InputDocument       models.Document
	ExperienceText      string
	SectionPaths        []string
	MaxRetries          int
	DishonestyThreshold int
	CompilePDF          bool
}

// TailorHandler runs one synchronous pipeline for the posted job and
// returns the tailored result. Request options may override the section
// paths and the validation retry ceiling for that run.
func TailorHandler(deps *TailorDeps) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := utils.GetLogger()
		start := time.Now()

		var req models.TailorRequest
		if err := c.Bind(&req); err != nil {
			return errorResponse(c, utils.NewBadRequestError("invalid request body"), requestID)
		}
		if err := validate.Struct(&req); err != nil {
			return errorResponse(c, utils.NewValidationError(err.Error()), requestID)
		}
		if req.Job.JobDescription == "" {
			return errorResponse(c, utils.NewValidationError("job.job_description is required"), requestID)
		}

		sectionPaths := deps.SectionPaths
		maxRetries := deps.MaxRetries
		compilePDF := deps.CompilePDF
		if req.Options != nil {
			if len(req.Options.SectionPaths) > 0 {
				sectionPaths = req.Options.SectionPaths
			}
			if req.Options.MaxRetries > 0 {
				maxRetries = req.Options.MaxRetries
			}
			if req.Options.SkipPDF {
				compilePDF = false
			}
		}

		logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"job":        req.Job.DisplayName(),
		}).Info("Tailor request accepted")

		engine := pipeline.NewEngine(deps.Invoker, sectionPaths, maxRetries, deps.DishonestyThreshold)
		result, err := engine.Run(c.Request().Context(), deps.InputDocument, req.Job.JobDescription, deps.ExperienceText)
		if err != nil {
			return tailorError(c, err, requestID, start)
		}

		if _, err := deps.Writer.WriteAll(c.Request().Context(), req.Job, result, compilePDF); err != nil {
			logger.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to persist tailor outputs")
		}

		return c.JSON(http.StatusOK, models.TailorResponse{
			Success:        true,
			Result:         result,
			ProcessingTime: time.Since(start),
			RequestID:      requestID,
		})
	}
}

// tailorError maps pipeline failures to the application error taxonomy:
// exhausted LLM options surface as an upstream failure, a rejected input
// contract as a bad request, anything else as a failed run.
func tailorError(c echo.Context, err error, requestID string, start time.Time) error {
	var ce *utils.CustomError
	var exhaustion *llm.ExhaustionError
	var ctxErr *pipeline.ContextValidationError
	switch {
	case errors.As(err, &exhaustion):
		ce = utils.NewLLMError(err.Error())
	case errors.As(err, &ctxErr):
		ce = utils.NewBadRequestError(err.Error())
	default:
		ce = utils.NewPipelineError(err.Error())
	}

	utils.GetLogger().WithFields(logrus.Fields{
		"request_id": requestID,
		"error":      err.Error(),
	}).Error("Tailor request failed")

	return c.JSON(ce.Code, models.TailorResponse{
		Success:        false,
		Error:          ce.Error(),
		ProcessingTime: time.Since(start),
		RequestID:      requestID,
	})
}

func errorResponse(c echo.Context, ce *utils.CustomError, requestID string) error {
	return c.JSON(ce.Code, models.ErrorResponse{
		Error:     http.StatusText(ce.Code),
		Message:   ce.Error(),
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}
