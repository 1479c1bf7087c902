package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/rfp-brief/backend/internal/evaluation"
	"github.com/rfp-brief/backend/pkg/logger"
)

type EvaluationHandler struct {
	evaluator *evaluation.Evaluator
}

func NewEvaluationHandler(evaluator *evaluation.Evaluator) *EvaluationHandler {
	return &EvaluationHandler{
		evaluator: evaluator,
	}
}

// Evaluate scores the current rules against a labelled dataset. With
// ?format=text the plain-text report is returned instead of JSON.
func (h *EvaluationHandler) Evaluate(c *fiber.Ctx) error {
	dataset, err := evaluation.LoadDatasetFromJSON(c.Body())
	if err != nil {
		logger.Error("Failed to parse evaluation dataset", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid dataset",
		})
	}

	if len(dataset.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "items is required",
		})
	}

	report := h.evaluator.Run(dataset)

	if c.Query("format") == "text" {
		return c.SendString(evaluation.GenerateReport(report))
	}
	return c.JSON(report)
}
