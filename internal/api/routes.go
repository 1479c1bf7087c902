// Package api assembles the HTTP routes.
package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/rfp-brief/backend/internal/api/handlers"
	"github.com/rfp-brief/backend/internal/metrics"
	"github.com/rfp-brief/backend/internal/middleware/security"
	"github.com/rfp-brief/backend/internal/middleware/validation"
)

type Routes struct {
	Summarize        *handlers.SummarizeHandler
	Solicitations    *handlers.SolicitationHandler
	Health           *handlers.HealthHandler
	Evaluation       *handlers.EvaluationHandler
	PreviewSecret    string
	MaxDocumentBytes int
	Logger           *zap.Logger
}

func Register(app *fiber.App, r Routes) {
	app.Get("/", r.Health.Root)
	app.Get("/healthz", r.Health.Healthz)
	app.Get("/metrics", metrics.MetricsHandler())

	guard := security.PreviewSecretMiddleware(r.PreviewSecret, r.Logger)
	validate := validation.Middleware(validation.Config{
		MaxDocumentSize: r.MaxDocumentBytes,
		Logger:          r.Logger,
	})

	v1 := app.Group("/api/v1")

	v1.Get("/health", r.Health.Health)
	v1.Get("/ready", r.Health.Ready)

	v1.Post("/summarize", guard, validate, r.Summarize.Summarize)
	v1.Post("/summarize/batch", guard, validate, r.Summarize.SummarizeBatch)

	v1.Get("/solicitations", guard, r.Solicitations.List)
	v1.Get("/solicitations/:id", guard, r.Solicitations.Get)
	v1.Get("/solicitations/:id/brief", guard, r.Solicitations.Brief)

	v1.Post("/evaluate", guard, validate, r.Evaluation.Evaluate)
}
