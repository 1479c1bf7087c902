package validation

import (
	"mime"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/rfp-brief/backend/internal/extraction"
	"github.com/rfp-brief/backend/internal/metrics"
)

type Config struct {
	MaxDocumentSize     int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

var defaultContentTypes = []string{
	fiber.MIMEApplicationJSON,
	fiber.MIMEMultipartForm,
	fiber.MIMETextPlain,
	fiber.MIMETextHTML,
	"application/xhtml+xml",
	"text/markdown",
}

// Middleware rejects uploads the processor could never accept before the
// body is parsed: unknown media types, oversized bodies and unknown
// highlight strategies.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxDocumentSize == 0 {
		cfg.MaxDocumentSize = 20 * 1024 * 1024
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = defaultContentTypes
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	allowed := make(map[string]bool, len(cfg.AllowedContentTypes))
	for _, ct := range cfg.AllowedContentTypes {
		allowed[ct] = true
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut {
			contentType := c.Get(fiber.HeaderContentType)
			if contentType != "" {
				mediaType, _, err := mime.ParseMediaType(contentType)
				if err != nil || !allowed[mediaType] {
					metrics.RequestsRejected.WithLabelValues("unsupported_type").Inc()
					cfg.Logger.Warn("Unsupported content type",
						zap.String("ip", c.IP()),
						zap.String("content_type", contentType),
					)
					return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
						"error": "Unsupported content type",
					})
				}
			}

			if len(c.Body()) > cfg.MaxDocumentSize {
				metrics.RequestsRejected.WithLabelValues("too_large").Inc()
				return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
					"error": "Document exceeds maximum size",
				})
			}
		}

		if h := c.Query("highlights"); h != "" {
			if _, ok := extraction.ParseStrategy(h); !ok {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "highlights must be one of: lead, frequency",
				})
			}
		}

		return c.Next()
	}
}
