package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/rfp-brief/backend/internal/brief"
	"github.com/rfp-brief/backend/internal/storage"
	"github.com/rfp-brief/backend/internal/storage/models"
	"github.com/rfp-brief/backend/pkg/logger"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type SolicitationHandler struct {
	store storage.Store
}

func NewSolicitationHandler(store storage.Store) *SolicitationHandler {
	return &SolicitationHandler{
		store: store,
	}
}

func (h *SolicitationHandler) List(c *fiber.Ctx) error {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be a positive integer",
			})
		}
		limit = min(n, maxListLimit)
	}

	list, err := h.store.ListSolicitations(c.UserContext(), limit)
	if err != nil {
		logger.Error("Failed to list solicitations", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list solicitations",
		})
	}

	return c.JSON(fiber.Map{
		"solicitations": list,
	})
}

func (h *SolicitationHandler) Get(c *fiber.Ctx) error {
	env, ok, err := h.lookup(c)
	if !ok {
		return err
	}
	return c.JSON(env)
}

// Brief renders the stored envelope as markdown.
func (h *SolicitationHandler) Brief(c *fiber.Ctx) error {
	env, ok, err := h.lookup(c)
	if !ok {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	return c.SendString(brief.Render(env))
}

// lookup loads the envelope named by :id. When ok is false the error
// response has already been written and err is the result of writing it.
func (h *SolicitationHandler) lookup(c *fiber.Ctx) (env *models.Envelope, ok bool, err error) {
	id := c.Params("id")

	env, err = h.store.GetSolicitation(c.UserContext(), id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, false, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "solicitation not found",
		})
	}
	if err != nil {
		logger.Error("Failed to get solicitation", zap.String("id", id), zap.Error(err))
		return nil, false, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get solicitation",
		})
	}
	return env, true, nil
}
