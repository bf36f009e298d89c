package handlers

import (
	"granaflow/internal/dto"
	"granaflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type IntegrationKeyHandler struct {
	keys   *service.IntegrationKeyService
	logger *zap.Logger
}

func NewIntegrationKeyHandler(keys *service.IntegrationKeyService, logger *zap.Logger) *IntegrationKeyHandler {
	return &IntegrationKeyHandler{
		keys:   keys,
		logger: logger,
	}
}

// Create godoc
// @Summary Issue an integration key
// @Description Create an integration key the webhook accepts via the X-Integration-Key header. The key is returned only once.
// @Tags integration-keys
// @Accept json
// @Produce json
// @Param request body dto.CreateIntegrationKeyRequest false "Optional key label"
// @Security Bearer
// @Success 201 {object} dto.IntegrationKeyResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/integration-keys [post]
func (h *IntegrationKeyHandler) Create(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.CreateIntegrationKeyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	key, err := h.keys.Issue(c.Context(), userID, req.Label)
	if err != nil {
		h.logger.Error("Failed to issue integration key", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create integration key",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.IntegrationKeyResponse{
		ID:        key.ID.String(),
		Key:       key.Key,
		Label:     key.Label,
		CreatedAt: key.CreatedAt,
	})
}
