package handlers

import (
	"granaflow/internal/dto"
	"granaflow/internal/state"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type LedgerHandler struct {
	liveState *state.Store
	logger    *zap.Logger
}

func NewLedgerHandler(liveState *state.Store, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{
		liveState: liveState,
		logger:    logger,
	}
}

// Recent godoc
// @Summary Recently created ledger entries
// @Description Entries pushed into live application state by the notification pipeline
// @Tags ledger
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Security Bearer
// @Success 200 {array} dto.LedgerEntryResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/ledger/recent [get]
func (h *LedgerHandler) Recent(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	limit := c.QueryInt("limit", 20)

	entries := h.liveState.Recent(userID, limit)
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, dto.FromLedgerEntry(entry))
	}

	return c.JSON(out)
}
