package handlers

import (
	"errors"
	"time"

	"granaflow/internal/dto"
	"granaflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	pipeline *service.Pipeline
	logger   *zap.Logger
}

func NewNotificationHandler(pipeline *service.Pipeline, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// Webhook godoc
// @Summary Submit raw bank notification text
// @Description Classify raw notification text and reconcile it into the ledger
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body dto.WebhookRequest true "Raw notification text and capture timestamp (epoch millis)"
// @Security Bearer
// @Success 200 {object} dto.WebhookIgnoredResponse
// @Success 201 {object} dto.WebhookCreatedResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/notifications/webhook [post]
func (h *NotificationHandler) Webhook(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.WebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.RawText == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "rawText is required",
		})
	}

	// Missing and nonsensical capture timestamps both mean "now"; a negative
	// value would otherwise land as a pre-1970 entry date.
	timestamp := time.Now()
	if req.Timestamp > 0 {
		timestamp = time.UnixMilli(req.Timestamp)
	}

	outcome, err := h.pipeline.ProcessRaw(c.Context(), req.RawText, timestamp, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassification):
			h.logger.Error("Webhook classification failed", zap.Error(err))
		case errors.Is(err, service.ErrPersistence):
			h.logger.Error("Webhook persistence failed", zap.Error(err))
		default:
			h.logger.Error("Webhook processing failed", zap.Error(err))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process notification",
		})
	}

	if outcome.Status != service.OutcomeCreated {
		return c.JSON(dto.WebhookIgnoredResponse{
			Message: ignoredMessage(outcome.Status),
			Data:    classificationPayload(outcome),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.WebhookCreatedResponse{
		Success:     true,
		Transaction: dto.FromLedgerEntry(*outcome.Entry),
	})
}

func ignoredMessage(status service.OutcomeStatus) string {
	switch status {
	case service.OutcomeDuplicate:
		return "Duplicate notification suppressed"
	case service.OutcomeIgnored:
		return "Financial event already accounted for, not recorded"
	default:
		return "Notification is not a financial transaction"
	}
}

func classificationPayload(outcome *service.Outcome) *dto.ClassificationPayload {
	if outcome.Status == service.OutcomeDuplicate {
		return nil
	}

	payload := &dto.ClassificationPayload{
		IsValid:       outcome.Result.IsValid,
		Kind:          string(outcome.Result.Kind),
		Description:   outcome.Result.Description,
		Category:      outcome.Result.Category,
		PaymentMethod: string(outcome.Result.PaymentMethod),
	}
	if !outcome.Result.Amount.Equal(decimal.Zero) {
		payload.Amount = outcome.Result.Amount.String()
	}
	return payload
}
