package middleware

import (
	"context"
	"strings"

	"granaflow/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IntegrationKeyResolver resolves an opaque integration key to its owning user.
type IntegrationKeyResolver interface {
	ResolveKey(ctx context.Context, key string) (uuid.UUID, error)
}

func AuthMiddleware(jwtManager *auth.JWTManager, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			logger.Warn("Missing authorization token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization token required",
			})
		}

		claims, err := jwtManager.ValidateToken(token)
		if err != nil {
			logger.Warn("Invalid token", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		// Store claims in context
		c.Locals("userID", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("email", claims.Email)

		return c.Next()
	}
}

// WebhookAuthMiddleware authenticates the notification webhook. It accepts a
// Bearer JWT or an X-Integration-Key header; either must resolve to a user id
// before the pipeline is reached.
func WebhookAuthMiddleware(jwtManager *auth.JWTManager, keys IntegrationKeyResolver, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			claims, err := jwtManager.ValidateToken(token)
			if err == nil {
				c.Locals("userID", claims.UserID)
				return c.Next()
			}
			logger.Warn("Invalid webhook token", zap.Error(err))
		}

		if key := c.Get("X-Integration-Key"); key != "" {
			userID, err := keys.ResolveKey(c.Context(), key)
			if err == nil {
				c.Locals("userID", userID.String())
				return c.Next()
			}
			logger.Warn("Unknown integration key", zap.Error(err))
		}

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No owning user could be resolved",
		})
	}
}

func bearerToken(c *fiber.Ctx) string {
	token := c.Get("Authorization")
	if token == "" {
		return ""
	}
	return strings.TrimPrefix(token, "Bearer ")
}
