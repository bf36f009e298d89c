package api

import (
	"granaflow/internal/api/handlers"
	"granaflow/pkg/auth"
	"granaflow/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	notificationHandler *handlers.NotificationHandler,
	ledgerHandler *handlers.LedgerHandler,
	keyHandler *handlers.IntegrationKeyHandler,
	jwtManager *auth.JWTManager,
	integrationKeys middleware.IntegrationKeyResolver,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Integration-Key",
	}))
	app.Use(logger.New())

	// Auth routes (public)
	userAuth := app.Group("/user/auth")
	userAuth.Post("/register", authHandler.Register)
	userAuth.Post("/login", authHandler.Login)
	userAuth.Post("/refresh", authHandler.RefreshToken)

	v1 := app.Group("/api/v1")

	// Webhook accepts a JWT or an integration key; identity must resolve
	// before the pipeline runs.
	notifications := v1.Group("/notifications", middleware.WebhookAuthMiddleware(jwtManager, integrationKeys, appLogger))
	notifications.Post("/webhook", notificationHandler.Webhook)

	// JWT-only routes
	ledger := v1.Group("/ledger", middleware.AuthMiddleware(jwtManager, appLogger))
	ledger.Get("/recent", ledgerHandler.Recent)

	keys := v1.Group("/integration-keys", middleware.AuthMiddleware(jwtManager, appLogger))
	keys.Post("/", keyHandler.Create)

	return app
}
