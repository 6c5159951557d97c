package http

import (
	"time"

	"github.com/dngun/backend/internal/config"
	"github.com/dngun/backend/internal/http/handlers"
	"github.com/dngun/backend/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	domainHandler *handlers.DomainHandler,
	paymentHandler *handlers.PaymentHandler,
	transactionHandler *handlers.TransactionHandler,
	twoFactorHandler *handlers.TwoFactorHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Auth (public)
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	// Domains (public browse)
	api.Get("/domains", domainHandler.ListDomains)
	api.Get("/domains/search", domainHandler.SearchDomains)
	api.Get("/domains/by-name/:name/:ext", domainHandler.GetDomainByName)
	api.Get("/domains/:id", domainHandler.GetDomain)

	// Checkout accepts anonymous buyers
	api.Post("/payments/checkout", middleware.OptionalAuthMiddleware(cfg, log), paymentHandler.CreateCheckout)
	api.Get("/payments/status/:sessionRef", paymentHandler.GetStatus)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	protected.Post("/domains", domainHandler.CreateDomain)

	protected.Get("/payments/my", paymentHandler.MyPayments)
	protected.Post("/payments/:id/release", paymentHandler.ReleaseEscrow)

	protected.Post("/transactions", transactionHandler.CreateTransaction)
	protected.Get("/transactions/my", transactionHandler.MyTransactions)
	protected.Get("/transactions/:id", transactionHandler.GetTransaction)
	protected.Post("/transactions/:id/complete", transactionHandler.CompleteTransaction)
	protected.Put("/transactions/:id/status", transactionHandler.UpdateTransactionStatus)
	protected.Get("/transactions/:id/messages", transactionHandler.ListMessages)
	protected.Post("/transactions/:id/messages", transactionHandler.AppendMessage)

	protected.Post("/2fa/setup", twoFactorHandler.Setup)
	protected.Post("/2fa/enable", twoFactorHandler.Enable)
	protected.Post("/2fa/verify", twoFactorHandler.Verify)
	protected.Post("/2fa/disable", twoFactorHandler.Disable)
	protected.Post("/2fa/backup-codes/regenerate", twoFactorHandler.RegenerateBackupCodes)
	protected.Get("/2fa/status", twoFactorHandler.Status)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
