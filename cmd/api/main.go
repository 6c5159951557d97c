package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dngun/backend/internal/config"
	"github.com/dngun/backend/internal/db"
	"github.com/dngun/backend/internal/events"
	"github.com/dngun/backend/internal/gateway"
	apphttp "github.com/dngun/backend/internal/http"
	"github.com/dngun/backend/internal/http/handlers"
	"github.com/dngun/backend/internal/repositories"
	"github.com/dngun/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	domainRepo := repositories.NewDomainRepo(pool)
	paymentRepo := repositories.NewPaymentRepo(pool)
	escrowRepo := repositories.NewEscrowRepo(pool)
	messageRepo := repositories.NewMessageRepo(pool)
	twoFactorRepo := repositories.NewTwoFactorRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Payment gateway
	stripe := gateway.NewStripeGateway(cfg.StripeAPIKey, cfg.StripeAPIBase, cfg.GatewayTimeout, log)

	// Services
	domainService := services.NewDomainService(domainRepo, userRepo, log)
	twoFactorService := services.NewTwoFactorService(twoFactorRepo, userRepo, log)
	saleService := services.NewSaleService(domainRepo, escrowRepo, messageRepo, userRepo, twoFactorService, publisher, log)
	paymentService := services.NewPaymentService(paymentRepo, domainRepo, stripe, saleService, publisher, log)
	escrowService := services.NewEscrowService(escrowRepo, domainRepo, messageRepo, userRepo, saleService, publisher, log)
	negotiationService := services.NewNegotiationService(messageRepo, escrowRepo, publisher, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, cfg, log)
	domainHandler := handlers.NewDomainHandler(domainService, log)
	paymentHandler := handlers.NewPaymentHandler(paymentService, cfg, log)
	transactionHandler := handlers.NewTransactionHandler(escrowService, negotiationService, log)
	twoFactorHandler := handlers.NewTwoFactorHandler(twoFactorService, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, domainHandler, paymentHandler, transactionHandler, twoFactorHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
