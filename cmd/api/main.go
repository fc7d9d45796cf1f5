package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	deliveryHTTP "github.com/frontandrew/rental/internal/delivery/http"
	"github.com/frontandrew/rental/internal/infrastructure/mailer"
	"github.com/frontandrew/rental/internal/infrastructure/payment"
	"github.com/frontandrew/rental/internal/infrastructure/storage"
	"github.com/frontandrew/rental/internal/pkg/config"
	"github.com/frontandrew/rental/internal/pkg/database"
	"github.com/frontandrew/rental/internal/pkg/jwt"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/pkg/redis"
	"github.com/frontandrew/rental/internal/repository/cached"
	"github.com/frontandrew/rental/internal/repository/postgres"
	"github.com/frontandrew/rental/internal/usecase/auth"
	"github.com/frontandrew/rental/internal/usecase/blacklist"
	"github.com/frontandrew/rental/internal/usecase/contract"
	"github.com/frontandrew/rental/internal/usecase/ledger"
	"github.com/frontandrew/rental/internal/usecase/member"
	"github.com/frontandrew/rental/internal/usecase/paymentflow"
	"github.com/frontandrew/rental/internal/usecase/ticket"
	"github.com/frontandrew/rental/internal/usecase/vehicle"
)

func main() {
	// =========================================================================
	// Загрузка конфигурации
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// =========================================================================
	// Инициализация logger
	// =========================================================================

	log := logger.New(cfg.Logger.Level, cfg.Logger.Format, cfg.Logger.Output)
	log.Info("Starting RENTAL API server", map[string]interface{}{
		"version": "1.0.0",
	})

	// =========================================================================
	// Подключение к PostgreSQL и миграции
	// =========================================================================

	ctx := context.Background()
	db, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer database.Close(db)

	log.Info("Connected to PostgreSQL", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Database,
	})

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal("Failed to run migrations", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Migrations applied")

	// =========================================================================
	// Подключение к Redis
	// =========================================================================

	cache, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal("Failed to connect to Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer cache.Close()

	log.Info("Connected to Redis", map[string]interface{}{
		"host": cfg.Redis.Host,
		"port": cfg.Redis.Port,
	})

	// =========================================================================
	// Создание repositories
	// =========================================================================

	ownerRepo := postgres.NewOwnerRepository(db)
	memberRepo := postgres.NewMemberRepository(db)
	vehicleRepo := postgres.NewVehicleRepository(db)
	contractRepo := postgres.NewContractRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)
	serialRepo := postgres.NewSerialRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)

	// Черный список проверяется при каждом заключении договора,
	// поэтому оборачивается в Redis кэш
	blacklistRepo := cached.NewBlacklistRepository(postgres.NewBlacklistRepository(db), cache)

	log.Info("Repositories initialized")

	// =========================================================================
	// Создание infrastructure clients
	// =========================================================================

	provider := payment.NewHTTPProvider(cfg.Payment.BaseURL, cfg.Payment.Timeout)

	mailSender, err := mailer.NewSMTPSender(cfg.Mailer, log)
	if err != nil {
		log.Fatal("Failed to init mailer", map[string]interface{}{
			"error": err.Error(),
		})
	}

	presigner := storage.NewPresigner(cfg.Storage)

	// =========================================================================
	// Создание JWT token service
	// =========================================================================

	tokenService := jwt.NewTokenService(
		cfg.JWT.SecretKey,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	log.Info("JWT token service initialized")

	// =========================================================================
	// Создание use case services
	// =========================================================================

	authService := auth.NewService(ownerRepo, memberRepo, refreshTokenRepo, tokenService, log)
	memberService := member.NewService(memberRepo, log)
	vehicleService := vehicle.NewService(vehicleRepo, ticketRepo, cfg.Rental.OilChangeThresholdKm, log)
	blacklistService := blacklist.NewService(blacklistRepo, contractRepo, log)
	contractService := contract.NewService(
		contractRepo,
		transactionRepo,
		ticketRepo,
		blacklistRepo,
		vehicleRepo,
		serialRepo,
		ownerRepo,
		provider,
		cfg.Rental.OilChangeThresholdKm,
		log,
	)
	ticketService := ticket.NewService(
		ticketRepo,
		transactionRepo,
		vehicleRepo,
		ownerRepo,
		serialRepo,
		provider,
		mailSender,
		ticket.Config{
			PublicURL:             cfg.Server.PublicURL,
			DeleteOnRefundFailure: cfg.Rental.DeleteTicketOnRefundFailure,
		},
		log,
	)
	paymentService := paymentflow.NewService(
		transactionRepo,
		contractRepo,
		ownerRepo,
		serialRepo,
		provider,
		ticketService,
		cfg.Server.PublicURL,
		log,
	)
	ledgerService := ledger.NewService(transactionRepo, vehicleRepo, serialRepo, log)

	log.Info("Use case services initialized")

	// =========================================================================
	// Создание HTTP handlers
	// =========================================================================

	authHandler := deliveryHTTP.NewAuthHandler(authService, log)
	vehicleHandler := deliveryHTTP.NewVehicleHandler(vehicleService, log)
	contractHandler := deliveryHTTP.NewContractHandler(contractService, log)
	ticketHandler := deliveryHTTP.NewTicketHandler(ticketService, log)
	ledgerHandler := deliveryHTTP.NewLedgerHandler(ledgerService, log)
	blacklistHandler := deliveryHTTP.NewBlacklistHandler(blacklistService, log)
	memberHandler := deliveryHTTP.NewMemberHandler(memberService, log)
	paymentHandler := deliveryHTTP.NewPaymentHandler(paymentService, log)
	uploadHandler := deliveryHTTP.NewUploadHandler(presigner, log)

	log.Info("HTTP handlers initialized")

	// =========================================================================
	// Создание и настройка HTTP router
	// =========================================================================

	router := deliveryHTTP.NewRouter(
		authHandler,
		vehicleHandler,
		contractHandler,
		ticketHandler,
		ledgerHandler,
		blacklistHandler,
		memberHandler,
		paymentHandler,
		uploadHandler,
		tokenService,
		cfg,
		log,
	)

	handler := router.Setup()

	log.Info("HTTP router configured")

	// =========================================================================
	// Создание HTTP сервера
	// =========================================================================

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// =========================================================================
	// Запуск сервера в goroutine
	// =========================================================================

	serverErrors := make(chan error, 1)

	go func() {
		log.Info("API server listening", map[string]interface{}{
			"address": srv.Addr,
		})
		serverErrors <- srv.ListenAndServe()
	}()

	// =========================================================================
	// Graceful shutdown
	// =========================================================================

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatal("Server error", map[string]interface{}{
			"error": err.Error(),
		})

	case sig := <-shutdown:
		log.Info("Shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Graceful shutdown failed", map[string]interface{}{
				"error": err.Error(),
			})

			if err := srv.Close(); err != nil {
				log.Fatal("Failed to close server", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		log.Info("Server stopped gracefully")
	}
}
