package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"incentix/rewardhub/internal/config"
	"incentix/rewardhub/internal/handler"
	"incentix/rewardhub/internal/model"
	"incentix/rewardhub/internal/repository"
	"incentix/rewardhub/internal/service"
	jwtpkg "incentix/rewardhub/pkg/jwt"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	var logger *zap.Logger
	if cfg.Log.Format == "json" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// 3. Connect to PostgreSQL
	db, err := config.NewPostgresDB(cfg.Database.Postgres)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}

	// 4. Auto-migrate if enabled
	if cfg.Database.Postgres.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			logger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		logger.Info("database migration completed")
	}

	// 5. Initialize state store (Redis or in-memory)
	var stateStore repository.StateStore
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		stateStore = repository.NewRedisStateStore(redisClient)
		logger.Info("using Redis state store")
	case "memory":
		stateStore = repository.NewMemoryStateStore()
		logger.Info("using in-memory state store")
	default:
		logger.Fatal("unknown state backend", zap.String("backend", cfg.State.Backend))
	}

	// 6. Initialize repositories
	participantRepo := repository.NewPGParticipantRepository(db)
	badgeRepo := repository.NewPGBadgeRepository(db)
	couponRepo := repository.NewPGCouponRepository(db)
	redemptionRepo := repository.NewPGRedemptionRepository(db)
	inventoryRepo := repository.NewPGInventoryRepository(db)
	txManager := repository.NewTxManager(db)

	// 7. Authorization perimeter and guard
	ctx := context.Background()
	authorizer, err := service.NewBindingAuthorizer(ctx, cfg.Auth.Operators, stateStore)
	if err != nil {
		logger.Fatal("failed to load caller bindings", zap.Error(err))
	}
	guard := service.NewGuard(stateStore, authorizer, logger)
	notifier := service.NewStreamNotifier(stateStore, logger)

	// 8. Initialize services
	policy, err := service.NewTierPolicy(ctx, guard, stateStore)
	if err != nil {
		logger.Fatal("failed to load tier policy", zap.Error(err))
	}
	badgeService := service.NewBadgeService(badgeRepo, guard, notifier, logger)
	ledgerService := service.NewLedgerService(
		participantRepo, policy, badgeService, txManager, guard, notifier, logger,
		cfg.Rewards.RegistrationBonus, cfg.Rewards.ReferralBonus,
	)
	catalogService := service.NewCatalogService(couponRepo, guard, notifier, logger)
	inventoryService := service.NewInventoryService(inventoryRepo, couponRepo, guard, notifier, logger)
	redemptionService := service.NewRedemptionService(
		couponRepo, redemptionRepo, participantRepo,
		ledgerService, ledgerService, catalogService,
		policy, txManager, guard, notifier, logger,
	)

	// 9. JWT manager for the caller perimeter
	jwtManager := jwtpkg.NewManager(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.ServiceTokenTTL)

	// 10. Initialize handlers
	participantHandler := handler.NewParticipantHandler(ledgerService, badgeService, redemptionService, policy)
	couponHandler := handler.NewCouponHandler(catalogService, redemptionService)
	adminHandler := handler.NewAdminHandler(
		catalogService, inventoryService, ledgerService, badgeService,
		policy, guard, authorizer, jwtManager,
	)

	// 11. Setup router
	router := handler.SetupRouter(cfg, logger, jwtManager, participantHandler, couponHandler, adminHandler)

	// 12. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 13. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 14. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}
