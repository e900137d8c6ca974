package main

import (
	"campus_auth/internal/api"
	"campus_auth/internal/app/service"
	"campus_auth/internal/common/security"
	"campus_auth/internal/domain/policy"
	"campus_auth/internal/domain/repository"
	"campus_auth/internal/platform/cache"
	"campus_auth/internal/platform/config"
	"campus_auth/internal/platform/database"
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	// 1. Load Configuration
	config.Load()
	cfg := config.AppConfig
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "storage", cfg.StorageDriver, "port", cfg.APIPort)

	// 2. Initialize JWT
	tokens, err := security.NewTokenIssuer(cfg.JWTKey, cfg.JWTExp)
	if err != nil {
		log.Fatalf("Could not initialize token issuer: %v", err)
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// 3. Initialize Storage
	var accountRepo repository.AccountRepository
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		accountRepo = repository.NewMemoryAccountRepository()
		logger.Warn("using in-memory storage, accounts are lost on restart")
	default:
		db, err := database.Connect(startupCtx, cfg)
		if err != nil {
			log.Fatalf("Could not connect to database: %v", err)
		}
		defer db.Close()
		if err := database.Migrate(startupCtx, db); err != nil {
			log.Fatalf("Could not migrate database: %v", err)
		}
		accountRepo = repository.NewPgAccountRepository(db)
		logger.Info("database connected")
	}

	// 4. Initialize Redis (optional registration lock)
	var locker service.Locker
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(startupCtx, cfg)
		if err != nil {
			log.Fatalf("Could not connect to Redis: %v", err)
		}
		defer rdb.Close()
		locker = cache.NewRedisLocker(rdb, "registration:",
			time.Duration(cfg.RegistrationLockTTLSeconds)*time.Second, logger)
		logger.Info("redis connected", "addr", cfg.RedisAddr)
	}

	// 5. Initialize Services
	accountService := service.NewAccountService(
		accountRepo,
		security.NewBcryptHasher(cfg.BcryptCost),
		tokens,
		policy.NewEmailPolicy(cfg.EmailDomain, nil),
		locker,
		logger,
		service.Timeouts{Store: cfg.StoreTimeout, Hash: cfg.HashTimeout},
	)

	// 6. Initialize Router & HTTP Server
	router := api.NewRouter(accountService, tokens, logger, api.RouterConfig{
		AllowedOrigins:          cfg.CORSAllowedOrigins,
		LoginRateLimitPerMinute: cfg.LoginRateLimitPerMinute,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 7. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		return
	}

	logger.Info("server stopped gracefully")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
