package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	httpAdapter "github.com/lorrc/service-desk-analytics/internal/adapters/primary/http"
	mw "github.com/lorrc/service-desk-analytics/internal/adapters/primary/http/middleware"
	"github.com/lorrc/service-desk-analytics/internal/adapters/primary/websocket"
	"github.com/lorrc/service-desk-analytics/internal/adapters/secondary/memory"
	"github.com/lorrc/service-desk-analytics/internal/adapters/secondary/postgres"
	"github.com/lorrc/service-desk-analytics/internal/adapters/secondary/redis"
	"github.com/lorrc/service-desk-analytics/internal/auth"
	"github.com/lorrc/service-desk-analytics/internal/config"
	"github.com/lorrc/service-desk-analytics/internal/core/ports"
	"github.com/lorrc/service-desk-analytics/internal/core/services"
	"github.com/lorrc/service-desk-analytics/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName:  cfg.App.Name,
		Environment:  cfg.App.Environment,
		PolicySource: cfg.Analytics.PolicyFile,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"storage", cfg.Storage.Backend,
	)

	policy, err := config.LoadPolicy(cfg.Analytics.PolicyFile)
	if err != nil {
		logger.Error("failed to load analytics policy", "error", err)
		os.Exit(1)
	}

	// 3. Initialize Storage
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.close()

	// 4. Initialize Security & Real-time Components
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// 5. Initialize Rate Limiter
	var rateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		rlConfig := mw.DefaultRateLimiterConfig()
		rlConfig.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rlConfig.BurstSize = cfg.RateLimit.BurstSize
		rlConfig.KeyFunc = mw.SubjectKey
		rateLimiter = mw.NewRateLimiter(rlConfig)
		defer rateLimiter.Stop()
	}

	// 6. Dependency Injection (Wiring the Hexagon)
	errorHandler := httpAdapter.NewErrorHandler(logger)

	// Services (Core)
	profiles := services.NewProfileStore(store.kv)
	gamificationService := services.NewGamificationService(profiles, hub, policy, logger)
	settingsService := services.NewSettingsService(store.kv)
	importService := services.NewImportService(store.tickets, logger)
	reportService := services.NewReportService(services.ReportDependencies{
		Source:       store.source(),
		Gamification: gamificationService,
		Settings:     settingsService,
		Broadcaster:  hub,
	}, services.ReportOptions{
		Policy:          policy,
		MaxWorkers:      cfg.Analytics.MaxWorkers,
		BreachThreshold: cfg.Analytics.BreachRiskThreshold,
	}, logger)

	// Handlers (Primary Adapters)
	reportHandler := httpAdapter.NewReportHandler(reportService, settingsService, errorHandler, cfg.Server.MaxBodyBytes, logger)
	filterHandler := httpAdapter.NewFilterHandler(settingsService, errorHandler, logger)
	technicianHandler := httpAdapter.NewTechnicianHandler(gamificationService, settingsService, errorHandler, logger)
	importHandler := httpAdapter.NewImportHandler(importService, errorHandler, cfg.Server.MaxBodyBytes, logger)
	wsHandler := httpAdapter.NewWebSocketHandler(hub, tokenManager, errorHandler, httpAdapter.WebSocketOptions{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		AllowedOrigins:  cfg.WebSocket.AllowedOrigins,
		AllowAnyOrigin:  cfg.IsDevelopment(),
	}, logger)
	healthHandler := httpAdapter.NewHealthHandler(store.checks, cfg.App.Version)

	// 7. Setup Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders:   []string{mw.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	// Health check endpoints (outside /api/v1 for standard probe paths)
	healthHandler.RegisterRoutes(r)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket route (Authentication is handled inside the handler)
		r.Get("/ws", wsHandler.ServeHTTP)

		// Protected REST routes, rate limited per token subject
		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware(tokenManager))
			if rateLimiter != nil {
				r.Use(rateLimiter.Middleware)
			}
			r.Route("/reports", reportHandler.RegisterRoutes)
			r.Route("/filters", filterHandler.RegisterRoutes)
			r.Route("/technicians", technicianHandler.RegisterRoutes)
			r.Route("/tickets", importHandler.RegisterRoutes)
		})
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	// Closes websocket clients.
	stop()

	logger.Info("server shutdown complete")
}

// storage bundles the secondary adapters chosen by STORAGE_BACKEND.
type storage struct {
	kv      ports.KeyValueStore
	tickets ports.TicketRepository
	checks  map[string]httpAdapter.HealthChecker
	close   func()
}

// source returns the stored-ticket source, or nil when the backend keeps no
// tickets.
func (s *storage) source() ports.TicketSource {
	if s.tickets == nil {
		return nil
	}
	return s.tickets
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch cfg.Storage.Backend {
	case config.StorageMemory:
		kv := memory.NewKeyValueStore()
		logger.Warn("using in-memory storage; profiles, filters and goals are lost on restart")
		return &storage{
			kv:     kv,
			checks: map[string]httpAdapter.HealthChecker{"storage": kv},
			close:  func() {},
		}, nil

	case config.StoragePostgres:
		if cfg.Database.AutoMigrate {
			version, err := postgres.Migrate(cfg.Database.URL, cfg.Database.MigrationsPath)
			if err != nil {
				return nil, err
			}
			logger.Info("database migrations applied", "version", version)
		}

		pool, err := postgres.Open(connectCtx, cfg.Database.URL,
			int32(cfg.Database.MaxOpenConns), int32(cfg.Database.MaxIdleConns))
		if err != nil {
			return nil, err
		}
		logger.Info("database connection established")

		tm := postgres.NewTransactionManager(pool)
		return &storage{
			kv:      postgres.NewKeyValueStore(pool, tm),
			tickets: postgres.NewTicketRepository(pool, tm),
			checks:  map[string]httpAdapter.HealthChecker{"database": pool},
			close:   pool.Close,
		}, nil

	case config.StorageRedis:
		client, err := redis.Connect(connectCtx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		logger.Info("redis connection established")

		kv := redis.NewKeyValueStore(client, cfg.Redis.KeyPrefix)
		return &storage{
			kv:     kv,
			checks: map[string]httpAdapter.HealthChecker{"redis": kv},
			close: func() {
				if err := client.Close(); err != nil {
					logger.Error("redis close error", "error", err)
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
