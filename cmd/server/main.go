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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aryan0dhankhar/threadline/internal/domain"
	"github.com/aryan0dhankhar/threadline/internal/handler"
	"github.com/aryan0dhankhar/threadline/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/threadline/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/threadline/internal/observability/tracing"
	"github.com/aryan0dhankhar/threadline/internal/reliability/circuitbreaker"
	"github.com/aryan0dhankhar/threadline/internal/render"
	"github.com/aryan0dhankhar/threadline/internal/repository"
	"github.com/aryan0dhankhar/threadline/internal/security/audit"
	"github.com/aryan0dhankhar/threadline/internal/security/auth"
	"github.com/aryan0dhankhar/threadline/internal/service"
	"github.com/aryan0dhankhar/threadline/pkg/config"
	"github.com/aryan0dhankhar/threadline/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	log.Info("starting threadline server", slog.String("environment", cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Tracing
	shutdownTracing, err := tracing.Init(ctx, log, cfg.OTLPEndpoint, "threadline", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	checks := map[string]handler.Pinger{}

	// 4. Stores: Postgres when configured, memory otherwise
	var (
		users    domain.UserRepository
		comments domain.CommentRepository
	)
	if cfg.DatabaseURL != "" {
		pool, err := database.NewConnectionPool(ctx, &database.Config{
			URL:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		}, log)
		if err != nil {
			log.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()

		if cfg.RunMigrations {
			if err := pool.Migrate(); err != nil {
				log.Error("failed to run migrations", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}

		users = repository.NewPostgresUserRepository(pool.DB(), log)
		comments = repository.NewPostgresCommentRepository(pool.DB(), log)
		checks["postgres"] = pool
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores; data is lost on restart")
		memUsers := repository.NewMemoryUserRepository()
		users = memUsers
		comments = repository.NewMemoryCommentRepository(memUsers)
	}

	// 5. Token revocation: Redis when configured, memory otherwise
	var revocations domain.RevocationStore
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()

		breaker := circuitbreaker.New(cfg.RedisBreakerFailures, 1, cfg.RedisBreakerCooldown, nil)
		revocations = repository.NewGuardedRevocationStore(
			repository.NewRedisRevocationStore(redisClient, log), breaker, "redis", log)
		checks["redis"] = redisClient
	} else {
		revocations = repository.NewMemoryRevocationStore(nil)
	}

	// 6. Services
	clock := auth.SystemClock{}
	auditLogger := audit.NewLogger(log)
	tokens := auth.NewTokenManager(cfg.SecretKey, cfg.TokenIssuer, clock)
	authService := service.NewAuthService(
		users,
		auth.NewBcryptHasher(cfg.BcryptCost),
		tokens,
		revocations,
		service.TokenLifetimes{Default: cfg.AccessTokenTTL, RememberMe: cfg.RememberMeTTL},
		auditLogger,
		log,
	)
	commentService := service.NewCommentService(comments, clock, auditLogger, log)

	// 7. HTTP routes
	router := handler.NewRouter(handler.RouterConfig{
		Auth:                handler.NewAuthHandler(authService, log),
		Comments:            handler.NewCommentHandler(commentService, render.NewMarkdown(), log),
		Health:              handler.NewHealthHandler(checks, log),
		Authenticator:       authService,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		ProtectCommentReads: cfg.ProtectCommentReads,
		Logger:              log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(router, "threadline"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.Bool("postgres", cfg.DatabaseURL != ""),
		slog.Bool("redis", cfg.RedisURL != ""),
		slog.Bool("protect_comment_reads", cfg.ProtectCommentReads),
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}
