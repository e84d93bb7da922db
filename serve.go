package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"devmatch-service/internal/auth"
	"devmatch-service/internal/config"
	"devmatch-service/internal/db"
	"devmatch-service/internal/handlers"
	"devmatch-service/internal/logger"
	"devmatch-service/internal/observability"
	"devmatch-service/internal/rabbitmq"
	"devmatch-service/internal/ratelimit"
	"devmatch-service/internal/repositories"
	"devmatch-service/internal/server"
	"devmatch-service/internal/services"
	"devmatch-service/internal/storage"
	"devmatch-service/internal/telemetry"
	"devmatch-service/internal/ws"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.Server.Env, cfg.Logging.Level)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, "devmatch-service", cfg.Tracing.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := withTimeout(5 * time.Second)
		defer cancel()
		shutdownTracer(flushCtx)
	}()

	database, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()
	if migrateOnStart {
		if err := db.Migrate(ctx, database); err != nil {
			return err
		}
	}

	publisher := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	logger.Info().
		Str("mode", rabbitmq.PublisherMode(publisher)).
		Str("reason", rabbitmq.PublisherNoopReason(publisher)).
		Msg("event publisher ready")
	auditEmitter := telemetry.NewAuditEmitter(publisher, "audit.log", "devmatch-service", cfg.Server.Env)

	limiter, closeLimiter, err := swipeLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()

	images, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	userRepo := repositories.NewUserRepo(database)
	matchRepo := repositories.NewMatchRepo(database)
	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	hub := ws.NewHub()
	validator := auth.NewJWTValidator(cfg.JWT.Secret)

	matchService := services.NewMatchService(userRepo, matchRepo, hub)
	chatService := services.NewChatService(chatRepo, messageRepo, userRepo, hub)
	discoveryService := services.NewDiscoveryService(userRepo, cfg.Discovery.BatchSize)
	profileService := services.NewProfileService(userRepo, images)

	router := server.NewRouter(server.Deps{
		Validator:      validator,
		Matches:        handlers.NewMatchHandler(matchService),
		Users:          handlers.NewUserHandler(discoveryService, profileService, auditEmitter),
		Chats:          handlers.NewChatHandler(chatService),
		Socket:         ws.NewHandler(hub, validator, chatService, profileService, cfg.Server.AllowedOrigins),
		Presence:       hub,
		SwipeLimiter:   limiter,
		Audit:          auditEmitter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Debug:          !cfg.IsProduction(),
		Ping:           database.PingContext,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("env", cfg.Server.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := withTimeout(10 * time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// swipeLimiter uses redis when REDIS_ADDR is set and an in-process limiter
// otherwise.
func swipeLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, func(), error) {
	if cfg.Redis.Addr == "" {
		local := ratelimit.NewLocalLimiter(cfg.RateLimit.SwipesPerMinute, cfg.RateLimit.Burst, 10*time.Minute)
		return local, local.Stop, nil
	}

	client, err := ratelimit.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	limiter := ratelimit.NewRedisLimiter(client, "devmatch:swipe", cfg.RateLimit.SwipesPerMinute, time.Minute)
	return limiter, func() { _ = client.Close() }, nil
}
