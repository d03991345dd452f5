package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"receptionist_backend/internal/config"
	"receptionist_backend/internal/conversation"
	conversationrepo "receptionist_backend/internal/conversation/repository"
	"receptionist_backend/internal/db"
	"receptionist_backend/internal/email"
	"receptionist_backend/internal/events"
	apphttp "receptionist_backend/internal/http"
	"receptionist_backend/internal/http/router"
	"receptionist_backend/internal/leads"
	"receptionist_backend/internal/listings"
	"receptionist_backend/internal/scheduler"
	"receptionist_backend/platform/ai/build"
	"receptionist_backend/platform/logger"
	"receptionist_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "provider", cfg.AIProvider)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg.DatabaseURL)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	rdb := initRedis(cfg, log)
	if rdb != nil {
		defer rdb.Close()
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	forwarder, closeForwarder := initWebhookForwarder(cfg, log)
	if closeForwarder != nil {
		defer closeForwarder()
	}

	var notifier leads.Notifier
	if cfg.EmailEnabled {
		notifier = email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFromAddress, cfg.EmailToAddress)
		log.Info("lead email notifications enabled", "to", cfg.EmailToAddress)
	}

	provider, err := build.New(ctx, build.Config{
		Provider:      cfg.AIProvider,
		Model:         cfg.ModelName,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		GeminiAPIKey:  cfg.GeminiAPIKey,
	})
	if err != nil {
		log.Error("failed to initialize AI provider", "error", err)
		panic("failed to initialize AI provider: " + err.Error())
	}
	log.Info("AI provider initialized", "provider", provider.Name())

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	listingsModule := listings.NewModule(cfg, rdb, log)
	leadsModule := leads.NewModule(pool, eventBus, val, cfg, log, conversationrepo.New(pool), forwarder, notifier)
	conversationModule, err := conversation.NewModule(ctx, pool, provider, listingsModule.Source(), leadsModule.Service(), val, cfg, log)
	if err != nil {
		log.Error("failed to initialize conversation module", "error", err)
		panic("failed to initialize conversation module: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: conversationModule,
		Modules: []apphttp.Module{
			conversationModule,
			listingsModule,
			leadsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initRedis(cfg *config.Config, log *logger.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not configured; listings cache and webhook queue disabled")
		return nil
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Error("invalid REDIS_URL", "error", err)
		return nil
	}
	return redis.NewClient(opt)
}

func initWebhookForwarder(cfg *config.Config, log *logger.Logger) (scheduler.WebhookForwarder, func()) {
	if cfg.RedisURL == "" || cfg.LeadsWebhookURL == "" {
		if cfg.LeadsWebhookURL != "" {
			log.Warn("LEADS_WEBHOOK_URL set but REDIS_URL missing; webhook forwarding disabled")
		}
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("failed to initialize webhook forwarder", "error", err)
		return nil, nil
	}
	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}
