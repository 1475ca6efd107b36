package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"rollcall.app/bot/common/id"
	"rollcall.app/bot/common/logger"
	"rollcall.app/bot/common/otel"
	"rollcall.app/bot/core/config"
	"rollcall.app/bot/core/db"
	"rollcall.app/bot/internal/clock"
	"rollcall.app/bot/internal/http/handler"
	"rollcall.app/bot/internal/http/handler/webhook"
	"rollcall.app/bot/internal/http/middleware"
	httprouter "rollcall.app/bot/internal/http/router"
	"rollcall.app/bot/internal/notify"
	"rollcall.app/bot/internal/queue"
	"rollcall.app/bot/internal/scheduler"
	"rollcall.app/bot/internal/service"
	"rollcall.app/bot/internal/store"
	"rollcall.app/bot/internal/worker"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "rollcall starting",
		"env", cfg.Env,
		"backend", cfg.Checkin.StoreBackend,
		"timezone", cfg.Checkin.Timezone,
		"reminder_cap", cfg.Checkin.ReminderCap)

	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	stores, txRunner, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize stores", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Redis.Stream)

	producer := queue.NewRedisProducer(redisClient, cfg.Redis.Stream, slog.Default())

	notifier, err := buildNotifier(cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize notifier", "error", err)
		os.Exit(1)
	}

	services := service.NewServices(stores, txRunner, notifier, cfg.Checkin, clock.System(), slog.Default())

	consumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
		Stream:       cfg.Redis.Stream,
		Group:        cfg.Redis.Group,
		Consumer:     cfg.Redis.Consumer,
		DLQStream:    cfg.Redis.DLQStream,
		BatchSize:    10,
		Block:        5 * time.Second,
		MaxAttempts:  3,
		RequeueDelay: time.Second,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	dispatcher := worker.NewDispatcher(services.Escalation(), services.Intake())
	w := worker.New(consumer, dispatcher, worker.Config{MaxAttempts: 3})

	reclaimer := worker.NewRedisReclaimer(redisClient, worker.RedisReclaimerConfig{
		Stream:    cfg.Redis.Stream,
		Group:     cfg.Redis.Group,
		Consumer:  cfg.Redis.Consumer + "-reclaimer",
		MinIdle:   5 * time.Minute,
		Interval:  time.Minute,
		BatchSize: 10,
	}, consumer, w.ProcessMessage)

	sched, err := scheduler.New(cfg.Checkin, producer, slog.Default())
	if err != nil {
		slog.ErrorContext(ctx, "failed to create scheduler", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(cfg, producer, services, stores)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- w.Run(ctx)
	}()
	go func() {
		reclaimer.Run(ctx)
		errCh <- nil
	}()
	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	sched.Start()
	slog.InfoContext(ctx, "rollcall initialized and running",
		"opening_cron", cfg.Checkin.OpeningCron,
		"followup_cron", cfg.Checkin.FollowUpCron)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	sched.Stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	reclaimer.Stop()
	w.Stop()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case err := <-errCh:
		if err != nil {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		slog.ErrorContext(ctx, "producer close error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "shutdown complete")
}

// buildStores wires the configured backend. Postgres gets the embedded schema
// applied on startup; memory needs no setup.
func buildStores(ctx context.Context, cfg config.Config) (store.Stores, service.TxRunner, func(), error) {
	if cfg.Checkin.StoreBackend == "memory" {
		stores := store.NewMemory()
		return stores, service.NewMemTxRunner(stores), func() {}, nil
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, nil, fmt.Errorf("applying schema: %w", err)
	}
	slog.InfoContext(ctx, "database connected")

	return store.NewPostgres(database.Pool()), service.NewTxRunner(database), database.Close, nil
}

func buildNotifier(cfg config.Config) (notify.Notifier, error) {
	if !cfg.Telegram.Enabled() {
		// Load rejects a missing token in production, so this is dev only.
		slog.Info("no bot token configured, using log notifier")
		return notify.NewLog(), nil
	}
	return notify.NewTelegram(cfg.Telegram)
}

func setupRouter(cfg config.Config, producer queue.Producer, services *service.Services, stores store.Stores) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span, Recovery catches panics, Logger logs
	// with trace context.
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	adminHandler := handler.NewAdminHandler(
		producer,
		services.Directory(),
		stores.Ledger(),
		stores.Counters(),
		cfg.Checkin,
		clock.System(),
	)
	webhookHandler := webhook.NewTelegramWebhookHandler(producer, cfg.Telegram.WebhookSecret)

	httprouter.SetupRoutes(router, adminHandler, webhookHandler, httprouter.RouterConfig{
		AdminAPIKey:   cfg.AdminAPIKey,
		WebhookSecret: cfg.Telegram.WebhookSecret,
	})

	return router
}

const banner = `
██████╗  ██████╗ ██╗     ██╗      ██████╗ █████╗ ██╗     ██╗
██╔══██╗██╔═══██╗██║     ██║     ██╔════╝██╔══██╗██║     ██║
██████╔╝██║   ██║██║     ██║     ██║     ███████║██║     ██║
██╔══██╗██║   ██║██║     ██║     ██║     ██╔══██║██║     ██║
██║  ██║╚██████╔╝███████╗███████╗╚██████╗██║  ██║███████╗███████╗
╚═╝  ╚═╝ ╚═════╝ ╚══════╝╚══════╝ ╚═════╝╚═╝  ╚═╝╚══════╝╚══════╝
`
