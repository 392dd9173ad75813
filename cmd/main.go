package main

import (
	"context"
	"log"
	"net/http"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/Vovarama1992/go-utils/logger"

	"github.com/beocch/telegram-ai-assistant/internal/cache"
	"github.com/beocch/telegram-ai-assistant/internal/config"
	"github.com/beocch/telegram-ai-assistant/internal/delivery"
	"github.com/beocch/telegram-ai-assistant/internal/notify"
	"github.com/beocch/telegram-ai-assistant/internal/provider"
	"github.com/beocch/telegram-ai-assistant/internal/ratelimit"
	"github.com/beocch/telegram-ai-assistant/internal/settings"
	"github.com/beocch/telegram-ai-assistant/internal/storage"
	"github.com/beocch/telegram-ai-assistant/internal/telegram"
	"github.com/beocch/telegram-ai-assistant/internal/usage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV / DB INIT
	// =========================================================================

	cfg := config.New()
	ctx := context.Background()

	db, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	keybox, err := settings.NewKeybox(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("failed to init keybox: %v", err)
	}

	cacheClient := cache.New(cfg.RedisURL, cfg.MaxConversationHistory)
	defer cacheClient.Close()

	// =========================================================================
	// REPOSITORIES
	// =========================================================================

	settingsRepo := settings.NewInfra(db)
	usageRepo := usage.NewInfra(db)

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	notifier := notify.NewInfra(cfg.AdminChatID)

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	settingsService := settings.NewService(settingsRepo, keybox)
	usageService := usage.NewService(usageRepo)
	selector := provider.NewSelector(settingsService, cfg)
	limiter := ratelimit.New(cacheClient, cfg.RateLimitPerMinute)

	// =========================================================================
	// TELEGRAM BOT
	// =========================================================================

	botApp := telegram.NewBotApp(
		settingsService,
		selector,
		usageService,
		cacheClient,
		limiter,
		notifier,
	)

	if err := botApp.Init(cfg.TelegramBotToken, cfg.Debug); err != nil {
		log.Fatalf("failed to init telegram bot: %v", err)
	}

	notifier.SetBot(botApp.Bot())

	go botApp.Run()

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	statsHandler := delivery.NewStatsHandler(usageService, zl)
	delivery.RegisterRoutes(r, statsHandler)

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	})

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.HTTPPort
	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr,
		Service: "telegram-ai-assistant",
	})

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
