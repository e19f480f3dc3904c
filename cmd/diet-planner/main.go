package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autism-diet-planner/internal/app"
	"autism-diet-planner/internal/config"
	"autism-diet-planner/internal/database"
	"autism-diet-planner/internal/llm"
	"autism-diet-planner/internal/metrics"
	"autism-diet-planner/internal/session"
	"autism-diet-planner/internal/telegram"
	"autism-diet-planner/internal/web"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogging(cfg)

	ctx := context.Background()

	// 2. Initialize the text-generation service
	provider, err := llm.NewProvider(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create llm client")
	}
	defer provider.Close()

	// 3. Usage store, optional
	var metricsStore *metrics.Store
	if cfg.DatabasePath != "" {
		db, err := database.NewDB(cfg.DatabasePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize database")
		}
		defer db.Close()
		metricsStore = metrics.NewStore(db.SQL)
	}
	collectors := metrics.NewCollectors()

	// 4. Services
	sessions := session.NewRegistry(provider, cfg.MaxSessions, cfg.SessionTTL)
	application := app.NewApp(cfg, provider, sessions, metricsStore, collectors)
	server := web.NewServer(cfg, application, collectors)

	// 5. Telegram, when configured
	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg, application)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}
		server.Mount(http.MethodPost, "/webhook", bot.Handler())
	}

	// 6. Start Server with Graceful Shutdown
	srv := server.HTTPServer(":"+cfg.Port, cfg.LLMTimeout+30*time.Second)

	go func() {
		log.Info().Str("port", cfg.Port).Str("provider", provider.Name()).Msg("diet planner listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-quit.Done()
	log.Info().Msg("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exiting")
}

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}
