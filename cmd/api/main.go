package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/withjet/backend/internal/config"
	"github.com/zhouzirui/withjet/backend/internal/handler"
	"github.com/zhouzirui/withjet/backend/internal/logging"
	"github.com/zhouzirui/withjet/backend/internal/model/bot"
	"github.com/zhouzirui/withjet/backend/internal/service/ai"
	"github.com/zhouzirui/withjet/backend/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Setup(cfg.Log)
	logger := logging.Component("api")

	if envErr != nil {
		logger.Warn().Err(envErr).Msg("failed to load .env file, continuing with system environment variables only")
	}

	botStore, err := loadBots(cfg.Bots)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.Bots.File).Msg("failed to load bots")
	}

	aiService, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		logger.Warn().Err(err).Str("provider", cfg.AI.Provider).Msg("failed to initialize AI backend, replies will use the fallback text")
		aiService = ai.NewServiceWithBackend(ai.Unavailable{}, cfg.AI)
	} else if !aiService.Available() {
		logger.Warn().Str("provider", cfg.AI.Provider).Msg("AI credentials not configured, replies will use the fallback text")
	} else {
		logger.Info().Str("backend", aiService.Name()).Msg("AI service initialized")
	}

	engine := chat.NewEngine(aiService, chat.WithTemperature(aiService.Temperature()))
	chatService := chat.NewService(botStore, engine)

	router := handler.NewRouter(botStore, chatService, aiService, cfg.Widget)

	startServer(ctx, cfg.Server, router)
}

func loadBots(cfg config.BotsConfig) (bot.Store, error) {
	if cfg.File == "" {
		return bot.NewMemoryStore(bot.Seed()), nil
	}
	items, err := bot.LoadFile(cfg.File)
	if err != nil {
		return nil, err
	}
	log.Info().Int("count", len(items)).Str("file", cfg.File).Msg("bots loaded")
	return bot.NewMemoryStore(items), nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("withjet backend listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
