package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nniicckk78/chatai-backend-sub001/internal/api"
	"github.com/nniicckk78/chatai-backend-sub001/internal/chat"
	"github.com/nniicckk78/chatai-backend-sub001/internal/config"
	"github.com/nniicckk78/chatai-backend-sub001/internal/engine"
	"github.com/nniicckk78/chatai-backend-sub001/internal/events"
	"github.com/nniicckk78/chatai-backend-sub001/internal/generate"
	"github.com/nniicckk78/chatai-backend-sub001/internal/logbook"
	"github.com/nniicckk78/chatai-backend-sub001/internal/rules"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("chatai starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Generation backend
	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	client := generate.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	gen := generate.NewGenerator(client)
	slog.Info("generation client ready", "model", cfg.OpenAIModel, "base_url", cfg.OpenAIBaseURL)

	// Rules snapshot provider
	provider := rules.NewProvider(cfg.RulesPath, time.Duration(cfg.RulesRefreshSec)*time.Second, slog.Default())

	// Logbook store (optional — without it replies are not persisted)
	var writer logbook.Writer
	if cfg.DatabaseURL != "" {
		store, err := logbook.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		writer = store
		slog.Info("logbook store connected")
	} else {
		slog.Warn("DATABASE_URL not set — running without logbook persistence")
	}

	// Event publisher (optional — monitoring only)
	var publisher *events.Publisher
	if cfg.NatsURL != "" {
		p, err := events.NewPublisher(cfg.NatsURL, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set — running without monitoring events")
	}

	strategies := map[chat.Phase]engine.Strategy{
		chat.PhaseFirstContact:  gen.Strategy(chat.PhaseFirstContact),
		chat.PhaseReactivation:  gen.Strategy(chat.PhaseReactivation),
		chat.PhaseFriendRequest: gen.Strategy(chat.PhaseFriendRequest),
		chat.PhaseImageReply:    gen.Strategy(chat.PhaseImageReply),
		chat.PhaseNormalReply:   gen.Strategy(chat.PhaseNormalReply),
	}

	eng := engine.New(provider, strategies, gen, writer, publisher, slog.Default())

	srv := api.NewServer(cfg.Port, eng, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("chatai ready", "port", cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("chatai stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
