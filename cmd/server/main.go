package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/talmo/prompt-canvas/internal/config"
	"github.com/talmo/prompt-canvas/internal/editor"
	"github.com/talmo/prompt-canvas/internal/httpapi"
	"github.com/talmo/prompt-canvas/internal/providers"
	"github.com/talmo/prompt-canvas/internal/repository"
	"github.com/talmo/prompt-canvas/internal/server"
	"github.com/talmo/prompt-canvas/internal/service"
	"github.com/talmo/prompt-canvas/internal/sessionlog"
	"github.com/talmo/prompt-canvas/internal/storage"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("open database failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := storage.RunMigrations(ctx, db); err != nil {
		logger.Error("migrations failed", slog.Any("error", err))
		os.Exit(1)
	}

	ed := editor.New(cfg.CanvasFile, nil, logger)
	if err := ed.Load(); err != nil {
		logger.Error("load canvas failed", slog.Any("error", err), slog.String("path", cfg.CanvasFile))
		os.Exit(1)
	}

	go func() {
		if err := ed.Watch(ctx, cfg.WatchDebounce); err != nil && ctx.Err() == nil {
			logger.Error("canvas watch stopped", slog.Any("error", err))
		}
	}()

	reader := sessionlog.NewReader(cfg.ClaudeProjectsDir)
	summaryRepo := repository.NewSessionSummaryRepository(db)
	keyRepo := repository.NewAPIKeyRepository(db)

	registry := providers.NewRegistry()
	registry.Register("openai", providers.NewOpenAIClient(cfg.OpenAIBaseURL))
	registry.Register("echo", providers.EchoClient{})

	keys := service.NewAPIKeyService(keyRepo, cfg.EncryptionKey)
	index := service.NewSessionIndex(reader, summaryRepo)
	summarizer := service.NewSummarizerService(registry, keys, reader, summaryRepo)

	handler := httpapi.NewRouter(ed, index, summarizer, keys)
	srv := server.New(cfg.HTTPPort, cfg.ShutdownTimeout, handler, logger)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}
