package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/katelouie/arcanite/internal/adapters/decks"
	httpadapter "github.com/katelouie/arcanite/internal/adapters/http"
	"github.com/katelouie/arcanite/internal/adapters/llm/openrouter"
	"github.com/katelouie/arcanite/internal/adapters/spreads"
	"github.com/katelouie/arcanite/internal/app"
	"github.com/katelouie/arcanite/internal/config"
	"github.com/katelouie/arcanite/internal/ports"
)

// stdRNG delegates to math/rand/v2 (auto-seeded).
type stdRNG struct{}

func (stdRNG) Intn(n int) int { return rand.IntN(n) }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	var deckOpts []decks.Option
	if cfg.CardDataDir != "" {
		deckOpts = append(deckOpts, decks.WithDataDir(cfg.CardDataDir))
	}
	if cfg.ImageDir != "" {
		deckOpts = append(deckOpts, decks.WithImageDir(cfg.ImageDir))
	}
	deckStore := decks.NewStore(deckOpts...)

	registry, err := loadRegistry(cfg)
	if err != nil {
		logger.Error("failed to load spreads", "error", err)
		os.Exit(1)
	}
	logger.Info("spreads loaded", "count", registry.Len())

	var synthesizer ports.Synthesizer
	var classifier ports.Classifier
	if cfg.LLMProvider == "openrouter" {
		client, err := openrouter.NewClient(
			&http.Client{Timeout: cfg.LLMTimeout},
			cfg.OpenRouterAPIKey,
			cfg.OpenRouterBaseURL,
			cfg.LLMModel,
			cfg.LLMFallbackModels,
			logger,
		)
		if err != nil {
			logger.Error("failed to build LLM client", "error", err)
			os.Exit(1)
		}
		synthesizer = client
		classifier = client
	}

	svc := app.NewReadingService(deckStore, registry, synthesizer, classifier, stdRNG{}, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(httpadapter.RequestIDMiddleware())
	e.Use(httpadapter.LoggingMiddleware(logger))

	handler := httpadapter.NewHandler(svc, registry, cfg.DefaultDeck)
	handler.Register(e)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func loadRegistry(cfg config.Config) (*spreads.Registry, error) {
	if cfg.SpreadsPath != "" {
		return spreads.NewFromFile(cfg.SpreadsPath)
	}
	return spreads.NewEmbedded()
}
