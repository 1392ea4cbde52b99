package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"golang.org/x/sync/errgroup"

	tgbot "github.com/AI-Models-Telegram-Bot/ai-models-tgbot"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/config"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/handler"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/ledger"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/middleware"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/pricing"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/provider"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/registry"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/repository"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/router"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/stream"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	migrationsFS, err := fs.Sub(tgbot.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Core services
	routes, err := registry.Default()
	if err != nil {
		slog.Error("invalid route table", "error", err)
		os.Exit(1)
	}
	calc := pricing.Default()
	ledgerService := ledger.NewService(ledger.NewPGStore(pool))

	providers := provider.NewRegistry(
		provider.NewOpenRouter(cfg.OpenRouterKey),
		provider.NewFal(cfg.FalKey),
		provider.NewReplicate(cfg.ReplicateKey),
	)

	hub := stream.NewHub(10 * time.Minute)
	generationRouter := router.New(routes, calc, ledgerService, providers, hub,
		config.ProviderAttemptTimeout)

	// Telegram bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
		),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}
	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	h := handler.New(handler.Deps{
		Bot:      b,
		Cfg:      cfg,
		Registry: routes,
		Pricing:  calc,
		Ledger:   ledgerService,
		Router:   generationRouter,
	})
	h.Register()

	// Plain private text goes to the default text model.
	b.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix,
		func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.Chat.Type != "private" {
				return
			}
			if strings.HasPrefix(update.Message.Text, "/") {
				return
			}
			h.HandleText(ctx, b, update)
		})

	// Streaming endpoint for the mini-app
	streamServer := stream.NewServer(hub, cfg.StreamSecret)
	httpServer := &http.Server{
		Addr:    cfg.StreamAddr,
		Handler: streamServer.Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting stream server", "addr", cfg.StreamAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		slog.Info("starting bot", "username", me.Username, "id", me.ID)
		b.Start(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	slog.Info("stopped gracefully")
}
