package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/selivandex/news-sentiment/internal/adapters/config"
	"github.com/selivandex/news-sentiment/internal/adapters/telegram"
	"github.com/selivandex/news-sentiment/internal/server"
	"github.com/selivandex/news-sentiment/pkg/logger"
)

func newServeCmd(getConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (and the Telegram bot when configured)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), getConfig())
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	gin.SetMode(gin.ReleaseMode)

	srv := server.NewServer(cfg.HTTP.Addr, server.Deps{
		Collector:     a.collector,
		Predictor:     a.predictor,
		Articles:      a.articles,
		Predictions:   a.predictions,
		Logs:          a.logs,
		Recorder:      a.journal,
		DB:            a.db,
		HasCredential: cfg.LLM.HasCredential,
		AllowOrigins:  cfg.HTTP.AllowOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	if cfg.TelegramEnabled() {
		startTelegramBot(ctx, cfg, a)
	}

	srv.SetReady(true)
	logger.Info("service started", zap.String("addr", cfg.HTTP.Addr))

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	}

	return performGracefulShutdown(srv, cfg)
}

func startTelegramBot(ctx context.Context, cfg *config.Config, a *app) {
	renderer, err := telegram.NewTemplateManager()
	if err != nil {
		logger.Error("telegram bot disabled", zap.Error(err))
		return
	}

	commands := telegram.NewCommands(a.collector, a.predictor, a.predictions, renderer)
	bot, err := telegram.NewBot(&cfg.Telegram, commands)
	if err != nil {
		logger.Error("telegram bot disabled", zap.Error(err))
		return
	}

	go func() {
		if err := bot.Start(ctx); err != nil && err != context.Canceled {
			logger.Error("telegram bot stopped", zap.Error(err))
		}
	}()
}

func performGracefulShutdown(srv *server.Server, cfg *config.Config) error {
	logger.Info("shutting down gracefully...")
	srv.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop http server: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
