package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/liliang-cn/qualia/internal/api"
	"github.com/liliang-cn/qualia/internal/domain"
	"github.com/liliang-cn/qualia/internal/service"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the chat HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	})
}

func runServe(ctx context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize", zap.Error(err))
		return err
	}
	defer a.close()

	// Restore the previous conversation before accepting requests
	a.orchestrator.Rehydrate(ctx)

	widgetCfg := domain.DefaultWidgetConfig(cfg.Search.Branding)
	widgetCfg.AppURL = cfg.Server.BaseURL

	router := api.SetupRouter(
		service.NewAdminService(a.orchestrator),
		service.NewWidgetService(widgetCfg, a.orchestrator, a.searcher),
		api.RouterConfig{
			APIKey:       cfg.Admin.APIKey,
			AllowOrigins: cfg.Server.AllowOrigins,
			Logger:       logger,
		},
	)

	// Create HTTP server. Turns take the thinking animation plus the
	// completion call, so the write timeout covers the search timeout.
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Search.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		baseURL := cfg.Server.BaseURL
		if baseURL == "" {
			baseURL = "(derived from request host)"
		}
		logger.Info("Starting Qualia server",
			zap.String("address", cfg.Address()),
			zap.String("base_url", baseURL),
			zap.Bool("search_configured", a.searcher.Configured()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error("Failed to start server", zap.Error(err))
		return err
	}

	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server exited")
	return nil
}
