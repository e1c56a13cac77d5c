package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"image-extractor/adapters"
	"image-extractor/api"
	"image-extractor/extractor"
	"image-extractor/internal/config"
	"image-extractor/utils"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)

	httpClient := utils.NewHTTPClient(cfg, logger)
	defer httpClient.Close()

	// The browser process is started on the first request that needs rendering
	browser := utils.NewBrowserClient(cfg, logger)
	defer browser.Close()

	registry := adapters.NewRegistry(cfg, logger, httpClient)
	ext := extractor.NewExtractor(cfg, logger, registry, browser)

	// Leave room for one retried navigation plus the settle delay
	requestTimeout := 2*cfg.NavigationTimeout + cfg.SettleDelay + cfg.APITimeout
	server := api.NewServer(logger, ext, registry.Domains(), requestTimeout)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting API server on port %s", cfg.Port)
		logger.Info("Available endpoints:")
		logger.Info("  GET /                              - Service description")
		logger.Info("  GET /health                        - Health check")
		logger.Info("  GET /api/extract-images?url=<url>  - Extract product images")
		logger.Infof("Supported domains: %v", registry.Domains())

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
