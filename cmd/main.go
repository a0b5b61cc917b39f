package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"variant-image-extractor/extractor"
	"variant-image-extractor/internal/types"
	"variant-image-extractor/utils"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	logger.SetLevel(logrus.InfoLevel)
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	}

	config := types.ConfigFromEnv(types.DefaultConfig())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting scraper...")

	session, err := utils.NewChromeSession(ctx, config, logger)
	if err != nil {
		logger.Fatalf("Failed to start browser session: %v", err)
	}
	defer session.Close()

	httpClient := utils.NewHTTPClient(config, logger)
	defer httpClient.Close()

	ext := extractor.NewTackleWarehouseExtractor(config, logger, session, utils.NewDownloader(httpClient, logger))

	if _, err := ext.ExtractAll(ctx); err != nil {
		session.Close()
		logger.Fatalf("Extraction failed: %v", err)
	}
}
