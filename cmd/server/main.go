package main

import (
	"zep-authrelay/internal/app"
	"zep-authrelay/internal/config"
	"zep-authrelay/pkg/logger"
)

func main() {
	// Load configuration from config.toml
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}

	application := app.NewApp(cfg)

	logger.Info("Auth relay starting...")

	if err := application.Run(); err != nil {
		logger.Fatal("Server error: %v", err)
	}
}
