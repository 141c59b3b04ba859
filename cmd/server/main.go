package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/grouppay/grouppay/internal/server"
	"github.com/grouppay/grouppay/internal/storage/sqlite"
	"github.com/grouppay/grouppay/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; real env vars win either way.
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded .env file")
	}

	logging.Setup()

	if getEnv("GIN_MODE", "") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbPath := getEnv("DB_PATH", "./data/grouppay.db")
	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	addr := fmt.Sprintf(":%s", getEnv("PORT", "8080"))
	slog.Info("Server starting", "address", addr)
	if err := server.New(store).Run(addr); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
