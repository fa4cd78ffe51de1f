// Package cli provides common initialization utilities for cmd/expensetracker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"expensetracker/internal/storage"
)

// SetupLogger initializes structured logging and sets the default logger.
// Logs go to stderr: on the stdio transport stdout carries the protocol.
func SetupLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// InitStore initializes the SQLite expense repository.
// Returns the repository or exits the process on failure.
func InitStore(logger *slog.Logger, dbPath string) *storage.SQLiteRepository {
	store, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return store
}
