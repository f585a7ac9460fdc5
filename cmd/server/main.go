// coachmem server - career coaching chat API
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pathwise/coachmem-go/pkg/coach"
	"github.com/pathwise/coachmem-go/pkg/core"
	llmopenai "github.com/pathwise/coachmem-go/pkg/llm/openai"
	"github.com/pathwise/coachmem-go/pkg/memory"
	mysqlstore "github.com/pathwise/coachmem-go/pkg/memory/mysql"
	postgresstore "github.com/pathwise/coachmem-go/pkg/memory/postgres"
	sqlitestore "github.com/pathwise/coachmem-go/pkg/memory/sqlite"
	"github.com/pathwise/coachmem-go/pkg/profile"
	"github.com/pathwise/coachmem-go/pkg/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := core.LoadConfigFromEnv()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("Starting server", "config", cfg.String())

	store, err := newStore(cfg.Storage)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close storage", "error", closeErr)
		}
	}()
	slog.Info("Storage connected", "provider", cfg.Storage.Provider)

	provider, err := llmopenai.NewClient(&llmopenai.Config{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
	})
	if err != nil {
		slog.Error("Failed to initialize completion provider", "error", err)
		os.Exit(1)
	}
	defer func() { _ = provider.Close() }()

	mem, err := memory.NewConversationMemory(store, cfg.Chat.MaxMemoryInteractions)
	if err != nil {
		slog.Error("Failed to initialize conversation memory", "error", err)
		os.Exit(1)
	}

	scheduler := profile.NewScheduler(store, mem, cfg.Chat, logger)
	orch := coach.New(cfg.Chat, provider, mem, scheduler, coach.WithLogger(logger))
	handler := server.NewHandler(orch, mem, logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           server.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

// newStore builds the persistence backend selected by configuration.
func newStore(cfg core.StorageConfig) (memory.Store, error) {
	switch cfg.Provider {
	case "postgres":
		return postgresstore.NewStore(&postgresstore.Config{
			Host:     stringOption(cfg.Config, "host", "localhost"),
			Port:     intOption(cfg.Config, "port", 5432),
			User:     stringOption(cfg.Config, "user", "postgres"),
			Password: stringOption(cfg.Config, "password", ""),
			DBName:   stringOption(cfg.Config, "db_name", "coachmem"),
			SSLMode:  stringOption(cfg.Config, "ssl_mode", "disable"),
		})
	case "mysql":
		return mysqlstore.NewStore(&mysqlstore.Config{
			Host:     stringOption(cfg.Config, "host", "127.0.0.1"),
			Port:     intOption(cfg.Config, "port", 3306),
			User:     stringOption(cfg.Config, "user", "root"),
			Password: stringOption(cfg.Config, "password", ""),
			DBName:   stringOption(cfg.Config, "db_name", "coachmem"),
		})
	default:
		return sqlitestore.NewStore(&sqlitestore.Config{
			DBPath: stringOption(cfg.Config, "db_path", "./coachmem.db"),
		})
	}
}

// stringOption reads a string from a provider config map.
func stringOption(config map[string]interface{}, key, defaultValue string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

// intOption reads an int from a provider config map.
func intOption(config map[string]interface{}, key string, defaultValue int) int {
	switch v := config[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return defaultValue
}
