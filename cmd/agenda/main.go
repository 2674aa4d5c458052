package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"agenda/internal/assistant"
	"agenda/internal/board"
	"agenda/internal/config"
	"agenda/internal/storage"
	"agenda/internal/ui"
)

func main() {
	configPath := config.ResolveConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		fmt.Printf("failed to create data dir: %v\n", err)
		os.Exit(1)
	}
	logFile, err := os.OpenFile(filepath.Join(dataDir, "agenda.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Printf("failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Printf("failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	snap, err := store.LoadState()
	if err != nil {
		logger.Warn("stored state unreadable, starting empty", "db", cfg.DBPath, "error", err)
		snap = board.Snapshot{}
	}
	b := board.New(snap, board.WithSaver(store), board.WithLogger(logger))

	var asst *assistant.Assistant
	if client, err := assistant.NewOpenAIClient(cfg.Assistant); err != nil {
		logger.Warn("assistant disabled", "error", err)
	} else {
		asst = assistant.New(client, b, cfg.Assistant.Model, cfg.AssistantTimeout(), logger)
	}

	logger.Info("agenda started", "config", configPath, "db", cfg.DBPath, "tasks", len(snap.Tasks))
	if err := ui.Run(b, asst, cfg); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}
