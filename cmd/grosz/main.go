package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"grosz/internal/cache"
	"grosz/internal/config"
	"grosz/internal/gateway"
	"grosz/internal/log"
	"grosz/internal/querystate"
	"grosz/internal/services"
	"grosz/internal/storage"
	"grosz/internal/tui"
)

func main() {
	// Load .env file if present (for local development)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal; the operational log goes to a file.
	handler, err := log.NewFileHandler(cfg.LogFile, log.ParseLevel(cfg.LogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open log file: %v\n", err)
		os.Exit(1)
	}
	logger := log.New(log.Config{Handler: handler, Component: log.ComponentApp})
	log.SetDefault(logger)

	views, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open saved views store: %v\n", err)
		os.Exit(1)
	}
	defer views.Close()

	gw := gateway.New(gateway.Config{
		BaseURL:  cfg.APIBaseURL,
		Username: cfg.AuthUser,
		Password: cfg.AuthPass,
		Timeout:  cfg.RequestTimeout,
	}, logger)

	cacheManager := cache.NewManager()
	cacheManager.Register(gw)
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	list := services.NewListService(gw, cfg.PerPage, logger)
	dash := services.NewDashboardService(gw, logger)
	editor := services.NewCategoryEditor(gw, list, logger)
	importer := services.NewImportService(gw, logger)

	store := querystate.NewStore(querystate.NewLocation(querystate.PathTransactions))
	app := tui.New(cfg, store, list, dash, editor, importer, views, logger)

	logger.Info("Starting grosz",
		"api_url", cfg.APIBaseURL,
		"per_page", cfg.PerPage,
		"db_path", cfg.SQLiteDBPath)

	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Error("TUI terminated with error", log.FieldError, err)
		fmt.Fprintf(os.Stderr, "grosz: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Stopped")
}
