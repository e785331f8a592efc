package app

import (
	"fmt"
	"os"
	"time"

	"github.com/NepaliUtsab/blckpinkinventory/internal/config"
	"github.com/NepaliUtsab/blckpinkinventory/internal/inventory"
	"github.com/NepaliUtsab/blckpinkinventory/internal/storage"
)

// App is the application layer between the CLI and the inventory repository.
// It constructs all dependencies from config, owns the log file, and exposes
// backup orchestration on top of the repository's plain zip export/import.
type App struct {
	cfg     *config.Config
	repo    *inventory.Repository
	logger  inventory.Logger
	logFile *os.File
}

// New creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "AddItem", "Export").
// The caller must call Close when done.
func New(cfg *config.Config, operation string) (*App, error) {
	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger.With("op", operation)}

	defaults, err := GetDefaults()
	if err != nil {
		logFile.Close()
		return nil, err
	}

	engine, err := storage.NewEngine(defaults["storage_root"], logger)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating storage engine: %w", err)
	}

	repo := inventory.NewRepository(engine, logger, inventory.RealClock{}, inventory.UUIDGenerator{}, inventory.RandomCodeGenerator{})

	return &App{
		cfg:     cfg,
		repo:    repo,
		logger:  logger,
		logFile: logFile,
	}, nil
}

// Repository returns the wired inventory repository.
func (a *App) Repository() *inventory.Repository {
	return a.repo
}

// Close releases resources held by the app.
func (a *App) Close() error {
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}
