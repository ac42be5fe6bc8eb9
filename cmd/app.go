package cmd

import (
	"fmt"

	"media-catalog/core/config"
	"media-catalog/core/database"
	"media-catalog/core/identity"
	"media-catalog/core/logger"
	"media-catalog/core/storage"
	"media-catalog/feature/catalog"
	"media-catalog/feature/librarysync"
	"media-catalog/feature/progress"
	"media-catalog/feature/scanner"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app bundles the dependencies shared by every command.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	db    *gorm.DB
	store *catalog.Store
}

// bootstrap loads configuration, builds the logger and opens the catalog database.
func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	l.Debug("Connected to catalog database", zap.String("driver", cfg.Database.Driver))

	return &app{cfg: cfg, log: l, db: db, store: catalog.NewStore(db)}, nil
}

// requireSchema fails when the catalog tables are missing or outdated.
func (a *app) requireSchema() error {
	if err := catalog.VerifySchema(a.db); err != nil {
		return fmt.Errorf("%w (run \"media-catalog migrate\")", err)
	}
	return nil
}

// syncService wires the scanners for every supported root scheme.
func (a *app) syncService() (*librarysync.Service, error) {
	scanners := scanner.Multi{
		identity.SchemeFile: scanner.NewFilesystem(a.log),
	}

	client, err := storage.NewClient(a.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	scanners[identity.SchemeS3] = scanner.NewObjectStore(client, a.log)

	return librarysync.NewService(a.store, scanners, a.cfg.Catalog, a.log), nil
}

func (a *app) tracker() *progress.Tracker {
	return progress.NewTracker(a.db, progress.WithLogger(a.log))
}

func (a *app) close() {
	_ = a.log.Sync()
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
