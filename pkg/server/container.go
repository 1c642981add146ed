package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"kvops-api/internal/config"
	"kvops-api/internal/router"
	"kvops-api/internal/store"
	"kvops-api/internal/store/dynamo"
	"kvops-api/internal/store/sqlite"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Store  store.Store
	Router *router.Router

	// Internal dependencies
	db *sql.DB // non-nil for the sqlite backend
}

// NewContainer creates a new dependency injection container. The store
// backend is chosen by configuration and the router is built over it once;
// neither is reinitialized afterwards.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger := newLogger(cfg)

	container := &Container{
		Config: cfg,
		Logger: logger,
	}

	switch cfg.Store.Backend {
	case config.BackendDynamo:
		client, err := dynamo.NewClient(ctx, dynamo.ClientConfig{
			Region:    cfg.Store.Region,
			Endpoint:  cfg.Store.Endpoint,
			AccessKey: cfg.Store.AccessKey,
			SecretKey: cfg.Store.SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
		}
		container.Store = dynamo.New(client, logger)

	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.Store.SQLitePath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		db, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		if err := sqlite.Migrate(db, logger); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate sqlite store: %w", err)
		}
		container.db = db
		container.Store = sqlite.New(db, cfg.Store.KeyAttributes, logger)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	container.Router = router.New(container.Store, logger)

	logger.WithFields(logrus.Fields{
		"backend":     cfg.Store.Backend,
		"environment": cfg.Environment,
	}).Info("Container initialized")

	return container, nil
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Environment == "production" || config.IsServerlessMode() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}
