package main

import (
	"fmt"
	"log/slog"

	"github.com/rpggio/carelog/internal/config"
	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/domain/audit"
	"github.com/rpggio/carelog/internal/domain/child"
	"github.com/rpggio/carelog/internal/mcp"
	"github.com/rpggio/carelog/internal/sqlite"
	"github.com/rpggio/carelog/internal/timeline"
)

// app holds the opened store and the services built on it.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sqlite.DB

	activityStore *sqlite.ActivityStore
	childRepo     *sqlite.ChildRepository
	apiKeys       *sqlite.APIKeyRepository

	activities *activity.Service
	children   *child.Service
	audit      *audit.Service
	timeline   *timeline.Service
}

func openApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if err := ensureDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	store := sqlite.NewActivityStore(db, logger)
	childRepo := sqlite.NewChildRepository(db)

	return &app{
		cfg:           cfg,
		logger:        logger,
		db:            db,
		activityStore: store,
		childRepo:     childRepo,
		apiKeys:       sqlite.NewAPIKeyRepository(db),
		activities:    activity.NewService(store, loc, logger),
		children:      child.NewService(childRepo, logger),
		audit: audit.NewService(childRepo, store, audit.Config{
			DefaultLimit:     cfg.Audit.DefaultLimit,
			HistoryPerRecord: cfg.Audit.HistoryPerRecord,
		}, logger),
		timeline: timeline.NewService(store, store, logger),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func (a *app) services() mcp.Services {
	return mcp.Services{
		Activities: a.activities,
		Timeline:   a.timeline,
		Audit:      a.audit,
		Children:   a.children,
	}
}

func (a *app) defaultAuthor() activity.Author {
	return activity.Author{ID: a.cfg.Auth.DefaultAuthorID, Label: a.cfg.Auth.DefaultAuthorLabel}
}
