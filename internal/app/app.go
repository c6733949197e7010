// Package app opens the store and builds the services every front end shares.
// Each entry point owns one App and closes it on exit.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/tradebook/internal/config"
	"github.com/MrJamesThe3rd/tradebook/internal/database"
	"github.com/MrJamesThe3rd/tradebook/internal/export"
	"github.com/MrJamesThe3rd/tradebook/internal/importer"
	"github.com/MrJamesThe3rd/tradebook/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/tradebook/internal/matching/store"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
	tradeStore "github.com/MrJamesThe3rd/tradebook/internal/trade/store"
)

type App struct {
	Config   *config.Config
	Trades   *trade.Service
	Matching *matching.Service
	Importer *importer.Service
	Exporter *export.Service

	db *sql.DB
}

func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	driver, dsn, err := cfg.DataSource()
	if err != nil {
		return nil, err
	}

	db, err := database.New(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", trade.ErrStorageUnavailable, err)
	}

	store, err := tradeStore.Open(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	slog.Debug("store opened", "driver", driver)

	var (
		trades   = trade.NewService(store)
		matchSvc = matching.NewService(matchingStore.New(db))
	)

	return &App{
		Config:   cfg,
		Trades:   trades,
		Matching: matchSvc,
		Importer: importer.NewService(trades, matchSvc),
		Exporter: export.NewService(trades),
		db:       db,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}
