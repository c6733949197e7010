package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tradebook/internal/app"
	"github.com/MrJamesThe3rd/tradebook/internal/config"
	tradebookHttp "github.com/MrJamesThe3rd/tradebook/internal/http"
	exportHandler "github.com/MrJamesThe3rd/tradebook/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/tradebook/internal/http/importfile"
	matchingHandler "github.com/MrJamesThe3rd/tradebook/internal/http/matching"
	tradeHandler "github.com/MrJamesThe3rd/tradebook/internal/http/trade"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		slog.Error("failed to build logger", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var (
		tradeH    = tradeHandler.NewHandler(a.Trades)
		importH   = importHandler.NewHandler(a.Importer)
		matchingH = matchingHandler.NewHandler(a.Matching)
		exportH   = exportHandler.NewHandler(a.Exporter)
	)

	router := tradebookHttp.New(tradebookHttp.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
		AuthSecret:     cfg.Auth.Secret,
	}, tradeH, importH, matchingH, exportH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	if cfg.Auth.Secret == "" {
		slog.Warn("AUTH_SECRET is empty, the API is open to anyone who can reach it")
	}

	slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
