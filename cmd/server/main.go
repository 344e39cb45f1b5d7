package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/scalli-crm/cliente-scalli-sub000/internal/config"
	"github.com/scalli-crm/cliente-scalli-sub000/internal/httpx"
	"github.com/scalli-crm/cliente-scalli-sub000/internal/ingest"
	"github.com/scalli-crm/cliente-scalli-sub000/internal/models"
	"github.com/scalli-crm/cliente-scalli-sub000/internal/report"
	"github.com/scalli-crm/cliente-scalli-sub000/internal/store"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	var sources []models.Source
	if srcs, err := config.LoadSources(cfg.SourcesFile); err != nil {
		logger.Warn("sources file not loaded", slog.String("path", cfg.SourcesFile), slog.String("err", err.Error()))
	} else {
		sources = srcs
	}

	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	st := store.NewSnapshotStore()
	rf := ingest.NewRefresher(cl, st, logger, report.ParseOptions{KeepRagged: cfg.KeepRagged})

	// carga inicial en background; los endpoints sirven vacío hasta entonces
	if len(sources) > 0 {
		go rf.RefreshAll(context.Background(), sources)
	}

	r := httpx.NewRouter(logger, st, rf, sources, cfg.AllowedOrigin)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", slog.String("port", cfg.Port), slog.Int("sources", len(sources)))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
