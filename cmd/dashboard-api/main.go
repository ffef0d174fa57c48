package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"go-data-dashboard/internal/api"
	"go-data-dashboard/internal/api/handler"
	"go-data-dashboard/internal/cache"
	"go-data-dashboard/internal/config"
	"go-data-dashboard/internal/metrics"
	"go-data-dashboard/internal/pipeline"
	"go-data-dashboard/internal/store"
	"go-data-dashboard/pkg/router"
	"go-data-dashboard/pkg/utils"
)

// @title Data Dashboard API
// @version 1.0
// @description Aggregated time series, tables and charts for small data dashboards.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	cmd := &cli.Command{
		Name:   "dashboard-api",
		Usage:  "serve dataset aggregations, charts and exports over HTTP",
		Flags:  config.ServerFlags(),
		Action: serve,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg := config.FromCommand(cmd)
	log, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer log.Sync()

	datasets, err := cfg.Datasets()
	if err != nil {
		return err
	}

	m := metrics.New()
	c, err := cache.New(cfg.Cache, m)
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}
	defer c.Close()

	// Init export DB
	var st *store.Store
	if cfg.DBPath != "" {
		if st, err = store.Open(cfg.DBPath); err != nil {
			return err
		}
		defer st.Close()
	}
	outputs := utils.NewOutputManager(cfg.ExportDir)

	catalog := pipeline.NewCatalog(log, pipeline.NewLoader(log, nil, m), c, m, datasets)
	if cfg.Preload {
		// Loads run in the background; requests for a dataset still loading
		// wait on the same load.
		go func() {
			if err := catalog.LoadAll(ctx); err != nil {
				log.Warn("⚠️ Preload interrupted", zap.Error(err))
			}
		}()
	}
	h := handler.New(log, catalog, pipeline.NewExporter(log, st, outputs, m), st, outputs)

	// Create router
	r := router.New(log, cfg.Color)

	// Register API routes
	api.RegisterRoutes(r, h, m)
	log.Info("📚 Datasets configured", zap.Int("count", len(datasets)), zap.String("swagger", "/swagger/index.html"))

	// Start server
	return r.Start(ctx, cfg.Addr)
}
