package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"time"

	"github.com/ovtracker-map/internal/api"
	"github.com/ovtracker-map/internal/common/config"
	"github.com/ovtracker-map/internal/common/logger"
)

func runServe(ctx context.Context, cfg *config.Config, log logger.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	csvPath := fs.String("csv", cfg.Trips.CSVPath, "Path to the trips CSV export")
	port := fs.String("port", cfg.Server.Port, "Port to listen on")
	fs.Parse(args)

	trips, current, err := loadDataset(ctx, cfg, log, *csvPath)
	if err != nil {
		return err
	}

	data := api.NewDataset(trips, current, cfg.Server.MinRouteTrips)
	handler := api.NewHandler(data, log)
	router := api.NewRouter(handler, api.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		StaticDir:      cfg.Server.StaticDir,
	}, log)

	srv := &http.Server{
		Addr:              ":" + *port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("API server starting",
			"port", *port,
			"trips", len(trips),
			"stops", len(current.Stops),
			"static_dir", cfg.Server.StaticDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("API server stopped")
	return nil
}
