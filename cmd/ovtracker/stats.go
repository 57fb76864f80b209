package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ovtracker-map/internal/aggregator"
	"github.com/ovtracker-map/internal/common/config"
	"github.com/ovtracker-map/internal/common/logger"
	"github.com/ovtracker-map/internal/stopstore"
	"github.com/ovtracker-map/internal/trips/parser"
	"github.com/ovtracker-map/pkg/ovtrips/models"
)

// listFlag collects a repeated string flag
type listFlag struct {
	values []string
	set    bool
}

func (l *listFlag) String() string { return strings.Join(l.values, ",") }

func (l *listFlag) Set(v string) error {
	l.set = true
	if v != "" {
		l.values = append(l.values, v)
	}
	return nil
}

func runStats(ctx context.Context, cfg *config.Config, log logger.Logger, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	csvPath := fs.String("csv", cfg.Trips.CSVPath, "Path to the trips CSV export")
	all := fs.Bool("all", false, "Include non-journey transactions")
	from := fs.String("from", "", "First date to include (YYYY-MM-DD)")
	to := fs.String("to", "", "Last date to include (YYYY-MM-DD)")
	search := fs.String("q", "", "Only trips whose stops contain this text")
	minTrips := fs.Int("min", cfg.Server.MinRouteTrips, "Minimum trips for a route to be shown")
	var products listFlag
	fs.Var(&products, "product", "Product to include (repeatable; default all)")
	fs.Parse(args)

	trips, current, err := loadDataset(ctx, cfg, log, *csvPath)
	if err != nil {
		return err
	}

	f := aggregator.DefaultFilter(trips)
	f.IncludeNonJourney = *all
	f.Search = *search
	if *minTrips > 0 {
		f.MinRouteTrips = *minTrips
	}
	if products.set {
		f.Products = make(map[string]bool, len(products.values))
		for _, p := range products.values {
			f.Products[p] = true
		}
	}
	if *from != "" {
		if f.From, err = models.ParseISODate(*from); err != nil {
			return fmt.Errorf("invalid -from: %w", err)
		}
	}
	if *to != "" {
		if f.To, err = models.ParseISODate(*to); err != nil {
			return fmt.Errorf("invalid -to: %w", err)
		}
	}

	res := aggregator.Aggregate(trips, current.Coordinates(), f)
	if len(res.Missing) > 0 {
		log.Info("Stops without coordinates; run geocode or add overrides", "count", len(res.Missing))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// loadDataset reads the trips CSV and the stop store. Either failing is
// fatal for the caller: nothing is rendered from partial data.
func loadDataset(ctx context.Context, cfg *config.Config, log logger.Logger, csvPath string) ([]models.Trip, models.StopStore, error) {
	parsed, err := parser.New(log, cfg.Trips.Delimiter).ParseFile(csvPath)
	if err != nil {
		return nil, models.StopStore{}, fmt.Errorf("loading trips: %w", err)
	}

	store, closer, err := stopstore.Open(ctx, cfg, log)
	if err != nil {
		return nil, models.StopStore{}, fmt.Errorf("loading stop store: %w", err)
	}
	defer closer.Close()

	current, err := store.Load(ctx)
	if err != nil {
		return nil, models.StopStore{}, fmt.Errorf("loading stop store: %w", err)
	}
	return parsed.Trips, current, nil
}
