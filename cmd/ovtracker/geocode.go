package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/ovtracker-map/internal/common/config"
	"github.com/ovtracker-map/internal/common/discord"
	"github.com/ovtracker-map/internal/common/logger"
	"github.com/ovtracker-map/internal/geocode/nominatim"
	"github.com/ovtracker-map/internal/geocode/resolver"
	"github.com/ovtracker-map/internal/stopstore"
	"github.com/ovtracker-map/internal/trips/parser"
)

func runGeocode(ctx context.Context, cfg *config.Config, log logger.Logger, args []string) error {
	fs := flag.NewFlagSet("geocode", flag.ExitOnError)
	csvPath := fs.String("csv", cfg.Trips.CSVPath, "Path to the trips CSV export")
	dryRun := fs.Bool("dry-run", false, "Print the queries that would be sent and exit")
	fs.Parse(args)

	overrides, err := resolver.LoadOverrides(cfg.Geocoder.OverridesFile)
	if err != nil {
		return err
	}
	guesser := resolver.NewGuesser(overrides)

	parsed, err := parser.New(log, cfg.Trips.Delimiter).ParseFile(*csvPath)
	if err != nil {
		return err
	}
	names := parser.StopNames(parsed.Trips)

	store, closer, err := stopstore.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closer.Close()

	current, err := store.Load(ctx)
	if err != nil {
		return err
	}

	client := nominatim.NewClient(nominatim.Config{
		BaseURL:      cfg.Geocoder.BaseURL,
		UserAgent:    cfg.Geocoder.UserAgent,
		CountryCodes: cfg.Geocoder.CountryCodes,
		Timeout:      cfg.Geocoder.Timeout,
	}, log)
	r := resolver.New(guesser, client, store, cfg.Geocoder.Delay, log)

	if *dryRun {
		for _, name := range r.Pending(names, current) {
			g := guesser.GuessQuery(name)
			fmt.Printf("%-40s %-12s %s\n", name, g.Rule, g.Query)
		}
		return nil
	}

	_, summary, err := r.Run(ctx, names, current)
	if errors.Is(err, context.Canceled) {
		log.Info("Stopped; rerun to continue where this run left off")
		return nil
	}
	if err != nil {
		return err
	}

	notifier := discord.NewClient(cfg.Notify.DiscordURL)
	if notifier.Enabled() && summary.Requests > 0 {
		if err := notifier.SendRunSummary(ctx, summary.RunID, len(summary.Resolved), summary.Unmatched); err != nil {
			log.Warn("Failed to send run summary", "error", err)
		}
	}
	return nil
}
