package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ovtracker-map/internal/common/logger"
	"github.com/ovtracker-map/internal/geocode/nominatim"
	"github.com/ovtracker-map/pkg/ovtrips/models"
)

// Outcome of one resolution attempt
type Outcome string

const (
	OutcomeResolved  Outcome = "resolved"
	OutcomeUnmatched Outcome = "unmatched"
	OutcomeSkipped   Outcome = "skipped"
)

// Summary describes a finished (or interrupted) run.
type Summary struct {
	RunID     string
	Pending   int
	Requests  int
	Resolved  []string
	Unmatched []string
}

type Resolver struct {
	guesser  *Guesser
	geocoder Geocoder
	saver    StoreSaver
	delay    time.Duration
	logger   logger.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(guesser *Guesser, geocoder Geocoder, saver StoreSaver, delay time.Duration, logger logger.Logger) *Resolver {
	return &Resolver{
		guesser:  guesser,
		geocoder: geocoder,
		saver:    saver,
		delay:    delay,
		logger:   logger,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Pending returns the names, in input order, that still need a lookup.
func (r *Resolver) Pending(names []string, store models.StopStore) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if r.guesser.GuessQuery(name).Skip || store.Classified(name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Step resolves a single name and returns the store with that name
// classified. Lookup failures classify the name as unmatched; the only
// error returned is context cancellation, in which case store is returned
// unchanged.
func (r *Resolver) Step(ctx context.Context, store models.StopStore, name string) (models.StopStore, Outcome, error) {
	guess := r.guesser.GuessQuery(name)
	if guess.Skip {
		return store, OutcomeSkipped, nil
	}

	place, err := r.geocoder.Search(ctx, guess.Query)
	if err != nil {
		if ctx.Err() != nil {
			return store, "", ctx.Err()
		}
		if errors.Is(err, nominatim.ErrNoResult) {
			r.logger.Warn("No match", "stop", name, "query", guess.Query, "rule", guess.Rule)
		} else {
			r.logger.Error("Geocoding failed", "stop", name, "query", guess.Query, "error", err)
		}
		return store.WithUnmatched(name), OutcomeUnmatched, nil
	}

	r.logger.Info("Resolved",
		"stop", name,
		"query", guess.Query,
		"rule", guess.Rule,
		"lat", place.Lat,
		"lng", place.Lng)

	return store.WithResolved(name, models.StopCoordinate{
		Lat:   place.Lat,
		Lng:   place.Lng,
		Label: place.DisplayName,
		Query: guess.Query,
	}), OutcomeResolved, nil
}

// Run resolves every pending name one at a time. The full store is saved
// after each attempt and the configured delay passes before the next
// request, so the run can be interrupted at any point and resumed.
func (r *Resolver) Run(ctx context.Context, names []string, store models.StopStore) (models.StopStore, Summary, error) {
	summary := Summary{RunID: uuid.NewString()}
	log := r.logger.With("run_id", summary.RunID)

	pending := r.Pending(names, store)
	summary.Pending = len(pending)
	log.Info("Starting geocoding run",
		"names", len(names),
		"already_resolved", len(store.Stops),
		"already_unmatched", len(store.Unmatched),
		"pending", len(pending),
		"delay", r.delay)

	for i, name := range pending {
		next, outcome, err := r.Step(ctx, store, name)
		if err != nil {
			log.Warn("Run interrupted", "remaining", len(pending)-i)
			return store, summary, err
		}
		summary.Requests++

		switch outcome {
		case OutcomeResolved:
			summary.Resolved = append(summary.Resolved, name)
		case OutcomeUnmatched:
			summary.Unmatched = append(summary.Unmatched, name)
		}

		store = next
		store.GeneratedAt = r.now().UTC()
		if err := r.saver.Save(ctx, store); err != nil {
			return store, summary, fmt.Errorf("saving store after %q: %w", name, err)
		}

		if i < len(pending)-1 {
			if err := r.sleep(ctx, r.delay); err != nil {
				log.Warn("Run interrupted", "remaining", len(pending)-i-1)
				return store, summary, err
			}
		}
	}

	if len(pending) == 0 {
		store.GeneratedAt = r.now().UTC()
		if err := r.saver.Save(ctx, store); err != nil {
			return store, summary, fmt.Errorf("saving store: %w", err)
		}
	}

	log.Info("Geocoding run finished",
		"requests", summary.Requests,
		"resolved", len(summary.Resolved),
		"unmatched", len(summary.Unmatched))

	return store, summary, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
