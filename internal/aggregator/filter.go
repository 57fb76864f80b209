package aggregator

import (
	"sort"
	"strings"

	"github.com/ovtracker-map/pkg/ovtrips/models"
)

// Filter selects which trips take part in aggregation. The zero value of
// From/To means unbounded; an empty Products set accepts nothing.
type Filter struct {
	IncludeNonJourney bool            `json:"includeNonJourney"`
	Products          map[string]bool `json:"products"`
	From              models.Date     `json:"from"`
	To                models.Date     `json:"to"`
	Search            string          `json:"search"`
	MinRouteTrips     int             `json:"minRouteTrips"`
}

// Options are the values observed in the data, used for the default filter
// and for populating the filter controls.
type Options struct {
	Products []string    `json:"products"`
	From     models.Date `json:"from"`
	To       models.Date `json:"to"`
}

func ObservedOptions(trips []models.Trip) Options {
	var opts Options
	seen := make(map[string]bool)
	for _, t := range trips {
		if !seen[t.Product] {
			seen[t.Product] = true
			opts.Products = append(opts.Products, t.Product)
		}
		if opts.From.IsZero() || t.Date.Before(opts.From) {
			opts.From = t.Date
		}
		if opts.To.IsZero() || t.Date.After(opts.To) {
			opts.To = t.Date
		}
	}
	sort.Strings(opts.Products)
	return opts
}

// DefaultFilter accepts every observed product over the full observed span,
// journeys only, with every route shown.
func DefaultFilter(trips []models.Trip) Filter {
	opts := ObservedOptions(trips)
	products := make(map[string]bool, len(opts.Products))
	for _, p := range opts.Products {
		products[p] = true
	}
	return Filter{
		Products:      products,
		From:          opts.From,
		To:            opts.To,
		MinRouteTrips: 1,
	}
}

func (f Filter) Match(t models.Trip) bool {
	if !f.IncludeNonJourney && !t.IsJourney() {
		return false
	}
	if !f.Products[t.Product] {
		return false
	}
	if !f.From.IsZero() && t.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To) {
		return false
	}
	if f.Search != "" {
		haystack := strings.ToLower(t.Origin + " " + t.Destination)
		if !strings.Contains(haystack, strings.ToLower(f.Search)) {
			return false
		}
	}
	return true
}

// Apply returns the matching trips in input order.
func (f Filter) Apply(trips []models.Trip) []models.Trip {
	out := make([]models.Trip, 0, len(trips))
	for _, t := range trips {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
