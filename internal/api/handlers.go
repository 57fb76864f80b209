package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ovtracker-map/internal/aggregator"
	"github.com/ovtracker-map/internal/common/logger"
	"github.com/ovtracker-map/pkg/ovtrips/models"
)

// Dataset is loaded once at startup and shared read-only by all requests.
type Dataset struct {
	Trips    []models.Trip
	Store    models.StopStore
	LoadedAt time.Time

	coords   map[string]models.LatLng
	defaults aggregator.Filter
	options  aggregator.Options
}

func NewDataset(trips []models.Trip, store models.StopStore, minRouteTrips int) *Dataset {
	defaults := aggregator.DefaultFilter(trips)
	if minRouteTrips > 0 {
		defaults.MinRouteTrips = minRouteTrips
	}
	return &Dataset{
		Trips:    trips,
		Store:    store,
		LoadedAt: time.Now().UTC(),
		coords:   store.Coordinates(),
		defaults: defaults,
		options:  aggregator.ObservedOptions(trips),
	}
}

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// FiltersResponse is the JSON response for GET /api/filters
type FiltersResponse struct {
	Options  aggregator.Options `json:"options"`
	Defaults aggregator.Filter  `json:"defaults"`
}

type Handler struct {
	data   *Dataset
	logger logger.Logger
}

func NewHandler(data *Dataset, logger logger.Logger) *Handler {
	return &Handler{data: data, logger: logger}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"trips":     len(h.data.Trips),
		"stops":     len(h.data.Store.Stops),
		"unmatched": len(h.data.Store.Unmatched),
		"loadedAt":  h.data.LoadedAt,
		"timestamp": time.Now().UTC(),
	})
}

// GetFilters handles GET /api/filters
// Returns the observed products and date span plus the default filter
func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FiltersResponse{
		Options:  h.data.options,
		Defaults: h.data.defaults,
	})
}

// GetStats handles GET /api/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	f, err := FilterFromQuery(r.URL.Query(), h.data.defaults)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	res := aggregator.Aggregate(h.data.Trips, h.data.coords, f)
	if len(res.Missing) > 0 {
		h.logger.Debug("Stops without coordinates", "count", len(res.Missing), "stops", res.Missing)
	}
	writeJSON(w, http.StatusOK, res)
}

// GetStops handles GET /api/stops
// Returns the stop-coordinate store as loaded
func (h *Handler) GetStops(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.data.Store)
}

// FilterFromQuery overlays query parameters on defaults:
//
//	include_non_journey=true
//	product=A&product=B   (present but empty selects no products)
//	from=2024-01-01&to=2024-12-31
//	q=centraal
//	min_trips=2
func FilterFromQuery(q url.Values, defaults aggregator.Filter) (aggregator.Filter, error) {
	f := defaults

	if v := q.Get("include_non_journey"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("invalid include_non_journey %q", v)
		}
		f.IncludeNonJourney = b
	}

	if values, ok := q["product"]; ok {
		f.Products = make(map[string]bool, len(values))
		for _, p := range values {
			if p != "" {
				f.Products[p] = true
			}
		}
	}

	if v := q.Get("from"); v != "" {
		d, err := models.ParseISODate(v)
		if err != nil {
			return f, fmt.Errorf("invalid from date %q", v)
		}
		f.From = d
	}
	if v := q.Get("to"); v != "" {
		d, err := models.ParseISODate(v)
		if err != nil {
			return f, fmt.Errorf("invalid to date %q", v)
		}
		f.To = d
	}

	if v, ok := q["q"]; ok {
		f.Search = strings.Join(v, " ")
	}

	if v := q.Get("min_trips"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, fmt.Errorf("invalid min_trips %q", v)
		}
		f.MinRouteTrips = n
	}

	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
