package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/ovtracker-map/internal/aggregator"
	"github.com/ovtracker-map/internal/common/logger"
	"github.com/ovtracker-map/pkg/ovtrips/models"
)

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func testDataset(t *testing.T) *Dataset {
	trips := []models.Trip{
		{ID: "1", Date: mustDate(t, "01-03-2024"), Origin: "Dam", Destination: "Spui", Transaction: "Reis", Product: "Dal Voordeel"},
		{ID: "2", Date: mustDate(t, "02-03-2024"), Origin: "Dam", Destination: "Spui", Transaction: "Reis", Product: "Dal Voordeel"},
		{ID: "3", Date: mustDate(t, "03-03-2024"), Origin: "Spui", Destination: "Dam", Transaction: "Reis", Product: "Vol tarief"},
		{ID: "4", Date: mustDate(t, "04-03-2024"), Origin: "Dam", Destination: "Nergens", Transaction: "Reis", Product: "Vol tarief"},
		{ID: "5", Date: mustDate(t, "05-03-2024"), Transaction: "Saldo opgeladen", Product: "Automatisch opladen"},
	}
	store := models.NewStopStore().
		WithResolved("Dam", models.StopCoordinate{Lat: 52.373, Lng: 4.893}).
		WithResolved("Spui", models.StopCoordinate{Lat: 52.369, Lng: 4.889}).
		WithUnmatched("Nergens")
	return NewDataset(trips, store, 1)
}

func newTestServer(t *testing.T) *httptest.Server {
	h := NewHandler(testDataset(t), logger.Nop())
	srv := httptest.NewServer(NewRouter(h, RouterConfig{AllowedOrigins: []string{"*"}}, logger.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, srv *httptest.Server, path string, wantStatus int, out interface{}) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, expected %d", path, resp.StatusCode, wantStatus)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("GET %s content type = %q", path, ct)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s: %v", path, err)
		}
	}
}

func TestStatsDefault(t *testing.T) {
	srv := newTestServer(t)

	var res aggregator.Result
	getJSON(t, srv, "/api/stats", http.StatusOK, &res)

	if len(res.Trips) != 4 {
		t.Errorf("Expected 4 journeys, got %d", len(res.Trips))
	}
	if len(res.Routes) != 2 || res.Routes[0].Count != 2 {
		t.Errorf("Unexpected routes %+v", res.Routes)
	}
	if len(res.Missing) != 1 || res.Missing[0] != "Nergens" {
		t.Errorf("Unexpected missing %v", res.Missing)
	}
}

func TestStatsWithFilter(t *testing.T) {
	srv := newTestServer(t)

	var res aggregator.Result
	getJSON(t, srv, "/api/stats?include_non_journey=true&product=Automatisch+opladen", http.StatusOK, &res)
	if len(res.Trips) != 1 || len(res.Routes) != 0 || len(res.Products) != 1 {
		t.Errorf("Unexpected result %+v", res)
	}

	getJSON(t, srv, "/api/stats?product=", http.StatusOK, &res)
	if len(res.Trips) != 0 || len(res.Products) != 0 {
		t.Errorf("Empty product set should yield nothing, got %+v", res)
	}

	getJSON(t, srv, "/api/stats?min_trips=2", http.StatusOK, &res)
	if len(res.VisibleRoutes) != 1 {
		t.Errorf("Expected one visible route, got %d", len(res.VisibleRoutes))
	}
}

func TestStatsBadRequest(t *testing.T) {
	srv := newTestServer(t)
	for _, q := range []string{"from=yesterday", "min_trips=0", "include_non_journey=maybe"} {
		var body ErrorResponse
		getJSON(t, srv, "/api/stats?"+q, http.StatusBadRequest, &body)
		if body.Error == "" {
			t.Errorf("Expected error message for %s", q)
		}
	}
}

func TestFiltersAndStops(t *testing.T) {
	srv := newTestServer(t)

	var filters FiltersResponse
	getJSON(t, srv, "/api/filters", http.StatusOK, &filters)
	if len(filters.Options.Products) != 3 {
		t.Errorf("Expected 3 products, got %v", filters.Options.Products)
	}
	if filters.Defaults.IncludeNonJourney || filters.Defaults.MinRouteTrips != 1 {
		t.Errorf("Unexpected defaults %+v", filters.Defaults)
	}

	var store models.StopStore
	getJSON(t, srv, "/api/stops", http.StatusOK, &store)
	if len(store.Stops) != 2 || len(store.Unmatched) != 1 {
		t.Errorf("Unexpected store %+v", store)
	}

	getJSON(t, srv, "/health", http.StatusOK, nil)
}

func TestFilterFromQuery(t *testing.T) {
	defaults := aggregator.Filter{Products: map[string]bool{"A": true}, MinRouteTrips: 1}

	f, err := FilterFromQuery(url.Values{
		"from": {"2024-01-01"},
		"to":   {"31-01-2024"},
		"q":    {"Centraal"},
	}, defaults)
	if err != nil {
		t.Fatalf("FilterFromQuery() error: %v", err)
	}
	if f.From.String() != "2024-01-01" || f.To.String() != "2024-01-31" {
		t.Errorf("Unexpected range %s..%s", f.From, f.To)
	}
	if f.Search != "Centraal" || !f.Products["A"] {
		t.Errorf("Unexpected filter %+v", f)
	}
}
