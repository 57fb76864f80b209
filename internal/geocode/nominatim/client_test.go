package nominatim

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ovtracker-map/internal/common/logger"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		checks := map[string]string{
			"format":         "jsonv2",
			"limit":          "1",
			"addressdetails": "1",
			"countrycodes":   "nl,be,de",
			"q":              "Dam, Amsterdam, Netherlands",
		}
		for k, want := range checks {
			if got := q.Get(k); got != want {
				t.Errorf("param %s = %q, expected %q", k, got, want)
			}
		}
		if ua := r.Header.Get("User-Agent"); ua != "ovtracker-test/1.0" {
			t.Errorf("Expected client identification header, got %q", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"52.3731","lon":"4.8926","display_name":"Dam, Amsterdam","address":{"city":"Amsterdam"}}]`))
	}))
	defer srv.Close()

	c := NewClient(Config{
		BaseURL:      srv.URL,
		UserAgent:    "ovtracker-test/1.0",
		CountryCodes: []string{"nl", "be", "de"},
	}, logger.Nop())

	place, err := c.Search(context.Background(), "Dam, Amsterdam, Netherlands")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if place.Lat != 52.3731 || place.Lng != 4.8926 {
		t.Errorf("Unexpected coordinates %+v", place)
	}
	if place.DisplayName != "Dam, Amsterdam" {
		t.Errorf("Unexpected label %q", place.DisplayName)
	}
}

func TestSearchFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		noResult bool
	}{
		{"empty result", http.StatusOK, `[]`, true},
		{"server error", http.StatusInternalServerError, `oops`, false},
		{"rate limited", http.StatusTooManyRequests, ``, false},
		{"bad json", http.StatusOK, `{`, false},
		{"bad lat", http.StatusOK, `[{"lat":"x","lon":"4"}]`, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(Config{BaseURL: srv.URL, UserAgent: "test"}, logger.Nop())
			_, err := c.Search(context.Background(), "anything")
			if err == nil {
				t.Fatal("Expected an error")
			}
			if got := errors.Is(err, ErrNoResult); got != tc.noResult {
				t.Errorf("errors.Is(err, ErrNoResult) = %v, expected %v (err: %v)", got, tc.noResult, err)
			}
		})
	}
}
