package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ovtracker-map/internal/common/logger"
)

const (
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	httpTimeout    = 20 * time.Second
)

// ErrNoResult is returned when the service answers but finds nothing.
var ErrNoResult = errors.New("no geocoding result")

// Place is the best match for a query.
type Place struct {
	Lat         float64
	Lng         float64
	DisplayName string
}

// searchResult mirrors the jsonv2 search response; lat/lon arrive as strings.
type searchResult struct {
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

type Config struct {
	BaseURL      string
	UserAgent    string
	CountryCodes []string
	Timeout      time.Duration
}

type Client struct {
	config Config
	client *http.Client
	logger logger.Logger
}

func NewClient(cfg Config, logger logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = httpTimeout
	}
	return &Client{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Search asks for the single best match for query.
func (c *Client) Search(ctx context.Context, query string) (*Place, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	params.Set("addressdetails", "1")
	params.Set("q", query)
	if len(c.config.CountryCodes) > 0 {
		params.Set("countrycodes", strings.Join(c.config.CountryCodes, ","))
	}
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	// Required by the Nominatim usage policy
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Geocoding", "query", query)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request for %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocoder returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoResult
	}

	best := results[0]
	lat, err := strconv.ParseFloat(best.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing lat %q: %w", best.Lat, err)
	}
	lng, err := strconv.ParseFloat(best.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing lon %q: %w", best.Lon, err)
	}

	return &Place{
		Lat:         lat,
		Lng:         lng,
		DisplayName: best.DisplayName,
	}, nil
}
