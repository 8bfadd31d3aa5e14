// Package geo resolves the client's approximate location from an
// IP-based geolocation service. The lookup runs at most once per
// process; every caller after the first gets the cached result.
package geo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mediabench/mediabench/pkg/types"
)

// DefaultEndpoint is the geolocation service queried when the
// configuration does not name one.
const DefaultEndpoint = "https://ipapi.co/json/"

// continentNames maps two-letter continent codes to display names.
var continentNames = map[string]string{
	"AF": "Africa",
	"AN": "Antarctica",
	"AS": "Asia",
	"EU": "Europe",
	"NA": "North America",
	"OC": "Oceania",
	"SA": "South America",
}

type lookupResponse struct {
	CountryName   string `json:"country_name"`
	ContinentCode string `json:"continent_code"`
}

// Resolver performs a once-per-process geolocation lookup. Failures
// degrade to types.UnknownLocation and are never surfaced as errors.
type Resolver struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger

	once     sync.Once
	location types.GeoLocation
}

// NewResolver creates a resolver against the given endpoint. An empty
// endpoint falls back to DefaultEndpoint.
func NewResolver(endpoint string, timeout time.Duration) *Resolver {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Resolver{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   slog.Default().With("component", "geo"),
	}
}

// Resolve returns the client's location, performing the network lookup
// on the first call only. The cached value is never invalidated.
func (r *Resolver) Resolve(ctx context.Context) types.GeoLocation {
	r.once.Do(func() {
		r.location = r.lookup(ctx)
	})
	return r.location
}

func (r *Resolver) lookup(ctx context.Context) types.GeoLocation {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		r.logger.Warn("geolocation request build failed", "error", err)
		return types.UnknownLocation
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("geolocation lookup failed", "endpoint", r.endpoint, "error", err)
		return types.UnknownLocation
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Warn("geolocation lookup rejected", "endpoint", r.endpoint, "status", resp.StatusCode)
		return types.UnknownLocation
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		r.logger.Warn("geolocation response read failed", "error", err)
		return types.UnknownLocation
	}

	var payload lookupResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		r.logger.Warn("geolocation response malformed", "error", err)
		return types.UnknownLocation
	}
	if payload.CountryName == "" {
		return types.UnknownLocation
	}

	continent, ok := continentNames[payload.ContinentCode]
	if !ok {
		continent = types.UnknownLocation.Continent
	}

	loc := types.GeoLocation{Country: payload.CountryName, Continent: continent}
	r.logger.Info("geolocation resolved", "country", loc.Country, "continent", loc.Continent)
	return loc
}
