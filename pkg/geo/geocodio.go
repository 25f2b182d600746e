// Package geo resolves extracted places into durable location records with optional coordinates.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/umputun/dcwatch/pkg/domain"
)

var (
	// ErrDisabled returned when geocoder has no api key
	ErrDisabled = errors.New("geocoder disabled")
	// ErrNotGeocodable returned for state-only places, state centroid is useless for map pins
	ErrNotGeocodable = errors.New("place is not geocodable")
	// ErrNoMatch returned when the service has no results for the query
	ErrNoMatch = errors.New("no geocoding match")
)

const defaultGeocodioEndpoint = "https://api.geocod.io/v1.7"

// Geocodio is a client of geocod.io forward geocoding api
type Geocodio struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewGeocodio makes geocoding client, empty endpoint uses public api
func NewGeocodio(apiKey, endpoint string, timeout time.Duration) *Geocodio {
	if endpoint == "" {
		endpoint = defaultGeocodioEndpoint
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Geocodio{apiKey: apiKey, endpoint: strings.TrimSuffix(endpoint, "/"), client: &http.Client{Timeout: timeout}}
}

type geocodioResp struct {
	Results []struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
		Accuracy float64 `json:"accuracy"`
	} `json:"results"`
}

// Query returns geocoding query for a place: "city, state", else "county, state".
// State-only place gives ErrNotGeocodable.
func Query(city, county, state string) (string, error) {
	city, county, state = strings.TrimSpace(city), strings.TrimSpace(county), strings.TrimSpace(state)
	switch {
	case city != "":
		return city + ", " + state, nil
	case county != "":
		return county + ", " + state, nil
	default:
		return "", ErrNotGeocodable
	}
}

// Geocode returns coordinates of the best match
func (g *Geocodio) Geocode(ctx context.Context, city, county, state string) (*domain.Coords, error) {
	if g.apiKey == "" {
		return nil, ErrDisabled
	}
	q, err := Query(city, county, state)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("api_key", g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"/geocode?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", q, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocode %q, status %d: %s", q, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var gr geocodioResp
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(gr.Results) == 0 {
		return nil, fmt.Errorf("geocode %q: %w", q, ErrNoMatch)
	}
	loc := gr.Results[0].Location
	return &domain.Coords{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}
