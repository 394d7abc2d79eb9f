// Package geocode resolves free-text addresses to coordinates via a
// Nominatim-compatible search endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/placeshare/placeshare/internal/model"
)

// Client calls the external geocoder. It is stateless and safe for
// concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
}

// New constructs a Client with the given endpoint and call timeout.
func New(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: timeout},
	}
}

// Nominatim returns coordinates as JSON strings.
type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve looks up the address and returns its coordinates. An unknown
// address or upstream failure is an error; the caller decides how it maps
// onto the operation outcome.
func (c *Client) Resolve(ctx context.Context, address string) (model.Coordinates, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/search?"+q.Encode(), nil)
	if err != nil {
		return model.Coordinates{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("geocoder request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Coordinates{}, fmt.Errorf("geocoder status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return model.Coordinates{}, fmt.Errorf("geocoder response: %w", err)
	}
	if len(results) == 0 {
		return model.Coordinates{}, fmt.Errorf("no location found for %q", address)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("geocoder lat: %w", err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("geocoder lon: %w", err)
	}
	return model.Coordinates{Lat: lat, Lng: lng}, nil
}
