// Package geocode wraps the external address-to-coordinates lookup.
// The rest of the system treats the provider as a black box behind the
// Geocoder interface so tests and the enrichment loop can swap in fakes.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound is returned when the provider recognizes the request but
// cannot resolve the address to a location. Callers log it and skip the
// item; it is never fatal.
var ErrNotFound = errors.New("geocode: address not found")

// ProviderError indicates the provider itself failed: transport errors,
// non-2xx responses or an error status in the payload. The Status field
// carries the provider's own classification when one was returned.
type ProviderError struct {
	Status string
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geocode: provider failure (%s): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("geocode: provider failure (%s)", e.Status)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Coordinates is a resolved geographic position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder resolves a free-text street address into coordinates. A
// malformed address must yield ErrNotFound or a *ProviderError, never a
// panic. Every call performs at most one outbound network request.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Coordinates, error)
}

// GoogleGeocoder calls the Google Maps Geocoding API.
type GoogleGeocoder struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGoogleGeocoder builds a geocoder with a bounded per-call timeout so
// a slow provider stalls one enrichment item, not the whole process.
func NewGoogleGeocoder(apiKey string, timeout time.Duration) *GoogleGeocoder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GoogleGeocoder{
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com/maps/api/geocode/json",
		client:  &http.Client{Timeout: timeout},
	}
}

// googleResponse mirrors the subset of the Geocoding API payload we read.
type googleResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	Status string `json:"status"`
}

// Geocode resolves address via the Maps API. The provider signals "no
// such place" with status ZERO_RESULTS, which maps to ErrNotFound; any
// other non-OK status or transport problem maps to *ProviderError.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (Coordinates, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Coordinates{}, &ProviderError{Status: "REQUEST", Err: err}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return Coordinates{}, &ProviderError{Status: "TRANSPORT", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, &ProviderError{Status: fmt.Sprintf("HTTP_%d", resp.StatusCode)}
	}

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Coordinates{}, &ProviderError{Status: "DECODE", Err: err}
	}

	switch {
	case body.Status == "ZERO_RESULTS" || (body.Status == "OK" && len(body.Results) == 0):
		return Coordinates{}, ErrNotFound
	case body.Status != "OK":
		return Coordinates{}, &ProviderError{Status: body.Status}
	}

	loc := body.Results[0].Geometry.Location
	return Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}
