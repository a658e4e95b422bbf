package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	appConfig "github.com/maintroute/maintenance-api/config"
)

// GeocodeInterface defines the interface for address-to-coordinate lookups
type GeocodeInterface interface {
	// Geocode resolves a free-text address. A nil result with a nil
	// error means the service answered but found nothing.
	Geocode(ctx context.Context, address string) (*Coordinate, error)
}

// GeocodeService resolves addresses against a Nominatim-compatible endpoint
type GeocodeService struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

var geocodeServiceInstance GeocodeInterface

// InitGeocodeService initializes the geocoding client from configuration
func InitGeocodeService() GeocodeInterface {
	cfg := appConfig.GetConfig()

	geocodeServiceInstance = &GeocodeService{
		client:    &http.Client{Timeout: 10 * time.Second},
		baseURL:   cfg.GeocodeBaseURL,
		userAgent: cfg.GeocodeUserAgent,
	}
	return geocodeServiceInstance
}

// GetGeocodeService returns the initialized geocoding service instance
func GetGeocodeService() GeocodeInterface {
	return geocodeServiceInstance
}

// SetGeocodeService sets the geocoding service instance (primarily for testing)
func SetGeocodeService(service GeocodeInterface) {
	geocodeServiceInstance = service
}

// nominatimResult is one entry of the search response. The service
// returns coordinates as strings.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode performs a single search request for the given address
func (g *GeocodeService) Geocode(ctx context.Context, address string) (*Coordinate, error) {
	endpoint := g.baseURL + "/search"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")
	req.URL.RawQuery = q.Encode()

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode service returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q in geocode response", results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q in geocode response", results[0].Lon)
	}

	return &Coordinate{Lat: lat, Lon: lon}, nil
}
