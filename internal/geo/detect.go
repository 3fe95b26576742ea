// Package geo guesses a mosque's position and time zone from the host's
// public IP address.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

// DefaultURL is the ip-api.com endpoint. The service is free and needs no key.
const DefaultURL = "http://ip-api.com/json/?fields=status,message,lat,lon,city,country,timezone"

// Location is a detected position.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Timezone  string  `json:"timezone"`
}

// Coordinates returns the position as prayer coordinates.
func (l Location) Coordinates() prayer.Coordinates {
	return prayer.Coordinates{Latitude: l.Latitude, Longitude: l.Longitude}
}

// TimeZone loads the IANA zone reported by the lookup.
func (l Location) TimeZone() (*time.Location, error) {
	if l.Timezone == "" {
		return nil, fmt.Errorf("no time zone detected")
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", l.Timezone, err)
	}
	return loc, nil
}

// lookup is the ip-api.com reply. On failure only Status and Message are set.
type lookup struct {
	Location
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Detector looks up the host's location.
type Detector struct {
	URL        string
	HTTPClient *http.Client
}

// NewDetector returns a detector for ip-api.com with a short timeout.
func NewDetector() *Detector {
	return &Detector{
		URL:        DefaultURL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Detect returns the host's location. Coordinates outside the valid range are
// rejected with prayer.ErrInvalidCoordinates.
func (d *Detector) Detect(ctx context.Context) (*Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building geolocation request: %w", err)
	}

	client := d.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
	}

	var l lookup
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation response: %w", err)
	}
	if l.Status != "success" {
		return nil, fmt.Errorf("geolocation failed: %s", l.Message)
	}
	if err := l.Coordinates().Validate(); err != nil {
		return nil, fmt.Errorf("geolocation returned %w", err)
	}
	return &l.Location, nil
}

// DetectLocation detects the host's location with the default detector.
func DetectLocation(ctx context.Context) (*Location, error) {
	return NewDetector().Detect(ctx)
}
