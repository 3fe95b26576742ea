// Package api talks to the Al Adhan prayer times service, used as an
// alternative to local solar calculation and as the source of officially
// published times for method comparison.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.aladhan.com/v1"
	userAgent      = "masjid-display"
	// maxErrorBody bounds how much of a failed response ends up in an error.
	maxErrorBody = 512
)

// Client communicates with the Al Adhan prayer times API.
type Client struct {
	httpClient *http.Client
	// BaseURL is the API base URL. Exported for testing with httptest.
	BaseURL string
}

// NewClient creates a client for the public Al Adhan API.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    defaultBaseURL,
	}
}

// FetchByCoordinates fetches the timings for date's calendar day at the
// given coordinates. A negative method or school leaves the choice to the
// API. When date carries an IANA zone the API is asked to answer in it, so
// the returned wall-clock times match the mosque's zone.
func (c *Client) FetchByCoordinates(ctx context.Context, date time.Time, lat, lon float64, method, school int) (*Response, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', 6, 64))
	if method >= 0 {
		params.Set("method", strconv.Itoa(method))
	}
	if school >= 0 {
		params.Set("school", strconv.Itoa(school))
	}
	if zone := date.Location().String(); strings.Contains(zone, "/") {
		params.Set("timezonestring", zone)
	}

	endpoint := c.BaseURL + "/timings/" + date.Format("02-01-2006")
	return c.get(ctx, endpoint+"?"+params.Encode())
}

func (c *Client) get(ctx context.Context, reqURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building API request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode API response: %w", err)
	}
	if out.Code != http.StatusOK {
		return nil, fmt.Errorf("API error: code=%d status=%s", out.Code, out.Status)
	}
	return &out, nil
}
