package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

// methodIDs maps calculation methods to Al Adhan method numbers.
var methodIDs = map[prayer.Method]int{
	prayer.Karachi:               1,
	prayer.NorthAmerica:          2,
	prayer.MuslimWorldLeague:     3,
	prayer.UmmAlQura:             4,
	prayer.Egyptian:              5,
	prayer.Tehran:                7,
	prayer.Kuwait:                9,
	prayer.Qatar:                 10,
	prayer.Singapore:             11,
	prayer.Turkey:                13,
	prayer.MoonsightingCommittee: 15,
	prayer.Dubai:                 16,
}

// MethodID returns the Al Adhan method number, or -1 if there is none.
func MethodID(m prayer.Method) int {
	if id, ok := methodIDs[m]; ok {
		return id
	}
	return -1
}

// SchoolID returns the Al Adhan school number: 1 for Hanafi, 0 otherwise.
func SchoolID(m prayer.Madhab) int {
	if m == prayer.Hanafi {
		return 1
	}
	return 0
}

// TimingsCache stores fetched timings per day and parameters.
type TimingsCache interface {
	LoadTimings(date time.Time, lat, lon float64, method, school int) (Timings, bool)
	SaveTimings(date time.Time, lat, lon float64, method, school int, resp *Response) error
}

// Provider fetches raw prayer times from Al Adhan. It implements
// prayer.Provider; times are interpreted in the request date's location,
// which must be the mosque's time zone.
type Provider struct {
	Client *Client
	// Cache is optional.
	Cache TimingsCache
}

// RawTimes implements prayer.Provider.
func (p *Provider) RawTimes(ctx context.Context, req prayer.Request) (prayer.PrayerTimes, error) {
	method := MethodID(req.Method)
	school := SchoolID(req.Madhab)
	lat, lon := req.Coordinates.Latitude, req.Coordinates.Longitude

	if p.Cache != nil {
		if t, ok := p.Cache.LoadTimings(req.Date, lat, lon, method, school); ok {
			return ParseTimings(t, req.Date)
		}
	}

	resp, err := p.Client.FetchByCoordinates(ctx, req.Date, lat, lon, method, school)
	if err != nil {
		return prayer.PrayerTimes{}, err
	}

	if p.Cache != nil {
		if err := p.Cache.SaveTimings(req.Date, lat, lon, method, school, resp); err != nil {
			log.Warn().Err(err).Msg("could not cache prayer times")
		}
	}

	return ParseTimings(resp.Data.Timings, req.Date)
}

// ParseTimings converts API timings into PrayerTimes on the calendar day of
// date, in date's location.
func ParseTimings(timings Timings, date time.Time) (prayer.PrayerTimes, error) {
	var pt prayer.PrayerTimes
	fields := []struct {
		name string
		raw  string
		dst  *time.Time
	}{
		{prayer.Fajr, timings.Fajr, &pt.Fajr},
		{prayer.Sunrise, timings.Sunrise, &pt.Sunrise},
		{prayer.Dhuhr, timings.Dhuhr, &pt.Dhuhr},
		{prayer.Asr, timings.Asr, &pt.Asr},
		{prayer.Maghrib, timings.Maghrib, &pt.Maghrib},
		{prayer.Isha, timings.Isha, &pt.Isha},
	}

	for _, f := range fields {
		t, err := parseTimeStr(f.raw, date, date.Location())
		if err != nil {
			return prayer.PrayerTimes{}, fmt.Errorf("failed to parse time for %s (%q): %w", f.name, f.raw, err)
		}
		*f.dst = t
	}
	return pt, nil
}

// parseTimeStr parses a time string like "15:02" or "15:02 (BST)" into a time.Time
// on the given date in the given location.
func parseTimeStr(raw string, date time.Time, loc *time.Location) (time.Time, error) {
	// Strip timezone suffix like " (BST)" that the API sometimes appends.
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, " "); idx != -1 {
		s = s[:idx]
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid time format: %q", raw)
	}

	var hour, min int
	if _, err := fmt.Sscanf(parts[0], "%d", &hour); err != nil {
		return time.Time{}, fmt.Errorf("invalid hour in %q: %w", raw, err)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &min); err != nil {
		return time.Time{}, fmt.Errorf("invalid minute in %q: %w", raw, err)
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, loc), nil
}
