package prayer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smokyabdulrahman/masjid-display/internal/astro"
)

// ErrNoTransit is returned when a provider cannot place solar noon.
var ErrNoTransit = errors.New("solar transit undefined")

// Request is one day's raw-time query.
type Request struct {
	Coordinates Coordinates
	// Date selects the calendar day in Date.Location().
	Date   time.Time
	Method Method
	Madhab Madhab
}

// Provider yields unadjusted prayer instants. Events the provider cannot
// resolve are returned as the zero time.
type Provider interface {
	RawTimes(ctx context.Context, req Request) (PrayerTimes, error)
}

// SolarProvider computes raw times locally from the sun's position.
type SolarProvider struct{}

// RawTimes implements Provider.
func (SolarProvider) RawTimes(_ context.Context, req Request) (PrayerTimes, error) {
	t := astro.Compute(req.Coordinates.Latitude, req.Coordinates.Longitude,
		req.Date.Year(), req.Date.Month(), req.Date.Day(), req.Method.Params(req.Madhab))
	return PrayerTimes{
		Fajr:    t.Fajr,
		Sunrise: t.Sunrise,
		Dhuhr:   t.Dhuhr,
		Asr:     t.Asr,
		Maghrib: t.Maghrib,
		Isha:    t.Isha,
	}, nil
}

// Source produces a day's adjusted prayer times for a configuration.
type Source interface {
	Times(ctx context.Context, cfg Config, date time.Time) (PrayerTimes, error)
}

// Calculator turns provider output into the times shown on the display.
type Calculator struct {
	// Provider defaults to SolarProvider when nil.
	Provider Provider
}

// Compute returns the adjusted prayer times for the calendar day of date,
// expressed in date's location. Method and madhab match case-insensitively;
// unknown methods fall back to DefaultMethod and unknown madhabs to Shafi.
func (c Calculator) Compute(ctx context.Context, coords Coordinates, date time.Time, method Method, madhab Madhab, adj Adjustments) (PrayerTimes, error) {
	if err := coords.Validate(); err != nil {
		return PrayerTimes{}, err
	}
	method = method.Lookup().Method
	if madhab.AsrFactor() == 2 {
		madhab = Hanafi
	} else {
		madhab = Shafi
	}

	p := c.Provider
	if p == nil {
		p = SolarProvider{}
	}

	raw, err := p.RawTimes(ctx, Request{Coordinates: coords, Date: date, Method: method, Madhab: madhab})
	if err != nil {
		return PrayerTimes{}, fmt.Errorf("computing raw times for %s: %w", date.Format("2006-01-02"), err)
	}

	filled, err := fillUndefined(raw)
	if err != nil {
		return PrayerTimes{}, fmt.Errorf("computing raw times for %s: %w", date.Format("2006-01-02"), err)
	}

	return adj.Apply(filled).In(date.Location()), nil
}

// Times implements Source.
func (c Calculator) Times(ctx context.Context, cfg Config, date time.Time) (PrayerTimes, error) {
	return c.Compute(ctx, cfg.Coordinates, date, cfg.Method, cfg.Madhab, cfg.Adjustments)
}

// ComputePrayerTimes computes with the built-in solar provider.
func ComputePrayerTimes(coords Coordinates, date time.Time, method Method, madhab Madhab, adj Adjustments) (PrayerTimes, error) {
	return Calculator{}.Compute(context.Background(), coords, date, method, madhab, adj)
}

// fillUndefined substitutes events the sun never reaches.
//
// Sunrise and maghrib missing (polar day or night) become dhuhr -/+ 6h.
// Missing fajr and isha sit a seventh of the night before sunrise and after
// maghrib, where the night runs from maghrib to the next sunrise. A missing
// asr is placed midway between dhuhr and maghrib.
func fillUndefined(pt PrayerTimes) (PrayerTimes, error) {
	if pt.Dhuhr.IsZero() {
		return PrayerTimes{}, ErrNoTransit
	}
	if pt.Sunrise.IsZero() {
		pt.Sunrise = pt.Dhuhr.Add(-6 * time.Hour)
	}
	if pt.Maghrib.IsZero() {
		pt.Maghrib = pt.Dhuhr.Add(6 * time.Hour)
	}

	night := 24*time.Hour - pt.Maghrib.Sub(pt.Sunrise)
	if pt.Fajr.IsZero() {
		pt.Fajr = pt.Sunrise.Add(-night / 7).Round(time.Minute)
	}
	if pt.Isha.IsZero() {
		pt.Isha = pt.Maghrib.Add(night / 7).Round(time.Minute)
	}
	if pt.Asr.IsZero() {
		pt.Asr = pt.Dhuhr.Add(pt.Maghrib.Sub(pt.Dhuhr) / 2).Round(time.Minute)
	}
	return pt, nil
}
