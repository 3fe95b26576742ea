package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

// Daily memoizes a prayer.Source. Entries are keyed by every input that
// affects the result and grouped by the date's location. A group is cleared
// once the current date in its location changes, so screens in different
// zones share one Daily without evicting each other.
type Daily struct {
	Source prayer.Source
	// Now defaults to time.Now.
	Now func() time.Time

	mu    sync.Mutex
	zones map[string]*zoneEntries
}

// zoneEntries holds the memoized days of one location.
type zoneEntries struct {
	day     string
	entries map[string]prayer.PrayerTimes
}

// NewDaily wraps src.
func NewDaily(src prayer.Source) *Daily {
	return &Daily{Source: src}
}

func memoKey(cfg prayer.Config, date time.Time) string {
	a := cfg.Adjustments
	return fmt.Sprintf("%s|%.6f|%.6f|%s|%s|%d,%d,%d,%d,%d",
		date.Format("2006-01-02"), cfg.Coordinates.Latitude, cfg.Coordinates.Longitude,
		cfg.Method, cfg.Madhab, a.Fajr, a.Dhuhr, a.Asr, a.Maghrib, a.Isha)
}

// Times implements prayer.Source.
func (d *Daily) Times(ctx context.Context, cfg prayer.Config, date time.Time) (prayer.PrayerTimes, error) {
	key := memoKey(cfg, date)

	d.mu.Lock()
	if pt, ok := d.zone(date.Location()).entries[key]; ok {
		d.mu.Unlock()
		return pt, nil
	}
	d.mu.Unlock()

	pt, err := d.Source.Times(ctx, cfg, date)
	if err != nil {
		return prayer.PrayerTimes{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.zone(date.Location()).entries[key] = pt
	return pt, nil
}

// zone returns the entries for loc, clearing them first when the current
// date there differs from the one they were stored under. Callers hold d.mu.
func (d *Daily) zone(loc *time.Location) *zoneEntries {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	today := now().In(loc).Format("2006-01-02")

	if d.zones == nil {
		d.zones = make(map[string]*zoneEntries)
	}
	z, ok := d.zones[loc.String()]
	if !ok || z.day != today {
		z = &zoneEntries{day: today, entries: make(map[string]prayer.PrayerTimes)}
		d.zones[loc.String()] = z
	}
	return z
}

// Len reports the number of memoized days across all locations.
func (d *Daily) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, z := range d.zones {
		n += len(z.entries)
	}
	return n
}
