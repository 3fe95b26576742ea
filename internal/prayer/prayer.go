package prayer

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Canonical event names, in chronological order.
const (
	Fajr    = "Fajr"
	Sunrise = "Sunrise"
	Dhuhr   = "Dhuhr"
	Asr     = "Asr"
	Maghrib = "Maghrib"
	Isha    = "Isha"
)

// Names lists the six daily events in the order every resolver walks them.
var Names = []string{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

// ParseName returns the canonical spelling of an event name, matched
// case-insensitively.
func ParseName(name string) (string, bool) {
	for _, n := range Names {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}

// ShortNames maps full prayer names to single-character abbreviations.
var ShortNames = map[string]string{
	Fajr:    "F",
	Sunrise: "S",
	Dhuhr:   "D",
	Asr:     "A",
	Maghrib: "M",
	Isha:    "I",
}

// ArabicNames maps prayer names to the labels shown on the mosque display.
var ArabicNames = map[string]string{
	Fajr:    "الفجر",
	Sunrise: "الشروق",
	Dhuhr:   "الظهر",
	Asr:     "العصر",
	Maghrib: "المغرب",
	Isha:    "العشاء",
}

// ErrInvalidCoordinates is returned when latitude or longitude is out of range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Prayer represents a single prayer with its name and time.
type Prayer struct {
	Name string
	Time time.Time
}

// Arabic returns the display label of the prayer.
func (p Prayer) Arabic() string {
	return ArabicNames[p.Name]
}

// Coordinates is a point on the globe in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate rejects coordinates outside [-90,90] x [-180,180], and NaN.
func (c Coordinates) Validate() error {
	if !(c.Latitude >= -90 && c.Latitude <= 90) {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidCoordinates, c.Latitude)
	}
	if !(c.Longitude >= -180 && c.Longitude <= 180) {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidCoordinates, c.Longitude)
	}
	return nil
}

// PrayerTimes holds one calendar day's six events.
type PrayerTimes struct {
	Fajr    time.Time
	Sunrise time.Time
	Dhuhr   time.Time
	Asr     time.Time
	Maghrib time.Time
	Isha    time.Time
}

// List returns the events in canonical order.
func (pt PrayerTimes) List() []Prayer {
	return []Prayer{
		{Name: Fajr, Time: pt.Fajr},
		{Name: Sunrise, Time: pt.Sunrise},
		{Name: Dhuhr, Time: pt.Dhuhr},
		{Name: Asr, Time: pt.Asr},
		{Name: Maghrib, Time: pt.Maghrib},
		{Name: Isha, Time: pt.Isha},
	}
}

// Select returns the named events in the order given, skipping unknown names.
func (pt PrayerTimes) Select(names []string) []Prayer {
	var out []Prayer
	for _, n := range names {
		name, ok := ParseName(n)
		if !ok {
			continue
		}
		t, _ := pt.Time(name)
		out = append(out, Prayer{Name: name, Time: t})
	}
	return out
}

// Time returns the instant of the named event.
func (pt PrayerTimes) Time(name string) (time.Time, bool) {
	switch name {
	case Fajr:
		return pt.Fajr, true
	case Sunrise:
		return pt.Sunrise, true
	case Dhuhr:
		return pt.Dhuhr, true
	case Asr:
		return pt.Asr, true
	case Maghrib:
		return pt.Maghrib, true
	case Isha:
		return pt.Isha, true
	}
	return time.Time{}, false
}

// In returns a copy with every instant converted to loc.
func (pt PrayerTimes) In(loc *time.Location) PrayerTimes {
	return PrayerTimes{
		Fajr:    pt.Fajr.In(loc),
		Sunrise: pt.Sunrise.In(loc),
		Dhuhr:   pt.Dhuhr.In(loc),
		Asr:     pt.Asr.In(loc),
		Maghrib: pt.Maghrib.In(loc),
		Isha:    pt.Isha.In(loc),
	}
}

// Adjustments are signed manual offsets in minutes. Sunrise has none.
type Adjustments struct {
	Fajr    int `json:"fajr"`
	Dhuhr   int `json:"dhuhr"`
	Asr     int `json:"asr"`
	Maghrib int `json:"maghrib"`
	Isha    int `json:"isha"`
}

// Apply shifts each adjusted event by its offset.
func (a Adjustments) Apply(pt PrayerTimes) PrayerTimes {
	shift := func(t time.Time, m int) time.Time {
		return t.Add(time.Duration(m) * time.Minute)
	}
	return PrayerTimes{
		Fajr:    shift(pt.Fajr, a.Fajr),
		Sunrise: pt.Sunrise,
		Dhuhr:   shift(pt.Dhuhr, a.Dhuhr),
		Asr:     shift(pt.Asr, a.Asr),
		Maghrib: shift(pt.Maghrib, a.Maghrib),
		Isha:    shift(pt.Isha, a.Isha),
	}
}

// PerPrayerMinutes is a per-event minute count: iqamah delays and prayer
// durations both use it.
type PerPrayerMinutes struct {
	Fajr    int `json:"fajr"`
	Sunrise int `json:"sunrise"`
	Dhuhr   int `json:"dhuhr"`
	Asr     int `json:"asr"`
	Maghrib int `json:"maghrib"`
	Isha    int `json:"isha"`
}

// Get returns the minutes for the named event, zero if unknown.
func (m PerPrayerMinutes) Get(name string) int {
	switch name {
	case Fajr:
		return m.Fajr
	case Sunrise:
		return m.Sunrise
	case Dhuhr:
		return m.Dhuhr
	case Asr:
		return m.Asr
	case Maghrib:
		return m.Maghrib
	case Isha:
		return m.Isha
	}
	return 0
}

// Duration returns Get(name) as a time.Duration.
func (m PerPrayerMinutes) Duration(name string) time.Duration {
	return time.Duration(m.Get(name)) * time.Minute
}

// TimeRemaining returns the duration until the given prayer time.
func TimeRemaining(p Prayer, now time.Time) time.Duration {
	return p.Time.Sub(now)
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
