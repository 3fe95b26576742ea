// Package astro computes the daily Islamic prayer instants from the sun's
// position for a given place and calendar date.
//
// Times are returned in UTC and rounded to the nearest minute. An event the
// sun never reaches on that day (twilight at high latitudes, polar day or
// night) is reported as the zero time.Time.
package astro

import (
	"math"
	"time"
)

// riseSetAngle is the sun's depression at sunrise and sunset, accounting for
// refraction and the solar disc radius.
const riseSetAngle = 0.833

// Adjustments are per-event minute offsets baked into a calculation method.
type Adjustments struct {
	Fajr    int
	Sunrise int
	Dhuhr   int
	Asr     int
	Maghrib int
	Isha    int
}

// Params describes a calculation method.
type Params struct {
	FajrAngle float64
	IshaAngle float64
	// IshaInterval is the number of minutes between maghrib and isha.
	// When positive it replaces IshaAngle.
	IshaInterval int
	// MaghribAngle, when positive, places maghrib at that depression instead
	// of at sunset.
	MaghribAngle float64
	// AsrFactor is the shadow length multiplier: 1 (standard) or 2 (Hanafi).
	AsrFactor float64
	// Seasonal bounds fajr and isha by the Moonsighting Committee curves.
	Seasonal    bool
	Adjustments Adjustments
}

// Times holds the six daily instants.
type Times struct {
	Fajr    time.Time
	Sunrise time.Time
	Dhuhr   time.Time
	Asr     time.Time
	Maghrib time.Time
	Isha    time.Time
}

// hours is one day's events in local mean solar hours.
type hours struct {
	fajr, sunrise, dhuhr, asr, sunset, maghrib, isha float64
}

var initialEstimate = hours{fajr: 5, sunrise: 6, dhuhr: 12, asr: 13, sunset: 18, maghrib: 18, isha: 18}

// Compute returns the prayer instants for the civil date year-month-day at
// the given latitude and longitude.
func Compute(lat, lng float64, year int, month time.Month, day int, p Params) Times {
	factor := p.AsrFactor
	if factor <= 0 {
		factor = 1
	}

	s := newSolar(lat, lng, year, int(month), day)

	// Two passes: the first from fixed estimates, the second refining each
	// event with the sun's position at the first result.
	est := initialEstimate
	var h hours
	for i := 0; i < 2; i++ {
		h.fajr = s.angleTime(p.FajrAngle, est.fajr, true)
		h.sunrise = s.angleTime(riseSetAngle, est.sunrise, true)
		h.dhuhr = s.midDay(est.dhuhr)
		h.asr = s.asrTime(factor, est.asr)
		h.sunset = s.angleTime(riseSetAngle, est.sunset, false)
		h.maghrib = h.sunset
		if p.MaghribAngle > 0 {
			h.maghrib = s.angleTime(p.MaghribAngle, est.maghrib, false)
		}
		h.isha = math.NaN()
		if p.IshaInterval <= 0 {
			h.isha = s.angleTime(p.IshaAngle, est.isha, false)
		}
		est = refine(est, h)
	}
	if p.IshaInterval > 0 && !math.IsNaN(h.maghrib) {
		h.isha = h.maghrib + float64(p.IshaInterval)/60
	}
	if p.Seasonal {
		h = seasonal(lat, year, month, day, h)
	}

	base := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	offset := -lng / 15
	a := p.Adjustments
	return Times{
		Fajr:    instant(base, h.fajr, offset, a.Fajr),
		Sunrise: instant(base, h.sunrise, offset, a.Sunrise),
		Dhuhr:   instant(base, h.dhuhr, offset, a.Dhuhr),
		Asr:     instant(base, h.asr, offset, a.Asr),
		Maghrib: instant(base, h.maghrib, offset, a.Maghrib),
		Isha:    instant(base, h.isha, offset, a.Isha),
	}
}

// refine replaces estimates with computed values, keeping the old estimate
// where the event is undefined.
func refine(est, h hours) hours {
	pick := func(old, v float64) float64 {
		if math.IsNaN(v) {
			return old
		}
		return v
	}
	return hours{
		fajr:    pick(est.fajr, h.fajr),
		sunrise: pick(est.sunrise, h.sunrise),
		dhuhr:   pick(est.dhuhr, h.dhuhr),
		asr:     pick(est.asr, h.asr),
		sunset:  pick(est.sunset, h.sunset),
		maghrib: pick(est.maghrib, h.maghrib),
		isha:    pick(est.isha, h.isha),
	}
}

func instant(base time.Time, h, offset float64, adjust int) time.Time {
	if math.IsNaN(h) {
		return time.Time{}
	}
	d := time.Duration((h + offset) * float64(time.Hour))
	t := base.Add(d).Add(time.Duration(adjust) * time.Minute)
	return t.Round(time.Minute)
}
