package astro

import (
	"math"
	"time"
)

// Moonsighting Committee twilight curves. Each coefficient k gives a value
// of 75 + k/55*|lat| minutes at one anchor of the year, counted in days
// since the winter solstice.
var (
	morningCurve = [4]float64{28.65, 19.44, 32.74, 48.10}
	eveningCurve = [4]float64{25.60, 2.050, -9.21, 6.14}
)

// daysSinceSolstice counts days from the local winter solstice: late
// December in the north and late June in the south.
func daysSinceSolstice(year, yearDay int, lat float64) int {
	daysInYear := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
	if lat >= 0 {
		d := yearDay + 10
		if d >= daysInYear {
			d -= daysInYear
		}
		return d
	}
	southern := 172
	if daysInYear == 366 {
		southern = 173
	}
	d := yearDay - southern
	if d < 0 {
		d += daysInYear
	}
	return d
}

// twilightMinutes interpolates curve k for latitude lat on day dyy of the
// solstice year.
func twilightMinutes(lat float64, dyy int, k [4]float64) float64 {
	var v [4]float64
	for i := range k {
		v[i] = 75 + k[i]/55*math.Abs(lat)
	}
	a, b, c, d := v[0], v[1], v[2], v[3]
	x := float64(dyy)
	switch {
	case dyy < 91:
		return a + (b-a)/91*x
	case dyy < 137:
		return b + (c-b)/46*(x-91)
	case dyy < 183:
		return c + (d-c)/46*(x-137)
	case dyy < 229:
		return d + (c-d)/46*(x-183)
	case dyy < 275:
		return c + (b-c)/46*(x-229)
	default:
		return b + (a-b)/91*(x-275)
	}
}

// seasonal bounds fajr and isha by the committee curves. Fajr is never
// earlier than the morning curve before sunrise and isha never later than
// the evening curve after sunset. From 55° of latitude the angle times are
// replaced by a seventh of the night first.
func seasonal(lat float64, year int, month time.Month, day int, h hours) hours {
	if math.IsNaN(h.sunrise) || math.IsNaN(h.sunset) {
		return h
	}
	if math.Abs(lat) >= 55 {
		night := 24 - (h.sunset - h.sunrise)
		h.fajr = h.sunrise - night/7
		h.isha = h.sunset + night/7
	}

	yearDay := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).YearDay()
	dyy := daysSinceSolstice(year, yearDay, lat)

	safeFajr := h.sunrise - twilightMinutes(lat, dyy, morningCurve)/60
	if math.IsNaN(h.fajr) || safeFajr > h.fajr {
		h.fajr = safeFajr
	}
	safeIsha := h.sunset + twilightMinutes(lat, dyy, eveningCurve)/60
	if math.IsNaN(h.isha) || safeIsha < h.isha {
		h.isha = safeIsha
	}
	return h
}
