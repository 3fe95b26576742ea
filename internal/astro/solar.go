package astro

import "math"

// Standard solar-position formulas (low-precision, good to well under a
// minute between 1950 and 2050). All angles are in degrees, times in hours.

func dsin(d float64) float64 { return math.Sin(d * math.Pi / 180) }
func dcos(d float64) float64 { return math.Cos(d * math.Pi / 180) }
func dtan(d float64) float64 { return math.Tan(d * math.Pi / 180) }

func darcsin(x float64) float64     { return math.Asin(x) * 180 / math.Pi }
func darccos(x float64) float64     { return math.Acos(x) * 180 / math.Pi }
func darctan2(y, x float64) float64 { return math.Atan2(y, x) * 180 / math.Pi }
func darccot(x float64) float64     { return math.Atan(1/x) * 180 / math.Pi }

// fix reduces a into [0, b).
func fix(a, b float64) float64 {
	a -= b * math.Floor(a/b)
	if a < 0 {
		a += b
	}
	return a
}

// julian returns the Julian day number at 00:00 UT of the given civil date.
func julian(year, month, day int) float64 {
	if month <= 2 {
		year--
		month += 12
	}
	a := math.Floor(float64(year) / 100)
	b := 2 - a + math.Floor(a/4)
	return math.Floor(365.25*float64(year+4716)) + math.Floor(30.6001*float64(month+1)) + float64(day) + b - 1524.5
}

// sunPosition returns the sun's declination and the equation of time for jd.
func sunPosition(jd float64) (decl, eqt float64) {
	d := jd - 2451545.0
	g := fix(357.529+0.98560028*d, 360)
	q := fix(280.459+0.98564736*d, 360)
	l := fix(q+1.915*dsin(g)+0.020*dsin(2*g), 360)
	e := 23.439 - 0.00000036*d

	ra := darctan2(dcos(e)*dsin(l), dcos(l)) / 15
	eqt = q/15 - fix(ra, 24)
	decl = darcsin(dsin(e) * dsin(l))
	return decl, eqt
}

// solar evaluates event times in local mean solar hours for one day and place.
type solar struct {
	lat float64
	jd  float64
}

func newSolar(lat, lng float64, year, month, day int) solar {
	return solar{lat: lat, jd: julian(year, month, day) - lng/(15*24)}
}

// midDay returns the time of solar transit near hour t.
func (s solar) midDay(t float64) float64 {
	_, eqt := sunPosition(s.jd + t/24)
	return fix(12-eqt, 24)
}

// angleTime returns when the sun is angle degrees below the horizon, before
// transit when ccw is set. It returns NaN when the sun never gets there.
func (s solar) angleTime(angle, t float64, ccw bool) float64 {
	decl, _ := sunPosition(s.jd + t/24)
	noon := s.midDay(t)
	c := (-dsin(angle) - dsin(decl)*dsin(s.lat)) / (dcos(decl) * dcos(s.lat))
	if c < -1 || c > 1 {
		return math.NaN()
	}
	h := darccos(c) / 15
	if ccw {
		return noon - h
	}
	return noon + h
}

// asrTime returns the afternoon time when an object's shadow is factor times
// its length plus the noon shadow.
func (s solar) asrTime(factor, t float64) float64 {
	decl, _ := sunPosition(s.jd + t/24)
	angle := -darccot(factor + dtan(math.Abs(s.lat-decl)))
	return s.angleTime(angle, t, false)
}
