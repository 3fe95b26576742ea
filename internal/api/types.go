package api

// Response is the envelope of an Al Adhan /timings reply. Only the fields
// the display uses are decoded.
type Response struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   Data   `json:"data"`
}

type Data struct {
	Timings Timings  `json:"timings"`
	Date    DateInfo `json:"date"`
	Meta    Meta     `json:"meta"`
}

// Timings holds the six daily events as "HH:MM" wall-clock strings, possibly
// followed by a zone suffix such as " (+03)".
type Timings struct {
	Fajr    string `json:"Fajr"`
	Sunrise string `json:"Sunrise"`
	Dhuhr   string `json:"Dhuhr"`
	Asr     string `json:"Asr"`
	Maghrib string `json:"Maghrib"`
	Isha    string `json:"Isha"`
}

type DateInfo struct {
	Hijri HijriDate `json:"hijri"`
}

// HijriDate is the service's Umm al-Qura date for the day, which can differ
// from the tabular calendar by a day or two.
type HijriDate struct {
	Day         string      `json:"day"`
	Month       HijriMonth  `json:"month"`
	Year        string      `json:"year"`
	Designation Designation `json:"designation"`
}

type HijriMonth struct {
	Number int    `json:"number"`
	En     string `json:"en"`
	Ar     string `json:"ar"`
}

type Designation struct {
	Abbreviated string `json:"abbreviated"`
}

// Format returns "DD Month YYYY AH", or "" when a part is missing.
func (h HijriDate) Format() string {
	if h.Day == "" || h.Month.En == "" || h.Year == "" {
		return ""
	}
	abbr := h.Designation.Abbreviated
	if abbr == "" {
		abbr = "AH"
	}
	return h.Day + " " + h.Month.En + " " + h.Year + " " + abbr
}

// FormatArabic returns "D شهر YYYY هـ" without a leading zero on the day.
func (h HijriDate) FormatArabic() string {
	if h.Day == "" || h.Month.Ar == "" || h.Year == "" {
		return ""
	}
	day := h.Day
	if len(day) == 2 && day[0] == '0' {
		day = day[1:]
	}
	return day + " " + h.Month.Ar + " " + h.Year + " هـ"
}

// Meta describes how the service computed the reply.
type Meta struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Timezone  string     `json:"timezone"`
	Method    MethodInfo `json:"method"`
	School    string     `json:"school"`
}

type MethodInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
