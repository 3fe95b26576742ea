package prayer

import (
	"fmt"
	"time"
)

// Tabular Hijri calendar: a 30-year cycle of 11 leap years, months
// alternating 30 and 29 days with a 30-day twelfth month in leap years. It is
// arithmetic and can differ by a day or two from observation-based calendars.

// HijriMonths holds the Arabic month names.
var HijriMonths = [12]string{
	"محرم", "صفر", "ربيع الأول", "ربيع الآخر", "جمادى الأولى", "جمادى الآخرة",
	"رجب", "شعبان", "رمضان", "شوال", "ذو القعدة", "ذو الحجة",
}

// HijriMonthsEnglish holds transliterated month names.
var HijriMonthsEnglish = [12]string{
	"Muharram", "Safar", "Rabi al-Awwal", "Rabi al-Thani", "Jumada al-Ula", "Jumada al-Akhirah",
	"Rajab", "Shaban", "Ramadan", "Shawwal", "Dhu al-Qadah", "Dhu al-Hijjah",
}

const (
	cycleYears = 30
	cycleDays  = 19*354 + 11*355
)

var leapPositions = map[int]bool{2: true, 5: true, 7: true, 10: true, 13: true, 16: true, 18: true, 21: true, 24: true, 26: true, 29: true}

// 1 January 2000 is 24 Ramadan 1420.
var (
	hijriRefGregorian = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	hijriRefDay       = HijriDate{Year: 1420, Month: 9, Day: 24}.dayNumber()
)

// HijriDate is a date in the tabular Hijri calendar.
type HijriDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// IsHijriLeapYear reports whether year has 355 days.
func IsHijriLeapYear(year int) bool {
	c := year % cycleYears
	if c == 0 {
		c = cycleYears
	}
	return leapPositions[c]
}

// HijriYearLength returns 355 for leap years and 354 otherwise.
func HijriYearLength(year int) int {
	if IsHijriLeapYear(year) {
		return 355
	}
	return 354
}

// HijriMonthLength returns the number of days in month of year.
func HijriMonthLength(month, year int) int {
	if month%2 == 1 || (month == 12 && IsHijriLeapYear(year)) {
		return 30
	}
	return 29
}

// dayNumber counts days from 1 Muharram 1 (day 1).
func (h HijriDate) dayNumber() int {
	n := 0
	for y := 1; y < h.Year; y++ {
		n += HijriYearLength(y)
	}
	for m := 1; m < h.Month; m++ {
		n += HijriMonthLength(m, h.Year)
	}
	return n + h.Day
}

// fromDayNumber is the inverse of dayNumber. Day numbers below 1 clamp to
// 1 Muharram 1.
func fromDayNumber(n int) HijriDate {
	if n < 1 {
		return HijriDate{Year: 1, Month: 1, Day: 1}
	}
	year := 1 + cycleYears*((n-1)/cycleDays)
	n -= cycleDays * ((n - 1) / cycleDays)
	for n > HijriYearLength(year) {
		n -= HijriYearLength(year)
		year++
	}
	month := 1
	for month < 12 && n > HijriMonthLength(month, year) {
		n -= HijriMonthLength(month, year)
		month++
	}
	return HijriDate{Year: year, Month: month, Day: n}
}

// ToHijri converts the calendar day of t, in t's location.
func ToHijri(t time.Time) HijriDate {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := int((day.Unix() - hijriRefGregorian.Unix()) / 86400)
	return fromDayNumber(hijriRefDay + offset)
}

// Gregorian returns the civil date of h at midnight UTC.
func (h HijriDate) Gregorian() time.Time {
	return hijriRefGregorian.AddDate(0, 0, h.dayNumber()-hijriRefDay)
}

// String renders "D MonthName YYYY هـ" with the Arabic month name.
func (h HijriDate) String() string {
	return fmt.Sprintf("%d %s %d هـ", h.Day, h.monthName(HijriMonths), h.Year)
}

// EnglishString renders "D MonthName YYYY AH".
func (h HijriDate) EnglishString() string {
	return fmt.Sprintf("%d %s %d AH", h.Day, h.monthName(HijriMonthsEnglish), h.Year)
}

func (h HijriDate) monthName(names [12]string) string {
	if h.Month < 1 || h.Month > 12 {
		return "?"
	}
	return names[h.Month-1]
}

// GetHijriDate returns the display string for today's Hijri date.
func GetHijriDate(today time.Time) string {
	return ToHijri(today).String()
}
