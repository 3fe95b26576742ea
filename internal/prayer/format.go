package prayer

import (
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Output modes accepted by FormatOutput and FormatNext. Any other string
// containing "{{" is run as a text/template over FormatData.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatArabicAndTime      = "arabic-and-time"
	FormatCountdownMode      = "countdown"
	FormatFull               = "full"
)

// FormatData is the dot value of custom output templates.
type FormatData struct {
	Name      string
	ShortName string
	Arabic    string
	Time      string // in the caller's layout
	Remaining string // "2h 15m"
	Countdown string // "02:15:00"
	Hours     int
	Minutes   int
}

type renderer func(FormatData, time.Time) string

var renderers = map[string]renderer{
	FormatTimeRemaining:      func(d FormatData, _ time.Time) string { return d.Remaining },
	FormatNextPrayerTime:     func(d FormatData, _ time.Time) string { return d.Time },
	FormatNameAndTime:        func(d FormatData, _ time.Time) string { return d.Name + " " + d.Time },
	FormatNameAndRemaining:   func(d FormatData, _ time.Time) string { return d.Name + " " + d.Remaining },
	FormatShortNameAndTime:   func(d FormatData, _ time.Time) string { return d.ShortName + " " + d.Time },
	FormatShortNameAndRemain: func(d FormatData, _ time.Time) string { return d.ShortName + " " + d.Remaining },
	FormatArabicAndTime:      func(d FormatData, at time.Time) string { return d.Arabic + " " + FormatTime(at) },
	FormatCountdownMode:      func(d FormatData, _ time.Time) string { return d.Countdown },
	FormatFull: func(d FormatData, _ time.Time) string {
		return fmt.Sprintf("%s %s (%s)", d.Name, d.Time, d.Remaining)
	},
}

// FormatOutput renders p relative to now in the given mode, with clock
// times laid out by timeFormat ("15:04" or "3:04 PM"). Unknown modes fall
// back to name-and-time.
func FormatOutput(p Prayer, now time.Time, mode string, timeFormat string) string {
	return render(p, p.Name, ShortNames[p.Name], now, mode, timeFormat)
}

// FormatNext renders a next-prayer target. Iqamah targets are named
// "<Name> iqamah", or "<short>i" in the short modes.
func FormatNext(n NextPrayer, now time.Time, mode string, timeFormat string) string {
	name, short := n.Name, ShortNames[n.Name]
	if n.IsIqamah {
		name, short = name+" iqamah", short+"i"
	}
	return render(n.Prayer(), name, short, now, mode, timeFormat)
}

func render(p Prayer, name, short string, now time.Time, mode, timeFormat string) string {
	left := TimeRemaining(p, now)
	data := FormatData{
		Name:      name,
		ShortName: short,
		Arabic:    p.Arabic(),
		Time:      p.Time.Format(timeFormat),
		Remaining: FormatRemaining(left),
		Countdown: FormatCountdown(p.Time, now),
		Hours:     int(left / time.Hour),
		Minutes:   int(left/time.Minute) % 60,
	}
	if strings.Contains(mode, "{{") {
		return execTemplate(mode, data)
	}
	if fn, ok := renderers[mode]; ok {
		return fn(data, p.Time)
	}
	return renderers[FormatNameAndTime](data, p.Time)
}

// execTemplate reports parse and execution failures inline so a bad
// template shows up on the display instead of failing the command.
func execTemplate(text string, data FormatData) string {
	tmpl, err := template.New("output").Parse(text)
	if err != nil {
		return "template-err: " + err.Error()
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "template-err: " + err.Error()
	}
	return sb.String()
}

// FormatTime renders t as a 12-hour "hh:MM" clock with no AM/PM suffix.
func FormatTime(t time.Time) string {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%02d:%02d", h, t.Minute())
}

// FormatCountdown renders the time until target as "HH:MM:SS". It returns
// "00:00:00" once target is not after now.
func FormatCountdown(target, now time.Time) string {
	d := target.Sub(now)
	if d <= 0 {
		return "00:00:00"
	}
	s := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

var arabicWeekdays = [7]string{"الأحد", "الاثنين", "الثلاثاء", "الأربعاء", "الخميس", "الجمعة", "السبت"}

var arabicMonths = [12]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

// GetGregorianDate renders t as "Weekday، D Month YYYY" in Arabic, with
// Western digits.
func GetGregorianDate(t time.Time) string {
	return fmt.Sprintf("%s، %d %s %d", arabicWeekdays[t.Weekday()], t.Day(), arabicMonths[t.Month()-1], t.Year())
}
