package display

import (
	"fmt"
	"strings"

	"github.com/smokyabdulrahman/masjid-display/internal/board"
	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

// Banner titles shown for the special screens.
const (
	inProgressTitle = "الصلاة قائمة"
	dhikrTitle      = "أذكار ما بعد الصلاة"
)

// RenderBoard draws b the way a mosque screen lays it out: header, state
// banner, prayer bar and side panels. timeFormat is "12h" or "24h".
func RenderBoard(b board.Board, timeFormat string) string {
	layout := TimeLayout(timeFormat)
	clock := strings.Replace(layout, ":04", ":04:05", 1)

	var sb strings.Builder
	sb.WriteString("\n  " + Bold(b.MosqueName) + "\n")
	fmt.Fprintf(&sb, "  %s  %s\n", Accent(b.GeneratedAt.Format(clock)), b.GregorianDate)
	fmt.Fprintf(&sb, "  %s\n\n", Gray(b.HijriDate))

	sb.WriteString("  " + banner(b) + "\n")
	if b.Screen.State == prayer.PostPrayerDhikr && b.Dhikr != "" {
		for _, line := range strings.Split(b.Dhikr, "\n") {
			sb.WriteString("    " + line + "\n")
		}
	}
	sb.WriteString("\n")

	sb.WriteString(PrayerTable(b, layout).Render())

	writePanel(&sb, "أدعية", b.Duas)
	writePanel(&sb, "إعلانات", b.Announcements)
	return sb.String()
}

// Frame is RenderBoard prefixed with a clear-screen when styling is on.
func Frame(b board.Board, timeFormat string) string {
	if !enabled {
		return RenderBoard(b, timeFormat)
	}
	return clearScreen + RenderBoard(b, timeFormat)
}

func banner(b board.Board) string {
	style := ForState(b.Screen.State)
	switch b.Screen.State {
	case prayer.PrayerInProgress:
		return style(fmt.Sprintf("%s  %s  %s", inProgressTitle, b.CurrentPrayerArabic, minutesSeconds(b.Screen.RemainingSeconds)))
	case prayer.PostPrayerDhikr:
		return style(fmt.Sprintf("%s  %s", dhikrTitle, minutesSeconds(b.Screen.RemainingSeconds)))
	}

	label := b.NextArabic
	what := "الأذان"
	if b.Next.IsIqamah {
		what = "الإقامة"
	}
	line := style(fmt.Sprintf("%s %s  %s", what, label, b.Countdown))
	if b.Dismissed {
		line += "  " + Dim("(dismissed)")
	}
	return line
}

// PrayerTable lists the board's rows, dimming events already past and
// accenting the next one.
func PrayerTable(b board.Board, layout string) *Table {
	tbl := NewTable([]string{"Prayer", "الصلاة", "Adhan", "Iqamah"})
	for i, r := range b.Rows {
		iqamah := r.Iqamah.Format(layout)
		if r.Name == prayer.Sunrise {
			iqamah = "-"
		}
		tbl.AddRow([]string{r.Name, r.Arabic, r.Adhan.Format(layout), iqamah})

		switch {
		case r.Name == b.Next.Name && r.Adhan.Equal(b.Next.AdhanTime):
			tbl.SetHighlightRow(i)
		case r.Iqamah.Before(b.GeneratedAt):
			tbl.StyleRow(i, Dim)
		}
	}
	return tbl
}

func writePanel(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n  " + Bold(title) + "\n")
	for _, item := range items {
		sb.WriteString("  • " + item + "\n")
	}
}

// minutesSeconds renders seconds as "MM:SS".
func minutesSeconds(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
