// Package board assembles what a mosque screen shows at one instant and keeps
// it current.
package board

import (
	"time"

	"github.com/smokyabdulrahman/masjid-display/internal/config"
	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

// Row is one event in the prayer times bar.
type Row struct {
	Name       string    `json:"name"`
	Arabic     string    `json:"arabic"`
	Adhan      time.Time `json:"adhan"`
	Iqamah     time.Time `json:"iqamah"`
	AdhanText  string    `json:"adhanText"`
	IqamahText string    `json:"iqamahText"`
}

// Board is a complete snapshot for one mosque screen.
type Board struct {
	MosqueID    string    `json:"mosqueId"`
	MosqueName  string    `json:"mosqueName"`
	GeneratedAt time.Time `json:"generatedAt"`

	Clock         string `json:"clock"`
	GregorianDate string `json:"gregorianDate"`
	HijriDate     string `json:"hijriDate"`

	Rows       []Row             `json:"rows"`
	Next       prayer.NextPrayer `json:"next"`
	NextArabic string            `json:"nextArabic"`
	Countdown  string            `json:"countdown"`

	Screen              prayer.ScreenStateInfo `json:"screen"`
	CurrentPrayerArabic string                 `json:"currentPrayerArabic,omitempty"`
	Dismissed           bool                   `json:"dismissed"`

	Duas          []string `json:"duas,omitempty"`
	Announcements []string `json:"announcements,omitempty"`
	Dhikr         string   `json:"dhikr,omitempty"`
}

// Build lays out a board from already computed state. Times are shown in
// their own location.
func Build(id string, s *config.Settings, times prayer.PrayerTimes, next prayer.NextPrayer, screen prayer.ScreenStateInfo, dismissed bool, now time.Time) Board {
	b := Board{
		MosqueID:      id,
		MosqueName:    s.MosqueName,
		GeneratedAt:   now,
		Clock:         prayer.FormatTime(now),
		GregorianDate: prayer.GetGregorianDate(now),
		HijriDate:     prayer.GetHijriDate(now),
		Next:          next,
		NextArabic:    next.Arabic(),
		Countdown:     prayer.FormatCountdown(next.Target(), now),
		Screen:        screen,
		Dismissed:     dismissed,
	}

	b.Rows = Rows(s, times)

	if screen.State != prayer.MainDisplay {
		b.CurrentPrayerArabic = screen.CurrentPrayerArabic()
	}
	if screen.State == prayer.PostPrayerDhikr {
		b.Dhikr = s.PostPrayerDhikrText
	}
	if s.ShowDuasPanel {
		b.Duas = s.Duas
	}
	if s.ShowAnnouncementsPanel {
		b.Announcements = s.Announcements
	}
	return b
}

// Rows lists every event of the day with its iqamah time.
func Rows(s *config.Settings, times prayer.PrayerTimes) []Row {
	var rows []Row
	for _, p := range times.List() {
		iqamah := p.Time.Add(s.IqamahDelays.Duration(p.Name))
		rows = append(rows, Row{
			Name:       p.Name,
			Arabic:     p.Arabic(),
			Adhan:      p.Time,
			Iqamah:     iqamah,
			AdhanText:  prayer.FormatTime(p.Time),
			IqamahText: prayer.FormatTime(iqamah),
		})
	}
	return rows
}
