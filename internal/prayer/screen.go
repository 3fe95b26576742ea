package prayer

import (
	"sync"
	"time"
)

// ScreenState is what the display shows.
type ScreenState string

const (
	MainDisplay      ScreenState = "mainDisplay"
	PrayerInProgress ScreenState = "prayerInProgress"
	PostPrayerDhikr  ScreenState = "postPrayerDhikr"
)

// ScreenStateInfo is the scheduler's answer for one instant. RemainingSeconds
// and CurrentPrayer are empty for MainDisplay.
type ScreenStateInfo struct {
	State            ScreenState `json:"state"`
	RemainingSeconds int         `json:"remainingSeconds,omitempty"`
	CurrentPrayer    string      `json:"currentPrayer,omitempty"`
}

// CurrentPrayerArabic returns the display label of CurrentPrayer.
func (s ScreenStateInfo) CurrentPrayerArabic() string {
	return ArabicNames[s.CurrentPrayer]
}

// GetScreenState evaluates each prayer's in-progress and dhikr windows in
// canonical order; the first window containing now wins. A prayer with both
// a zero iqamah delay and a zero duration (sunrise, normally) opens no
// windows at all. A zero duration alone still opens the dhikr window at
// iqamah.
//
//	iqamah    = adhan + delay
//	prayerEnd = iqamah + duration
//	dhikrEnd  = prayerEnd + dhikr duration
func GetScreenState(times PrayerTimes, cfg ScheduleConfig, now time.Time) ScreenStateInfo {
	dhikr := time.Duration(cfg.PostPrayerDhikrDuration) * time.Minute

	for _, p := range times.List() {
		delay := cfg.IqamahDelays.Duration(p.Name)
		duration := cfg.PrayerDuration.Duration(p.Name)
		if delay == 0 && duration == 0 {
			continue
		}
		iqamah := p.Time.Add(delay)
		prayerEnd := iqamah.Add(duration)
		dhikrEnd := prayerEnd.Add(dhikr)

		if cfg.EnablePrayerInProgressScreen && !now.Before(iqamah) && now.Before(prayerEnd) {
			return ScreenStateInfo{
				State:            PrayerInProgress,
				RemainingSeconds: ceilSeconds(prayerEnd.Sub(now)),
				CurrentPrayer:    p.Name,
			}
		}
		if cfg.EnablePostPrayerDhikrScreen && !now.Before(prayerEnd) && now.Before(dhikrEnd) {
			return ScreenStateInfo{
				State:            PostPrayerDhikr,
				RemainingSeconds: ceilSeconds(dhikrEnd.Sub(now)),
				CurrentPrayer:    p.Name,
			}
		}
	}
	return ScreenStateInfo{State: MainDisplay}
}

func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

// Override lets an operator dismiss a special screen. The dismissal lasts
// until the scheduler itself returns to MainDisplay.
type Override struct {
	mu        sync.Mutex
	dismissed bool
}

// Dismiss forces MainDisplay until the automatic state next reaches it.
func (o *Override) Dismiss() {
	o.mu.Lock()
	o.dismissed = true
	o.mu.Unlock()
}

// Active reports whether a dismissal is in effect.
func (o *Override) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dismissed
}

// Apply filters the automatic state through the override.
func (o *Override) Apply(auto ScreenStateInfo) ScreenStateInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	if auto.State == MainDisplay {
		o.dismissed = false
		return auto
	}
	if o.dismissed {
		return ScreenStateInfo{State: MainDisplay}
	}
	return auto
}
