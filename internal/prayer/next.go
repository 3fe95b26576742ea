package prayer

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoTomorrow is returned when every event today has passed and no
// tomorrow lookup was supplied.
var ErrNoTomorrow = errors.New("no remaining prayers today and no way to compute tomorrow")

// NextPrayer is the next countdown target.
type NextPrayer struct {
	Name       string    `json:"name"`
	AdhanTime  time.Time `json:"adhanTime"`
	IqamahTime time.Time `json:"iqamahTime"`
	// IsIqamah is set when now falls between adhan and iqamah, so the
	// countdown runs to the iqamah.
	IsIqamah bool `json:"isIqamah"`
}

// Target is the instant the countdown runs to.
func (n NextPrayer) Target() time.Time {
	if n.IsIqamah {
		return n.IqamahTime
	}
	return n.AdhanTime
}

// Arabic returns the display label of the prayer.
func (n NextPrayer) Arabic() string {
	return ArabicNames[n.Name]
}

// Prayer returns the target as a Prayer, for the display formatters.
func (n NextPrayer) Prayer() Prayer {
	return Prayer{Name: n.Name, Time: n.Target()}
}

// GetNextPrayer returns the first event, in canonical order, whose adhan or
// iqamah is strictly after now. When today is exhausted it returns
// tomorrow's fajr, computed by the tomorrow callback.
func GetNextPrayer(times PrayerTimes, delays PerPrayerMinutes, now time.Time, tomorrow func() (PrayerTimes, error)) (NextPrayer, error) {
	for _, p := range times.List() {
		iqamah := p.Time.Add(delays.Duration(p.Name))
		if p.Time.After(now) {
			return NextPrayer{Name: p.Name, AdhanTime: p.Time, IqamahTime: iqamah}, nil
		}
		if iqamah.After(now) {
			return NextPrayer{Name: p.Name, AdhanTime: p.Time, IqamahTime: iqamah, IsIqamah: true}, nil
		}
	}

	if tomorrow == nil {
		return NextPrayer{}, ErrNoTomorrow
	}
	next, err := tomorrow()
	if err != nil {
		return NextPrayer{}, fmt.Errorf("computing tomorrow's fajr: %w", err)
	}
	return NextPrayer{
		Name:       Fajr,
		AdhanTime:  next.Fajr,
		IqamahTime: next.Fajr.Add(delays.Duration(Fajr)),
	}, nil
}

// Resolver computes the next prayer for a configuration, handling rollover.
type Resolver struct {
	Source Source
	Config Config
}

// Next returns the next prayer after now. Today is the calendar day of now
// in now's location. Tomorrow's fajr is computed with the same adjustments.
func (r Resolver) Next(ctx context.Context, now time.Time) (NextPrayer, error) {
	today, err := r.Source.Times(ctx, r.Config, now)
	if err != nil {
		return NextPrayer{}, err
	}
	return r.NextFrom(ctx, today, now)
}

// NextFrom is Next with today's times already computed.
func (r Resolver) NextFrom(ctx context.Context, today PrayerTimes, now time.Time) (NextPrayer, error) {
	return GetNextPrayer(today, r.Config.Schedule.IqamahDelays, now, func() (PrayerTimes, error) {
		return r.Source.Times(ctx, r.Config, tomorrow(now))
	})
}
