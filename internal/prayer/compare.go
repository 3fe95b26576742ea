package prayer

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Comparison is one method's result for a day, optionally scored against
// officially published times.
type Comparison struct {
	Method Method
	Name   string
	Times  PrayerTimes
	// TotalDifference is the sum over fajr, dhuhr, asr, maghrib and isha of
	// the absolute difference to the official time, each rounded to minutes.
	// It is -1 when no official times were supplied.
	TotalDifference int
}

// Scored reports whether TotalDifference is meaningful.
func (c Comparison) Scored() bool {
	return c.TotalDifference >= 0
}

// CompareMethods computes date's times with every method. When official is
// non-nil each result is scored against it; sunrise is never scored.
func (c Calculator) CompareMethods(ctx context.Context, coords Coordinates, date time.Time, madhab Madhab, official *PrayerTimes) ([]Comparison, error) {
	out := make([]Comparison, 0, len(Methods))
	for _, info := range Methods {
		times, err := c.Compute(ctx, coords, date, info.Method, madhab, Adjustments{})
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", info.Method, err)
		}
		cmp := Comparison{Method: info.Method, Name: info.Name, Times: times, TotalDifference: -1}
		if official != nil {
			cmp.TotalDifference = totalDifference(times, *official)
		}
		out = append(out, cmp)
	}
	return out, nil
}

func totalDifference(calc, official PrayerTimes) int {
	total := 0
	for _, name := range []string{Fajr, Dhuhr, Asr, Maghrib, Isha} {
		a, _ := calc.Time(name)
		b, _ := official.Time(name)
		if b.IsZero() {
			continue
		}
		d := a.Sub(b)
		if d < 0 {
			d = -d
		}
		total += int(d.Round(time.Minute) / time.Minute)
	}
	return total
}

// Sort orders for SortComparisons.
const (
	SortByName       = "name"
	SortByDifference = "difference"
)

// SortComparisons sorts cs in place, by name or by ascending difference.
// Unscored entries sort by name.
func SortComparisons(cs []Comparison, by string) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if by == SortByDifference && a.Scored() && b.Scored() && a.TotalDifference != b.TotalDifference {
			return a.TotalDifference < b.TotalDifference
		}
		return a.Name < b.Name
	})
}
