package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smokyabdulrahman/masjid-display/internal/config"
	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

// clock is a settable time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// recorder is a Sink that keeps every board.
type recorder struct {
	mu     sync.Mutex
	boards []Board
}

func (r *recorder) Publish(_ context.Context, b Board) error {
	r.mu.Lock()
	r.boards = append(r.boards, b)
	r.mu.Unlock()
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}

var riyadhTZ = time.FixedZone("AST", 3*60*60)

func testSettings() *config.Settings {
	s := config.Defaults()
	s.Location.Timezone = "Asia/Riyadh"
	return &s
}

// dhuhrOn returns the adjusted dhuhr adhan for the default settings.
func dhuhrOn(t *testing.T, day time.Time) time.Time {
	t.Helper()
	s := testSettings()
	pt, err := prayer.Calculator{}.Times(context.Background(), s.Prayer(), day)
	if err != nil {
		t.Fatal(err)
	}
	return pt.Dhuhr
}

func newTestRunner(t *testing.T, now time.Time) (*Runner, *clock, *recorder) {
	t.Helper()
	c := &clock{t: now}
	rec := &recorder{}
	r, err := NewRunner("al-huda", prayer.Calculator{}, testSettings())
	if err != nil {
		t.Fatal(err)
	}
	r.Now = c.Now
	r.Sinks = []Sink{rec}
	return r, c, rec
}

// ---------------------------------------------------------------------------
// Tick
// ---------------------------------------------------------------------------

func TestTick_BeforeIqamah(t *testing.T) {
	day := time.Date(2024, 3, 20, 0, 0, 0, 0, riyadhTZ)
	dhuhr := dhuhrOn(t, day)
	r, _, rec := newTestRunner(t, dhuhr.Add(4*time.Minute))

	b, err := r.Tick(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if b.Screen.State != prayer.MainDisplay {
		t.Errorf("state = %s, want main display", b.Screen.State)
	}
	if b.Next.Name != prayer.Dhuhr || !b.Next.IsIqamah {
		t.Errorf("next = %+v, want dhuhr iqamah", b.Next)
	}
	// Default dhuhr iqamah delay is 10 minutes.
	if b.Countdown != "00:06:00" {
		t.Errorf("countdown = %q, want 00:06:00", b.Countdown)
	}
	if b.NextArabic != "الظهر" {
		t.Errorf("NextArabic = %q", b.NextArabic)
	}
	if len(b.Rows) != 6 || b.Rows[2].Iqamah.Sub(b.Rows[2].Adhan) != 10*time.Minute {
		t.Errorf("rows = %+v", b.Rows)
	}
	if b.MosqueName != "مسجد الهدى" || b.HijriDate != "10 رمضان 1445 هـ" {
		t.Errorf("header = %q / %q", b.MosqueName, b.HijriDate)
	}
	if rec.count() != 1 {
		t.Errorf("published %d boards, want 1", rec.count())
	}
	if latest, ok := r.Latest(); !ok || latest.Countdown != b.Countdown {
		t.Error("Latest should return the last board")
	}
}

func TestTick_PrayerInProgressAndDhikr(t *testing.T) {
	day := time.Date(2024, 3, 20, 0, 0, 0, 0, riyadhTZ)
	dhuhr := dhuhrOn(t, day)
	r, c, _ := newTestRunner(t, dhuhr.Add(14*time.Minute))
	ctx := context.Background()

	b, _ := r.Tick(ctx)
	// iqamah at +10, prayer ends at +25.
	if b.Screen.State != prayer.PrayerInProgress || b.Screen.RemainingSeconds != 660 {
		t.Errorf("screen = %+v, want prayer in progress with 660s", b.Screen)
	}
	if b.CurrentPrayerArabic != "الظهر" {
		t.Errorf("CurrentPrayerArabic = %q", b.CurrentPrayerArabic)
	}
	if b.Dhikr != "" {
		t.Error("dhikr text only belongs on the dhikr screen")
	}

	c.Set(dhuhr.Add(27 * time.Minute))
	b, _ = r.Tick(ctx)
	if b.Screen.State != prayer.PostPrayerDhikr || b.Screen.RemainingSeconds != 180 {
		t.Errorf("screen = %+v, want dhikr with 180s", b.Screen)
	}
	if b.Dhikr == "" {
		t.Error("dhikr text missing")
	}

	c.Set(dhuhr.Add(31 * time.Minute))
	b, _ = r.Tick(ctx)
	if b.Screen.State != prayer.MainDisplay {
		t.Errorf("state = %s, want main display", b.Screen.State)
	}
}

func TestTick_DismissLastsUntilMainDisplay(t *testing.T) {
	day := time.Date(2024, 3, 20, 0, 0, 0, 0, riyadhTZ)
	dhuhr := dhuhrOn(t, day)
	r, c, _ := newTestRunner(t, dhuhr.Add(12*time.Minute))
	ctx := context.Background()

	r.Dismiss()
	b, _ := r.Tick(ctx)
	if b.Screen.State != prayer.MainDisplay || !b.Dismissed {
		t.Fatalf("screen = %+v dismissed=%v, want dismissed main display", b.Screen, b.Dismissed)
	}

	// Still dismissed through the dhikr window.
	c.Set(dhuhr.Add(27 * time.Minute))
	b, _ = r.Tick(ctx)
	if b.Screen.State != prayer.MainDisplay || !b.Dismissed {
		t.Errorf("dhikr window: screen = %+v dismissed=%v", b.Screen, b.Dismissed)
	}

	// The automatic state returns to main and clears the override.
	c.Set(dhuhr.Add(40 * time.Minute))
	b, _ = r.Tick(ctx)
	if b.Dismissed {
		t.Error("override should be cleared")
	}

	asr := b.Rows[3].Adhan
	c.Set(asr.Add(12 * time.Minute))
	b, _ = r.Tick(ctx)
	if b.Screen.State != prayer.PrayerInProgress || b.Screen.CurrentPrayer != prayer.Asr {
		t.Errorf("asr screen = %+v, want prayer in progress", b.Screen)
	}
}

func TestTick_RollsOverToTomorrow(t *testing.T) {
	now := time.Date(2024, 3, 20, 23, 0, 0, 0, riyadhTZ)
	r, _, _ := newTestRunner(t, now)

	b, err := r.Tick(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if b.Next.Name != prayer.Fajr || b.Next.IsIqamah {
		t.Fatalf("next = %+v, want tomorrow's fajr adhan", b.Next)
	}
	if b.Next.AdhanTime.Day() != 21 {
		t.Errorf("fajr day = %d, want 21", b.Next.AdhanTime.Day())
	}
	if b.Next.IqamahTime.Sub(b.Next.AdhanTime) != 20*time.Minute {
		t.Errorf("fajr iqamah delay = %v", b.Next.IqamahTime.Sub(b.Next.AdhanTime))
	}
}

func TestTick_RecomputesAtMidnight(t *testing.T) {
	r, c, _ := newTestRunner(t, time.Date(2024, 3, 20, 23, 59, 0, 0, riyadhTZ))
	ctx := context.Background()

	b1, _ := r.Tick(ctx)
	c.Set(time.Date(2024, 3, 21, 0, 0, 5, 0, riyadhTZ))
	b2, _ := r.Tick(ctx)

	if b1.Rows[0].Adhan.Day() != 20 || b2.Rows[0].Adhan.Day() != 21 {
		t.Errorf("row days = %d then %d, want 20 then 21", b1.Rows[0].Adhan.Day(), b2.Rows[0].Adhan.Day())
	}
}

func TestTick_SourceError(t *testing.T) {
	src := sourceFunc(func(context.Context, prayer.Config, time.Time) (prayer.PrayerTimes, error) {
		return prayer.PrayerTimes{}, errors.New("offline")
	})
	r, err := NewRunner("x", src, testSettings())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Tick(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := r.Latest(); ok {
		t.Error("no board should be recorded after a failed tick")
	}
}

type sourceFunc func(context.Context, prayer.Config, time.Time) (prayer.PrayerTimes, error)

func (f sourceFunc) Times(ctx context.Context, cfg prayer.Config, date time.Time) (prayer.PrayerTimes, error) {
	return f(ctx, cfg, date)
}

func TestTick_SinkErrorIgnored(t *testing.T) {
	r, _, rec := newTestRunner(t, time.Date(2024, 3, 20, 9, 0, 0, 0, riyadhTZ))
	r.Sinks = append([]Sink{SinkFunc(func(context.Context, Board) error {
		return errors.New("broker down")
	})}, r.Sinks...)

	if _, err := r.Tick(context.Background()); err != nil {
		t.Fatalf("sink failure should not fail the tick: %v", err)
	}
	if rec.count() != 1 {
		t.Error("later sinks should still receive the board")
	}
}

// ---------------------------------------------------------------------------
// Reload
// ---------------------------------------------------------------------------

func TestReload(t *testing.T) {
	day := time.Date(2024, 3, 20, 0, 0, 0, 0, riyadhTZ)
	dhuhr := dhuhrOn(t, day)
	r, _, _ := newTestRunner(t, dhuhr.Add(4*time.Minute))
	ctx := context.Background()

	if _, err := r.Tick(ctx); err != nil {
		t.Fatal(err)
	}

	s := testSettings()
	s.MosqueName = "Masjid An-Nur"
	s.IqamahDelays.Dhuhr = 20
	s.ShowAnnouncementsPanel = false
	if err := r.Reload(s); err != nil {
		t.Fatal(err)
	}

	b, _ := r.Tick(ctx)
	if b.MosqueName != "Masjid An-Nur" || b.Countdown != "00:16:00" {
		t.Errorf("after reload: %q %q", b.MosqueName, b.Countdown)
	}
	if b.Announcements != nil {
		t.Error("announcements panel disabled")
	}

	bad := testSettings()
	bad.Location.Timezone = "Mars/Olympus"
	if err := r.Reload(bad); err == nil {
		t.Error("invalid settings should be rejected")
	}
	if r.Settings().MosqueName != "Masjid An-Nur" {
		t.Error("rejected reload must keep previous settings")
	}

	stale := testSettings()
	stale.CalculationMethod = "Nope"
	if err := r.Reload(stale); err != nil {
		t.Fatalf("unknown method should fall back, got %v", err)
	}
	if got := r.Settings().CalculationMethod; got != prayer.MuslimWorldLeague {
		t.Errorf("method = %s, want MuslimWorldLeague", got)
	}
	if stale.CalculationMethod != "Nope" {
		t.Error("Reload must not modify the caller's settings")
	}
}

func TestNewRunner_RejectsInvalid(t *testing.T) {
	s := testSettings()
	s.Location.Latitude = 100
	if _, err := NewRunner("x", prayer.Calculator{}, s); !errors.Is(err, prayer.ErrInvalidCoordinates) {
		t.Errorf("err = %v, want ErrInvalidCoordinates", err)
	}
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestRun_PublishesUntilCancelled(t *testing.T) {
	r, _, rec := newTestRunner(t, time.Date(2024, 3, 20, 9, 0, 0, 0, riyadhTZ))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	deadline := time.Now().Add(3 * time.Second)
	for rec.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	cancel()

	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
	if rec.count() < 2 {
		t.Errorf("published %d boards, want at least 2", rec.count())
	}
}

func TestRun_DismissPublishesImmediately(t *testing.T) {
	day := time.Date(2024, 3, 20, 0, 0, 0, 0, riyadhTZ)
	dhuhr := dhuhrOn(t, day)
	r, _, rec := newTestRunner(t, dhuhr.Add(12*time.Minute))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go r.Run(ctx)
	for rec.count() < 1 {
		time.Sleep(5 * time.Millisecond)
	}

	r.Dismiss()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if b, ok := r.Latest(); ok && b.Dismissed {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("dismissal not reflected within 500ms")
}
