package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/masjid-display/internal/config"
	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

// Refresh intervals for Run.
const (
	CoarseInterval = time.Minute
	FineInterval   = time.Second
)

// Sink receives every board the runner produces.
type Sink interface {
	Publish(ctx context.Context, b Board) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, b Board) error

// Publish implements Sink.
func (f SinkFunc) Publish(ctx context.Context, b Board) error { return f(ctx, b) }

// Runner keeps one mosque's board current. Prayer times are recomputed on a
// coarse tick and whenever the local date changes; screen state, next prayer
// and countdown are recomputed on every fine tick.
type Runner struct {
	ID     string
	Source prayer.Source
	// Now defaults to time.Now.
	Now   func() time.Time
	Sinks []Sink

	override prayer.Override
	kick     chan struct{}
	tickMu   sync.Mutex

	mu       sync.RWMutex
	settings *config.Settings
	loc      *time.Location
	times    prayer.PrayerTimes
	timesDay string
	latest   *Board
}

// NewRunner validates settings and prepares a runner. An unknown method or
// madhab falls back to its default instead of failing.
func NewRunner(id string, src prayer.Source, s *config.Settings) (*Runner, error) {
	r := &Runner{ID: id, Source: src, kick: make(chan struct{}, 1)}
	if err := r.setSettings(s); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runner) setSettings(s *config.Settings) error {
	copied := *s
	copied.Normalize()
	if err := copied.Validate(); err != nil {
		return err
	}
	loc, err := copied.TimeZone()
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.settings = &copied
	r.loc = loc
	r.timesDay = ""
	r.mu.Unlock()
	return nil
}

// Reload swaps in new settings and recomputes on the next tick.
func (r *Runner) Reload(s *config.Settings) error {
	if err := r.setSettings(s); err != nil {
		return err
	}
	log.Info().Str("mosque", r.ID).Msg("settings applied")
	r.poke()
	return nil
}

// Dismiss returns the screen to the main display until the current special
// screen would have ended anyway.
func (r *Runner) Dismiss() {
	r.override.Dismiss()
	log.Info().Str("mosque", r.ID).Msg("special screen dismissed")
	r.poke()
}

func (r *Runner) poke() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Settings returns a copy of the settings in effect.
func (r *Runner) Settings() config.Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *r.settings
}

// Latest returns the most recent board.
func (r *Runner) Latest() (Board, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return Board{}, false
	}
	return *r.latest, true
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// refresh recomputes today's prayer times. force skips the same-day check.
func (r *Runner) refresh(ctx context.Context, now time.Time, force bool) error {
	r.mu.RLock()
	cfg := r.settings.Prayer()
	day := now.Format("2006-01-02")
	fresh := r.timesDay == day
	r.mu.RUnlock()

	if fresh && !force {
		return nil
	}

	times, err := r.Source.Times(ctx, cfg, now)
	if err != nil {
		return fmt.Errorf("computing prayer times for %s: %w", r.ID, err)
	}

	r.mu.Lock()
	r.times = times
	r.timesDay = day
	r.mu.Unlock()
	return nil
}

// Tick computes the board for the current instant and hands it to every
// sink. Sink failures are logged and do not fail the tick.
func (r *Runner) Tick(ctx context.Context) (Board, error) {
	return r.tick(ctx, false)
}

func (r *Runner) tick(ctx context.Context, coarse bool) (Board, error) {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()

	r.mu.RLock()
	now := r.now().In(r.loc)
	r.mu.RUnlock()

	if err := r.refresh(ctx, now, coarse); err != nil {
		return Board{}, err
	}

	r.mu.RLock()
	settings := r.settings
	cfg := settings.Prayer()
	times := r.times
	var prev prayer.ScreenState
	if r.latest != nil {
		prev = r.latest.Screen.State
	}
	r.mu.RUnlock()

	resolver := prayer.Resolver{Source: r.Source, Config: cfg}
	next, err := resolver.NextFrom(ctx, times, now)
	if err != nil {
		return Board{}, fmt.Errorf("resolving next prayer for %s: %w", r.ID, err)
	}

	auto := prayer.GetScreenState(times, cfg.Schedule, now)
	screen := r.override.Apply(auto)
	b := Build(r.ID, settings, times, next, screen, screen.State != auto.State, now)

	r.mu.Lock()
	r.latest = &b
	r.mu.Unlock()

	if screen.State != prev {
		log.Info().
			Str("mosque", r.ID).
			Str("state", string(screen.State)).
			Str("prayer", screen.CurrentPrayer).
			Int("remaining", screen.RemainingSeconds).
			Msg("screen state changed")
	}

	for _, s := range r.Sinks {
		if err := s.Publish(ctx, b); err != nil {
			log.Warn().Err(err).Str("mosque", r.ID).Msg("publishing board")
		}
	}
	return b, nil
}

// Run ticks until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	coarse := time.NewTicker(CoarseInterval)
	defer coarse.Stop()
	fine := time.NewTicker(FineInterval)
	defer fine.Stop()

	log.Info().Str("mosque", r.ID).Msg("board runner started")
	r.logTick(ctx, true)

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("mosque", r.ID).Msg("board runner stopped")
			return nil
		case <-coarse.C:
			r.logTick(ctx, true)
		case <-fine.C:
			r.logTick(ctx, false)
		case <-r.kick:
			r.logTick(ctx, false)
		}
	}
}

func (r *Runner) logTick(ctx context.Context, coarse bool) {
	if _, err := r.tick(ctx, coarse); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Str("mosque", r.ID).Msg("board tick failed")
	}
}
