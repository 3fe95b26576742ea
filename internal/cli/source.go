package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/masjid-display/internal/api"
	"github.com/smokyabdulrahman/masjid-display/internal/cache"
	"github.com/smokyabdulrahman/masjid-display/internal/config"
	"github.com/smokyabdulrahman/masjid-display/internal/geo"
	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

// cacheRetentionDays is how long fetched timings are kept on disk.
const cacheRetentionDays = 7

// detectLocation is swapped out in tests.
var detectLocation = geo.DetectLocation

// openCache returns the file cache, or nil with a warning when it cannot be
// created. Caching is never required.
func openCache(s *config.Settings) *cache.Cache {
	c, err := cache.New(s.CacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cache disabled: %v\n", err)
		return nil
	}
	if n, err := c.Prune(now().AddDate(0, 0, -cacheRetentionDays)); err != nil {
		log.Debug().Err(err).Msg("pruning cache")
	} else if n > 0 {
		log.Debug().Int("days", n).Msg("pruned cached timings")
	}
	return c
}

// newCalculator builds the calculator for the configured provider.
func newCalculator(s *config.Settings, c *cache.Cache) prayer.Calculator {
	if s.Provider != config.ProviderAlAdhan {
		return prayer.Calculator{}
	}
	p := &api.Provider{Client: api.NewClient()}
	if c != nil {
		p.Cache = c
	}
	return prayer.Calculator{Provider: p}
}

// resolveLocation applies --auto-locate: cached geolocation first, then IP
// detection. Without the flag the settings are left alone.
func resolveLocation(ctx context.Context, s *config.Settings, c *cache.Cache) error {
	if !FlagAutoLocate {
		return nil
	}

	var loc *geo.Location
	if c != nil {
		loc = c.LoadGeo()
	}
	if loc == nil {
		detected, err := detectLocation(ctx)
		if err != nil {
			return fmt.Errorf("location auto-detection failed: %w", err)
		}
		loc = detected
		if c != nil {
			if err := c.SaveGeo(loc); err != nil {
				log.Debug().Err(err).Msg("could not cache location")
			}
		}
	}

	s.Location.Latitude = loc.Latitude
	s.Location.Longitude = loc.Longitude
	if loc.Timezone != "" {
		s.Location.Timezone = loc.Timezone
	}
	if loc.City != "" {
		s.Location.City = loc.City
		s.Location.Country = loc.Country
	}
	return nil
}

// setup resolves effective settings, location and the prayer time source for
// one-shot commands.
func setup(ctx context.Context, cmd *cobra.Command) (*config.Settings, prayer.Source, error) {
	s, err := effectiveSettings(cmd)
	if err != nil {
		return nil, nil, err
	}
	c := openCache(s)
	if err := resolveLocation(ctx, s, c); err != nil {
		return nil, nil, err
	}
	return s, newCalculator(s, c), nil
}
