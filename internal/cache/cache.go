// Package cache keeps Al Adhan responses and geolocation results on disk, and
// memoizes computed prayer times for the running day.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/smokyabdulrahman/masjid-display/internal/api"
	"github.com/smokyabdulrahman/masjid-display/internal/geo"
)

const (
	timingsDir = "timings"
	geoFile    = "geolocation.json"
	geoTTL     = 24 * time.Hour
	dayLayout  = "2006-01-02"
)

// Cache is a directory of JSON files. Timings live under timings/<date>/ so
// whole days can be pruned. It implements api.TimingsCache.
type Cache struct {
	dir string
	// now is the clock for the geolocation TTL.
	now func() time.Time
}

// timingsFile is one day of fetched times for one set of parameters.
type timingsFile struct {
	Date    string      `json:"date"`
	Method  int         `json:"method"`
	School  int         `json:"school"`
	Timings api.Timings `json:"timings"`
	Hijri   string      `json:"hijri,omitempty"`
	Meta    api.Meta    `json:"meta"`
}

type geoEntry struct {
	Location geo.Location `json:"location"`
	CachedAt time.Time    `json:"cachedAt"`
}

// New creates a Cache rooted at dir, or at ~/.cache/masjid-display when dir
// is empty.
func New(dir string) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".cache", "masjid-display")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}
	return &Cache{dir: dir, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// paramsKey identifies one request for a day.
func paramsKey(lat, lon float64, method, school int) string {
	raw := strconv.FormatFloat(lat, 'f', 6, 64) + "|" + strconv.FormatFloat(lon, 'f', 6, 64) +
		"|" + strconv.Itoa(method) + "|" + strconv.Itoa(school)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:8])
}

func (c *Cache) timingsPath(day string, lat, lon float64, method, school int) string {
	return filepath.Join(c.dir, timingsDir, day, paramsKey(lat, lon, method, school)+".json")
}

// LoadTimings implements api.TimingsCache. Unreadable entries are misses.
func (c *Cache) LoadTimings(date time.Time, lat, lon float64, method, school int) (api.Timings, bool) {
	day := date.Format(dayLayout)
	var f timingsFile
	if err := readJSON(c.timingsPath(day, lat, lon, method, school), &f); err != nil {
		return api.Timings{}, false
	}
	if f.Date != day || f.Method != method || f.School != school {
		return api.Timings{}, false
	}
	return f.Timings, true
}

// SaveTimings implements api.TimingsCache.
func (c *Cache) SaveTimings(date time.Time, lat, lon float64, method, school int, resp *api.Response) error {
	day := date.Format(dayLayout)
	f := timingsFile{
		Date:    day,
		Method:  method,
		School:  school,
		Timings: resp.Data.Timings,
		Hijri:   resp.Data.Date.Hijri.FormatArabic(),
		Meta:    resp.Data.Meta,
	}
	if err := writeJSON(c.timingsPath(day, lat, lon, method, school), f); err != nil {
		return fmt.Errorf("caching timings for %s: %w", day, err)
	}
	return nil
}

// Prune removes cached timings for days before the calendar day of before.
// It returns how many days were removed.
func (c *Cache) Prune(before time.Time) (int, error) {
	cutoff := before.Format(dayLayout)
	entries, err := os.ReadDir(filepath.Join(c.dir, timingsDir))
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := time.Parse(dayLayout, e.Name()); err != nil || e.Name() >= cutoff {
			continue
		}
		if err := os.RemoveAll(filepath.Join(c.dir, timingsDir, e.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// LoadGeo returns the cached geolocation, or nil when it is missing or older
// than 24 hours.
func (c *Cache) LoadGeo() *geo.Location {
	var e geoEntry
	if err := readJSON(filepath.Join(c.dir, geoFile), &e); err != nil {
		return nil
	}
	if c.now().Sub(e.CachedAt) > geoTTL {
		return nil
	}
	return &e.Location
}

// SaveGeo writes a geolocation result to the cache.
func (c *Cache) SaveGeo(loc *geo.Location) error {
	if err := writeJSON(filepath.Join(c.dir, geoFile), geoEntry{Location: *loc, CachedAt: c.now()}); err != nil {
		return fmt.Errorf("caching geolocation: %w", err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// writeJSON replaces path atomically so concurrent readers never see a
// partial file.
func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
