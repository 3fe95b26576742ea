package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smokyabdulrahman/masjid-display/internal/api"
	"github.com/smokyabdulrahman/masjid-display/internal/geo"
)

var _ api.TimingsCache = (*Cache)(nil)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(filepath.Join(t.TempDir(), "nested", "cache"))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func makkahResponse() *api.Response {
	return &api.Response{
		Code:   200,
		Status: "OK",
		Data: api.Data{
			Timings: api.Timings{
				Fajr: "05:04", Sunrise: "06:19", Dhuhr: "12:24",
				Asr: "15:49", Maghrib: "18:29", Isha: "19:59",
			},
			Date: api.DateInfo{Hijri: api.HijriDate{
				Day: "10", Month: api.HijriMonth{Number: 9, Ar: "رَمَضان"}, Year: "1445",
			}},
			Meta: api.Meta{Latitude: 21.4225, Longitude: 39.8262, Timezone: "Asia/Riyadh"},
		},
	}
}

var day = time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// Timings
// ---------------------------------------------------------------------------

func TestNew_CreatesDirectory(t *testing.T) {
	c := newTestCache(t)
	if fi, err := os.Stat(c.Dir()); err != nil || !fi.IsDir() {
		t.Fatalf("cache dir not created: %v", err)
	}
}

func TestTimings_RoundTrip(t *testing.T) {
	c := newTestCache(t)
	if err := c.SaveTimings(day, 21.4225, 39.8262, 4, 0, makkahResponse()); err != nil {
		t.Fatal(err)
	}

	got, ok := c.LoadTimings(day, 21.4225, 39.8262, 4, 0)
	if !ok {
		t.Fatal("miss after save")
	}
	if got.Fajr != "05:04" || got.Isha != "19:59" {
		t.Errorf("timings = %+v", got)
	}

	path := c.timingsPath("2024-03-20", 21.4225, 39.8262, 4, 0)
	if filepath.Base(filepath.Dir(path)) != "2024-03-20" {
		t.Errorf("timings not stored under their day: %s", path)
	}
	var f timingsFile
	if err := readJSON(path, &f); err != nil {
		t.Fatal(err)
	}
	if f.Hijri != "10 رَمَضان 1445 هـ" || f.Meta.Timezone != "Asia/Riyadh" {
		t.Errorf("stored entry = %+v", f)
	}
}

func TestTimings_Misses(t *testing.T) {
	c := newTestCache(t)
	if err := c.SaveTimings(day, 21.4225, 39.8262, 4, 0, makkahResponse()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		date   time.Time
		lat    float64
		method int
		school int
	}{
		{"other day", day.AddDate(0, 0, 1), 21.4225, 4, 0},
		{"other method", day, 21.4225, 3, 0},
		{"other school", day, 21.4225, 4, 1},
		{"other place", day, 24.7136, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := c.LoadTimings(tt.date, tt.lat, 39.8262, tt.method, tt.school); ok {
				t.Error("expected miss")
			}
		})
	}
}

func TestTimings_CorruptedFile(t *testing.T) {
	c := newTestCache(t)
	if err := c.SaveTimings(day, 21.4, 39.8, 4, 0, makkahResponse()); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.timingsPath("2024-03-20", 21.4, 39.8, 4, 0), []byte("not-json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.LoadTimings(day, 21.4, 39.8, 4, 0); ok {
		t.Error("expected miss for corrupted file")
	}
}

func TestParamsKey(t *testing.T) {
	base := paramsKey(51.5, -0.1, 2, 0)
	if base != paramsKey(51.5, -0.1, 2, 0) {
		t.Error("key not deterministic")
	}
	if len(base) != 16 {
		t.Errorf("key length = %d, want 16", len(base))
	}
	for _, k := range []string{
		paramsKey(51.5, -0.1, 3, 0),
		paramsKey(51.5, -0.1, 2, 1),
		paramsKey(40.7, -74.0, 2, 0),
	} {
		if k == base {
			t.Errorf("distinct parameters share key %s", k)
		}
	}
}

// ---------------------------------------------------------------------------
// Prune
// ---------------------------------------------------------------------------

func TestPrune(t *testing.T) {
	c := newTestCache(t)
	for i := 0; i < 5; i++ {
		if err := c.SaveTimings(day.AddDate(0, 0, i), 21.4, 39.8, 4, 0, makkahResponse()); err != nil {
			t.Fatal(err)
		}
	}
	// Foreign entries are left alone.
	if err := os.MkdirAll(filepath.Join(c.Dir(), timingsDir, "notes"), 0o755); err != nil {
		t.Fatal(err)
	}

	removed, err := c.Prune(day.AddDate(0, 0, 3).Add(15 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if removed != 3 {
		t.Errorf("removed %d days, want 3", removed)
	}
	if _, ok := c.LoadTimings(day.AddDate(0, 0, 2), 21.4, 39.8, 4, 0); ok {
		t.Error("day before cutoff survived")
	}
	if _, ok := c.LoadTimings(day.AddDate(0, 0, 3), 21.4, 39.8, 4, 0); !ok {
		t.Error("cutoff day was pruned")
	}
	if _, err := os.Stat(filepath.Join(c.Dir(), timingsDir, "notes")); err != nil {
		t.Errorf("non-day directory removed: %v", err)
	}
}

func TestPrune_Empty(t *testing.T) {
	if n, err := newTestCache(t).Prune(day); n != 0 || err != nil {
		t.Errorf("Prune on empty cache = %d, %v", n, err)
	}
}

// ---------------------------------------------------------------------------
// Geolocation
// ---------------------------------------------------------------------------

func TestGeo_TTL(t *testing.T) {
	c := newTestCache(t)
	clock := day
	c.now = func() time.Time { return clock }

	if c.LoadGeo() != nil {
		t.Fatal("expected miss before save")
	}

	want := geo.Location{Latitude: 21.4225, Longitude: 39.8262, City: "Makkah", Country: "Saudi Arabia", Timezone: "Asia/Riyadh"}
	if err := c.SaveGeo(&want); err != nil {
		t.Fatal(err)
	}

	clock = day.Add(23 * time.Hour)
	if got := c.LoadGeo(); got == nil || *got != want {
		t.Errorf("LoadGeo within TTL = %+v", got)
	}

	clock = day.Add(25 * time.Hour)
	if got := c.LoadGeo(); got != nil {
		t.Errorf("LoadGeo after TTL = %+v, want nil", got)
	}
}

func TestGeo_CorruptedFile(t *testing.T) {
	c := newTestCache(t)
	if err := os.WriteFile(filepath.Join(c.Dir(), geoFile), []byte("{bad json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if c.LoadGeo() != nil {
		t.Error("expected nil for corrupted geo cache")
	}
}

func TestWriteJSON_NoTempFilesLeft(t *testing.T) {
	c := newTestCache(t)
	if err := c.SaveGeo(&geo.Location{Latitude: 1, Longitude: 1}); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != geoFile {
			t.Errorf("unexpected file %s", e.Name())
		}
	}
}
