package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smokyabdulrahman/masjid-display/internal/api"
	"github.com/smokyabdulrahman/masjid-display/internal/board"
	"github.com/smokyabdulrahman/masjid-display/internal/config"
	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
	"github.com/smokyabdulrahman/masjid-display/internal/publish"
	"github.com/smokyabdulrahman/masjid-display/internal/server"
	"github.com/smokyabdulrahman/masjid-display/internal/store"
)

// ---------------------------------------------------------------------------
// today / state
// ---------------------------------------------------------------------------

func TestToday(t *testing.T) {
	pt := defaultTimes(t)
	setNow(t, pt.Dhuhr.Add(14*time.Minute))

	out, err := newTestEnv(t).run(t)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"مسجد الهدى", "10 رمضان 1445 هـ", "الصلاة قائمة", pt.Fajr.Format("15:04"), "أدعية", "إعلانات"} {
		if !strings.Contains(out, want) {
			t.Errorf("today output missing %q:\n%s", want, out)
		}
	}
}

func TestToday_JSON(t *testing.T) {
	pt := defaultTimes(t)
	setNow(t, pt.Dhuhr.Add(14*time.Minute))

	out, err := newTestEnv(t).run(t, "today", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var b board.Board
	if err := json.Unmarshal([]byte(out), &b); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if b.MosqueID != store.DefaultID || len(b.Rows) != 6 {
		t.Errorf("board id %q rows %d", b.MosqueID, len(b.Rows))
	}
	if b.Screen.State != prayer.PrayerInProgress || b.Screen.RemainingSeconds != 660 {
		t.Errorf("screen = %+v", b.Screen)
	}
}

func TestState(t *testing.T) {
	pt := defaultTimes(t)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"before dhuhr", pt.Dhuhr.Add(-time.Hour), "mainDisplay"},
		{"dhuhr prayer", pt.Dhuhr.Add(14 * time.Minute), "prayerInProgress Dhuhr 11:00"},
		{"dhuhr dhikr", pt.Dhuhr.Add(27 * time.Minute), "postPrayerDhikr Dhuhr 03:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setNow(t, tt.at)
			out, err := newTestEnv(t).run(t, "state")
			if err != nil {
				t.Fatal(err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("state = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestState_DisabledScreens(t *testing.T) {
	pt := defaultTimes(t)
	setNow(t, pt.Dhuhr.Add(14*time.Minute))

	e := newTestEnv(t)
	if _, err := e.run(t, "config", "set", "enablePrayerInProgressScreen", "false"); err != nil {
		t.Fatal(err)
	}
	out, err := e.run(t, "state")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out); got != "mainDisplay" {
		t.Errorf("state = %q, want mainDisplay", got)
	}
}

// ---------------------------------------------------------------------------
// next
// ---------------------------------------------------------------------------

func TestNext(t *testing.T) {
	pt := defaultTimes(t)

	tests := []struct {
		name string
		at   time.Time
		args []string
		want string
	}{
		{"adhan", pt.Dhuhr.Add(14 * time.Minute), []string{"--format", "name-and-time"}, "Asr " + pt.Asr.Format("15:04")},
		{"iqamah", pt.Dhuhr.Add(5 * time.Minute), []string{"--format", "name-and-time"}, "Dhuhr iqamah " + pt.Dhuhr.Add(10*time.Minute).Format("15:04")},
		{"12h", pt.Dhuhr.Add(14 * time.Minute), []string{"--format", "next-prayer-time", "--time-format", "12h"}, pt.Asr.Format("3:04 PM")},
		{"template", pt.Dhuhr.Add(5 * time.Minute), []string{"--format", "{{.Arabic}}|{{.Countdown}}"}, "الظهر|00:05:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setNow(t, tt.at)
			out, err := newTestEnv(t).run(t, append([]string{"next"}, tt.args...)...)
			if err != nil {
				t.Fatal(err)
			}
			if out != tt.want {
				t.Errorf("next = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestNext_JSON(t *testing.T) {
	pt := defaultTimes(t)
	setNow(t, pt.Dhuhr.Add(5*time.Minute))

	out, err := newTestEnv(t).run(t, "next", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var got nextJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Name != prayer.Dhuhr || !got.IsIqamah || got.Countdown != "00:05:00" {
		t.Errorf("next JSON = %+v", got)
	}
}

// ---------------------------------------------------------------------------
// list / query
// ---------------------------------------------------------------------------

func TestList_JSON(t *testing.T) {
	setNow(t, time.Date(2024, 3, 20, 23, 30, 0, 0, riyadhTZ))

	out, err := newTestEnv(t).run(t, "list", "3", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var got listJSONOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(got.Days) != 3 {
		t.Fatalf("got %d days, want 3", len(got.Days))
	}
	for i, want := range []string{"2024-03-20", "2024-03-21", "2024-03-22"} {
		if got.Days[i].Date != want {
			t.Errorf("day %d = %s, want %s", i, got.Days[i].Date, want)
		}
		if len(got.Days[i].Timings) != len(prayer.Names) {
			t.Errorf("day %d has %d timings", i, len(got.Days[i].Timings))
		}
	}
	if got.Days[1].Hijri != "11 رمضان 1445 هـ" {
		t.Errorf("hijri = %q", got.Days[1].Hijri)
	}
	if got.Days[0].Timings["fajr"] != defaultTimes(t).Fajr.Format("15:04") {
		t.Errorf("fajr = %q", got.Days[0].Timings["fajr"])
	}
}

func TestList_PrayerFilter(t *testing.T) {
	setNow(t, time.Date(2024, 3, 20, 8, 0, 0, 0, riyadhTZ))

	e := newTestEnv(t)
	if _, err := e.run(t, "config", "set", "prayers", "fajr,isha"); err != nil {
		t.Fatal(err)
	}
	out, err := e.run(t, "week")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Fajr") || !strings.Contains(out, "Isha") || strings.Contains(out, "Dhuhr") {
		t.Errorf("filtered week output:\n%s", out)
	}
	if !strings.Contains(out, "7 Days") {
		t.Errorf("week should list 7 days:\n%s", out)
	}
}

func TestList_BadDays(t *testing.T) {
	if _, err := newTestEnv(t).run(t, "list", "zero"); err == nil {
		t.Fatal("expected error for invalid day count")
	}
}

func TestQuery(t *testing.T) {
	pt := defaultTimes(t)
	setNow(t, time.Date(2024, 3, 20, 1, 0, 0, 0, riyadhTZ))

	tests := []struct {
		name string
		want string
	}{
		{"fajr", "Fajr " + pt.Fajr.Format("15:04") + " (iqamah " + pt.Fajr.Add(20*time.Minute).Format("15:04") + ")"},
		{"MAGHRIB", "Maghrib " + pt.Maghrib.Format("15:04") + " (iqamah " + pt.Maghrib.Add(5*time.Minute).Format("15:04") + ")"},
		{"sunrise", "Sunrise " + pt.Sunrise.Format("15:04")},
		{"isha --format {{.Arabic}}@{{.Time}}", "العشاء@" + pt.Isha.Format("15:04")},
		{"dhuhr --format short-name-and-time", "D " + pt.Dhuhr.Format("15:04")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := newTestEnv(t).run(t, append([]string{"query"}, strings.Fields(tt.name)...)...)
			if err != nil {
				t.Fatal(err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("query %s = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestQuery_Days(t *testing.T) {
	setNow(t, time.Date(2024, 3, 20, 1, 0, 0, 0, riyadhTZ))

	out, err := newTestEnv(t).run(t, "query", "isha", "--days", "week", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var got queryJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Prayer != "isha" || got.Arabic != "العشاء" || len(got.Days) != 7 {
		t.Errorf("query JSON = %+v", got)
	}
}

func TestQuery_Errors(t *testing.T) {
	e := newTestEnv(t)
	if _, err := e.run(t, "query", "jumuah"); err == nil {
		t.Error("expected error for unknown prayer")
	}
	if _, err := e.run(t, "query", "fajr", "--days", "0"); err == nil {
		t.Error("expected error for --days 0")
	}
}

// ---------------------------------------------------------------------------
// compare
// ---------------------------------------------------------------------------

func TestCompare_Official(t *testing.T) {
	pt := defaultTimes(t)
	setNow(t, time.Date(2024, 3, 20, 9, 0, 0, 0, riyadhTZ))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/timings/20-03-2024") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Has("method") {
			t.Error("official times must let the API pick the method")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(api.Response{
			Code:   200,
			Status: "OK",
			Data: api.Data{
				Timings: api.Timings{
					Fajr:    pt.Fajr.Format("15:04"),
					Sunrise: pt.Sunrise.Format("15:04"),
					Dhuhr:   pt.Dhuhr.Format("15:04"),
					Asr:     pt.Asr.Format("15:04"),
					Maghrib: pt.Maghrib.Format("15:04"),
					Isha:    pt.Isha.Format("15:04") + " (+03)",
				},
				Date: api.DateInfo{Hijri: api.HijriDate{Day: "10", Month: api.HijriMonth{Number: 9, En: "Ramadan"}, Year: "1445"}},
				Meta: api.Meta{Method: api.MethodInfo{ID: 4, Name: "Umm Al-Qura University, Makkah"}},
			},
		})
	}))
	defer srv.Close()

	prev := newAPIClient
	newAPIClient = func() *api.Client {
		c := api.NewClient()
		c.BaseURL = srv.URL
		return c
	}
	t.Cleanup(func() { newAPIClient = prev })

	out, err := newTestEnv(t).run(t, "compare", "--official", "--sort", "difference", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var got []compareJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(got) != len(prayer.Methods) {
		t.Fatalf("got %d methods, want %d", len(got), len(prayer.Methods))
	}
	for i, c := range got {
		if c.TotalDifference == nil {
			t.Fatalf("%s not scored", c.Method)
		}
		if i > 0 && *c.TotalDifference < *got[i-1].TotalDifference {
			t.Errorf("not sorted by difference at %d", i)
		}
		if c.Method == prayer.UmmAlQura && *c.TotalDifference > 3 {
			t.Errorf("configured method differs by %d minutes from its own times", *c.TotalDifference)
		}
	}

	out, err = newTestEnv(t).run(t, "compare", "--official")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Al Adhan: Umm Al-Qura University, Makkah, 10 Ramadan 1445 AH") || !strings.Contains(out, "Diff (min)") {
		t.Errorf("compare table:\n%s", out)
	}
}

func TestCompare_Table(t *testing.T) {
	setNow(t, time.Date(2024, 3, 20, 9, 0, 0, 0, riyadhTZ))

	out, err := newTestEnv(t).run(t, "compare", "--date", "2024-06-21")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "21 Jun 2024") || strings.Contains(out, "Diff") {
		t.Errorf("compare table:\n%s", out)
	}
	for _, m := range prayer.Methods {
		if !strings.Contains(out, string(m.Method)) {
			t.Errorf("compare missing %s", m.Method)
		}
	}
}

func TestCompare_BadFlags(t *testing.T) {
	e := newTestEnv(t)
	if _, err := e.run(t, "compare", "--sort", "speed"); err == nil {
		t.Error("expected error for --sort speed")
	}
	if _, err := e.run(t, "compare", "--date", "tomorrow"); err == nil {
		t.Error("expected error for --date tomorrow")
	}
}

// ---------------------------------------------------------------------------
// watch
// ---------------------------------------------------------------------------

func TestWatch_RedrawsAndReloads(t *testing.T) {
	pt := defaultTimes(t)
	setNow(t, pt.Dhuhr.Add(14*time.Minute))

	e := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	go func() {
		time.Sleep(500 * time.Millisecond)
		os.WriteFile(e.config, []byte(`{"mosqueName":"Masjid Al-Noor"}`), 0o644)
	}()

	out, err := e.runContext(t, ctx, "watch")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "مسجد الهدى") {
		t.Errorf("first frame missing default mosque name:\n%s", out)
	}
	if !strings.Contains(out, "Masjid Al-Noor") {
		t.Errorf("settings change was not picked up:\n%s", out)
	}
}

// ---------------------------------------------------------------------------
// serve
// ---------------------------------------------------------------------------

func TestOpenStore_File(t *testing.T) {
	dir := t.TempDir()
	prev := FlagConfig
	FlagConfig = filepath.Join(dir, "settings.json")
	t.Cleanup(func() { FlagConfig = prev })

	st, closeStore, err := openStore(context.Background(), config.Env{SettingsStore: config.StoreFile}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer closeStore()

	fs, ok := st.(store.FileStore)
	if !ok || fs.Dir != dir {
		t.Fatalf("store = %#v, want FileStore in %s", st, dir)
	}
	if fs.Path(store.DefaultID) != FlagConfig {
		t.Errorf("default mosque file = %s, want the CLI settings file", fs.Path(store.DefaultID))
	}
}

func TestHandleCommand(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	at := defaultTimes(t).Dhuhr.Add(14 * time.Minute)
	st := &store.Memory{}
	srv := server.New(ctx, server.Options{
		Store:  st,
		Source: prayer.Calculator{},
		Now:    func() time.Time { return at },
	})
	r, err := srv.Runner(ctx, store.DefaultID)
	if err != nil {
		t.Fatal(err)
	}

	handleCommand(ctx, srv, st, store.DefaultID, publish.CommandDismiss)
	b, err := r.Tick(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !b.Dismissed || b.Screen.State != prayer.MainDisplay {
		t.Errorf("after dismiss: dismissed=%v screen=%+v", b.Dismissed, b.Screen)
	}

	s := config.Defaults()
	s.MosqueName = "Masjid Al-Noor"
	if err := store.Save(ctx, st, store.DefaultID, &s); err != nil {
		t.Fatal(err)
	}
	handleCommand(ctx, srv, st, store.DefaultID, publish.CommandReload)
	if b, err = r.Tick(ctx); err != nil {
		t.Fatal(err)
	}
	if b.MosqueName != "Masjid Al-Noor" {
		t.Errorf("after reload: name = %q", b.MosqueName)
	}

	// Unknown mosques are logged and ignored.
	handleCommand(ctx, srv, st, "nobody", publish.CommandDismiss)
}
