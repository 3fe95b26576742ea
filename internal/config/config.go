// Package config holds the mosque settings document.
//
// Settings are stored as JSON at ~/.config/masjid-display/settings.json
// (XDG-compliant). A stored document only needs the fields it changes: it is
// decoded on top of Defaults, so nested objects merge and lists replace. The
// CLI merge priority is: flags > settings file > defaults.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

const (
	configDirName  = "masjid-display"
	configFileName = "settings.json"
)

// Time source choices.
const (
	ProviderSolar   = "solar"
	ProviderAlAdhan = "aladhan"
)

// Location is where the mosque is.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	// Timezone is an IANA zone name. Empty means the host's local zone.
	Timezone string `json:"timezone"`
}

// Settings is everything one mosque display is configured with.
type Settings struct {
	MosqueName        string        `json:"mosqueName"`
	Location          Location      `json:"location"`
	CalculationMethod prayer.Method `json:"calculationMethod"`
	Madhab            prayer.Madhab `json:"madhab"`

	IqamahDelays          prayer.PerPrayerMinutes `json:"iqamahDelays"`
	PrayerTimeAdjustments prayer.Adjustments      `json:"prayerTimeAdjustments"`
	PrayerDuration        prayer.PerPrayerMinutes `json:"prayerDuration"`

	EnablePrayerInProgressScreen bool   `json:"enablePrayerInProgressScreen"`
	EnablePostPrayerDhikrScreen  bool   `json:"enablePostPrayerDhikrScreen"`
	PostPrayerDhikrDuration      int    `json:"postPrayerDhikrDuration"`
	PostPrayerDhikrText          string `json:"postPrayerDhikrText"`

	Duas                   []string `json:"duas"`
	Announcements          []string `json:"announcements"`
	ShowDuasPanel          bool     `json:"showDuasPanel"`
	ShowAnnouncementsPanel bool     `json:"showAnnouncementsPanel"`

	// Terminal preferences.
	TimeFormat string `json:"timeFormat"` // "12h" or "24h"
	Prayers    string `json:"prayers,omitempty"`
	CacheDir   string `json:"cacheDir,omitempty"`
	Provider   string `json:"provider"`
}

const defaultDhikr = `أستغفر الله (ثلاث مرات)
اللهم أنت السلام، ومنكَ السلام، تباركتَ يا ذا الجلالِ والإكرام.
لا إله إلا الله وحده لا شريك له، له الملك، وله الحمد، وهو على كل شيء قدير، اللهم لا مانع لما أعطيتَ، ولا معطي لما منعتَ، ولا ينفع ذا الجَدِّ منك الجَد
سبحان الله (33) مرة، الحمد لله (33) مرة، الله أكبر (33) مرة، لا إله إلا الله وحده لا شريك له، له الملك وله الحمد، وهو على كل شيء قدير.
قراءة آية الكرسي
قراءة سورة الإخلاص والمعوذتين (مرة واحدة)
بعد الفجر والمغرب: لا إله إلا الله وحده لا شريك له، له الملك وله الحمد، يُحيي ويُميت، وهو على كل شيء قدير. (10) مرات.`

// Defaults returns the settings a new mosque starts with.
func Defaults() Settings {
	return Settings{
		MosqueName: "مسجد الهدى",
		Location: Location{
			Latitude:  24.7136,
			Longitude: 46.6753,
			City:      "الرياض",
			Country:   "المملكة العربية السعودية",
			Timezone:  "Asia/Riyadh",
		},
		CalculationMethod: prayer.UmmAlQura,
		Madhab:            prayer.Shafi,
		IqamahDelays: prayer.PerPrayerMinutes{
			Fajr: 20, Sunrise: 0, Dhuhr: 10, Asr: 10, Maghrib: 5, Isha: 10,
		},
		PrayerDuration: prayer.PerPrayerMinutes{
			Fajr: 10, Sunrise: 0, Dhuhr: 15, Asr: 10, Maghrib: 10, Isha: 15,
		},
		EnablePrayerInProgressScreen: true,
		EnablePostPrayerDhikrScreen:  true,
		PostPrayerDhikrDuration:      5,
		PostPrayerDhikrText:          defaultDhikr,
		Duas: []string{
			"اللهم اغفر لي ذنبي وخطئي وجهلي",
			"ربنا آتنا في الدنيا حسنة وفي الآخرة حسنة وقنا عذاب النار",
			"اللهم أعني على ذكرك وشكرك وحسن عبادتك",
			"سبحان الله وبحمده سبحان الله العظيم",
		},
		Announcements: []string{
			"درس العصر يوم الخميس بعد صلاة العصر",
			"حلقة تحفيظ القرآن للأطفال",
		},
		ShowDuasPanel:          true,
		ShowAnnouncementsPanel: true,
		TimeFormat:             "24h",
		Provider:               ProviderSolar,
	}
}

// Decode parses a stored settings document over Defaults. Nested objects
// merge field by field; lists and scalars present in data replace the
// default.
func Decode(data []byte) (Settings, error) {
	s := Defaults()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Defaults(), err
	}
	s.canonicalize()
	return s, nil
}

// canonicalize rewrites a method or madhab that matches a supported one
// case-insensitively to its canonical spelling.
func (s *Settings) canonicalize() {
	if m, err := prayer.ParseMethod(string(s.CalculationMethod)); err == nil {
		s.CalculationMethod = m
	}
	if m, err := prayer.ParseMadhab(string(s.Madhab)); err == nil {
		s.Madhab = m
	}
}

// Normalize replaces an unknown calculation method or madhab with the
// default, so a stored document with a stale value still drives the screen.
// Write paths call Validate instead and reject such values.
func (s *Settings) Normalize() {
	s.canonicalize()
	if !s.CalculationMethod.Known() {
		log.Warn().Str("method", string(s.CalculationMethod)).Str("using", string(prayer.DefaultMethod)).Msg("unknown calculation method")
		s.CalculationMethod = prayer.DefaultMethod
	}
	if _, err := prayer.ParseMadhab(string(s.Madhab)); err != nil {
		log.Warn().Str("madhab", string(s.Madhab)).Str("using", string(prayer.Shafi)).Msg("unknown madhab")
		s.Madhab = prayer.Shafi
	}
}

// Validate reports the first setting the core cannot work with.
func (s *Settings) Validate() error {
	if err := s.Coordinates().Validate(); err != nil {
		return err
	}
	if !s.CalculationMethod.Known() {
		return fmt.Errorf("unknown calculation method %q", s.CalculationMethod)
	}
	if _, err := prayer.ParseMadhab(string(s.Madhab)); err != nil {
		return err
	}
	if s.Location.Timezone != "" {
		if _, err := time.LoadLocation(s.Location.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", s.Location.Timezone, err)
		}
	}
	for _, name := range prayer.Names {
		if s.IqamahDelays.Get(name) < 0 || s.PrayerDuration.Get(name) < 0 {
			return fmt.Errorf("negative iqamah delay or duration for %s", name)
		}
	}
	if s.PostPrayerDhikrDuration < 0 {
		return errors.New("negative post-prayer dhikr duration")
	}
	if s.TimeFormat != "" && s.TimeFormat != "12h" && s.TimeFormat != "24h" {
		return fmt.Errorf("invalid timeFormat %q: must be \"12h\" or \"24h\"", s.TimeFormat)
	}
	if s.Provider != "" && s.Provider != ProviderSolar && s.Provider != ProviderAlAdhan {
		return fmt.Errorf("invalid provider %q: must be %q or %q", s.Provider, ProviderSolar, ProviderAlAdhan)
	}
	return nil
}

// Coordinates returns the mosque position.
func (s *Settings) Coordinates() prayer.Coordinates {
	return prayer.Coordinates{Latitude: s.Location.Latitude, Longitude: s.Location.Longitude}
}

// TimeZone resolves the mosque's zone, falling back to the host zone when
// none is configured.
func (s *Settings) TimeZone() (*time.Location, error) {
	if s.Location.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Location.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", s.Location.Timezone, err)
	}
	return loc, nil
}

// Prayer converts the settings into the core's immutable snapshot.
func (s *Settings) Prayer() prayer.Config {
	return prayer.Config{
		Coordinates: s.Coordinates(),
		Method:      s.CalculationMethod,
		Madhab:      s.Madhab,
		Adjustments: s.PrayerTimeAdjustments,
		Schedule: prayer.ScheduleConfig{
			IqamahDelays:                 s.IqamahDelays,
			PrayerDuration:               s.PrayerDuration,
			PostPrayerDhikrDuration:      s.PostPrayerDhikrDuration,
			EnablePrayerInProgressScreen: s.EnablePrayerInProgressScreen,
			EnablePostPrayerDhikrScreen:  s.EnablePostPrayerDhikrScreen,
		},
	}
}

// SelectedPrayers returns the configured prayer filter in canonical
// spelling, or nil for all. Unknown names are skipped.
func (s *Settings) SelectedPrayers() []string {
	if strings.TrimSpace(s.Prayers) == "" {
		return nil
	}
	var names []string
	for _, n := range strings.Split(s.Prayers, ",") {
		if name, ok := prayer.ParseName(strings.TrimSpace(n)); ok {
			names = append(names, name)
		}
	}
	return names
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the settings file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadFrom reads settings from path. found is false when the file does not
// exist, in which case the defaults are returned.
func LoadFrom(path string) (s *Settings, found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			d := Defaults()
			return &d, false, nil
		}
		return nil, false, fmt.Errorf("failed to read settings file: %w", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		return nil, true, fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	decoded.Normalize()
	return &decoded, true, nil
}

// Save writes the settings to the default path.
func (s *Settings) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return s.SaveTo(path)
}

// SaveTo writes the settings to path, creating the directory if needed.
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	data = append(data, '\n')

	// Write then rename so a watcher never sees a half-written file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// ResetAt deletes the settings file at path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete settings file: %w", err)
	}
	return nil
}
