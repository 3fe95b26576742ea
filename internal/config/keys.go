package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

// listSep separates entries of list-valued keys on the command line.
const listSep = "|"

type field struct {
	get func(s *Settings) string
	set func(s *Settings, v string) error
}

func stringField(p func(*Settings) *string) field {
	return field{
		get: func(s *Settings) string { return *p(s) },
		set: func(s *Settings, v string) error { *p(s) = v; return nil },
	}
}

func floatField(key string, lo, hi float64, p func(*Settings) *float64) field {
	return field{
		get: func(s *Settings) string { return strconv.FormatFloat(*p(s), 'f', -1, 64) },
		set: func(s *Settings, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s %q: must be a number", key, v)
			}
			if math.IsNaN(f) || f < lo || f > hi {
				return fmt.Errorf("invalid %s %q: must be between %v and %v", key, v, lo, hi)
			}
			*p(s) = f
			return nil
		},
	}
}

func minutesField(key string, lo int, p func(*Settings) *int) field {
	return field{
		get: func(s *Settings) string { return strconv.Itoa(*p(s)) },
		set: func(s *Settings, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: must be an integer", key, v)
			}
			if n < lo {
				return fmt.Errorf("invalid %s %q: must be at least %d", key, v, lo)
			}
			*p(s) = n
			return nil
		},
	}
}

func boolField(key string, p func(*Settings) *bool) field {
	return field{
		get: func(s *Settings) string { return strconv.FormatBool(*p(s)) },
		set: func(s *Settings, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: must be true or false", key, v)
			}
			*p(s) = b
			return nil
		},
	}
}

func listField(p func(*Settings) *[]string) field {
	return field{
		get: func(s *Settings) string { return strings.Join(*p(s), " "+listSep+" ") },
		set: func(s *Settings, v string) error {
			var items []string
			for _, item := range strings.Split(v, listSep) {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			*p(s) = items
			return nil
		},
	}
}

var fields = map[string]field{}

func init() {
	fields["mosqueName"] = stringField(func(s *Settings) *string { return &s.MosqueName })
	fields["location.latitude"] = floatField("latitude", -90, 90, func(s *Settings) *float64 { return &s.Location.Latitude })
	fields["location.longitude"] = floatField("longitude", -180, 180, func(s *Settings) *float64 { return &s.Location.Longitude })
	fields["location.city"] = stringField(func(s *Settings) *string { return &s.Location.City })
	fields["location.country"] = stringField(func(s *Settings) *string { return &s.Location.Country })
	fields["location.timezone"] = field{
		get: func(s *Settings) string { return s.Location.Timezone },
		set: func(s *Settings, v string) error {
			if v != "" {
				if _, err := time.LoadLocation(v); err != nil {
					return fmt.Errorf("invalid timezone %q: %w", v, err)
				}
			}
			s.Location.Timezone = v
			return nil
		},
	}
	fields["calculationMethod"] = field{
		get: func(s *Settings) string { return string(s.CalculationMethod) },
		set: func(s *Settings, v string) error {
			m, err := prayer.ParseMethod(v)
			if err != nil {
				return err
			}
			s.CalculationMethod = m
			return nil
		},
	}
	fields["madhab"] = field{
		get: func(s *Settings) string { return string(s.Madhab) },
		set: func(s *Settings, v string) error {
			m, err := prayer.ParseMadhab(v)
			if err != nil {
				return err
			}
			s.Madhab = m
			return nil
		},
	}
	fields["enablePrayerInProgressScreen"] = boolField("enablePrayerInProgressScreen", func(s *Settings) *bool {
		return &s.EnablePrayerInProgressScreen
	})
	fields["enablePostPrayerDhikrScreen"] = boolField("enablePostPrayerDhikrScreen", func(s *Settings) *bool {
		return &s.EnablePostPrayerDhikrScreen
	})
	fields["postPrayerDhikrDuration"] = minutesField("postPrayerDhikrDuration", 0, func(s *Settings) *int {
		return &s.PostPrayerDhikrDuration
	})
	fields["postPrayerDhikrText"] = stringField(func(s *Settings) *string { return &s.PostPrayerDhikrText })
	fields["duas"] = listField(func(s *Settings) *[]string { return &s.Duas })
	fields["announcements"] = listField(func(s *Settings) *[]string { return &s.Announcements })
	fields["showDuasPanel"] = boolField("showDuasPanel", func(s *Settings) *bool { return &s.ShowDuasPanel })
	fields["showAnnouncementsPanel"] = boolField("showAnnouncementsPanel", func(s *Settings) *bool {
		return &s.ShowAnnouncementsPanel
	})
	fields["timeFormat"] = field{
		get: func(s *Settings) string { return s.TimeFormat },
		set: func(s *Settings, v string) error {
			if v != "12h" && v != "24h" {
				return fmt.Errorf("invalid timeFormat %q: must be \"12h\" or \"24h\"", v)
			}
			s.TimeFormat = v
			return nil
		},
	}
	fields["prayers"] = field{
		get: func(s *Settings) string { return s.Prayers },
		set: func(s *Settings, v string) error {
			parts := strings.Split(v, ",")
			for i, n := range parts {
				n = strings.TrimSpace(n)
				name, ok := prayer.ParseName(n)
				if !ok {
					return fmt.Errorf("invalid prayer name %q in prayers list", n)
				}
				parts[i] = name
			}
			s.Prayers = strings.Join(parts, ",")
			return nil
		},
	}
	fields["cacheDir"] = stringField(func(s *Settings) *string { return &s.CacheDir })
	fields["provider"] = field{
		get: func(s *Settings) string { return s.Provider },
		set: func(s *Settings, v string) error {
			if v != ProviderSolar && v != ProviderAlAdhan {
				return fmt.Errorf("invalid provider %q: must be %q or %q", v, ProviderSolar, ProviderAlAdhan)
			}
			s.Provider = v
			return nil
		},
	}

	for _, name := range prayer.Names {
		name := name // per-iteration copy for closures (pre-Go 1.22 loop semantics)
		lower := strings.ToLower(name)
		fields["iqamahDelays."+lower] = minutesField("iqamah delay", 0, func(s *Settings) *int {
			return perPrayerField(&s.IqamahDelays, name)
		})
		fields["prayerDuration."+lower] = minutesField("prayer duration", 0, func(s *Settings) *int {
			return perPrayerField(&s.PrayerDuration, name)
		})
		if name == prayer.Sunrise {
			continue
		}
		fields["prayerTimeAdjustments."+lower] = minutesField("adjustment", -60, func(s *Settings) *int {
			return adjustmentField(&s.PrayerTimeAdjustments, name)
		})
	}
}

// ValidKeys lists all keys that can be set via `config set`, in display order.
var ValidKeys = []string{
	"mosqueName",
	"location.latitude", "location.longitude", "location.city", "location.country", "location.timezone",
	"calculationMethod", "madhab",
	"iqamahDelays.fajr", "iqamahDelays.sunrise", "iqamahDelays.dhuhr",
	"iqamahDelays.asr", "iqamahDelays.maghrib", "iqamahDelays.isha",
	"prayerTimeAdjustments.fajr", "prayerTimeAdjustments.dhuhr", "prayerTimeAdjustments.asr",
	"prayerTimeAdjustments.maghrib", "prayerTimeAdjustments.isha",
	"prayerDuration.fajr", "prayerDuration.sunrise", "prayerDuration.dhuhr",
	"prayerDuration.asr", "prayerDuration.maghrib", "prayerDuration.isha",
	"enablePrayerInProgressScreen", "enablePostPrayerDhikrScreen",
	"postPrayerDhikrDuration", "postPrayerDhikrText",
	"duas", "announcements", "showDuasPanel", "showAnnouncementsPanel",
	"timeFormat", "prayers", "cacheDir", "provider",
}

func perPrayerField(m *prayer.PerPrayerMinutes, name string) *int {
	switch name {
	case prayer.Fajr:
		return &m.Fajr
	case prayer.Sunrise:
		return &m.Sunrise
	case prayer.Dhuhr:
		return &m.Dhuhr
	case prayer.Asr:
		return &m.Asr
	case prayer.Maghrib:
		return &m.Maghrib
	default:
		return &m.Isha
	}
}

func adjustmentField(a *prayer.Adjustments, name string) *int {
	switch name {
	case prayer.Fajr:
		return &a.Fajr
	case prayer.Dhuhr:
		return &a.Dhuhr
	case prayer.Asr:
		return &a.Asr
	case prayer.Maghrib:
		return &a.Maghrib
	default:
		return &a.Isha
	}
}

// Set parses value into the setting named by key.
func (s *Settings) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}
	return f.set(s, value)
}

// Get returns the string form of the setting named by key.
func (s *Settings) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return f.get(s), nil
}
