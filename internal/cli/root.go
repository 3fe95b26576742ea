package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/masjid-display/internal/config"
	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

// Global flags shared across all subcommands.
var (
	FlagConfig     string
	FlagLatitude   float64
	FlagLongitude  float64
	FlagTimezone   string
	FlagMethod     string
	FlagMadhab     string
	FlagProvider   string
	FlagAutoLocate bool
	FlagJSON       bool
	FlagCacheDir   string
	FlagTimeFormat string
	FlagLogLevel   string
)

// now is the CLI's clock.
var now = time.Now

// loadedSettings holds the settings file read in PersistentPreRunE.
var loadedSettings *config.Settings

// NewRootCmd creates the root command. version is set by the binary via
// ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "masjid-display",
		Short:   "Mosque prayer times display",
		Long:    "Prayer times, iqamah countdowns and screen states for mosque displays.\nRun without a subcommand to show today's board.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(FlagLogLevel, false)
			s, err := readSettings()
			if err != nil {
				return err
			}
			loadedSettings = s
			return nil
		},
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&FlagConfig, "config", "", "Settings file (default: $XDG_CONFIG_HOME/masjid-display/settings.json)")
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Override latitude")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Override longitude")
	pf.StringVar(&FlagTimezone, "timezone", "", "Override IANA time zone, e.g. Asia/Riyadh")
	pf.StringVar(&FlagMethod, "method", "", "Override calculation method (see 'methods')")
	pf.StringVar(&FlagMadhab, "madhab", "", "Override madhab: Shafi, Hanafi or Maliki")
	pf.StringVar(&FlagProvider, "provider", "", "Prayer time source: solar or aladhan")
	pf.BoolVar(&FlagAutoLocate, "auto-locate", false, "Detect the location from the public IP address")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.StringVar(&FlagCacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/masjid-display/)")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.StringVar(&FlagLogLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(newTodayCmd())
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newStateCmd())
	rootCmd.AddCommand(newHijriCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newMonthCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newMethodsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// settingsPath is --config or the XDG default.
func settingsPath() (string, error) {
	if FlagConfig != "" {
		return FlagConfig, nil
	}
	return config.Path()
}

// settingsDir holds the settings file; the serve file store keeps mosque
// documents next to it.
func settingsDir() (string, error) {
	if FlagConfig != "" {
		return filepath.Dir(FlagConfig), nil
	}
	return config.Dir()
}

func readSettings() (*config.Settings, error) {
	path, err := settingsPath()
	if err != nil {
		return nil, err
	}
	s, _, err := config.LoadFrom(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return s, nil
}

// effectiveSettings returns a copy of the loaded settings with explicitly
// set flags applied: flags > settings file > defaults.
func effectiveSettings(cmd *cobra.Command) (*config.Settings, error) {
	var s config.Settings
	if loadedSettings != nil {
		s = *loadedSettings
	} else {
		s = config.Defaults()
	}

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	if flagWasSet(flags, root, "latitude") {
		s.Location.Latitude = FlagLatitude
	}
	if flagWasSet(flags, root, "longitude") {
		s.Location.Longitude = FlagLongitude
	}
	if flagWasSet(flags, root, "timezone") {
		s.Location.Timezone = FlagTimezone
	}
	if flagWasSet(flags, root, "method") {
		m, err := prayer.ParseMethod(FlagMethod)
		if err != nil {
			return nil, err
		}
		s.CalculationMethod = m
	}
	if flagWasSet(flags, root, "madhab") {
		m, err := prayer.ParseMadhab(FlagMadhab)
		if err != nil {
			return nil, err
		}
		s.Madhab = m
	}
	if flagWasSet(flags, root, "provider") {
		s.Provider = FlagProvider
	}
	if flagWasSet(flags, root, "cache-dir") {
		s.CacheDir = FlagCacheDir
	}
	if flagWasSet(flags, root, "time-format") {
		s.TimeFormat = FlagTimeFormat
	}
	if s.TimeFormat == "" {
		s.TimeFormat = "24h"
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}
