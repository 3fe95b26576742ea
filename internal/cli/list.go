package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/masjid-display/internal/config"
	"github.com/smokyabdulrahman/masjid-display/internal/display"
	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [days]",
		Short: "Show prayer times for multiple days",
		Long:  "Display a grid of prayer times for N days starting today (default: 7).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, 7)
		},
	}
}

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show prayer times for the next 7 days",
		Long:  "Alias for 'list 7'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, nil, 7)
		},
	}
}

func newMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month",
		Short: "Show prayer times for the next 30 days",
		Long:  "Alias for 'list 30'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, nil, 30)
		},
	}
}

// dayTimes is one day of a multi-day listing.
type dayTimes struct {
	Date  time.Time
	Hijri prayer.HijriDate
	Times prayer.PrayerTimes
}

// computeDays computes days consecutive days starting with the local date
// of start.
func computeDays(ctx context.Context, src prayer.Source, s *config.Settings, start time.Time, days int) ([]dayTimes, error) {
	cfg := s.Prayer()
	y, m, d := start.Date()
	out := make([]dayTimes, 0, days)
	for i := 0; i < days; i++ {
		date := time.Date(y, m, d+i, 0, 0, 0, 0, start.Location())
		pt, err := src.Times(ctx, cfg, date)
		if err != nil {
			return nil, fmt.Errorf("computing %s: %w", date.Format("2006-01-02"), err)
		}
		out = append(out, dayTimes{Date: date, Hijri: prayer.ToHijri(date), Times: pt})
	}
	return out, nil
}

// selectedNames returns the configured prayer filter, or every event when
// none is set.
func selectedNames(s *config.Settings) []string {
	if sel := s.SelectedPrayers(); len(sel) > 0 {
		return sel
	}
	return prayer.Names
}

// parseDays accepts a positive integer, "week" or "month".
func parseDays(raw string) (int, error) {
	switch raw {
	case "week":
		return 7, nil
	case "month":
		return 30, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid number of days: %q (must be a positive integer, 'week' or 'month')", raw)
	}
	return n, nil
}

type listJSONOutput struct {
	Location config.Location `json:"location"`
	Days     []listJSONDay   `json:"days"`
}

type listJSONDay struct {
	Date    string            `json:"date"`
	Hijri   string            `json:"hijri"`
	Timings map[string]string `json:"timings"`
}

func runList(cmd *cobra.Command, args []string, defaultDays int) error {
	days := defaultDays
	if len(args) > 0 {
		n, err := parseDays(args[0])
		if err != nil {
			return err
		}
		days = n
	}

	ctx := cmd.Context()
	s, src, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	loc, err := s.TimeZone()
	if err != nil {
		return err
	}

	today := now().In(loc)
	list, err := computeDays(ctx, src, s, today, days)
	if err != nil {
		return err
	}

	names := selectedNames(s)
	layout := display.TimeLayout(s.TimeFormat)
	out := cmd.OutOrStdout()

	if FlagJSON {
		res := listJSONOutput{Location: s.Location}
		for _, dd := range list {
			timings := make(map[string]string)
			for _, p := range dd.Times.Select(names) {
				timings[strings.ToLower(p.Name)] = p.Time.Format(layout)
			}
			res.Days = append(res.Days, listJSONDay{
				Date:    dd.Date.Format("2006-01-02"),
				Hijri:   dd.Hijri.String(),
				Timings: timings,
			})
		}
		return printJSON(out, res)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", display.Bold(fmt.Sprintf("Prayer Times, %d Days", days)))
	fmt.Fprintf(out, "  %s\n\n", locationLine(s))

	headers := append([]string{"Date", "Hijri"}, names...)
	tbl := display.NewTable(headers)
	for i, dd := range list {
		row := []string{dd.Date.Format("Mon 02 Jan"), dd.Hijri.String()}
		for _, p := range dd.Times.Select(names) {
			row = append(row, p.Time.Format(layout))
		}
		tbl.AddRow(row)
		if i == 0 {
			tbl.SetHighlightRow(i)
		}
	}
	fmt.Fprint(out, tbl.Render())
	fmt.Fprintln(out)
	return nil
}

// locationLine is "City, Country (Zone)" or the coordinates when the place
// has no name.
func locationLine(s *config.Settings) string {
	place := fmt.Sprintf("%.4f, %.4f", s.Location.Latitude, s.Location.Longitude)
	if s.Location.City != "" && s.Location.Country != "" {
		place = s.Location.City + ", " + s.Location.Country
	}
	if s.Location.Timezone != "" {
		place += " (" + s.Location.Timezone + ")"
	}
	return place
}
