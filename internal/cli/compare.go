package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/masjid-display/internal/api"
	"github.com/smokyabdulrahman/masjid-display/internal/display"
	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

var (
	flagOfficial bool
	flagSort     string
	flagDate     string
)

// newAPIClient is swapped out in tests.
var newAPIClient = api.NewClient

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare every calculation method for the mosque's location",
		Long:  "Compute the day's times with every supported method. With --official, score each method by its total difference in minutes from the times Al Adhan publishes for the location.",
		Args:  cobra.NoArgs,
		RunE:  runCompare,
	}

	cmd.Flags().BoolVar(&flagOfficial, "official", false, "Score methods against Al Adhan's times for the location")
	cmd.Flags().StringVar(&flagSort, "sort", prayer.SortByName, "Sort by: name or difference")
	cmd.Flags().StringVar(&flagDate, "date", "", "Date to compare (YYYY-MM-DD, default today)")

	return cmd
}

type compareJSON struct {
	Method          prayer.Method     `json:"method"`
	Name            string            `json:"name"`
	Timings         map[string]string `json:"timings"`
	TotalDifference *int              `json:"totalDifference,omitempty"`
}

func runCompare(cmd *cobra.Command, args []string) error {
	if flagSort != prayer.SortByName && flagSort != prayer.SortByDifference {
		return fmt.Errorf("invalid --sort %q: must be %q or %q", flagSort, prayer.SortByName, prayer.SortByDifference)
	}

	ctx := cmd.Context()
	s, err := effectiveSettings(cmd)
	if err != nil {
		return err
	}
	if err := resolveLocation(ctx, s, openCache(s)); err != nil {
		return err
	}
	loc, err := s.TimeZone()
	if err != nil {
		return err
	}

	date := now().In(loc)
	if flagDate != "" {
		if date, err = time.ParseInLocation("2006-01-02", flagDate, loc); err != nil {
			return fmt.Errorf("invalid --date %q: must be YYYY-MM-DD", flagDate)
		}
	}

	var official *prayer.PrayerTimes
	var source string
	if flagOfficial {
		c := s.Coordinates()
		resp, err := newAPIClient().FetchByCoordinates(ctx, date, c.Latitude, c.Longitude, -1, api.SchoolID(s.Madhab))
		if err != nil {
			return fmt.Errorf("fetching official times: %w", err)
		}
		pt, err := api.ParseTimings(resp.Data.Timings, date)
		if err != nil {
			return err
		}
		official = &pt
		source = fmt.Sprintf("Al Adhan: %s, %s", resp.Data.Meta.Method.Name, resp.Data.Date.Hijri.Format())
	}

	results, err := prayer.Calculator{}.CompareMethods(ctx, s.Coordinates(), date, s.Madhab, official)
	if err != nil {
		return err
	}
	prayer.SortComparisons(results, flagSort)

	layout := display.TimeLayout(s.TimeFormat)
	out := cmd.OutOrStdout()
	scored := []string{prayer.Fajr, prayer.Dhuhr, prayer.Asr, prayer.Maghrib, prayer.Isha}

	if FlagJSON {
		var res []compareJSON
		for _, r := range results {
			item := compareJSON{Method: r.Method, Name: r.Name, Timings: map[string]string{}}
			for _, p := range r.Times.List() {
				item.Timings[p.Name] = p.Time.Format(layout)
			}
			if r.Scored() {
				diff := r.TotalDifference
				item.TotalDifference = &diff
			}
			res = append(res, item)
		}
		return printJSON(out, res)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", display.Bold("Calculation Methods, "+date.Format("02 Jan 2006")))
	fmt.Fprintf(out, "  %s\n", locationLine(s))
	if source != "" {
		fmt.Fprintf(out, "  %s\n", display.Gray(source))
	}
	fmt.Fprintln(out)

	headers := append([]string{"Method"}, scored...)
	if official != nil {
		headers = append(headers, "Diff (min)")
	}
	tbl := display.NewTable(headers)
	offset := 0
	if official != nil {
		offset = 1
		row := []string{"Al Adhan"}
		for _, p := range official.Select(scored) {
			row = append(row, p.Time.Format(layout))
		}
		tbl.AddRow(append(row, "-"))
		tbl.StyleRow(0, display.Gray)
	}
	for i, r := range results {
		row := []string{string(r.Method)}
		for _, p := range r.Times.Select(scored) {
			row = append(row, p.Time.Format(layout))
		}
		if r.Scored() {
			row = append(row, strconv.Itoa(r.TotalDifference))
		}
		tbl.AddRow(row)
		switch {
		case r.Method == s.CalculationMethod:
			tbl.SetHighlightRow(i + offset)
		case r.Scored():
			tbl.StyleRow(i+offset, scoreStyle(r.TotalDifference))
		}
	}
	fmt.Fprint(out, tbl.Render())
	fmt.Fprintln(out)
	return nil
}

// scoreStyle colours a method by how far it is from the official times.
func scoreStyle(diff int) func(string) string {
	switch {
	case diff <= 5:
		return display.Green
	case diff <= 15:
		return display.Yellow
	default:
		return display.Red
	}
}
