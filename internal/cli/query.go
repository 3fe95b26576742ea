package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/masjid-display/internal/display"
	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

var (
	flagQueryDays   string
	flagQueryFormat string
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <prayer>",
		Short: "Query a specific prayer time",
		Long:  "Query one prayer's adhan and iqamah for today, or across multiple days with --days.\n\nValid prayer names: " + strings.Join(prayer.Names, ", "),
		Args:  cobra.ExactArgs(1),
		RunE:  runQuery,
	}

	cmd.Flags().StringVar(&flagQueryDays, "days", "1", "Number of days to show (or 'week'/'month')")
	cmd.Flags().StringVar(&flagQueryFormat, "format", "", "Single-day output format, as for 'next' (default shows adhan and iqamah)")

	return cmd
}

type queryJSONDay struct {
	Date   string `json:"date"`
	Hijri  string `json:"hijri"`
	Adhan  string `json:"adhan"`
	Iqamah string `json:"iqamah"`
}

type queryJSON struct {
	Prayer string         `json:"prayer"`
	Arabic string         `json:"arabic"`
	Days   []queryJSONDay `json:"days"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	name, ok := prayer.ParseName(args[0])
	if !ok {
		return fmt.Errorf("unknown prayer %q; valid names: %s", args[0], strings.Join(prayer.Names, ", "))
	}
	days, err := parseDays(flagQueryDays)
	if err != nil {
		return fmt.Errorf("invalid --days value: %w", err)
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
	list, err := computeDays(ctx, src, s, now().In(loc), days)
	if err != nil {
		return err
	}

	layout := display.TimeLayout(s.TimeFormat)
	delay := s.IqamahDelays.Duration(name)
	out := cmd.OutOrStdout()

	res := queryJSON{Prayer: strings.ToLower(name), Arabic: prayer.ArabicNames[name]}
	for _, dd := range list {
		t, _ := dd.Times.Time(name)
		res.Days = append(res.Days, queryJSONDay{
			Date:   dd.Date.Format("2006-01-02"),
			Hijri:  dd.Hijri.String(),
			Adhan:  t.Format(layout),
			Iqamah: t.Add(delay).Format(layout),
		})
	}

	if FlagJSON {
		return printJSON(out, res)
	}

	if days == 1 {
		if flagQueryFormat != "" {
			t, _ := list[0].Times.Time(name)
			fmt.Fprint(out, prayer.FormatOutput(prayer.Prayer{Name: name, Time: t}, now().In(loc), flagQueryFormat, layout))
			return nil
		}
		d := res.Days[0]
		if name == prayer.Sunrise {
			fmt.Fprintf(out, "%s %s\n", name, d.Adhan)
		} else {
			fmt.Fprintf(out, "%s %s (iqamah %s)\n", name, d.Adhan, d.Iqamah)
		}
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n\n", display.Bold(fmt.Sprintf("%s %s, %d Days", name, res.Arabic, days)))
	tbl := display.NewTable([]string{"Date", "Hijri", "Adhan", "Iqamah"})
	for i, d := range res.Days {
		tbl.AddRow([]string{list[i].Date.Format("Mon 02 Jan"), d.Hijri, d.Adhan, d.Iqamah})
	}
	tbl.SetHighlightRow(0)
	fmt.Fprint(out, tbl.Render())
	fmt.Fprintln(out)
	return nil
}
