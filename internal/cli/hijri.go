package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

func newHijriCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hijri [YYYY-MM-DD]",
		Short: "Convert a Gregorian date to Hijri",
		Long:  "Print the tabular Hijri date for today in the mosque's time zone, or for the given Gregorian date.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHijri,
	}
}

type hijriJSON struct {
	Gregorian string           `json:"gregorian"`
	Hijri     prayer.HijriDate `json:"hijri"`
	Arabic    string           `json:"arabic"`
	English   string           `json:"english"`
}

func runHijri(cmd *cobra.Command, args []string) error {
	s, err := effectiveSettings(cmd)
	if err != nil {
		return err
	}
	loc, err := s.TimeZone()
	if err != nil {
		return err
	}

	date := now().In(loc)
	if len(args) == 1 {
		date, err = time.ParseInLocation("2006-01-02", args[0], loc)
		if err != nil {
			return fmt.Errorf("invalid date %q: must be YYYY-MM-DD", args[0])
		}
	}

	h := prayer.ToHijri(date)
	if FlagJSON {
		return printJSON(cmd.OutOrStdout(), hijriJSON{
			Gregorian: date.Format("2006-01-02"),
			Hijri:     h,
			Arabic:    h.String(),
			English:   h.EnglishString(),
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", h.String(), h.EnglishString())
	return nil
}
