package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/masjid-display/internal/display"
	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

var flagFormat string

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next adhan or iqamah with countdown",
		Long:  "Display the next upcoming adhan or iqamah. Output has no trailing newline so it drops into status bars such as tmux.",
		Args:  cobra.NoArgs,
		RunE:  runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, arabic-and-time, countdown, full, or a custom Go template")

	return cmd
}

type nextJSON struct {
	prayer.NextPrayer
	Arabic    string `json:"arabic"`
	Countdown string `json:"countdown"`
}

func runNext(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, src, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	loc, err := s.TimeZone()
	if err != nil {
		return err
	}

	t := now().In(loc)
	n, err := prayer.Resolver{Source: src, Config: s.Prayer()}.Next(ctx, t)
	if err != nil {
		return err
	}

	if FlagJSON {
		return printJSON(cmd.OutOrStdout(), nextJSON{
			NextPrayer: n,
			Arabic:     n.Arabic(),
			Countdown:  prayer.FormatCountdown(n.Target(), t),
		})
	}
	fmt.Fprint(cmd.OutOrStdout(), prayer.FormatNext(n, t, flagFormat, display.TimeLayout(s.TimeFormat)))
	return nil
}
