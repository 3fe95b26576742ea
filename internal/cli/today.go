package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/masjid-display/internal/board"
	"github.com/smokyabdulrahman/masjid-display/internal/config"
	"github.com/smokyabdulrahman/masjid-display/internal/display"
	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
	"github.com/smokyabdulrahman/masjid-display/internal/store"
)

func newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's board (default)",
		Long:  "Display today's prayer and iqamah times, the next countdown and the current screen state.",
		Args:  cobra.NoArgs,
		RunE:  runToday,
	}
}

func newStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the current screen state",
		Long:  "Print what the mosque screen shows right now: mainDisplay, prayerInProgress or postPrayerDhikr.",
		Args:  cobra.NoArgs,
		RunE:  runState,
	}
}

// snapshot computes the board for the current instant.
func snapshot(ctx context.Context, cmd *cobra.Command) (board.Board, *config.Settings, error) {
	s, src, err := setup(ctx, cmd)
	if err != nil {
		return board.Board{}, nil, err
	}
	r, err := board.NewRunner(store.DefaultID, src, s)
	if err != nil {
		return board.Board{}, nil, err
	}
	r.Now = now
	b, err := r.Tick(ctx)
	if err != nil {
		return board.Board{}, nil, err
	}
	return b, s, nil
}

func runToday(cmd *cobra.Command, args []string) error {
	b, s, err := snapshot(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	if FlagJSON {
		return printJSON(cmd.OutOrStdout(), b)
	}
	fmt.Fprint(cmd.OutOrStdout(), display.RenderBoard(b, s.TimeFormat))
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

func runState(cmd *cobra.Command, args []string) error {
	b, _, err := snapshot(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	if FlagJSON {
		return printJSON(cmd.OutOrStdout(), b.Screen)
	}
	fmt.Fprintln(cmd.OutOrStdout(), stateLine(b.Screen))
	return nil
}

// stateLine renders a state as "prayerInProgress Dhuhr 11:00".
func stateLine(s prayer.ScreenStateInfo) string {
	if s.State == prayer.MainDisplay {
		return string(s.State)
	}
	return fmt.Sprintf("%s %s %02d:%02d", s.State, s.CurrentPrayer, s.RemainingSeconds/60, s.RemainingSeconds%60)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
