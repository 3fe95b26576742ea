package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/masjid-display/internal/board"
	"github.com/smokyabdulrahman/masjid-display/internal/cache"
	"github.com/smokyabdulrahman/masjid-display/internal/config"
	"github.com/smokyabdulrahman/masjid-display/internal/display"
	"github.com/smokyabdulrahman/masjid-display/internal/store"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the board in the terminal",
		Long:  "Redraw the board every second, following screen state changes.\nEdits to the settings file are picked up without restarting.",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, src, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	r, err := board.NewRunner(store.DefaultID, cache.NewDaily(src), s)
	if err != nil {
		return err
	}
	r.Now = now

	var out io.Writer = cmd.OutOrStdout()
	if out == os.Stdout {
		out = display.Stdout()
	}
	r.Sinks = []board.Sink{board.SinkFunc(func(_ context.Context, b board.Board) error {
		if FlagJSON {
			return printJSON(out, b)
		}
		_, err := fmt.Fprint(out, display.Frame(b, r.Settings().TimeFormat))
		return err
	})}

	path, err := settingsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	go func() {
		err := config.Watch(ctx, path, func(next *config.Settings) {
			// Flags given on the command line keep winning over the file.
			loadedSettings = next
			merged, err := effectiveSettings(cmd)
			if err != nil {
				log.Warn().Err(err).Msg("ignoring settings change")
				return
			}
			if err := r.Reload(merged); err != nil {
				log.Warn().Err(err).Msg("ignoring settings change")
			}
		})
		if err != nil {
			log.Error().Err(err).Msg("settings watcher stopped")
		}
	}()

	return r.Run(ctx)
}
