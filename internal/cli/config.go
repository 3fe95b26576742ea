package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/masjid-display/internal/config"
)

var flagForce bool

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify settings",
		Long:  "Display the current settings, or use subcommands to modify them.\nWhen run without subcommands, shows the current settings.",
		RunE:  runConfigShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current settings",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a setting",
		Long: fmt.Sprintf("Set a setting. List values are separated by '|'.\n\nValid keys:\n  %s\n\nExamples:\n  masjid-display config set mosqueName \"مسجد النور\"\n  masjid-display config set calculationMethod Egyptian\n  masjid-display config set iqamahDelays.isha 15\n  masjid-display config set duas \"first dua|second dua\"",
			strings.Join(config.ValidKeys, "\n  ")),
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset settings to defaults",
		Long:  "Delete the settings file and restore all settings to defaults.",
		Args:  cobra.NoArgs,
		RunE:  runConfigReset,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		Args:  cobra.NoArgs,
		RunE:  runConfigPath,
	})

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the defaults",
		Long:  "Write the default settings to the settings file and print a fresh mosque id and API token for the serve daemon's .env.",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	initCmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite an existing settings file")
	cmd.AddCommand(initCmd)

	return cmd
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := settingsPath()
	if err != nil {
		return err
	}
	s, err := readSettings()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if FlagJSON {
		return printJSON(out, s)
	}

	fmt.Fprintf(out, "  Settings (%s)\n\n", path)
	width := 0
	for _, key := range config.ValidKeys {
		width = max(width, len(key))
	}
	for _, key := range config.ValidKeys {
		val, _ := s.Get(key)
		if val == "" {
			val = "(not set)"
		}
		val = strings.ReplaceAll(val, "\n", " ")
		if r := []rune(val); len(r) > 60 {
			val = string(r[:60]) + "…"
		}
		fmt.Fprintf(out, "  %-*s  %s\n", width, key, val)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	path, err := settingsPath()
	if err != nil {
		return err
	}
	s, err := readSettings()
	if err != nil {
		return err
	}
	if err := s.Set(key, value); err != nil {
		return err
	}
	if err := s.SaveTo(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	path, err := settingsPath()
	if err != nil {
		return err
	}
	if err := config.ResetAt(path); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Settings reset to defaults.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := settingsPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := settingsPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !flagForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	s := config.Defaults()
	if err := s.SaveTo(path); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote default settings to %s\n\n", path)
	fmt.Fprintln(out, "For 'serve', add to .env:")
	fmt.Fprintf(out, "  MOSQUE_ID=%s\n", newMosqueID())
	fmt.Fprintf(out, "  API_BEARER_TOKEN=%s\n", strings.ReplaceAll(uuid.NewString(), "-", ""))
	return nil
}

// newMosqueID returns a short random id that is safe as a key, topic segment
// and file name.
func newMosqueID() string {
	return "masjid-" + uuid.NewString()[:8]
}
