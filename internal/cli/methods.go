package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/masjid-display/internal/display"
	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List all calculation methods",
		Long:  "Print the supported calculation methods. The configured one is highlighted.",
		Args:  cobra.NoArgs,
		RunE:  runMethods,
	}
}

type methodJSON struct {
	ID     prayer.Method `json:"id"`
	Name   string        `json:"name"`
	Arabic string        `json:"arabic"`
	Region string        `json:"region"`
}

func runMethods(cmd *cobra.Command, args []string) error {
	s, err := effectiveSettings(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if FlagJSON {
		res := make([]methodJSON, 0, len(prayer.Methods))
		for _, m := range prayer.Methods {
			res = append(res, methodJSON{m.Method, m.Name, m.Arabic, m.Region})
		}
		return printJSON(out, res)
	}

	fmt.Fprintln(out, "Supported calculation methods:")
	fmt.Fprintln(out)
	tbl := display.NewTable([]string{"ID", "Name", "Region"})
	for i, m := range prayer.Methods {
		tbl.AddRow([]string{string(m.Method), m.Name, m.Region})
		if m.Method == s.CalculationMethod {
			tbl.SetHighlightRow(i)
		}
	}
	fmt.Fprint(out, tbl.Render())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Use --method <ID> or 'config set calculationMethod <ID>' to select one.")
	return nil
}
