package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/strumlab/tunetui/internal/instrument"
)

func newInstrumentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "instruments",
		Short: "List the available tuning presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := instrument.NewRegistry()

			tbl := table.New().
				Border(lipgloss.NormalBorder()).
				StyleFunc(func(row, col int) lipgloss.Style {
					return lipgloss.NewStyle().Padding(0, 1)
				}).
				Headers("INSTRUMENT", "TUNING")

			for _, name := range registry.Names() {
				inst, err := registry.Lookup(name)
				if err != nil {
					return err
				}
				labels := make([]string, len(inst.Strings))
				for i, s := range inst.Strings {
					labels[i] = s.String()
				}
				tbl.Row(inst.Name, strings.Join(labels, " "))
			}

			fmt.Fprintln(cmd.OutOrStdout(), tbl)
			return nil
		},
	}
}
