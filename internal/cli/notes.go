package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/strumlab/tunetui/internal/notes"
)

func newNotesCmd() *cobra.Command {
	var minFreq, maxFreq float64

	cmd := &cobra.Command{
		Use:   "notes",
		Short: "List equal-tempered notes in a frequency band",
		RunE: func(cmd *cobra.Command, args []string) error {
			list := notes.NotesInRange(minFreq, maxFreq)
			if len(list) == 0 {
				return fmt.Errorf("no notes between %.2f and %.2f Hz", minFreq, maxFreq)
			}

			tbl := table.New().
				Border(lipgloss.NormalBorder()).
				StyleFunc(func(row, col int) lipgloss.Style {
					return lipgloss.NewStyle().Padding(0, 1)
				}).
				Headers("NOTE", "FREQUENCY")
			for _, n := range list {
				tbl.Row(n.String(), fmt.Sprintf("%.2f Hz", n.Frequency))
			}

			fmt.Fprintln(cmd.OutOrStdout(), tbl)
			return nil
		},
	}

	cmd.Flags().Float64Var(&minFreq, "min", 16, "lowest frequency in Hz")
	cmd.Flags().Float64Var(&maxFreq, "max", 8000, "highest frequency in Hz")

	return cmd
}
