package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"texnorm/internal/processor"
	"texnorm/internal/tui"
)

var scanFlags commonFlags

var scanCmd = &cobra.Command{
	Use:   "scan [flags] <input-dir>",
	Short: "Report which textures would be resized, without writing anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := scanFlags.options()
		if err != nil {
			return err
		}

		entries, summary, err := processor.Scan(cmd.Context(), args[0], opts)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			switch {
			case entry.Err != nil:
				fmt.Fprintf(os.Stdout, "%s %s\n", scanFileStyle.Render(entry.RelPath), scanErrorStyle.Render(entry.Err.Error()))
			case entry.Decision.Needed:
				fmt.Fprintf(os.Stdout, "%s %s\n", scanFileStyle.Render(entry.RelPath),
					scanValueStyle.Render(fmt.Sprintf("%s -> %s", entry.Original, entry.Decision.Target)))
				fmt.Fprintf(os.Stdout, "  %s %s\n",
					scanBulletStyle.Render("-"),
					scanCategoryStyle.Render(strings.Join(entry.Decision.Reasons, ", ")),
				)
			default:
				fmt.Fprintf(os.Stdout, "%s %s\n", scanFileStyle.Render(entry.RelPath),
					scanDimStyle.Render(fmt.Sprintf("%s ok", entry.Original)))
			}
		}

		fmt.Fprintln(os.Stdout, tui.RenderSummary([]tui.SummaryRow{
			{Label: "Total textures", Value: fmt.Sprintf("%d", summary.Total)},
			{Label: "Would resize", Value: fmt.Sprintf("%d", summary.Resize)},
			{Label: "Unreadable", Value: fmt.Sprintf("%d", summary.Errors), Warn: summary.Errors > 0},
			{Label: "Skipped paths", Value: fmt.Sprintf("%d", summary.Skipped), Warn: summary.Skipped > 0},
		}))
		return nil
	},
}

var (
	scanFileStyle     = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	scanCategoryStyle = lipgloss.NewStyle().Foreground(tui.ColorAccentAlt)
	scanValueStyle    = lipgloss.NewStyle().Foreground(tui.ColorInk)
	scanDimStyle      = lipgloss.NewStyle().Foreground(tui.ColorDim)
	scanBulletStyle   = lipgloss.NewStyle().Foreground(tui.ColorDim)
	scanErrorStyle    = lipgloss.NewStyle().Foreground(tui.ColorError)
)

func init() {
	scanFlags.register(scanCmd, false)
	rootCmd.AddCommand(scanCmd)
}
