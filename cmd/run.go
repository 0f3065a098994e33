package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"texnorm/internal/logging"
	"texnorm/internal/processor"
	"texnorm/internal/tui"
)

var (
	runFlags commonFlags
	runNoTUI bool
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <input-dir>",
	Short: "Normalize every BLP/TGA texture under a directory into a new output folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := runFlags.options()
		if err != nil {
			return err
		}

		updates := make(chan processor.ProgressUpdate, 64)
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		var ui func() (bool, error)
		if !runNoTUI && isatty.IsTerminal(os.Stdout.Fd()) {
			ui = func() (bool, error) {
				final, err := tea.NewProgram(tui.NewModel(updates)).Run()
				if err != nil {
					return false, err
				}
				return final.(tui.Model).Finished(), nil
			}
		}

		uiDone := make(chan struct{})
		go func() {
			defer close(uiDone)
			consumeUpdates(updates, ui, cancel, os.Stdout)
		}()

		summary, err := processor.Run(ctx, args[0], opts, updates)
		close(updates)
		<-uiDone
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		rows := []tui.SummaryRow{
			{Label: "Total textures", Value: fmt.Sprintf("%d", summary.Total)},
			{Label: "Resized", Value: fmt.Sprintf("%d", summary.Changed)},
			{Label: "Errors", Value: fmt.Sprintf("%d", summary.Errors), Warn: summary.Errors > 0},
		}
		fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))

		outPath := summary.OutputDir
		if abs, absErr := filepath.Abs(outPath); absErr == nil {
			outPath = abs
		}
		fmt.Fprintf(os.Stdout, "Output written to: %s\n", outPath)
		fmt.Fprintf(os.Stdout, "Log: %s\n", summary.LogPath)
		return err
	},
}

// consumeUpdates hands updates to ui, or prints them when ui is nil or fails
// to start. If ui returns before the stream closed, cancel stops the batch.
// The channel is always drained so the processor never blocks on a send.
func consumeUpdates(updates <-chan processor.ProgressUpdate, ui func() (bool, error), cancel context.CancelFunc, out io.Writer) {
	if ui == nil {
		printLines(updates, out)
		return
	}
	finished, err := ui()
	if err != nil {
		fmt.Fprintf(out, "progress view unavailable: %v\n", err)
		printLines(updates, out)
		return
	}
	if !finished {
		cancel()
	}
	for range updates {
	}
}

func printLines(updates <-chan processor.ProgressUpdate, out io.Writer) {
	hook := logging.WriterHook(out)
	for u := range updates {
		if u.Line != "" {
			hook(logging.Entry{Level: u.Level, Text: u.Line})
		}
	}
}

func init() {
	runFlags.register(runCmd, true)
	runCmd.Flags().BoolVar(&runNoTUI, "no-tui", false, "print log lines instead of the progress view")

	rootCmd.AddCommand(runCmd)
}
