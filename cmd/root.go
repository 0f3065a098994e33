package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "texnorm",
	Short: "texnorm - normalize BLP/TGA textures to power-of-two sizes",
	Long: "texnorm copies a texture tree into a fresh timestamped output folder, resizing every BLP and TGA " +
		"file whose sides are not powers of two or exceed the target size.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
