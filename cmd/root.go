package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kartoza/kartoza-loudness/internal/tui"
)

var (
	version    = "dev"
	debugMode  bool
	configPath string
)

// SetVersion sets the application version (called from main)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "kartoza-loudness",
	Short: "Check and normalize the loudness of video files",
	Long: `Kartoza Loudness measures the loudness of a folder of videos and brings
the out-of-spec ones to a target level with ffmpeg.

It supports:
  - EBU R128 integrated loudness, true peak and loudness range analysis
  - Text reports that can be reviewed and fed back into normalization
  - Peak-safe gain: normalization never pushes the true peak over the ceiling
  - Sibling, output-directory and in-place (with backup) output
  - Presets for broadcast, gaming and podcast delivery`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", tui.ErrorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.config/kartoza-loudness/config.json)")
}
