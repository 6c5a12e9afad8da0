package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kartoza/kartoza-loudness/internal/config"
	"github.com/kartoza/kartoza-loudness/internal/deps"
	"github.com/kartoza/kartoza-loudness/internal/tui"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Check for required dependencies",
	Long:  `Check if all required external programs are installed and available.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ffmpegPath := config.DefaultFFmpegPath
		if cfg, err := loadConfig(); err == nil {
			ffmpegPath = cfg.FFmpegPath
		}
		required, optional := deps.CheckAll(ffmpegPath)

		fmt.Println()
		fmt.Println(boldStyle.Render("Required Dependencies:"))
		fmt.Println()

		allRequiredOk := true
		for _, r := range required {
			var status string
			if r.Available {
				status = greenStyle.Render("✓")
			} else {
				status = redStyle.Render("✗")
				allRequiredOk = false
			}
			fmt.Printf("  %s %s\n", status, boldStyle.Render(r.Dependency.Name))
			fmt.Printf("    %s\n", grayStyle.Render(r.Dependency.Description))
			if r.Available {
				fmt.Printf("    Path: %s\n", r.Path)
			}
			fmt.Println()
		}

		fmt.Println(boldStyle.Render("Optional Dependencies:"))
		fmt.Println()

		for _, r := range optional {
			var status string
			if r.Available {
				status = greenStyle.Render("✓")
			} else {
				status = grayStyle.Render("○")
			}
			fmt.Printf("  %s %s\n", status, boldStyle.Render(r.Dependency.Name))
			fmt.Printf("    %s\n", grayStyle.Render(r.Dependency.Description))
			if r.Available {
				fmt.Printf("    Path: %s\n", r.Path)
			}
			fmt.Println()
		}

		if !allRequiredOk {
			fmt.Println(tui.ErrorStyle.Render("Some required dependencies are missing."))
			fmt.Println("Please install them before using the application.")
			fmt.Println()
			return fmt.Errorf("missing required dependencies")
		}
		fmt.Println(tui.SuccessStyle.Render("All required dependencies are installed!"))
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(depsCmd)
}
