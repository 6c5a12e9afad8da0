package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kartoza/kartoza-loudness/internal/ffmpeg"
	"github.com/kartoza/kartoza-loudness/internal/notify"
	"github.com/kartoza/kartoza-loudness/internal/pipeline"
	"github.com/kartoza/kartoza-loudness/internal/report"
)

var (
	checkTarget     targetFlags
	checkSaveReport bool
	checkReportFile string
	checkNotify     bool
)

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Analyze the loudness of the videos in a folder",
	Long: `Measure integrated loudness, true peak and loudness range of every video
directly inside dir (default: current directory) and classify each one
against the target window.

With --save-report or --report-file the report is also written to a text
file that "normalize" can read back.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		target, err := checkTarget.resolve(cmd, cfg)
		if err != nil {
			return err
		}
		if err := requireFFmpeg(cfg); err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		p := pipeline.New(ffmpeg.NewExecRunner(cfg.FFmpegPath), pipeline.Options{
			Target:       target,
			ProbeTimeout: cfg.ProbeTimeout.Std(),
			FFmpegPath:   cfg.FFmpegPath,
			Logger:       newLogger(),
		})
		p.SetProgressCallback(printProgress)

		rep, err := p.Check(ctx, dir)
		if err != nil {
			return err
		}
		printReport(rep)

		if checkSaveReport || checkReportFile != "" {
			path := checkReportFile
			if path == "" {
				path = report.DefaultFileName(rep.Generated)
			}
			if err := rep.Save(path); err != nil {
				return fmt.Errorf("failed to save report: %w", err)
			}
			fmt.Printf("\n%s %s\n", boldStyle.Render("Report saved to:"), path)
		}

		s := rep.Summary()
		if checkNotify || cfg.Notify {
			_ = notify.CheckComplete(s.Analyzed, s.OutOfSpec(), s.Failed)
		}

		if s.Failed > 0 {
			return fmt.Errorf("%d file(s) could not be analyzed", s.Failed)
		}
		return nil
	},
}

func init() {
	checkTarget.register(checkCmd, false)
	checkCmd.Flags().BoolVarP(&checkSaveReport, "save-report", "s", false, "Save the report to loudness_report_<timestamp>.txt")
	checkCmd.Flags().StringVarP(&checkReportFile, "report-file", "r", "", "Save the report to this path")
	checkCmd.Flags().BoolVar(&checkNotify, "notify", false, "Send a desktop notification when done")
	rootCmd.AddCommand(checkCmd)
}
