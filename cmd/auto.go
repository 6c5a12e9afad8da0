package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	autoTarget targetFlags
	autoOpts   normalizeFlags
)

var autoCmd = &cobra.Command{
	Use:   "auto [dir]",
	Short: "Analyze a folder and normalize the out-of-spec videos in one go",
	Long: `Equivalent to "check" followed by "normalize" without writing the
intermediate report. Files measured in this run can use two-pass loudnorm
for a more accurate result.`,
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
		target, err := autoTarget.resolve(cmd, cfg)
		if err != nil {
			return err
		}
		autoOpts.warnings()
		if err := requireFFmpeg(cfg); err != nil {
			return err
		}

		p := newNormalizePipeline(cfg, target, &autoOpts)
		p.SetReportCallback(printReport)
		ctx, cancel := signalContext()
		defer cancel()

		rep, batch, err := p.Auto(ctx, dir)
		if err != nil {
			return err
		}

		finishErr := finishBatch(ctx, p, batch, rep.Folder, &autoOpts, cfg)
		if failed := rep.Summary().Failed; failed > 0 {
			if finishErr != nil {
				return fmt.Errorf("%d file(s) could not be analyzed; %w", failed, finishErr)
			}
			return fmt.Errorf("%d file(s) could not be analyzed", failed)
		}
		return finishErr
	},
}

func init() {
	autoTarget.register(autoCmd, true)
	autoOpts.register(autoCmd)
	rootCmd.AddCommand(autoCmd)
}
