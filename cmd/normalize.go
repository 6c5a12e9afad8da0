package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kartoza/kartoza-loudness/internal/config"
	"github.com/kartoza/kartoza-loudness/internal/ffmpeg"
	"github.com/kartoza/kartoza-loudness/internal/models"
	"github.com/kartoza/kartoza-loudness/internal/notify"
	"github.com/kartoza/kartoza-loudness/internal/pipeline"
)

var (
	normalizeTarget targetFlags
	normalizeOpts   normalizeFlags
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <report-file>",
	Short: "Normalize the out-of-spec videos listed in a report",
	Long: `Read a report written by "check" and bring every out-of-spec file to the
target loudness. Gain is capped so the true peak never exceeds the ceiling.

By default normalized copies are written next to the originals with a
_normalized suffix. Use --output-dir for a separate folder or --in-place
to replace the originals (a _backup copy is kept unless --no-backup).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reportPath := args[0]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		target, err := normalizeTarget.resolve(cmd, cfg)
		if err != nil {
			return err
		}
		normalizeOpts.warnings()

		if !normalizeOpts.dryRun {
			if err := requireFFmpeg(cfg); err != nil {
				return err
			}
		}

		p := newNormalizePipeline(cfg, target, &normalizeOpts)
		ctx, cancel := signalContext()
		defer cancel()

		fmt.Printf("%s %s\n", boldStyle.Render("Reading report:"), reportPath)
		_, batch, err := p.Normalize(ctx, reportPath)
		if err != nil {
			return err
		}
		return finishBatch(ctx, p, batch, reportPath, &normalizeOpts, cfg)
	},
}

// newNormalizePipeline builds the pipeline shared by normalize and auto
func newNormalizePipeline(cfg *config.Config, target models.TargetSpec, f *normalizeFlags) *pipeline.Pipeline {
	approve, collision := f.confirmFuncs(cfg)
	opts := pipeline.Options{
		Target:           target,
		Output:           f.output(),
		DryRun:           f.dryRun,
		ForceAll:         f.all,
		ProbeTimeout:     cfg.ProbeTimeout.Std(),
		NormalizeTimeout: cfg.NormalizeTimeout.Std(),
		FFmpegPath:       cfg.FFmpegPath,
		AudioCodec:       cfg.AudioCodec,
		Approve:          approve,
		Confirm:          collision,
		Logger:           newLogger(),
	}

	p := pipeline.New(ffmpeg.NewExecRunner(cfg.FFmpegPath), opts)
	p.SetProgressCallback(printProgress)
	p.SetPlanCallback(func(jobs []pipeline.Job) {
		printPlan(jobs, p.Options())
	})
	return p
}

// finishBatch prints the outcome, writes the log and turns failures into
// the command error
func finishBatch(ctx context.Context, p *pipeline.Pipeline, b *pipeline.Batch, source string, f *normalizeFlags, cfg *config.Config) error {
	printBatch(b, f.dryRun)

	if !f.dryRun && !b.Aborted && len(b.Outcomes) > 0 {
		logPath := f.logFile
		if logPath == "" {
			logPath = pipeline.DefaultLogName(p.Now())
		}
		if err := p.SaveLog(logPath, source, b); err != nil {
			printWarning(err.Error())
		} else {
			fmt.Printf("%s %s\n", boldStyle.Render("Log saved to:"), filepath.Clean(logPath))
		}

		if f.notify || cfg.Notify {
			_ = notify.BatchComplete(b.Succeeded(), b.Failed(), b.Skipped())
		}
	}

	if ctx.Err() != nil {
		return fmt.Errorf("interrupted")
	}
	if n := b.Failed(); n > 0 {
		return fmt.Errorf("%d file(s) failed to normalize", n)
	}
	return nil
}

func init() {
	normalizeTarget.register(normalizeCmd, true)
	normalizeOpts.register(normalizeCmd)
	rootCmd.AddCommand(normalizeCmd)
}
