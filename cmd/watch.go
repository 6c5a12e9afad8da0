package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kartoza/kartoza-loudness/internal/audio"
	"github.com/kartoza/kartoza-loudness/internal/ffmpeg"
	"github.com/kartoza/kartoza-loudness/internal/models"
	"github.com/kartoza/kartoza-loudness/internal/tui"
	"github.com/kartoza/kartoza-loudness/internal/watch"
)

var (
	watchTarget targetFlags
	watchSettle time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Analyze videos as they appear in a folder",
	Long: `Watch dir (default: current directory) and analyze each new or changed
video once it has not been written to for the settle delay. Runs until
interrupted with Ctrl+C.`,
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
		target, err := watchTarget.resolve(cmd, cfg)
		if err != nil {
			return err
		}
		if err := requireFFmpeg(cfg); err != nil {
			return err
		}

		logger := newLogger()
		prober := audio.NewProber(ffmpeg.NewExecRunner(cfg.FFmpegPath), target, cfg.ProbeTimeout.Std())
		prober.SetLogger(logger)

		w := watch.New(dir, watchSettle, func(ctx context.Context, file models.MediaFile) {
			m, err := prober.AnalyzeLoudness(ctx, file)
			stamp := grayStyle.Render(time.Now().Format("15:04:05"))
			if err != nil {
				fmt.Printf("%s %s %s %s\n", stamp, redStyle.Render("✗"), file.Name,
					redStyle.Render(string(models.KindOf(err))))
				return
			}

			verdict := target.Classify(m)
			style := greenStyle
			if !verdict.InSpec() {
				style = orangeStyle
			}
			fmt.Printf("%s %s %.2f LUFS, %.2f dBTP %s\n", stamp, file.Name,
				m.IntegratedLUFS, m.TruePeakDBTP, style.Render(string(verdict)))
		})
		w.SetLogger(logger)

		ctx, cancel := signalContext()
		defer cancel()

		go func() {
			select {
			case <-w.Ready():
				fmt.Println(tui.RenderSimpleHeader("Watch"))
				printTarget(target)
				fmt.Printf("%s %s %s\n\n", boldStyle.Render("Watching"), dir, grayStyle.Render("(Ctrl+C to stop)"))
			case <-ctx.Done():
			}
		}()

		return w.Run(ctx)
	},
}

func init() {
	watchTarget.register(watchCmd, false)
	watchCmd.Flags().DurationVar(&watchSettle, "settle", watch.DefaultSettle, "Quiet period before a changed file is analyzed")
	rootCmd.AddCommand(watchCmd)
}
