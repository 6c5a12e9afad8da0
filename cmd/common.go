package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kartoza/kartoza-loudness/internal/config"
	"github.com/kartoza/kartoza-loudness/internal/deps"
	"github.com/kartoza/kartoza-loudness/internal/models"
	"github.com/kartoza/kartoza-loudness/internal/tui"
)

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

func newLogger() *log.Logger {
	if debugMode {
		return log.New(os.Stderr, "[debug] ", log.Ltime)
	}
	return log.New(io.Discard, "", 0)
}

// signalContext is cancelled on Ctrl+C or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func requireFFmpeg(cfg *config.Config) error {
	if missing := deps.MissingRequired(cfg.FFmpegPath); len(missing) > 0 {
		return fmt.Errorf("%s not found; install ffmpeg or set %s\n\n%s",
			cfg.FFmpegPath, config.EnvFFmpegPath, deps.FormatMissing(missing))
	}
	return nil
}

// targetFlags are the flags that choose the loudness target
type targetFlags struct {
	preset    string
	target    float64
	truePeak  float64
	tolerance float64
	lra       float64
}

func (f *targetFlags) register(cmd *cobra.Command, withLRA bool) {
	cmd.Flags().StringVar(&f.preset, "preset", "", "Target preset: broadcast (-24), gaming (-16), podcast (-16)")
	cmd.Flags().Float64VarP(&f.target, "target", "t", config.DefaultTargetLUFS, "Target integrated loudness in LUFS (overrides --preset)")
	cmd.Flags().Float64Var(&f.truePeak, "true-peak", config.DefaultTruePeak, "True peak ceiling in dBTP")
	cmd.Flags().Float64Var(&f.tolerance, "tolerance", config.DefaultTolerance, "Accepted deviation from the target in LU")
	if withLRA {
		cmd.Flags().Float64Var(&f.lra, "lra", config.DefaultLRA, "Loudness range target in LU")
	}
}

// resolve applies only the flags the user actually set
func (f *targetFlags) resolve(cmd *cobra.Command, cfg *config.Config) (models.TargetSpec, error) {
	o := config.TargetOverrides{Preset: f.preset}
	if cmd.Flags().Changed("target") {
		o.Target = &f.target
	}
	if cmd.Flags().Changed("true-peak") {
		o.TruePeak = &f.truePeak
	}
	if cmd.Flags().Changed("tolerance") {
		o.Tolerance = &f.tolerance
	}
	if cmd.Flags().Lookup("lra") != nil && cmd.Flags().Changed("lra") {
		o.LRA = &f.lra
	}
	return cfg.ResolveTarget(o)
}

// normalizeFlags are shared by normalize and auto
type normalizeFlags struct {
	outputDir string
	inPlace   bool
	noBackup  bool
	dryRun    bool
	yes       bool
	confirm   bool
	all       bool
	logFile   string
	notify    bool
}

func (f *normalizeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "Directory to save normalized files")
	cmd.Flags().BoolVarP(&f.inPlace, "in-place", "i", false, "Replace original files (backup by default)")
	cmd.Flags().BoolVar(&f.noBackup, "no-backup", false, "Skip the backup when using --in-place")
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, "Show what would be done without processing files")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Proceed without confirmation prompts")
	cmd.Flags().BoolVar(&f.confirm, "confirm", false, "Ask before normalizing even when assume_yes is configured")
	cmd.Flags().BoolVar(&f.all, "all", false, "Normalize every measured file, not only out-of-spec ones")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "Normalization log path (default: normalization_log_<timestamp>.txt)")
	cmd.Flags().BoolVar(&f.notify, "notify", false, "Send a desktop notification when done")
	cmd.MarkFlagsMutuallyExclusive("output-dir", "in-place")
	cmd.MarkFlagsMutuallyExclusive("yes", "confirm")
}

func (f *normalizeFlags) output() models.OutputOptions {
	switch {
	case f.outputDir != "":
		return models.OutputOptions{Policy: models.PolicyOutputDir, OutputDir: f.outputDir}
	case f.inPlace && f.noBackup:
		return models.OutputOptions{Policy: models.PolicyInPlaceNoBackup}
	case f.inPlace:
		return models.OutputOptions{Policy: models.PolicyInPlaceBackup}
	}
	return models.OutputOptions{Policy: models.PolicySiblingSuffix}
}

// assumeYes reports whether prompts are skipped: --yes always, the
// config's assume_yes unless --confirm overrides it
func (f *normalizeFlags) assumeYes(cfg *config.Config) bool {
	if f.confirm {
		return false
	}
	return f.yes || cfg.AssumeYes
}

// confirmFuncs returns the batch gate and the per-file collision prompt
func (f *normalizeFlags) confirmFuncs(cfg *config.Config) (approve, collision models.ConfirmFunc) {
	if f.assumeYes(cfg) {
		return models.AlwaysConfirm, models.AlwaysConfirm
	}
	prompter := tui.NewPrompter()
	return prompter.Confirm, prompter.Confirm
}

func (f *normalizeFlags) warnings() {
	if f.noBackup && !f.inPlace {
		printWarning("--no-backup only applies with --in-place; ignoring it")
	}
	if f.inPlace && f.noBackup && !f.dryRun {
		printWarning("Originals will be overwritten without a backup")
	}
}
