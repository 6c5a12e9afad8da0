package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/kartoza/kartoza-loudness/internal/ffmpeg"
	"github.com/kartoza/kartoza-loudness/internal/models"
)

// Naming suffixes for generated files
const (
	NormalizedSuffix = "_normalized"
	BackupSuffix     = "_backup"
	TempSuffix       = "_temp"
)

// OutcomeStatus is the result class of one normalization
type OutcomeStatus int

const (
	StatusSucceeded OutcomeStatus = iota
	StatusFailed
	StatusSkipped
	StatusDryRun
)

// String returns the status label
func (s OutcomeStatus) String() string {
	switch s {
	case StatusFailed:
		return "FAILED"
	case StatusSkipped:
		return "SKIPPED"
	case StatusDryRun:
		return "DRY RUN"
	default:
		return "OK"
	}
}

// Outcome describes what happened to one file
type Outcome struct {
	File        models.MediaFile
	Plan        models.GainPlan
	Status      OutcomeStatus
	Destination string
	BackupPath  string // Set when a backup was written
	Command     string // The ffmpeg invocation (performed or, in dry-run, planned)
	OutputLUFS  *float64
	Err         error
}

// NormalizerOptions configures a Normalizer
type NormalizerOptions struct {
	FFmpegPath string // Used for display only
	Output     models.OutputOptions
	Timeout    time.Duration
	AudioCodec string
	DryRun     bool
	Confirm    models.ConfirmFunc // Consulted for destination collisions
}

// Normalizer applies gain plans with ffmpeg, re-encoding audio and copying
// video
type Normalizer struct {
	runner ffmpeg.Runner
	opts   NormalizerOptions
	logger *log.Logger
}

// NewNormalizer creates a normalizer
func NewNormalizer(runner ffmpeg.Runner, opts NormalizerOptions) *Normalizer {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.Confirm == nil {
		opts.Confirm = models.AlwaysConfirm
	}
	return &Normalizer{
		runner: runner,
		opts:   opts,
		logger: log.New(io.Discard, "", 0),
	}
}

// SetLogger sets the debug logger
func (n *Normalizer) SetLogger(l *log.Logger) {
	if l != nil {
		n.logger = l
	}
}

// Destination returns where the normalized version of file is written
func (n *Normalizer) Destination(file models.MediaFile) string {
	switch n.opts.Output.Policy {
	case models.PolicyOutputDir:
		return filepath.Join(n.opts.Output.OutputDir, file.Name)
	case models.PolicyInPlaceBackup, models.PolicyInPlaceNoBackup:
		return file.Path
	default:
		return filepath.Join(file.Dir(), file.Stem+NormalizedSuffix+file.Ext)
	}
}

// BackupPath returns the backup location used for in-place normalization
func BackupPath(file models.MediaFile) string {
	return filepath.Join(file.Dir(), file.Stem+BackupSuffix+file.Ext)
}

// TempPath returns the intermediate output used for in-place normalization
func TempPath(file models.MediaFile) string {
	return filepath.Join(file.Dir(), file.Stem+TempSuffix+file.Ext)
}

// NormalizeArgs builds the processing invocation
func NormalizeArgs(input, filter, output, audioCodec string) []string {
	args := []string{
		"-hide_banner",
		"-nostats",
		"-y",
		"-i", input,
		"-af", filter,
		"-c:v", "copy",
	}
	if audioCodec != "" {
		args = append(args, "-c:a", audioCodec)
	}
	return append(args, output)
}

// Normalize processes one file according to plan. It never returns an
// error directly; failures are recorded in the Outcome so a batch can
// continue with the next file.
func (n *Normalizer) Normalize(ctx context.Context, file models.MediaFile, plan models.GainPlan) Outcome {
	out := Outcome{
		File:        file,
		Plan:        plan,
		Destination: n.Destination(file),
	}

	policy := n.opts.Output.Policy
	writeTarget := out.Destination
	if policy.InPlace() {
		writeTarget = TempPath(file)
	}

	args := NormalizeArgs(file.Path, plan.Filter, writeTarget, n.opts.AudioCodec)
	out.Command = ffmpeg.CommandLine(n.opts.FFmpegPath, args)

	if !policy.InPlace() && samePath(out.Destination, file.Path) {
		return n.fail(out, models.KindDestinationCollision, fmt.Errorf("destination is the input file"))
	}

	if n.opts.DryRun {
		out.Status = StatusDryRun
		return out
	}

	if !policy.InPlace() && fileExists(out.Destination) {
		if !n.opts.Confirm(fmt.Sprintf("%s already exists. Overwrite?", out.Destination)) {
			return n.skip(out, fmt.Errorf("destination %s exists", out.Destination))
		}
	}

	// The temp file is overwritten by ffmpeg and removed on failure
	if policy.InPlace() && fileExists(writeTarget) {
		if !n.opts.Confirm(fmt.Sprintf("%s already exists and would be replaced. Overwrite?", writeTarget)) {
			return n.skip(out, fmt.Errorf("temporary file %s exists", writeTarget))
		}
	}

	if policy == models.PolicyOutputDir {
		if err := os.MkdirAll(n.opts.Output.OutputDir, 0755); err != nil {
			return n.fail(out, models.KindNormalizeProcessError, fmt.Errorf("failed to create output directory: %w", err))
		}
	}

	if policy == models.PolicyInPlaceBackup {
		backup := BackupPath(file)
		if fileExists(backup) {
			if !n.opts.Confirm(fmt.Sprintf("Backup %s already exists. Overwrite?", backup)) {
				return n.skip(out, fmt.Errorf("backup %s exists", backup))
			}
		}
		if err := createBackup(file.Path, backup); err != nil {
			return n.fail(out, models.KindNormalizeProcessError, fmt.Errorf("failed to create backup, original left untouched: %w", err))
		}
		out.BackupPath = backup
	}

	n.logger.Printf("normalize: %s", out.Command)
	res, err := n.runner.Run(ctx, args, n.opts.Timeout)
	if err != nil {
		removeQuietly(writeTarget)
		if errors.Is(err, ffmpeg.ErrTimeout) {
			return n.fail(out, models.KindNormalizeTimeout, err)
		}
		return n.fail(out, models.KindNormalizeProcessError, err)
	}
	if res.ExitCode != 0 {
		removeQuietly(writeTarget)
		return n.fail(out, models.KindNormalizeProcessError,
			fmt.Errorf("ffmpeg exited with code %d: %s", res.ExitCode, ffmpeg.LastLines(res.Stderr, 3)))
	}
	if !fileExists(writeTarget) {
		return n.fail(out, models.KindNormalizeProcessError, fmt.Errorf("ffmpeg produced no output file"))
	}

	if policy.InPlace() {
		// Rename is atomic on the same filesystem: the original is either
		// fully replaced or untouched.
		if err := os.Rename(writeTarget, file.Path); err != nil {
			removeQuietly(writeTarget)
			return n.fail(out, models.KindNormalizeProcessError, fmt.Errorf("failed to replace original: %w", err))
		}
	}

	if v, ok := ParseOutputIntegrated(res.Output()); ok {
		out.OutputLUFS = &v
	}

	out.Status = StatusSucceeded
	return out
}

func (n *Normalizer) fail(out Outcome, kind models.ErrorKind, err error) Outcome {
	out.Status = StatusFailed
	out.Err = models.NewError(kind, out.File.Path, err)
	n.logger.Printf("normalize: %v", out.Err)
	return out
}

func (n *Normalizer) skip(out Outcome, err error) Outcome {
	out.Status = StatusSkipped
	out.Err = models.NewError(models.KindDestinationCollision, out.File.Path, err)
	return out
}
