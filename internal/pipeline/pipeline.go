// Package pipeline composes discovery, probing, reporting and
// normalization into the check, normalize and auto flows.
package pipeline

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/kartoza/kartoza-loudness/internal/audio"
	"github.com/kartoza/kartoza-loudness/internal/ffmpeg"
	"github.com/kartoza/kartoza-loudness/internal/models"
	"github.com/kartoza/kartoza-loudness/internal/report"
)

// Stage identifies the part of a run being reported
type Stage int

const (
	StageProbing Stage = iota
	StageNormalizing
)

// String returns the stage label
func (s Stage) String() string {
	if s == StageNormalizing {
		return "Normalizing"
	}
	return "Analyzing"
}

// ProgressCallback is called before each file is processed (done=false)
// and after it finishes (done=true). index is 1-based.
type ProgressCallback func(stage Stage, index, total int, file models.MediaFile, done bool, err error)

// Options is the frozen configuration of one run
type Options struct {
	Target           models.TargetSpec
	Output           models.OutputOptions
	DryRun           bool
	ForceAll         bool // Normalize every measured file, not only out-of-spec ones
	ProbeTimeout     time.Duration
	NormalizeTimeout time.Duration
	FFmpegPath       string
	AudioCodec       string

	// Approve gates the whole batch before any file is modified.
	// Confirm is asked about individual destination collisions.
	Approve models.ConfirmFunc
	Confirm models.ConfirmFunc

	Logger *log.Logger
}

// PlanCallback receives the selected jobs before the approval gate
type PlanCallback func(jobs []Job)

// ReportCallback receives each report as soon as it is built
type ReportCallback func(rep *report.Report)

// Pipeline runs the orchestration flows against an ffmpeg runner
type Pipeline struct {
	runner     ffmpeg.Runner
	opts       Options
	onProgress ProgressCallback
	onPlan     PlanCallback
	onReport   ReportCallback
	now        func() time.Time
}

// New creates a pipeline
func New(runner ffmpeg.Runner, opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Approve == nil {
		opts.Approve = models.AlwaysConfirm
	}
	if opts.Confirm == nil {
		opts.Confirm = models.AlwaysConfirm
	}
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	return &Pipeline{
		runner: runner,
		opts:   opts,
		now:    time.Now,
	}
}

// Options returns the run configuration
func (p *Pipeline) Options() Options {
	return p.opts
}

// Now returns the pipeline clock reading
func (p *Pipeline) Now() time.Time {
	return p.now()
}

// SetProgressCallback sets the callback for per-file progress
func (p *Pipeline) SetProgressCallback(cb ProgressCallback) {
	p.onProgress = cb
}

// SetPlanCallback sets the callback that sees the jobs of a batch
func (p *Pipeline) SetPlanCallback(cb PlanCallback) {
	p.onPlan = cb
}

// SetReportCallback sets the callback that sees built reports
func (p *Pipeline) SetReportCallback(cb ReportCallback) {
	p.onReport = cb
}

func (p *Pipeline) reportProgress(stage Stage, index, total int, file models.MediaFile, done bool, err error) {
	if p.onProgress != nil {
		p.onProgress(stage, index, total, file, done, err)
	}
}

func (p *Pipeline) prober() *audio.Prober {
	pr := audio.NewProber(p.runner, p.opts.Target, p.opts.ProbeTimeout)
	pr.SetLogger(p.opts.Logger)
	return pr
}

func (p *Pipeline) normalizer() *audio.Normalizer {
	n := audio.NewNormalizer(p.runner, audio.NormalizerOptions{
		FFmpegPath: p.opts.FFmpegPath,
		Output:     p.opts.Output,
		Timeout:    p.opts.NormalizeTimeout,
		AudioCodec: p.opts.AudioCodec,
		DryRun:     p.opts.DryRun,
		Confirm:    p.opts.Confirm,
	})
	n.SetLogger(p.opts.Logger)
	return n
}

// approvalPrompt describes the batch about to be processed
func (p *Pipeline) approvalPrompt(count int) string {
	return fmt.Sprintf("Normalize %d file(s) to %.1f LUFS (%s)?",
		count, p.opts.Target.TargetLUFS, p.opts.Output.Policy)
}
