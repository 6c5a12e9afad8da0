package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kartoza/kartoza-loudness/internal/audio"
	"github.com/kartoza/kartoza-loudness/internal/models"
	"github.com/kartoza/kartoza-loudness/internal/report"
)

// Job is one file selected for normalization
type Job struct {
	File models.MediaFile
	Row  report.Row
	Plan models.GainPlan
	Err  error // Set when the job cannot run: unresolved file or no measurement
}

// Batch collects the outcome of a normalization run
type Batch struct {
	Jobs     []Job
	Outcomes []audio.Outcome
	Aborted  bool // The run was declined at the approval prompt
}

func (b *Batch) count(status audio.OutcomeStatus) int {
	n := 0
	for _, o := range b.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Succeeded returns the number of files normalized
func (b *Batch) Succeeded() int { return b.count(audio.StatusSucceeded) }

// Failed returns the number of files that could not be normalized
func (b *Batch) Failed() int { return b.count(audio.StatusFailed) }

// Skipped returns the number of files left alone
func (b *Batch) Skipped() int { return b.count(audio.StatusSkipped) }

// Planned returns the number of dry-run outcomes
func (b *Batch) Planned() int { return b.count(audio.StatusDryRun) }

// Failures returns the failed outcomes in processing order
func (b *Batch) Failures() []audio.Outcome {
	var out []audio.Outcome
	for _, o := range b.Outcomes {
		if o.Status == audio.StatusFailed {
			out = append(out, o)
		}
	}
	return out
}

// Plan selects the rows of rep to normalize and computes a gain plan for
// each. Rows are selected by their recorded verdict; with ForceAll every
// measured row is selected and unmeasured rows become skipped jobs.
// reportPath, when set, is used as a fallback location for files.
func (p *Pipeline) Plan(rep *report.Report, reportPath string) []Job {
	var jobs []Job
	for _, row := range rep.Rows {
		if !p.opts.ForceAll && !row.OutOfSpec() {
			continue
		}

		path, err := resolveFile(rep.Folder, reportPath, row.File)
		job := Job{File: models.NewMediaFile(path), Row: row}

		switch {
		case row.Failed():
			job.Err = models.NewError(row.FailureKind, path, errors.New("file was not measured"))
		case err != nil:
			job.Err = models.NewError(models.KindNormalizeProcessError, path, err)
			job.Plan = audio.Plan(*row.Measurement, p.opts.Target)
		default:
			job.Plan = audio.Plan(*row.Measurement, p.opts.Target)
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// Execute normalizes the planned jobs one at a time. Outside dry-run the
// Approve gate is consulted once before the first file is touched.
func (p *Pipeline) Execute(ctx context.Context, jobs []Job) *Batch {
	batch := &Batch{Jobs: jobs}
	if p.onPlan != nil {
		p.onPlan(jobs)
	}
	if len(jobs) == 0 {
		return batch
	}

	if !p.opts.DryRun && !p.opts.Approve(p.approvalPrompt(len(jobs))) {
		p.opts.Logger.Printf("normalize: declined by user")
		batch.Aborted = true
		return batch
	}

	normalizer := p.normalizer()
	for i, job := range jobs {
		p.reportProgress(StageNormalizing, i+1, len(jobs), job.File, false, nil)

		var out audio.Outcome
		switch {
		case ctx.Err() != nil:
			out = audio.Outcome{File: job.File, Plan: job.Plan, Status: audio.StatusSkipped,
				Err: fmt.Errorf("interrupted: %w", ctx.Err())}
		case job.Row.Failed():
			out = audio.Outcome{File: job.File, Status: audio.StatusSkipped, Err: job.Err}
		case job.Err != nil:
			out = audio.Outcome{File: job.File, Plan: job.Plan, Status: audio.StatusFailed, Err: job.Err}
		default:
			out = normalizer.Normalize(ctx, job.File, job.Plan)
		}

		batch.Outcomes = append(batch.Outcomes, out)
		p.reportProgress(StageNormalizing, i+1, len(jobs), job.File, true, out.Err)
	}
	return batch
}

// Normalize parses the report at reportPath and normalizes its
// out-of-spec files. An unreadable or malformed report is a run-level error.
func (p *Pipeline) Normalize(ctx context.Context, reportPath string) (*report.Report, *Batch, error) {
	rep, err := report.ParseFile(reportPath)
	if err != nil {
		return nil, nil, err
	}
	return rep, p.Execute(ctx, p.Plan(rep, reportPath)), nil
}

// Auto analyzes dir and normalizes the out-of-spec files from the
// in-memory report. No report file is written.
func (p *Pipeline) Auto(ctx context.Context, dir string) (*report.Report, *Batch, error) {
	rep, err := p.Check(ctx, dir)
	if err != nil {
		return nil, nil, err
	}
	return rep, p.Execute(ctx, p.Plan(rep, "")), nil
}

// resolveFile finds name in the report folder, the working directory or
// next to the report file, in that order
func resolveFile(folder, reportPath, name string) (string, error) {
	var candidates []string
	if folder != "" {
		candidates = append(candidates, filepath.Join(folder, name))
	}
	candidates = append(candidates, name)
	if reportPath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(reportPath), name))
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.Mode().IsRegular() {
			return c, nil
		}
	}
	return candidates[0], fmt.Errorf("source file %s not found", name)
}
