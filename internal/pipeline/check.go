package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kartoza/kartoza-loudness/internal/media"
	"github.com/kartoza/kartoza-loudness/internal/report"
)

// Check discovers the media files in dir, probes each one and builds a
// report. Per-file probe failures are recorded as failed rows; only an
// invalid directory or a cancelled context returns an error.
func (p *Pipeline) Check(ctx context.Context, dir string) (*report.Report, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}

	files, err := media.Discover(abs)
	if err != nil {
		return nil, err
	}
	p.opts.Logger.Printf("check: %d media file(s) in %s", len(files), abs)

	prober := p.prober()
	results := make([]report.Result, 0, len(files))
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis interrupted: %w", err)
		}

		p.reportProgress(StageProbing, i+1, len(files), file, false, nil)
		m, err := prober.AnalyzeLoudness(ctx, file)
		res := report.Result{File: file, Err: err}
		if err == nil {
			res.Measurement = &m
		}
		results = append(results, res)
		p.reportProgress(StageProbing, i+1, len(files), file, true, err)
	}

	rep := report.Build(abs, p.opts.Target, results, p.now())
	if p.onReport != nil {
		p.onReport(rep)
	}
	return rep, nil
}
