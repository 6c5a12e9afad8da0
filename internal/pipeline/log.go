package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kartoza/kartoza-loudness/internal/audio"
	"github.com/kartoza/kartoza-loudness/internal/models"
)

// DefaultLogName returns the timestamped normalization log name for t
func DefaultLogName(t time.Time) string {
	return "normalization_log_" + t.Format("20060102_150405") + ".txt"
}

// WriteLog writes a detailed record of the batch. source names the report
// file or directory the run started from.
func (p *Pipeline) WriteLog(w io.Writer, source string, b *Batch) error {
	var sb strings.Builder
	t := p.opts.Target

	sb.WriteString("=== Loudness Normalization Log ===\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n", p.now().Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Source: %s\n", source))
	sb.WriteString(fmt.Sprintf("Target: %.2f LUFS\n", t.TargetLUFS))
	sb.WriteString(fmt.Sprintf("True Peak Ceiling: %.2f dBTP\n", t.TruePeakCeiling))
	sb.WriteString(fmt.Sprintf("LRA: %.2f LU\n", t.LRA))
	sb.WriteString(fmt.Sprintf("Mode: %s\n", p.opts.Output.Policy))
	if p.opts.Output.Policy == models.PolicyOutputDir {
		sb.WriteString(fmt.Sprintf("Output directory: %s\n", p.opts.Output.OutputDir))
	}

	sb.WriteString(fmt.Sprintf("\nFiles processed: %d\n", len(b.Outcomes)))
	sb.WriteString(fmt.Sprintf("Succeeded: %d\n", b.Succeeded()))
	sb.WriteString(fmt.Sprintf("Failed: %d\n", b.Failed()))
	sb.WriteString(fmt.Sprintf("Skipped: %d\n", b.Skipped()))

	sb.WriteString("\n=== Detailed Results ===\n")
	for _, o := range b.Outcomes {
		writeOutcome(&sb, o)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// SaveLog writes the log to path, creating parent directories
func (p *Pipeline) SaveLog(path, source string, b *Batch) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	if err := p.WriteLog(f, source, b); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write log: %w", err)
	}
	return f.Close()
}

func writeOutcome(sb *strings.Builder, o audio.Outcome) {
	sb.WriteString(fmt.Sprintf("\nFile: %s\n", o.File.Name))
	if o.Plan.Filter != "" {
		sb.WriteString(fmt.Sprintf("  Original: %.2f LUFS, %.2f dBTP\n",
			o.Plan.Measured.IntegratedLUFS, o.Plan.Measured.TruePeakDBTP))
		if o.Plan.Capped {
			sb.WriteString(fmt.Sprintf("  Gain: %+.2f dB (capped from %+.2f dB by the peak ceiling)\n",
				o.Plan.GainDB, o.Plan.RequestedGainDB))
		} else {
			sb.WriteString(fmt.Sprintf("  Gain: %+.2f dB\n", o.Plan.GainDB))
		}
		sb.WriteString(fmt.Sprintf("  Filter: %s\n", o.Plan.Filter))
	}
	sb.WriteString(fmt.Sprintf("  Status: %s\n", o.Status))
	if o.Destination != "" {
		sb.WriteString(fmt.Sprintf("  Destination: %s\n", o.Destination))
	}
	if o.BackupPath != "" {
		sb.WriteString(fmt.Sprintf("  Backup: %s\n", o.BackupPath))
	}
	if o.OutputLUFS != nil {
		sb.WriteString(fmt.Sprintf("  Output: %.2f LUFS\n", *o.OutputLUFS))
	}
	if o.Err != nil {
		if kind := models.KindOf(o.Err); kind != "" {
			sb.WriteString(fmt.Sprintf("  Error kind: %s\n", kind))
		}
		sb.WriteString(fmt.Sprintf("  Error: %v\n", o.Err))
	}
}
