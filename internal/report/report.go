// Package report builds, writes and parses loudness reports.
//
// A report is plain text:
//
//	=== Loudness Report ===
//	Generated: 2026-01-02 15:04:05
//	Folder: /path/to/videos
//	Target Window: -20.00 to -16.00 LUFS (target -18.00)
//	True Peak Ceiling: -1.50 dBTP
//
//	File | Integrated (LUFS) | True Peak (dBTP) | LRA (LU) | Verdict
//	intro.mp4 | -18.20 | -3.10 | 7.20 | OK
//	talk.mp4 | -30.00 | -2.00 | - | OUT OF SPEC (too quiet)
//	broken.mp4 | - | - | - | FAILED (ProbeProcessError)
//
//	=== Summary ===
//	...
//
// The header lines and the column order are fixed. Everything after the
// summary marker is informational and ignored by Parse.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kartoza/kartoza-loudness/internal/models"
)

const (
	titleLine     = "=== Loudness Report ==="
	summaryLine   = "=== Summary ==="
	columnsLine   = "File | Integrated (LUFS) | True Peak (dBTP) | LRA (LU) | Verdict"
	folderPrefix  = "Folder: "
	fieldSep      = " | "
	rowFields     = 5
	missingValue  = "-"
	failedPrefix  = "FAILED ("
	timeLayout    = "2006-01-02 15:04:05"
	fileTimestamp = "20060102_150405"
)

// Result is the outcome of probing one file, as collected by the pipeline
type Result struct {
	File        models.MediaFile
	Measurement *models.LoudnessMeasurement // nil when probing failed
	Err         error
}

// Row is one file in a report
type Row struct {
	File        string // Name relative to the report folder
	Measurement *models.LoudnessMeasurement
	Verdict     models.Verdict   // Empty when the probe failed
	FailureKind models.ErrorKind // Set when the probe failed
}

// Failed reports whether the file could not be measured
func (r Row) Failed() bool {
	return r.Measurement == nil
}

// OutOfSpec reports whether the file was measured and is outside the target
func (r Row) OutOfSpec() bool {
	return r.Measurement != nil && !r.Verdict.InSpec()
}

// Report is an ordered set of rows measured against one target
type Report struct {
	Generated time.Time
	Folder    string
	Target    models.TargetSpec
	Rows      []Row
}

// Summary holds aggregate counts for a report
type Summary struct {
	Total        int
	Analyzed     int
	InSpec       int
	TooQuiet     int
	TooLoud      int
	PeakExceeded int
	Failed       int
}

// OutOfSpec returns the number of measured files outside the target
func (s Summary) OutOfSpec() int {
	return s.TooQuiet + s.TooLoud + s.PeakExceeded
}

// Build creates a report from probe results in the given order
func Build(folder string, target models.TargetSpec, results []Result, now time.Time) *Report {
	r := &Report{
		Generated: now,
		Folder:    folder,
		Target:    target,
		Rows:      make([]Row, 0, len(results)),
	}

	for _, res := range results {
		row := Row{File: res.File.Name}
		if res.Measurement != nil && res.Err == nil {
			m := *res.Measurement
			row.Measurement = &m
			row.Verdict = target.Classify(m)
		} else {
			row.FailureKind = models.KindOf(res.Err)
			if row.FailureKind == "" {
				row.FailureKind = models.KindProbeProcessError
			}
		}
		r.Rows = append(r.Rows, row)
	}

	return r
}

// Summary computes the aggregate counts
func (r *Report) Summary() Summary {
	s := Summary{Total: len(r.Rows)}
	for _, row := range r.Rows {
		if row.Failed() {
			s.Failed++
			continue
		}
		s.Analyzed++
		switch row.Verdict {
		case models.VerdictOK:
			s.InSpec++
		case models.VerdictTooQuiet:
			s.TooQuiet++
		case models.VerdictTooLoud:
			s.TooLoud++
		case models.VerdictPeakExceeded:
			s.PeakExceeded++
		}
	}
	return s
}

// OutOfSpecRows returns the measured rows outside the target
func (r *Report) OutOfSpecRows() []Row {
	var rows []Row
	for _, row := range r.Rows {
		if row.OutOfSpec() {
			rows = append(rows, row)
		}
	}
	return rows
}

// MeasuredRows returns every row with a measurement
func (r *Report) MeasuredRows() []Row {
	var rows []Row
	for _, row := range r.Rows {
		if !row.Failed() {
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteTo writes the report text
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder

	sb.WriteString(titleLine + "\n")
	sb.WriteString("Generated: " + r.Generated.Format(timeLayout) + "\n")
	sb.WriteString(folderPrefix + r.Folder + "\n")
	sb.WriteString(formatTargetWindow(r.Target) + "\n")
	sb.WriteString(fmt.Sprintf("True Peak Ceiling: %.2f dBTP\n", r.Target.TruePeakCeiling))
	sb.WriteString("\n")

	sb.WriteString(columnsLine + "\n")
	for _, row := range r.Rows {
		sb.WriteString(formatRow(row) + "\n")
	}

	s := r.Summary()
	sb.WriteString("\n" + summaryLine + "\n")
	sb.WriteString(fmt.Sprintf("Total files: %d\n", s.Total))
	sb.WriteString(fmt.Sprintf("Analyzed: %d\n", s.Analyzed))
	sb.WriteString(fmt.Sprintf("Failed: %d\n", s.Failed))
	sb.WriteString(fmt.Sprintf("Within spec: %d\n", s.InSpec))
	sb.WriteString(fmt.Sprintf("Out of spec: %d\n", s.OutOfSpec()))
	sb.WriteString(fmt.Sprintf("  - Too quiet (< %.2f LUFS): %d\n", r.Target.MinLUFS, s.TooQuiet))
	sb.WriteString(fmt.Sprintf("  - Too loud (> %.2f LUFS): %d\n", r.Target.MaxLUFS, s.TooLoud))
	sb.WriteString(fmt.Sprintf("  - Peak above %.2f dBTP: %d\n", r.Target.TruePeakCeiling, s.PeakExceeded))

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// String returns the report text
func (r *Report) String() string {
	var sb strings.Builder
	_, _ = r.WriteTo(&sb)
	return sb.String()
}

// Save writes the report to path
func (r *Report) Save(path string) error {
	return os.WriteFile(path, []byte(r.String()), 0644)
}

// DefaultFileName returns the timestamped report name for t
func DefaultFileName(t time.Time) string {
	return "loudness_report_" + t.Format(fileTimestamp) + ".txt"
}

func formatTargetWindow(t models.TargetSpec) string {
	s := fmt.Sprintf("Target Window: %.2f to %.2f LUFS (target %.2f", t.MinLUFS, t.MaxLUFS, t.TargetLUFS)
	if t.Name != "" {
		s += ", preset " + t.Name
	}
	return s + ")"
}

func formatRow(row Row) string {
	if row.Failed() {
		return strings.Join([]string{
			row.File, missingValue, missingValue, missingValue,
			failedPrefix + string(row.FailureKind) + ")",
		}, fieldSep)
	}

	m := row.Measurement
	lra := missingValue
	if m.LRA != nil {
		lra = fmt.Sprintf("%.2f", *m.LRA)
	}
	return strings.Join([]string{
		row.File,
		fmt.Sprintf("%.2f", m.IntegratedLUFS),
		fmt.Sprintf("%.2f", m.TruePeakDBTP),
		lra,
		string(row.Verdict),
	}, fieldSep)
}
