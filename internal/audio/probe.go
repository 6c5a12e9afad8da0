// Package audio measures loudness with ffmpeg, plans normalization gain
// and applies it.
package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kartoza/kartoza-loudness/internal/ffmpeg"
	"github.com/kartoza/kartoza-loudness/internal/models"
)

var (
	loudnormJSONRe = regexp.MustCompile(`(?s)\{[^{}]*"input_i"[^{}]*\}`)
	maxVolumeRe    = regexp.MustCompile(`max_volume:\s*(-?(?:inf|[\d.]+))\s*dB`)
	outputIRe      = regexp.MustCompile(`(?i)Output Integrated:\s+(-?[\d.]+)\s+LUFS`)
)

// Prober measures the loudness of media files
type Prober struct {
	runner  ffmpeg.Runner
	target  models.TargetSpec
	timeout time.Duration
	logger  *log.Logger
}

// NewProber creates a prober. The target only seeds loudnorm's first pass;
// the measured input values do not depend on it.
func NewProber(runner ffmpeg.Runner, target models.TargetSpec, timeout time.Duration) *Prober {
	return &Prober{
		runner:  runner,
		target:  target,
		timeout: timeout,
		logger:  log.New(io.Discard, "", 0),
	}
}

// SetLogger sets the debug logger
func (p *Prober) SetLogger(l *log.Logger) {
	if l != nil {
		p.logger = l
	}
}

// AnalysisArgs builds the measurement invocation for path
func AnalysisArgs(path string, target models.TargetSpec) []string {
	filter := fmt.Sprintf("volumedetect,loudnorm=I=%.2f:TP=%.2f:LRA=%.2f:print_format=json",
		target.TargetLUFS,
		target.TruePeakCeiling,
		target.LRA,
	)
	return []string{
		"-hide_banner",
		"-nostats",
		"-i", path,
		"-vn",
		"-af", filter,
		"-f", "null",
		"-",
	}
}

// AnalyzeLoudness runs the loudnorm measurement pass on one file
func (p *Prober) AnalyzeLoudness(ctx context.Context, file models.MediaFile) (models.LoudnessMeasurement, error) {
	if _, err := os.Stat(file.Path); err != nil {
		return models.LoudnessMeasurement{}, models.NewError(models.KindProbeProcessError, file.Path, err)
	}

	args := AnalysisArgs(file.Path, p.target)
	p.logger.Printf("probe: %s", ffmpeg.CommandLine("ffmpeg", args))

	res, err := p.runner.Run(ctx, args, p.timeout)
	if err != nil {
		if errors.Is(err, ffmpeg.ErrTimeout) {
			return models.LoudnessMeasurement{}, models.NewError(models.KindProbeTimeout, file.Path, err)
		}
		return models.LoudnessMeasurement{}, models.NewError(models.KindProbeProcessError, file.Path, err)
	}
	if res.ExitCode != 0 {
		return models.LoudnessMeasurement{}, models.NewError(models.KindProbeProcessError, file.Path,
			fmt.Errorf("ffmpeg exited with code %d: %s", res.ExitCode, ffmpeg.LastLines(res.Stderr, 3)))
	}

	m, err := ParseLoudnormOutput(res.Output())
	if err != nil {
		return models.LoudnessMeasurement{}, models.NewError(models.KindProbeParseError, file.Path, err)
	}
	p.logger.Printf("probe: %s I=%.2f TP=%.2f", file.Name, m.IntegratedLUFS, m.TruePeakDBTP)
	return m, nil
}

// ParseLoudnormOutput extracts a measurement from ffmpeg's diagnostic output.
// The last loudnorm JSON block is used.
func ParseLoudnormOutput(output string) (models.LoudnessMeasurement, error) {
	matches := loudnormJSONRe.FindAllString(output, -1)
	if len(matches) == 0 {
		return models.LoudnessMeasurement{}, fmt.Errorf("no loudnorm stats found in output")
	}

	jsonStr := matches[len(matches)-1]

	var stats models.LoudnormStats
	if err := json.Unmarshal([]byte(jsonStr), &stats); err != nil {
		// Try to parse individual values using regex
		stats = extractLoudnormValues(jsonStr)
	}

	integrated, err := parseFinite(stats.InputI)
	if err != nil {
		return models.LoudnessMeasurement{}, fmt.Errorf("input_i: %w", err)
	}
	truePeak, err := parseFinite(stats.InputTP)
	if err != nil {
		return models.LoudnessMeasurement{}, fmt.Errorf("input_tp: %w", err)
	}

	m := models.LoudnessMeasurement{
		IntegratedLUFS: integrated,
		TruePeakDBTP:   truePeak,
		Stats:          &stats,
	}

	// Some media has no measurable range
	if lra, err := parseFinite(stats.InputLRA); err == nil {
		m.LRA = &lra
	}

	if mv := maxVolumeRe.FindAllStringSubmatch(output, -1); len(mv) > 0 {
		if peak, err := parseFinite(mv[len(mv)-1][1]); err == nil {
			m.SamplePeakDB = &peak
		}
	}

	return m, nil
}

// ParseOutputIntegrated returns the integrated loudness reported by a
// loudnorm summary after normalization, if present
func ParseOutputIntegrated(output string) (float64, bool) {
	m := outputIRe.FindStringSubmatch(output)
	if len(m) < 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// extractLoudnormValues extracts values from ffmpeg output using regex
func extractLoudnormValues(output string) models.LoudnormStats {
	stats := models.LoudnormStats{}

	patterns := map[string]*string{
		`"input_i"\s*:\s*"([^"]+)"`:       &stats.InputI,
		`"input_tp"\s*:\s*"([^"]+)"`:      &stats.InputTP,
		`"input_lra"\s*:\s*"([^"]+)"`:     &stats.InputLRA,
		`"input_thresh"\s*:\s*"([^"]+)"`:  &stats.InputThresh,
		`"output_i"\s*:\s*"([^"]+)"`:      &stats.OutputI,
		`"output_tp"\s*:\s*"([^"]+)"`:     &stats.OutputTP,
		`"output_lra"\s*:\s*"([^"]+)"`:    &stats.OutputLRA,
		`"output_thresh"\s*:\s*"([^"]+)"`: &stats.OutputThresh,
		`"target_offset"\s*:\s*"([^"]+)"`: &stats.TargetOffset,
	}

	for pattern, target := range patterns {
		re := regexp.MustCompile(pattern)
		if matches := re.FindStringSubmatch(output); len(matches) > 1 {
			*target = matches[1]
		}
	}

	return stats
}

func parseFinite(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("missing value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
