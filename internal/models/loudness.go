package models

import (
	"fmt"
	"math"
)

// LoudnormStats contains the measured audio levels from ffmpeg loudnorm analysis
type LoudnormStats struct {
	InputI       string `json:"input_i"`
	InputTP      string `json:"input_tp"`
	InputLRA     string `json:"input_lra"`
	InputThresh  string `json:"input_thresh"`
	OutputI      string `json:"output_i"`
	OutputTP     string `json:"output_tp"`
	OutputLRA    string `json:"output_lra"`
	OutputThresh string `json:"output_thresh"`
	TargetOffset string `json:"target_offset"`
}

// LoudnessMeasurement is the result of probing one file.
// Integrated loudness and true peak are always set; LRA and sample peak are optional.
type LoudnessMeasurement struct {
	IntegratedLUFS float64  `json:"integrated_lufs"`
	TruePeakDBTP   float64  `json:"true_peak_dbtp"`
	LRA            *float64 `json:"lra,omitempty"`
	SamplePeakDB   *float64 `json:"sample_peak_db,omitempty"`

	// Raw first-pass values, present only when measured in this run.
	// They allow a second loudnorm pass in linear mode.
	Stats *LoudnormStats `json:"-"`
}

// HasFirstPass reports whether the raw loudnorm statistics needed for a
// linear two-pass normalization are available
func (m LoudnessMeasurement) HasFirstPass() bool {
	return m.Stats != nil && m.LRA != nil &&
		m.Stats.InputThresh != "" && m.Stats.TargetOffset != ""
}

// Ranges accepted by ffmpeg's loudnorm filter
const (
	MinTargetLUFS = -70.0
	MaxTargetLUFS = -5.0
	MinTruePeak   = -9.0
	MaxTruePeak   = 0.0
	MinLRA        = 1.0
	MaxLRA        = 50.0
)

// TargetSpec is the loudness target for a run
type TargetSpec struct {
	Name            string  `json:"name,omitempty"` // Preset name, empty for custom targets
	TargetLUFS      float64 `json:"target_lufs"`
	MinLUFS         float64 `json:"min_lufs"`
	MaxLUFS         float64 `json:"max_lufs"`
	TruePeakCeiling float64 `json:"true_peak_ceiling"`
	LRA             float64 `json:"lra"`
}

// NewTargetSpec builds a target with a symmetric window of ±tolerance LU
func NewTargetSpec(target, tolerance, truePeak, lra float64) TargetSpec {
	tolerance = math.Abs(tolerance)
	return TargetSpec{
		TargetLUFS:      target,
		MinLUFS:         target - tolerance,
		MaxLUFS:         target + tolerance,
		TruePeakCeiling: truePeak,
		LRA:             lra,
	}
}

// Validate checks the target for internal consistency
func (t TargetSpec) Validate() error {
	for _, v := range []float64{t.TargetLUFS, t.MinLUFS, t.MaxLUFS, t.TruePeakCeiling, t.LRA} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("target values must be finite")
		}
	}
	if t.MinLUFS > t.MaxLUFS {
		return fmt.Errorf("invalid target window: %.2f to %.2f LUFS", t.MinLUFS, t.MaxLUFS)
	}
	if t.TargetLUFS < MinTargetLUFS || t.TargetLUFS > MaxTargetLUFS {
		return fmt.Errorf("target must be between %.0f and %.0f LUFS, got %.2f", MinTargetLUFS, MaxTargetLUFS, t.TargetLUFS)
	}
	if t.TruePeakCeiling > MaxTruePeak {
		return fmt.Errorf("true peak ceiling must be at or below 0 dBTP, got %.2f", t.TruePeakCeiling)
	}
	if t.TruePeakCeiling < MinTruePeak {
		return fmt.Errorf("true peak ceiling must be at or above %.0f dBTP, got %.2f", MinTruePeak, t.TruePeakCeiling)
	}
	if t.LRA < MinLRA || t.LRA > MaxLRA {
		return fmt.Errorf("loudness range must be between %.0f and %.0f LU, got %.2f", MinLRA, MaxLRA, t.LRA)
	}
	return nil
}

// Verdict is the compliance classification of one file
type Verdict string

const (
	VerdictOK           Verdict = "OK"
	VerdictTooQuiet     Verdict = "OUT OF SPEC (too quiet)"
	VerdictTooLoud      Verdict = "OUT OF SPEC (too loud)"
	VerdictPeakExceeded Verdict = "OUT OF SPEC (peak exceeded)"
)

// InSpec reports whether the verdict is OK
func (v Verdict) InSpec() bool {
	return v == VerdictOK
}

// Reason returns the short out-of-spec reason, empty for OK
func (v Verdict) Reason() string {
	switch v {
	case VerdictTooQuiet:
		return "too quiet"
	case VerdictTooLoud:
		return "too loud"
	case VerdictPeakExceeded:
		return "peak exceeded"
	}
	return ""
}

// Classify computes the verdict for a measurement. Loudness is checked before peak.
func (t TargetSpec) Classify(m LoudnessMeasurement) Verdict {
	switch {
	case m.IntegratedLUFS < t.MinLUFS:
		return VerdictTooQuiet
	case m.IntegratedLUFS > t.MaxLUFS:
		return VerdictTooLoud
	case m.TruePeakDBTP > t.TruePeakCeiling:
		return VerdictPeakExceeded
	}
	return VerdictOK
}
