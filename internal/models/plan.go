package models

// FilterMode selects how a gain plan is rendered into an ffmpeg filter
type FilterMode string

const (
	// FilterLinearGain applies a fixed gain followed by a peak limiter
	FilterLinearGain FilterMode = "volume"
	// FilterTwoPass runs loudnorm in linear mode with first-pass measurements
	FilterTwoPass FilterMode = "loudnorm"
)

// GainPlan holds the normalization parameters for one file
type GainPlan struct {
	Measured        LoudnessMeasurement
	Target          TargetSpec
	RequestedGainDB float64 // target - measured integrated loudness
	GainDB          float64 // Gain actually applied after peak capping
	Capped          bool
	ProjectedPeak   float64 // Measured true peak + GainDB
	Mode            FilterMode
	Filter          string // Rendered -af argument
}

// OutputPolicy decides where normalized files are written
type OutputPolicy int

const (
	PolicySiblingSuffix OutputPolicy = iota
	PolicyOutputDir
	PolicyInPlaceBackup
	PolicyInPlaceNoBackup
)

// String returns a human-readable description of the policy
func (p OutputPolicy) String() string {
	switch p {
	case PolicyOutputDir:
		return "output directory"
	case PolicyInPlaceBackup:
		return "in-place (with backup)"
	case PolicyInPlaceNoBackup:
		return "in-place (NO BACKUP)"
	default:
		return "sibling with _normalized suffix"
	}
}

// InPlace reports whether the policy overwrites originals
func (p OutputPolicy) InPlace() bool {
	return p == PolicyInPlaceBackup || p == PolicyInPlaceNoBackup
}

// OutputOptions is the output policy plus its parameters
type OutputOptions struct {
	Policy    OutputPolicy
	OutputDir string // Only used with PolicyOutputDir
}
