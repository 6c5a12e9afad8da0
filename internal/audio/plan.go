package audio

import (
	"fmt"
	"math"

	"github.com/kartoza/kartoza-loudness/internal/models"
)

// alimiter accepts a linear limit between 0.0625 and 1
const (
	minLimiterLevel = 0.0625
	maxLimiterLevel = 1.0
)

// maxCapSteps bounds the rounding correction in capGain
const maxCapSteps = 64

// Plan computes the normalization gain for a measurement. The gain needed
// to reach the target is capped so that measured true peak + gain never
// exceeds the ceiling: peak safety wins over reaching the target.
func Plan(m models.LoudnessMeasurement, t models.TargetSpec) models.GainPlan {
	requested := t.TargetLUFS - m.IntegratedLUFS
	gain := capGain(requested, m.TruePeakDBTP, t.TruePeakCeiling)

	plan := models.GainPlan{
		Measured:        m,
		Target:          t,
		RequestedGainDB: requested,
		GainDB:          gain,
		Capped:          gain < requested,
		ProjectedPeak:   m.TruePeakDBTP + gain,
	}

	if !plan.Capped && m.HasFirstPass() {
		plan.Mode = models.FilterTwoPass
		plan.Filter = twoPassFilter(m.Stats, t)
	} else {
		plan.Mode = models.FilterLinearGain
		plan.Filter = linearGainFilter(gain, t.TruePeakCeiling)
	}

	return plan
}

// capGain limits gain to the headroom below the ceiling. The result is
// rounded down to 0.01 dB since that is the precision written to the
// filter, and it always satisfies peak+gain <= ceiling.
func capGain(requested, peak, ceiling float64) float64 {
	if peak+requested <= ceiling {
		return requested
	}
	gain := math.Floor((ceiling-peak)*100) / 100
	for i := 0; i < maxCapSteps && peak+gain > ceiling; i++ {
		next := gain - 0.01
		if next == gain {
			// 0.01 is below float precision at this magnitude
			next = math.Nextafter(gain, math.Inf(-1))
		}
		gain = next
	}
	return gain
}

func linearGainFilter(gain, ceiling float64) string {
	limit := math.Pow(10, ceiling/20)
	limit = math.Max(minLimiterLevel, math.Min(maxLimiterLevel, limit))
	return fmt.Sprintf("volume=%.2fdB,alimiter=limit=%.4f:level=0", gain, limit)
}

func twoPassFilter(stats *models.LoudnormStats, t models.TargetSpec) string {
	return fmt.Sprintf(
		"loudnorm=I=%.2f:TP=%.2f:LRA=%.2f:measured_I=%s:measured_TP=%s:measured_LRA=%s:measured_thresh=%s:offset=%s:linear=true:print_format=summary",
		t.TargetLUFS,
		t.TruePeakCeiling,
		t.LRA,
		stats.InputI,
		stats.InputTP,
		stats.InputLRA,
		stats.InputThresh,
		stats.TargetOffset,
	)
}
