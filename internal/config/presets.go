package config

import (
	"fmt"
	"sort"

	"github.com/kartoza/kartoza-loudness/internal/models"
)

// Preset is a named loudness target
type Preset struct {
	Name        string
	Description string
	TargetLUFS  float64
	TruePeak    float64
}

var presets = map[string]Preset{
	"broadcast": {
		Name:        "broadcast",
		Description: "Broadcast delivery (ATSC A/85 style)",
		TargetLUFS:  -24.0,
		TruePeak:    -2.0,
	},
	"gaming": {
		Name:        "gaming",
		Description: "Game audio and streaming",
		TargetLUFS:  -16.0,
		TruePeak:    -1.0,
	},
	"podcast": {
		Name:        "podcast",
		Description: "Podcast and spoken word",
		TargetLUFS:  -16.0,
		TruePeak:    -1.0,
	},
}

// GetPreset returns the preset with the given name
func GetPreset(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q (valid: %v)", name, PresetNames())
	}
	return p, nil
}

// PresetNames returns the sorted preset names
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TargetOverrides are the explicitly supplied command-line values.
// Nil pointers mean "not set".
type TargetOverrides struct {
	Preset    string
	Target    *float64
	TruePeak  *float64
	Tolerance *float64
	LRA       *float64
}

// ResolveTarget builds the run's target. An explicit target wins over a
// preset, which wins over the configured default. The same order applies
// to the true peak ceiling.
func (c *Config) ResolveTarget(o TargetOverrides) (models.TargetSpec, error) {
	target := c.TargetLUFS
	truePeak := c.TruePeak
	tolerance := c.Tolerance
	lra := c.LRA
	name := ""

	if o.Preset != "" {
		p, err := GetPreset(o.Preset)
		if err != nil {
			return models.TargetSpec{}, err
		}
		target = p.TargetLUFS
		truePeak = p.TruePeak
		name = p.Name
	}
	if o.Target != nil {
		target = *o.Target
		name = ""
	}
	if o.TruePeak != nil {
		truePeak = *o.TruePeak
	}
	if o.Tolerance != nil {
		tolerance = *o.Tolerance
	}
	if o.LRA != nil {
		lra = *o.LRA
	}

	spec := models.NewTargetSpec(target, tolerance, truePeak, lra)
	spec.Name = name
	if err := spec.Validate(); err != nil {
		return models.TargetSpec{}, err
	}
	return spec, nil
}
