package config

import "testing"

func ptr(v float64) *float64 { return &v }

func TestGetPreset(t *testing.T) {
	tests := []struct {
		name     string
		target   float64
		truePeak float64
	}{
		{"broadcast", -24, -2},
		{"gaming", -16, -1},
		{"podcast", -16, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := GetPreset(tt.name)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.TargetLUFS != tt.target {
				t.Errorf("expected target %f, got %f", tt.target, p.TargetLUFS)
			}
			if p.TruePeak != tt.truePeak {
				t.Errorf("expected true peak %f, got %f", tt.truePeak, p.TruePeak)
			}
		})
	}

	if _, err := GetPreset("cinema"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestResolveTarget(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name      string
		overrides TargetOverrides
		target    float64
		min, max  float64
		truePeak  float64
	}{
		{"defaults", TargetOverrides{}, -18, -20, -16, -1.5},
		{"preset", TargetOverrides{Preset: "broadcast"}, -24, -26, -22, -2},
		{"explicit target beats preset", TargetOverrides{Preset: "broadcast", Target: ptr(-20)}, -20, -22, -18, -2},
		{"explicit true peak beats preset", TargetOverrides{Preset: "gaming", TruePeak: ptr(-3)}, -16, -18, -14, -3},
		{"tolerance", TargetOverrides{Tolerance: ptr(1)}, -18, -19, -17, -1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := cfg.ResolveTarget(tt.overrides)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if spec.TargetLUFS != tt.target || spec.MinLUFS != tt.min || spec.MaxLUFS != tt.max {
				t.Errorf("expected %f [%f, %f], got %f [%f, %f]",
					tt.target, tt.min, tt.max, spec.TargetLUFS, spec.MinLUFS, spec.MaxLUFS)
			}
			if spec.TruePeakCeiling != tt.truePeak {
				t.Errorf("expected true peak %f, got %f", tt.truePeak, spec.TruePeakCeiling)
			}
		})
	}
}

func TestResolveTarget_Errors(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name      string
		overrides TargetOverrides
	}{
		{"unknown preset", TargetOverrides{Preset: "nope"}},
		{"positive true peak", TargetOverrides{TruePeak: ptr(2)}},
		{"true peak below loudnorm range", TargetOverrides{TruePeak: ptr(-10)}},
		{"target too loud", TargetOverrides{Target: ptr(-3)}},
		{"target too quiet", TargetOverrides{Target: ptr(-71)}},
		{"lra too small", TargetOverrides{LRA: ptr(0.5)}},
		{"lra too large", TargetOverrides{LRA: ptr(51)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := cfg.ResolveTarget(tt.overrides); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestResolveTarget_RangeBounds(t *testing.T) {
	cfg := DefaultConfig()

	overrides := TargetOverrides{Target: ptr(-70), TruePeak: ptr(-9), LRA: ptr(50)}
	if _, err := cfg.ResolveTarget(overrides); err != nil {
		t.Errorf("lower bounds should be accepted: %v", err)
	}
	overrides = TargetOverrides{Target: ptr(-5), TruePeak: ptr(0), LRA: ptr(1)}
	if _, err := cfg.ResolveTarget(overrides); err != nil {
		t.Errorf("upper bounds should be accepted: %v", err)
	}
}
