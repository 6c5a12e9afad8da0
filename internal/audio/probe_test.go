package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kartoza/kartoza-loudness/internal/ffmpeg"
	"github.com/kartoza/kartoza-loudness/internal/models"
)

func testTarget() models.TargetSpec {
	return models.NewTargetSpec(-18, 2, -1.5, 11)
}

func mediaFixture(t *testing.T, name string) models.MediaFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("original-bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	return models.NewMediaFile(path)
}

func TestParseLoudnormOutput(t *testing.T) {
	m, err := ParseLoudnormOutput(sampleLoudnormOutput)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.IntegratedLUFS != -27.61 {
		t.Errorf("expected integrated -27.61, got %f", m.IntegratedLUFS)
	}
	if m.TruePeakDBTP != -4.47 {
		t.Errorf("expected true peak -4.47, got %f", m.TruePeakDBTP)
	}
	if m.LRA == nil || *m.LRA != 6.2 {
		t.Errorf("expected LRA 6.2, got %v", m.LRA)
	}
	if m.SamplePeakDB == nil || *m.SamplePeakDB != -4.3 {
		t.Errorf("expected sample peak -4.3, got %v", m.SamplePeakDB)
	}
	if !m.HasFirstPass() {
		t.Error("expected first-pass stats to be available")
	}
}

func TestParseLoudnormOutput_MissingLRA(t *testing.T) {
	m, err := ParseLoudnormOutput(sampleNoLRAOutput)
	if err != nil {
		t.Fatalf("missing LRA should not be a parse failure: %v", err)
	}
	if m.LRA != nil {
		t.Errorf("expected LRA to be absent, got %f", *m.LRA)
	}
	if m.SamplePeakDB != nil {
		t.Error("expected sample peak to be absent")
	}
	if m.HasFirstPass() {
		t.Error("two-pass requires a measured LRA")
	}
}

func TestParseLoudnormOutput_Errors(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{"no block", "Input #0, mov\nOutput #0, null\n"},
		{"silent input", `{ "input_i" : "-inf", "input_tp" : "-inf" }`},
		{"garbage number", `{ "input_i" : "abc", "input_tp" : "-1.0" }`},
		{"missing peak", `{ "input_i" : "-20.0" }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseLoudnormOutput(tt.output); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestParseLoudnormOutput_UsesLastBlock(t *testing.T) {
	output := `{ "input_i" : "-30.00", "input_tp" : "-9.00" }
{ "input_i" : "-22.00", "input_tp" : "-5.00" }`

	m, err := ParseLoudnormOutput(output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.IntegratedLUFS != -22 {
		t.Errorf("expected last block to win, got %f", m.IntegratedLUFS)
	}
}

func TestAnalysisArgs(t *testing.T) {
	args := AnalysisArgs("/videos/a.mp4", testTarget())
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "-i /videos/a.mp4") {
		t.Errorf("expected input argument, got %s", joined)
	}
	if !strings.Contains(joined, "loudnorm=I=-18.00:TP=-1.50:LRA=11.00:print_format=json") {
		t.Errorf("expected loudnorm filter, got %s", joined)
	}
	if args[len(args)-1] != "-" || args[len(args)-2] != "null" {
		t.Errorf("expected null muxer output, got %v", args[len(args)-3:])
	}
}

func TestProber_Success(t *testing.T) {
	file := mediaFixture(t, "clip.mp4")
	runner := &fakeRunner{result: ffmpeg.Result{Stderr: sampleLoudnormOutput}}

	p := NewProber(runner, testTarget(), time.Minute)
	m, err := p.AnalyzeLoudness(context.Background(), file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.IntegratedLUFS != -27.61 {
		t.Errorf("expected -27.61, got %f", m.IntegratedLUFS)
	}
	if len(runner.calls) != 1 {
		t.Errorf("expected one invocation, got %d", len(runner.calls))
	}
}

func TestProber_Failures(t *testing.T) {
	tests := []struct {
		name   string
		runner *fakeRunner
		kind   models.ErrorKind
	}{
		{
			name:   "non-zero exit",
			runner: &fakeRunner{result: ffmpeg.Result{ExitCode: 1, Stderr: "clip.mp4: Invalid data found when processing input\n"}},
			kind:   models.KindProbeProcessError,
		},
		{
			name:   "timeout",
			runner: &fakeRunner{result: ffmpeg.Result{ExitCode: -1}, err: ffmpeg.ErrTimeout},
			kind:   models.KindProbeTimeout,
		},
		{
			name:   "start failure",
			runner: &fakeRunner{err: errors.New("exec: \"ffmpeg\": executable file not found in $PATH")},
			kind:   models.KindProbeProcessError,
		},
		{
			name:   "unparsable output",
			runner: &fakeRunner{result: ffmpeg.Result{Stderr: "no summary here"}},
			kind:   models.KindProbeParseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := mediaFixture(t, "clip.mp4")
			p := NewProber(tt.runner, testTarget(), time.Second)

			_, err := p.AnalyzeLoudness(context.Background(), file)
			if !models.IsKind(err, tt.kind) {
				t.Errorf("expected %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestProber_MissingFile(t *testing.T) {
	runner := &fakeRunner{}
	p := NewProber(runner, testTarget(), time.Second)

	_, err := p.AnalyzeLoudness(context.Background(), models.NewMediaFile(filepath.Join(t.TempDir(), "gone.mp4")))
	if !models.IsKind(err, models.KindProbeProcessError) {
		t.Errorf("expected ProbeProcessError, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Error("ffmpeg should not run for a missing file")
	}
}

func TestParseOutputIntegrated(t *testing.T) {
	summary := `Input Integrated:    -27.6 LUFS
Output Integrated:   -18.1 LUFS`
	v, ok := ParseOutputIntegrated(summary)
	if !ok || v != -18.1 {
		t.Errorf("expected -18.1, got %f (%v)", v, ok)
	}

	if _, ok := ParseOutputIntegrated("nothing"); ok {
		t.Error("expected no value")
	}
}
