package audio

import (
	"context"
	"os"
	"time"

	"github.com/kartoza/kartoza-loudness/internal/ffmpeg"
)

// fakeRunner records invocations and returns canned results
type fakeRunner struct {
	calls      [][]string
	result     ffmpeg.Result
	err        error
	writeOut   bool   // Create the last argument as an output file
	outContent string // Content written when writeOut is set
}

func (f *fakeRunner) Run(ctx context.Context, args []string, timeout time.Duration) (ffmpeg.Result, error) {
	f.calls = append(f.calls, append([]string(nil), args...))
	if f.writeOut && f.err == nil && f.result.ExitCode == 0 && len(args) > 0 {
		_ = os.WriteFile(args[len(args)-1], []byte(f.outContent), 0644)
	}
	return f.result, f.err
}

const sampleLoudnormOutput = `Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'clip.mp4':
  Duration: 00:01:00.00, start: 0.000000, bitrate: 1200 kb/s
[Parsed_volumedetect_0 @ 0x55d5c1a3c2c0] n_samples: 5292000
[Parsed_volumedetect_0 @ 0x55d5c1a3c2c0] mean_volume: -32.1 dB
[Parsed_volumedetect_0 @ 0x55d5c1a3c2c0] max_volume: -4.3 dB
[Parsed_loudnorm_1 @ 0x55d5c1a3d100]
{
	"input_i" : "-27.61",
	"input_tp" : "-4.47",
	"input_lra" : "6.20",
	"input_thresh" : "-38.09",
	"output_i" : "-18.29",
	"output_tp" : "-1.50",
	"output_lra" : "4.10",
	"output_thresh" : "-28.64",
	"normalization_type" : "dynamic",
	"target_offset" : "0.29"
}
`

const sampleNoLRAOutput = `[Parsed_loudnorm_1 @ 0x55d5c1a3d100]
{
	"input_i" : "-21.00",
	"input_tp" : "-3.00",
	"input_lra" : "-inf",
	"input_thresh" : "-31.00",
	"target_offset" : "0.00"
}
`
