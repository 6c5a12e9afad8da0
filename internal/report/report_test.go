package report

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kartoza/kartoza-loudness/internal/models"
)

func fptr(v float64) *float64 { return &v }

func testTarget() models.TargetSpec {
	return models.NewTargetSpec(-18, 2, -1.5, 11)
}

func measurement(i, tp float64, lra *float64) *models.LoudnessMeasurement {
	return &models.LoudnessMeasurement{IntegratedLUFS: i, TruePeakDBTP: tp, LRA: lra}
}

func sampleResults() []Result {
	return []Result{
		{File: models.NewMediaFile("/videos/a.mp4"), Measurement: measurement(-18.204, -3.118, fptr(7.2))},
		{File: models.NewMediaFile("/videos/b.mkv"), Measurement: measurement(-30, -2, nil)},
		{File: models.NewMediaFile("/videos/c.mov"), Measurement: measurement(-12.5, -0.4, fptr(4))},
		{File: models.NewMediaFile("/videos/d.webm"), Measurement: measurement(-17, -0.2, fptr(9.9))},
		{File: models.NewMediaFile("/videos/e.avi"), Err: models.NewError(models.KindProbeTimeout, "/videos/e.avi", errors.New("killed"))},
	}
}

var testTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local)

func TestBuild(t *testing.T) {
	r := Build("/videos", testTarget(), sampleResults(), testTime)

	want := []struct {
		file    string
		verdict models.Verdict
		failed  bool
	}{
		{"a.mp4", models.VerdictOK, false},
		{"b.mkv", models.VerdictTooQuiet, false},
		{"c.mov", models.VerdictTooLoud, false},
		{"d.webm", models.VerdictPeakExceeded, false},
		{"e.avi", "", true},
	}

	if len(r.Rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(r.Rows), len(want))
	}
	for i, w := range want {
		row := r.Rows[i]
		if row.File != w.file {
			t.Errorf("row %d: File = %q, want %q", i, row.File, w.file)
		}
		if row.Verdict != w.verdict {
			t.Errorf("row %d: Verdict = %q, want %q", i, row.Verdict, w.verdict)
		}
		if row.Failed() != w.failed {
			t.Errorf("row %d: Failed() = %v, want %v", i, row.Failed(), w.failed)
		}
	}
	if r.Rows[4].FailureKind != models.KindProbeTimeout {
		t.Errorf("FailureKind = %q, want %q", r.Rows[4].FailureKind, models.KindProbeTimeout)
	}

	s := r.Summary()
	if s.Total != 5 || s.Analyzed != 4 || s.Failed != 1 || s.InSpec != 1 || s.OutOfSpec() != 3 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if got := len(r.OutOfSpecRows()); got != 3 {
		t.Errorf("OutOfSpecRows() = %d rows, want 3", got)
	}
	if got := len(r.MeasuredRows()); got != 4 {
		t.Errorf("MeasuredRows() = %d rows, want 4", got)
	}
}

func TestBuild_UnclassifiedErrorDefaultsToProcessError(t *testing.T) {
	r := Build("/videos", testTarget(), []Result{
		{File: models.NewMediaFile("/videos/x.mp4"), Err: errors.New("boom")},
	}, testTime)
	if r.Rows[0].FailureKind != models.KindProbeProcessError {
		t.Errorf("FailureKind = %q, want %q", r.Rows[0].FailureKind, models.KindProbeProcessError)
	}
}

func TestWriteTo_Layout(t *testing.T) {
	r := Build("/videos", testTarget(), sampleResults(), testTime)
	text := r.String()

	for _, want := range []string{
		"=== Loudness Report ===\n",
		"Generated: 2026-03-14 09:26:53\n",
		"Folder: /videos\n",
		"Target Window: -20.00 to -16.00 LUFS (target -18.00)\n",
		"True Peak Ceiling: -1.50 dBTP\n",
		columnsLine + "\n",
		"a.mp4 | -18.20 | -3.12 | 7.20 | OK\n",
		"b.mkv | -30.00 | -2.00 | - | OUT OF SPEC (too quiet)\n",
		"e.avi | - | - | - | FAILED (ProbeTimeout)\n",
		"=== Summary ===\n",
		"Total files: 5\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q\n%s", want, text)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	target := testTarget()
	target.Name = "podcast"
	original := Build("/videos", target, sampleResults(), testTime)

	parsed, err := Parse(strings.NewReader(original.String()))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parsed.Generated.Equal(original.Generated) {
		t.Errorf("Generated = %v, want %v", parsed.Generated, original.Generated)
	}
	if parsed.Folder != original.Folder {
		t.Errorf("Folder = %q, want %q", parsed.Folder, original.Folder)
	}
	if parsed.Target.Name != "podcast" || parsed.Target.MinLUFS != -20 || parsed.Target.MaxLUFS != -16 ||
		parsed.Target.TargetLUFS != -18 || parsed.Target.TruePeakCeiling != -1.5 {
		t.Errorf("Target = %+v", parsed.Target)
	}
	if len(parsed.Rows) != len(original.Rows) {
		t.Fatalf("got %d rows, want %d", len(parsed.Rows), len(original.Rows))
	}

	for i, want := range original.Rows {
		got := parsed.Rows[i]
		if got.File != want.File || got.Verdict != want.Verdict || got.FailureKind != want.FailureKind {
			t.Errorf("row %d = %+v, want %+v", i, got, want)
			continue
		}
		if want.Failed() {
			if !got.Failed() {
				t.Errorf("row %d should be failed", i)
			}
			continue
		}
		if math.Abs(got.Measurement.IntegratedLUFS-want.Measurement.IntegratedLUFS) > 0.005 {
			t.Errorf("row %d integrated = %.3f, want %.3f", i, got.Measurement.IntegratedLUFS, want.Measurement.IntegratedLUFS)
		}
		if math.Abs(got.Measurement.TruePeakDBTP-want.Measurement.TruePeakDBTP) > 0.005 {
			t.Errorf("row %d true peak = %.3f, want %.3f", i, got.Measurement.TruePeakDBTP, want.Measurement.TruePeakDBTP)
		}
		if (got.Measurement.LRA == nil) != (want.Measurement.LRA == nil) {
			t.Errorf("row %d LRA presence mismatch", i)
		}
	}

	// Serializing the parsed report reproduces the same text
	if parsed.String() != original.String() {
		t.Errorf("re-serialized report differs:\n%s\n---\n%s", parsed.String(), original.String())
	}
}

func TestIdempotentExceptTimestamp(t *testing.T) {
	first := Build("/videos", testTarget(), sampleResults(), testTime).String()
	second := Build("/videos", testTarget(), sampleResults(), testTime.Add(90*time.Minute)).String()

	a := strings.Split(first, "\n")
	b := strings.Split(second, "\n")
	if len(a) != len(b) {
		t.Fatalf("line counts differ: %d vs %d", len(a), len(b))
	}
	diffs := 0
	for i := range a {
		if a[i] != b[i] {
			diffs++
			if !strings.HasPrefix(a[i], "Generated: ") {
				t.Errorf("unexpected difference on line %d: %q vs %q", i+1, a[i], b[i])
			}
		}
	}
	if diffs != 1 {
		t.Errorf("expected exactly the timestamp line to differ, got %d differences", diffs)
	}
}

func TestZeroRows(t *testing.T) {
	r := Build("/empty", testTarget(), nil, testTime)
	if r.Rows == nil || len(r.Rows) != 0 {
		t.Fatalf("expected empty non-nil rows, got %v", r.Rows)
	}

	parsed, err := Parse(strings.NewReader(r.String()))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(parsed.Rows) != 0 {
		t.Errorf("got %d rows, want 0", len(parsed.Rows))
	}
	if s := parsed.Summary(); s.Total != 0 {
		t.Errorf("Summary().Total = %d, want 0", s.Total)
	}
}

func TestParse_MissingTargetWindow(t *testing.T) {
	text := strings.Join([]string{
		"=== Loudness Report ===",
		"Generated: 2026-03-14 09:26:53",
		"Folder: /videos",
		"True Peak Ceiling: -1.50 dBTP",
		"",
		columnsLine,
		"a.mp4 | -18.20 | -3.12 | 7.20 | OK",
	}, "\n")

	r, err := Parse(strings.NewReader(text))
	if err == nil {
		t.Fatal("expected an error")
	}
	if r != nil {
		t.Errorf("expected no report, got %+v", r)
	}
	var e *models.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *models.Error, got %T", err)
	}
	if e.Kind != models.KindReportFormatError {
		t.Errorf("Kind = %q, want %q", e.Kind, models.KindReportFormatError)
	}
	if e.Line != 4 {
		t.Errorf("Line = %d, want 4", e.Line)
	}
}

func TestParse_Errors(t *testing.T) {
	header := []string{
		"=== Loudness Report ===",
		"Generated: 2026-03-14 09:26:53",
		"Folder: /videos",
		"Target Window: -20.00 to -16.00 LUFS (target -18.00)",
		"True Peak Ceiling: -1.50 dBTP",
		"",
		columnsLine,
	}

	tests := []struct {
		name     string
		lines    []string
		wantLine int
	}{
		{"empty input", nil, 0},
		{"wrong title", []string{"Loudness Report"}, 1},
		{"bad timestamp", []string{header[0], "Generated: yesterday"}, 2},
		{"bad window number", []string{header[0], header[1], header[2], "Target Window: loud to -16.00 LUFS (target -18.00)"}, 4},
		{"missing column header", append(append([]string{}, header[:6]...), "a.mp4 | -18.20 | -3.12 | 7.20 | OK"), 7},
		{"too few fields", append(append([]string{}, header...), "a.mp4 | -18.20 | OK"), 8},
		{"bad number", append(append([]string{}, header...), "a.mp4 | -18.2x | -3.12 | 7.20 | OK"), 8},
		{"unknown verdict", append(append([]string{}, header...), "a.mp4 | -18.20 | -3.12 | 7.20 | FINE"), 8},
		{"dash on measured row", append(append([]string{}, header...), "a.mp4 | - | -3.12 | 7.20 | OK"), 8},
		{"values on failed row", append(append([]string{}, header...), "a.mp4 | -18.20 | - | - | FAILED (ProbeTimeout)"), 8},
		{"infinite value", append(append([]string{}, header...), "a.mp4 | -inf | -3.12 | 7.20 | OK"), 8},
		{"implausible peak", append(append([]string{}, header...), "a.mp4 | -18.20 | 3e16 | 7.20 | OK"), 8},
		{"second bad row reports first", append(append([]string{}, header...),
			"a.mp4 | -18.20 | -3.12 | 7.20 | OK",
			"b.mp4 | nope | -3.12 | 7.20 | OK",
			"c.mp4 | nope | -3.12 | 7.20 | OK"), 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(strings.NewReader(strings.Join(tt.lines, "\n")))
			if err == nil {
				t.Fatal("expected an error")
			}
			if r != nil {
				t.Error("expected no partial report")
			}
			var e *models.Error
			if !errors.As(err, &e) || e.Kind != models.KindReportFormatError {
				t.Fatalf("expected ReportFormatError, got %v", err)
			}
			if tt.wantLine > 0 && e.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", e.Line, tt.wantLine)
			}
		})
	}
}

func TestParse_Tolerance(t *testing.T) {
	text := "\n=== Loudness Report ===   \n" +
		"Generated: 2026-03-14 09:26:53\t\n" +
		"\n" +
		"Folder: /videos\n" +
		"Target Window: -25.00 to -23.00 LUFS (target -24.00, preset broadcast)  \n" +
		"True Peak Ceiling: -2.00 dBTP\n" +
		"\n\n" +
		columnsLine + " \n" +
		"my | clip.mp4 | -24.00 | -5.00 | - | OK   \n" +
		"\n" +
		"x.mkv | - | - | - | FAILED (ProbeParseError)\n" +
		"=== Summary ===\n" +
		"anything goes here\n"

	r, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if r.Target.Name != "broadcast" || r.Target.TargetLUFS != -24 {
		t.Errorf("Target = %+v", r.Target)
	}
	if len(r.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(r.Rows))
	}
	if r.Rows[0].File != "my | clip.mp4" {
		t.Errorf("File = %q, want %q", r.Rows[0].File, "my | clip.mp4")
	}
	if r.Rows[0].Measurement.LRA != nil {
		t.Error("expected LRA to be absent")
	}
	if r.Rows[1].FailureKind != models.KindProbeParseError {
		t.Errorf("FailureKind = %q", r.Rows[1].FailureKind)
	}
}

func TestParse_FolderKeepsTrailingSpace(t *testing.T) {
	r := Build("/videos/season 1 ", testTarget(), sampleResults(), testTime)
	var sb strings.Builder
	if _, err := r.WriteTo(&sb); err != nil {
		t.Fatal(err)
	}

	parsed, err := Parse(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parsed.Folder != "/videos/season 1 " {
		t.Errorf("Folder = %q, want %q", parsed.Folder, "/videos/season 1 ")
	}
}

func TestSaveAndParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName(testTime))
	if filepath.Base(path) != "loudness_report_20260314_092653.txt" {
		t.Errorf("DefaultFileName() = %q", filepath.Base(path))
	}

	r := Build("/videos", testTarget(), sampleResults(), testTime)
	if err := r.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(parsed.Rows) != len(r.Rows) {
		t.Errorf("got %d rows, want %d", len(parsed.Rows), len(r.Rows))
	}

	_, err = ParseFile(filepath.Join(dir, "missing.txt"))
	if err == nil {
		t.Fatal("expected an error for a missing report")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "missing.txt")); !os.IsNotExist(statErr) {
		t.Error("ParseFile must not create the report")
	}
}
