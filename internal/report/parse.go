package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kartoza/kartoza-loudness/internal/models"
)

var (
	generatedRe = regexp.MustCompile(`^Generated: (.+)$`)
	folderRe    = regexp.MustCompile(`^` + folderPrefix + `(.+)$`)
	windowRe    = regexp.MustCompile(`^Target Window: (\S+) to (\S+) LUFS \(target (\S+?)(?:, preset (\w+))?\)$`)
	ceilingRe   = regexp.MustCompile(`^True Peak Ceiling: (\S+) dBTP$`)
	failedRe    = regexp.MustCompile(`^FAILED \((\w+)\)$`)
)

// maxMagnitude bounds every dB/LUFS/LU value; real measurements stay far inside it
const maxMagnitude = 1000.0

var knownVerdicts = map[string]models.Verdict{
	string(models.VerdictOK):           models.VerdictOK,
	string(models.VerdictTooQuiet):     models.VerdictTooQuiet,
	string(models.VerdictTooLoud):      models.VerdictTooLoud,
	string(models.VerdictPeakExceeded): models.VerdictPeakExceeded,
}

// parser walks report lines, skipping blank ones
type parser struct {
	scanner *bufio.Scanner
	lineNo  int
	path    string
	raw     string // Last line returned by next, only the line ending removed
}

// next returns the next non-blank line with trailing whitespace removed
func (p *parser) next() (string, bool) {
	for p.scanner.Scan() {
		p.lineNo++
		p.raw = strings.TrimRight(p.scanner.Text(), "\r")
		line := strings.TrimRight(p.raw, " \t")
		if line != "" {
			return line, true
		}
	}
	return "", false
}

func (p *parser) errorf(line string, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if line != "" {
		msg = fmt.Sprintf("%s: %q", msg, line)
	}
	return &models.Error{
		Kind: models.KindReportFormatError,
		Path: p.path,
		Line: p.lineNo,
		Err:  fmt.Errorf("%s", msg),
	}
}

// ParseFile reads and parses the report at path
func ParseFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, models.NewError(models.KindReportFormatError, path, err)
	}
	defer func() { _ = f.Close() }()
	return parse(f, path)
}

// Parse reads a report. On any format error it returns a ReportFormatError
// naming the first offending line and no rows.
func Parse(r io.Reader) (*Report, error) {
	return parse(r, "")
}

func parse(r io.Reader, path string) (*Report, error) {
	p := &parser{scanner: bufio.NewScanner(r), path: path}
	p.scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	rep := &Report{}

	line, ok := p.next()
	if !ok || line != titleLine {
		return nil, p.errorf(line, "expected report title %q", titleLine)
	}

	line, _ = p.next()
	m := generatedRe.FindStringSubmatch(line)
	if m == nil {
		return nil, p.errorf(line, "expected Generated line")
	}
	generated, err := time.ParseInLocation(timeLayout, m[1], time.Local)
	if err != nil {
		return nil, p.errorf(line, "invalid timestamp")
	}
	rep.Generated = generated

	line, _ = p.next()
	m = folderRe.FindStringSubmatch(line)
	if m == nil {
		return nil, p.errorf(line, "expected Folder line")
	}
	// Folder names may legitimately end in whitespace
	rep.Folder = strings.TrimPrefix(p.raw, folderPrefix)

	line, _ = p.next()
	m = windowRe.FindStringSubmatch(line)
	if m == nil {
		return nil, p.errorf(line, "expected Target Window line")
	}
	minLUFS, err1 := parseNumber(m[1])
	maxLUFS, err2 := parseNumber(m[2])
	target, err3 := parseNumber(m[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, p.errorf(line, "invalid number in target window")
	}
	rep.Target = models.TargetSpec{
		Name:       m[4],
		TargetLUFS: target,
		MinLUFS:    minLUFS,
		MaxLUFS:    maxLUFS,
	}

	line, _ = p.next()
	m = ceilingRe.FindStringSubmatch(line)
	if m == nil {
		return nil, p.errorf(line, "expected True Peak Ceiling line")
	}
	ceiling, err := parseNumber(m[1])
	if err != nil {
		return nil, p.errorf(line, "invalid true peak ceiling")
	}
	rep.Target.TruePeakCeiling = ceiling

	line, _ = p.next()
	if line != columnsLine {
		return nil, p.errorf(line, "expected column header %q", columnsLine)
	}

	for {
		line, ok = p.next()
		if !ok || line == summaryLine {
			break
		}
		row, err := p.parseRow(line)
		if err != nil {
			return nil, err
		}
		rep.Rows = append(rep.Rows, row)
	}

	if err := p.scanner.Err(); err != nil {
		return nil, p.errorf("", "read failed: %v", err)
	}

	return rep, nil
}

func (p *parser) parseRow(line string) (Row, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) < rowFields {
		return Row{}, p.errorf(line, "expected %d fields, got %d", rowFields, len(fields))
	}

	// File names may contain the separator; the last four fields are fixed
	n := len(fields)
	name := strings.Join(fields[:n-4], fieldSep)
	iStr, tpStr, lraStr, verdictStr := fields[n-4], fields[n-3], fields[n-2], fields[n-1]

	if strings.TrimSpace(name) == "" {
		return Row{}, p.errorf(line, "missing file name")
	}

	row := Row{File: name}

	if fm := failedRe.FindStringSubmatch(verdictStr); fm != nil {
		if iStr != missingValue || tpStr != missingValue || lraStr != missingValue {
			return Row{}, p.errorf(line, "failed row must not carry measurements")
		}
		row.FailureKind = models.ErrorKind(fm[1])
		return row, nil
	}

	verdict, ok := knownVerdicts[verdictStr]
	if !ok {
		return Row{}, p.errorf(line, "unknown verdict %q", verdictStr)
	}
	row.Verdict = verdict

	integrated, err := parseNumber(iStr)
	if err != nil {
		return Row{}, p.errorf(line, "invalid integrated loudness")
	}
	truePeak, err := parseNumber(tpStr)
	if err != nil {
		return Row{}, p.errorf(line, "invalid true peak")
	}

	meas := &models.LoudnessMeasurement{
		IntegratedLUFS: integrated,
		TruePeakDBTP:   truePeak,
	}
	if lraStr != missingValue {
		lra, err := parseNumber(lraStr)
		if err != nil {
			return Row{}, p.errorf(line, "invalid loudness range")
		}
		meas.LRA = &lra
	}
	row.Measurement = meas

	return row, nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	if math.Abs(v) > maxMagnitude {
		return 0, fmt.Errorf("value %q out of range", s)
	}
	return v, nil
}
