package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kartoza/kartoza-loudness/internal/audio"
	"github.com/kartoza/kartoza-loudness/internal/models"
	"github.com/kartoza/kartoza-loudness/internal/pipeline"
	"github.com/kartoza/kartoza-loudness/internal/report"
	"github.com/kartoza/kartoza-loudness/internal/tui"
)

var (
	greenStyle  = lipgloss.NewStyle().Foreground(tui.ColorGreen)
	redStyle    = lipgloss.NewStyle().Foreground(tui.ColorRed)
	grayStyle   = lipgloss.NewStyle().Foreground(tui.ColorGray)
	orangeStyle = lipgloss.NewStyle().Foreground(tui.ColorOrange)
	blueStyle   = lipgloss.NewStyle().Foreground(tui.ColorBlue)
	boldStyle   = lipgloss.NewStyle().Bold(true)
)

func printWarning(msg string) {
	fmt.Fprintln(os.Stderr, tui.WarningStyle.Render("Warning: "+msg))
}

// printProgress prints one line per finished file
func printProgress(stage pipeline.Stage, index, total int, file models.MediaFile, done bool, err error) {
	if !done {
		return
	}
	counter := grayStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	status := greenStyle.Render("✓")
	if err != nil {
		status = redStyle.Render("✗")
	}
	fmt.Printf("%s %s %s %s\n", counter, status, stage, file.Name)
}

func verdictStyle(row report.Row) lipgloss.Style {
	switch {
	case row.Failed():
		return redStyle
	case row.Verdict.InSpec():
		return greenStyle
	}
	return orangeStyle
}

func printTarget(t models.TargetSpec) {
	name := ""
	if t.Name != "" {
		name = fmt.Sprintf(" (%s preset)", t.Name)
	}
	fmt.Printf("%s %.2f LUFS, window %.2f to %.2f LUFS%s\n",
		tui.LabelStyle.Render("Target:"), t.TargetLUFS, t.MinLUFS, t.MaxLUFS, name)
	fmt.Printf("%s %.2f dBTP\n", tui.LabelStyle.Render("True peak ceiling:"), t.TruePeakCeiling)
}

// printReport prints the report rows and summary
func printReport(rep *report.Report) {
	fmt.Println()
	fmt.Println(tui.TitleStyle.Render("Loudness Report"))
	fmt.Printf("%s %s\n", boldStyle.Render("Folder:"), rep.Folder)
	printTarget(rep.Target)
	fmt.Println()

	if len(rep.Rows) == 0 {
		fmt.Println(grayStyle.Render("No video files found."))
		return
	}

	nameWidth := 4
	for _, row := range rep.Rows {
		if w := lipgloss.Width(row.File); w > nameWidth {
			nameWidth = w
		}
	}

	header := fmt.Sprintf("%-*s  %10s  %10s  %8s  %s", nameWidth, "File", "LUFS", "dBTP", "LRA", "Verdict")
	fmt.Println(boldStyle.Render(header))

	for _, row := range rep.Rows {
		i, tp, lra := "-", "-", "-"
		verdict := string(row.Verdict)
		if row.Failed() {
			verdict = "FAILED (" + string(row.FailureKind) + ")"
		} else {
			i = fmt.Sprintf("%.2f", row.Measurement.IntegratedLUFS)
			tp = fmt.Sprintf("%.2f", row.Measurement.TruePeakDBTP)
			if row.Measurement.LRA != nil {
				lra = fmt.Sprintf("%.2f", *row.Measurement.LRA)
			}
		}
		fmt.Printf("%-*s  %10s  %10s  %8s  %s\n", nameWidth, row.File, i, tp, lra,
			verdictStyle(row).Render(verdict))
	}

	s := rep.Summary()
	fmt.Println()
	fmt.Printf("%s %d analyzed, %s, %s, %s\n",
		boldStyle.Render("Summary:"),
		s.Analyzed,
		greenStyle.Render(fmt.Sprintf("%d within spec", s.InSpec)),
		orangeStyle.Render(fmt.Sprintf("%d out of spec", s.OutOfSpec())),
		redStyle.Render(fmt.Sprintf("%d failed", s.Failed)),
	)
	if s.OutOfSpec() > 0 {
		fmt.Printf("  %s\n", grayStyle.Render(fmt.Sprintf(
			"too quiet: %d, too loud: %d, peak exceeded: %d", s.TooQuiet, s.TooLoud, s.PeakExceeded)))
	}
}

// printPlan lists the files about to be normalized
func printPlan(jobs []pipeline.Job, opts pipeline.Options) {
	fmt.Println()
	if len(jobs) == 0 {
		fmt.Println(greenStyle.Render("No files need normalization."))
		return
	}

	fmt.Printf("%s\n", boldStyle.Render(fmt.Sprintf("Found %d file(s) to normalize:", len(jobs))))
	for _, job := range jobs {
		if job.Err != nil {
			fmt.Printf("  %s %s %s\n", redStyle.Render("✗"), job.File.Name, grayStyle.Render(job.Err.Error()))
			continue
		}
		arrow := "▲"
		if job.Plan.GainDB < 0 {
			arrow = "▼"
		}
		line := fmt.Sprintf("%s (%.2f LUFS, %+.2f dB)", job.File.Name, job.Plan.Measured.IntegratedLUFS, job.Plan.GainDB)
		if job.Plan.Capped {
			line += orangeStyle.Render(fmt.Sprintf(" capped from %+.2f dB to keep peaks under %.2f dBTP",
				job.Plan.RequestedGainDB, opts.Target.TruePeakCeiling))
		}
		fmt.Printf("  %s %s\n", blueStyle.Render(arrow), line)
	}

	fmt.Println()
	printTarget(opts.Target)
	fmt.Printf("%s %s\n", boldStyle.Render("Output:"), describeOutput(opts.Output))
	if opts.DryRun {
		fmt.Println(orangeStyle.Render("\n[DRY RUN - no files will be modified]"))
	}
	fmt.Println()
}

func describeOutput(o models.OutputOptions) string {
	if o.Policy == models.PolicyOutputDir {
		return o.OutputDir + string(os.PathSeparator)
	}
	return o.Policy.String()
}

// printBatch prints the per-file outcome and the totals
func printBatch(b *pipeline.Batch, dryRun bool) {
	if b.Aborted {
		fmt.Println(grayStyle.Render("Normalization cancelled."))
		return
	}
	if len(b.Outcomes) == 0 {
		return
	}

	fmt.Println()
	for _, o := range b.Outcomes {
		switch o.Status {
		case audio.StatusDryRun:
			fmt.Printf("%s %s\n", blueStyle.Render("→"), o.File.Name)
			fmt.Printf("    %s %s\n", tui.LabelStyle.Render("destination:"), o.Destination)
			fmt.Printf("    %s %s\n", tui.LabelStyle.Render("command:"), o.Command)
		case audio.StatusSucceeded:
			detail := o.Destination
			if o.OutputLUFS != nil {
				detail += fmt.Sprintf(" (%.2f LUFS)", *o.OutputLUFS)
			}
			fmt.Printf("%s %s %s\n", greenStyle.Render("✓"), o.File.Name, grayStyle.Render(detail))
		case audio.StatusSkipped:
			fmt.Printf("%s %s %s\n", grayStyle.Render("○"), o.File.Name, grayStyle.Render(errText(o.Err)))
		default:
			fmt.Printf("%s %s %s\n", redStyle.Render("✗"), o.File.Name, redStyle.Render(errText(o.Err)))
		}
	}

	var lines []string
	if dryRun {
		lines = append(lines, fmt.Sprintf("%s %d file(s) would be normalized", boldStyle.Render("Summary:"), b.Planned()))
	} else {
		lines = append(lines, fmt.Sprintf("%s %s, %s, %s",
			boldStyle.Render("Summary:"),
			greenStyle.Render(fmt.Sprintf("%d succeeded", b.Succeeded())),
			redStyle.Render(fmt.Sprintf("%d failed", b.Failed())),
			grayStyle.Render(fmt.Sprintf("%d skipped", b.Skipped())),
		))
	}

	if failures := b.Failures(); len(failures) > 0 {
		lines = append(lines, "", tui.ErrorStyle.Render("Failures:"))
		for _, o := range failures {
			lines = append(lines, fmt.Sprintf("  %s: %s", o.File.Name, models.KindOf(o.Err)))
		}
	}

	fmt.Println()
	fmt.Println(tui.BoxStyle.Render(strings.Join(lines, "\n")))
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimSpace(err.Error())
}
