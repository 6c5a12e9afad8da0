package notify

import (
	"fmt"
	"os/exec"
)

// Urgency levels for notifications
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

const appTitle = "Kartoza Loudness"

// command is replaced in tests
var command = func(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Send sends a desktop notification using notify-send
func Send(title, body string, urgency Urgency, icon string) error {
	args := []string{title, body}

	if urgency != "" {
		args = append(args, "--urgency="+string(urgency))
	}

	if icon != "" {
		args = append(args, "--icon="+icon)
	}

	return command("notify-send", args...)
}

// Info sends an informational notification
func Info(title, body string) error {
	return Send(title, body, UrgencyNormal, "audio-x-generic")
}

// Error sends an error notification
func Error(title, body string) error {
	return Send(title, body, UrgencyCritical, "dialog-error")
}

// CheckComplete notifies that an analysis run finished
func CheckComplete(total, outOfSpec, failed int) error {
	body := fmt.Sprintf("%d file(s) analyzed, %d out of spec", total, outOfSpec)
	if failed > 0 {
		body += fmt.Sprintf(", %d failed", failed)
		return Error(appTitle, body)
	}
	return Info(appTitle, body)
}

// BatchComplete notifies that a normalization run finished
func BatchComplete(succeeded, failed, skipped int) error {
	body := fmt.Sprintf("Normalized %d file(s)", succeeded)
	if skipped > 0 {
		body += fmt.Sprintf(", %d skipped", skipped)
	}
	if failed > 0 {
		body += fmt.Sprintf(", %d failed", failed)
		return Error(appTitle, body)
	}
	return Info(appTitle, body)
}
