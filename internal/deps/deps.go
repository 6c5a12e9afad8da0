package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Dependency represents an external program the tool calls
type Dependency struct {
	Name        string // Command name (e.g., "ffmpeg")
	Description string // Human-readable description
	Required    bool   // If true, the tool cannot run without it
}

// CheckResult contains the result of checking a dependency
type CheckResult struct {
	Dependency Dependency
	Available  bool
	Path       string // Path to the executable if found
	Error      error  // Error if check failed
}

// lookPath is replaced in tests
var lookPath = exec.LookPath

// RequiredDeps returns the required dependencies. ffmpegPath overrides
// the ffmpeg binary name when set.
func RequiredDeps(ffmpegPath string) []Dependency {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return []Dependency{
		{
			Name:        ffmpegPath,
			Description: "Loudness analysis and audio normalization",
			Required:    true,
		},
	}
}

// OptionalDeps lists optional dependencies that enhance functionality
var OptionalDeps = []Dependency{
	{
		Name:        "notify-send",
		Description: "Desktop notifications when a batch finishes",
		Required:    false,
	},
}

// Check verifies if a single dependency is available
func Check(dep Dependency) CheckResult {
	result := CheckResult{Dependency: dep}

	path, err := lookPath(dep.Name)
	if err != nil {
		result.Available = false
		result.Error = err
	} else {
		result.Available = true
		result.Path = path
	}

	return result
}

// CheckAll verifies all required and optional dependencies
func CheckAll(ffmpegPath string) (required []CheckResult, optional []CheckResult) {
	for _, dep := range RequiredDeps(ffmpegPath) {
		required = append(required, Check(dep))
	}
	for _, dep := range OptionalDeps {
		optional = append(optional, Check(dep))
	}
	return required, optional
}

// MissingRequired returns the required dependencies that are not installed
func MissingRequired(ffmpegPath string) []CheckResult {
	var missing []CheckResult
	for _, dep := range RequiredDeps(ffmpegPath) {
		result := Check(dep)
		if !result.Available {
			missing = append(missing, result)
		}
	}
	return missing
}

// FormatMissing returns a formatted string of missing dependencies
func FormatMissing(results []CheckResult) string {
	if len(results) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Missing dependencies:\n\n")

	for _, r := range results {
		status := "MISSING"
		if r.Dependency.Required {
			status = "REQUIRED"
		}
		sb.WriteString(fmt.Sprintf("  • %s (%s)\n", r.Dependency.Name, status))
		sb.WriteString(fmt.Sprintf("    %s\n\n", r.Dependency.Description))
	}

	return sb.String()
}
