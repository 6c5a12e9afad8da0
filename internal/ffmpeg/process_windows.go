//go:build windows

package ffmpeg

import (
	"os/exec"
)

// setSysProcAttr sets Windows-specific process attributes (no-op on Windows)
func setSysProcAttr(cmd *exec.Cmd) {
	// No equivalent on Windows - process groups work differently
}

// killProcess terminates the process on Windows
func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
