package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// createBackup copies src to dst and verifies the copy has the same size.
// A partial backup is removed on failure.
func createBackup(src, dst string) error {
	if err := copyFile(src, dst); err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return fmt.Errorf("backup missing after copy: %w", err)
	}
	if srcInfo.Size() != dstInfo.Size() {
		removeQuietly(dst)
		return fmt.Errorf("backup size mismatch: %d != %d bytes", dstInfo.Size(), srcInfo.Size())
	}
	return nil
}

// copyFile copies a file from src to dst, preserving the mode
func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	info, err := source.Stat()
	if err != nil {
		return err
	}

	destination, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		removeQuietly(dst)
		return err
	}
	if err := destination.Sync(); err != nil {
		_ = destination.Close()
		removeQuietly(dst)
		return err
	}
	return destination.Close()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func removeQuietly(path string) {
	_ = os.Remove(path)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
