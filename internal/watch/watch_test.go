package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kartoza/kartoza-loudness/internal/models"
)

func startWatcher(t *testing.T, dir string, settle time.Duration) <-chan models.MediaFile {
	t.Helper()
	got := make(chan models.MediaFile, 8)
	w := New(dir, settle, func(ctx context.Context, file models.MediaFile) {
		got <- file
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})

	select {
	case <-w.Ready():
	case err := <-done:
		t.Fatalf("watcher stopped early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not start")
	}
	return got
}

func TestWatcher_SettledFile(t *testing.T) {
	dir := t.TempDir()
	got := startWatcher(t, dir, 100*time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "clip_temp.mp4"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "clip.mp4")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("chunk"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case file := <-got:
		if file.Name != "clip.mp4" {
			t.Errorf("handled %s, want clip.mp4", file.Name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no file handled")
	}

	// Repeated writes within the settle delay produce one call
	select {
	case file := <-got:
		t.Errorf("unexpected second call for %s", file.Name)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), time.Second, func(context.Context, models.MediaFile) {})
	err := w.Run(context.Background())
	if !models.IsKind(err, models.KindDirectoryNotFound) {
		t.Errorf("expected DirectoryNotFound, got %v", err)
	}
}

func TestWatcher_Relevant(t *testing.T) {
	w := New("/videos", time.Second, nil)

	tests := []struct {
		name     string
		expected bool
	}{
		{"/videos/a.mp4", true},
		{"/videos/a.MKV", true},
		{"/videos/a_normalized.mp4", true},
		{"/videos/a_temp.mp4", false},
		{"/videos/a.txt", false},
		{"/videos/sub/a.mp4", false},
	}

	for _, tt := range tests {
		if got := w.relevant(filepath.FromSlash(tt.name)); got != tt.expected {
			t.Errorf("relevant(%s) = %v, want %v", tt.name, got, tt.expected)
		}
	}
}
