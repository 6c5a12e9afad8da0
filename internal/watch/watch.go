// Package watch probes media files as they appear in a directory.
package watch

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kartoza/kartoza-loudness/internal/audio"
	"github.com/kartoza/kartoza-loudness/internal/media"
	"github.com/kartoza/kartoza-loudness/internal/models"
)

// DefaultSettle is how long a file must stay unchanged before it is handled
const DefaultSettle = 2 * time.Second

// Handler is called once a new or changed media file has settled.
// Calls are sequential.
type Handler func(ctx context.Context, file models.MediaFile)

// Watcher reports settled media files in one directory (non-recursive)
type Watcher struct {
	dir     string
	settle  time.Duration
	handler Handler
	logger  *log.Logger
	ready   chan struct{}
}

// New creates a watcher for dir
func New(dir string, settle time.Duration, handler Handler) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		dir:     filepath.Clean(dir),
		settle:  settle,
		handler: handler,
		logger:  log.New(io.Discard, "", 0),
		ready:   make(chan struct{}),
	}
}

// SetLogger sets the debug logger
func (w *Watcher) SetLogger(l *log.Logger) {
	if l != nil {
		w.logger = l
	}
}

// Ready is closed once the directory is being watched
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return models.NewError(models.KindDirectoryNotFound, w.dir, err)
	}
	if !info.IsDir() {
		return models.NewError(models.KindDirectoryNotFound, w.dir, fmt.Errorf("not a directory"))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Printf("watch: monitoring %s (settle %s)", w.dir, w.settle)
	close(w.ready)

	timers := make(map[string]*time.Timer)
	settled := make(chan string, 16)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event.Name) {
				continue
			}
			w.logger.Printf("watch: %s %s", event.Op, event.Name)

			switch {
			case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
				name := event.Name
				if t, ok := timers[name]; ok {
					t.Reset(w.settle)
					continue
				}
				timers[name] = time.AfterFunc(w.settle, func() {
					select {
					case settled <- name:
					case <-ctx.Done():
					}
				})
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				if t, ok := timers[event.Name]; ok {
					t.Stop()
					delete(timers, event.Name)
				}
			}

		case name := <-settled:
			delete(timers, name)
			fi, err := os.Stat(name)
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}
			w.handler(ctx, models.NewMediaFile(name))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Printf("watch: watcher error: %v", err)
		}
	}
}

// relevant reports whether name is a media file directly in the watched
// directory. Partial outputs written during in-place normalization are
// ignored.
func (w *Watcher) relevant(name string) bool {
	if filepath.Dir(name) != w.dir || !media.IsVideoFile(name) {
		return false
	}
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return !strings.HasSuffix(stem, audio.TempSuffix)
}
