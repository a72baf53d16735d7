package gen

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reruns generation when Go sources in the watched directories
// change. Generated files are ignored.
type Watcher struct {
	dirs     []string
	suffix   string
	debounce time.Duration
	onChange func(context.Context)
	log      *slog.Logger
}

// NewWatcher returns a watcher over dirs calling onChange after each burst
// of source edits.
func NewWatcher(cfg *Config, dirs []string, onChange func(context.Context), log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		dirs:     dirs,
		suffix:   cfg.Suffix,
		debounce: cfg.Debounce,
		onChange: onChange,
		log:      log,
	}
}

// relevant reports whether an event on name should trigger generation.
func (w *Watcher) relevant(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".go") &&
		!strings.HasSuffix(base, "_test.go") &&
		!strings.HasSuffix(base, w.suffix)
}

// Watch blocks until ctx is done. onChange runs on the watching goroutine, so
// runs never overlap.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("recordgen: watch: %w", err)
	}
	defer fw.Close()

	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("recordgen: watch %s: %w", dir, err)
		}
		w.log.Info("watching", "dir", dir)
	}

	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			w.log.Info("sources changed, regenerating")
			w.onChange(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
