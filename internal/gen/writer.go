package gen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// Writer formats and writes generated files in parallel.
type Writer struct {
	workers int
	log     *slog.Logger

	mu      sync.Mutex
	written []string
}

// NewWriter returns a writer bounded to cfg.Workers concurrent files.
func NewWriter(cfg *Config, log *slog.Logger) *Writer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Writer{workers: cfg.Workers, log: log}
}

// Write formats and writes files.
func (w *Writer) Write(ctx context.Context, files []File) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(w.workers, 1))
	for _, f := range files {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.writeFile(f)
			}
		})
	}
	return eg.Wait()
}

// Written returns the paths written so far.
func (w *Writer) Written() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.written...)
}

func (w *Writer) writeFile(f File) error {
	path := filepath.Join(f.Dir, f.Name)
	formatted, err := imports.Process(path, f.Content, nil)
	if err != nil {
		debugPath := path + ".error"
		_ = os.WriteFile(debugPath, f.Content, 0o644)
		return fmt.Errorf("recordgen: format %s: %w (unformatted written to %s)", f.Name, err, debugPath)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("recordgen: create directory for %s: %w", f.Name, err)
	}
	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		return fmt.Errorf("recordgen: write %s: %w", f.Name, err)
	}
	w.log.Debug("wrote file", "path", path, "bytes", len(formatted))
	w.mu.Lock()
	w.written = append(w.written, path)
	w.mu.Unlock()
	return nil
}

// Run loads, generates and writes every configured package. It returns the
// written paths.
func Run(ctx context.Context, cfg *Config, log *slog.Logger) ([]string, error) {
	pkgs, err := Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var files []File
	for _, p := range pkgs {
		fs, err := Generate(cfg, p)
		if err != nil {
			return nil, err
		}
		files = append(files, fs...)
	}
	w := NewWriter(cfg, log)
	if err := w.Write(ctx, files); err != nil {
		return nil, err
	}
	return w.Written(), nil
}
