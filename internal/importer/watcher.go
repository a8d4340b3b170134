// Package importer watches a drafts directory and turns dropped text files
// into journal entries.
package importer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/duetlabs/duet/internal/journal"
)

// settle is how long a draft must be quiet before it is imported, so a file
// still being written is not picked up half-way.
const settle = 300 * time.Millisecond

// eligible reports whether a file name looks like a draft.
func eligible(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".txt":
		return true
	}
	return false
}

// Watch imports drafts from dir until ctx is cancelled. Files already
// present at start are imported immediately; files dropped later are
// imported once their write events settle. Imported files are removed from
// dir. Subdirectories are ignored.
func Watch(ctx context.Context, svc *journal.Service, dir string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Info("importer: started", slog.String("dir", dir))

	importExisting(ctx, svc, dir, logger)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("importer: stopped")
			return nil

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < settle {
					continue
				}
				delete(pending, path)
				importFile(ctx, svc, path, logger)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !eligible(ev.Name) {
				continue
			}
			if info, statErr := os.Stat(ev.Name); statErr != nil || info.IsDir() {
				continue
			}
			pending[ev.Name] = time.Now()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("importer: watch error", slog.String("error", watchErr.Error()))
		}
	}
}

// importExisting sweeps drafts that were already in the directory at start.
func importExisting(ctx context.Context, svc *journal.Service, dir string, logger *slog.Logger) {
	items, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("importer: initial scan failed", slog.String("error", err.Error()))
		return
	}
	for _, item := range items {
		if item.IsDir() || !eligible(item.Name()) {
			continue
		}
		importFile(ctx, svc, filepath.Join(dir, item.Name()), logger)
	}
}

// importFile reads one draft, appends it as an entry, and removes the file.
// Empty drafts are removed without creating an entry.
func importFile(ctx context.Context, svc *journal.Service, path string, logger *slog.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("importer: read failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}

	content := strings.TrimSpace(string(data))
	if content != "" {
		if _, err := svc.Add(ctx, content); err != nil {
			logger.Warn("importer: add entry failed", slog.String("path", path), slog.String("error", err.Error()))
			return
		}
		logger.Info("importer: draft imported", slog.String("path", path))
	}

	if err := os.Remove(path); err != nil {
		logger.Warn("importer: remove failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}
