package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/odvcencio/loom/pkg/logging"
	"github.com/odvcencio/loom/pkg/paths"
)

// Transcripts settle on disk before we read them; writers are external and
// may flush in pieces.
const inboxSettleDelay = 200 * time.Millisecond

// WatchInbox ingests transcript files the transcription collaborator drops
// into <base>/inbox. Pre-existing files are swept on start, then the
// directory is watched until ctx is done. Each ingested file moves to the
// archive subdirectory.
func (e *Engine) WatchInbox(ctx context.Context) error {
	if err := e.store.EnsureDirectories(); err != nil {
		return err
	}
	inboxDir := paths.InboxDir(e.store.BaseDir())

	if err := e.sweepInbox(ctx, inboxDir); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating inbox watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(inboxDir); err != nil {
		return fmt.Errorf("watching inbox %s: %w", inboxDir, err)
	}

	if e.logger != nil {
		e.logger.Info(logging.CategoryEngine, "inbox_watch", "watching inbox", map[string]any{"dir": inboxDir})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isTranscript(event.Name) {
				continue
			}
			time.Sleep(inboxSettleDelay)
			e.ingestInboxFile(ctx, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if e.logger != nil {
				e.logger.Warn(logging.CategoryEngine, "inbox_watch_error", err.Error(), nil)
			}
		}
	}
}

func (e *Engine) sweepInbox(ctx context.Context, inboxDir string) error {
	entries, err := os.ReadDir(inboxDir)
	if err != nil {
		return fmt.Errorf("reading inbox %s: %w", inboxDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isTranscript(entry.Name()) {
			continue
		}
		e.ingestInboxFile(ctx, filepath.Join(inboxDir, entry.Name()))
	}
	return nil
}

func (e *Engine) ingestInboxFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		// The file may already be archived by a racing sweep
		if os.IsNotExist(err) {
			return
		}
		if e.logger != nil {
			e.logger.Warn(logging.CategoryEngine, "inbox_read_failed", err.Error(), map[string]any{"path": path})
		}
		return
	}

	if _, err := e.IngestTranscript(ctx, string(data)); err != nil {
		if e.logger != nil {
			e.logger.Error(logging.CategoryEngine, "inbox_ingest_failed", err.Error(), map[string]any{"path": path})
		}
		return
	}

	archived := filepath.Join(paths.InboxArchiveDir(e.store.BaseDir()), archiveName(path, e.now()))
	if err := os.Rename(path, archived); err != nil && e.logger != nil {
		e.logger.Warn(logging.CategoryEngine, "inbox_archive_failed", err.Error(), map[string]any{"path": path})
	}
}

func isTranscript(name string) bool {
	return strings.HasSuffix(strings.ToLower(filepath.Base(name)), ".txt")
}

// archiveName prefixes the original name with an ingest timestamp so
// repeated drops of the same filename never collide.
func archiveName(path string, now time.Time) string {
	return now.Format("20060102-150405") + "-" + filepath.Base(path)
}
