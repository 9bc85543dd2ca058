package editor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reload re-reads the canvas file and replaces the in-memory document,
// notifying the reload callback afterwards.
func (e *Editor) Reload() error {
	data, err := os.ReadFile(e.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	doc := e.codec.Parse(string(data))

	e.mu.Lock()
	e.doc = doc
	snapshot := doc.Clone()
	e.mu.Unlock()

	if e.onReload != nil {
		e.onReload(snapshot)
	}
	return nil
}

// Watch reloads the document whenever the canvas file changes on disk.
// Events are debounced because editors typically fire several per save, and
// writes made through this editor are skipped. Blocks until ctx is done.
func (e *Editor) Watch(ctx context.Context, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors that save via
	// rename-over would otherwise drop the watch after the first save.
	if err := watcher.Add(filepath.Dir(e.path)); err != nil {
		return err
	}

	target := filepath.Clean(e.path)
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logError("watch error", "error", err)
		case <-timer.C:
			e.maybeReload()
		}
	}
}

// maybeReload re-parses the file after a debounced change unless it still
// holds exactly what we last wrote. The pending-write marker alone is not
// enough: an external edit can land in the same debounce window as one of
// our own saves.
func (e *Editor) maybeReload() {
	if e.pendingWrite.Swap(false) && e.fileMatchesLastWrite() {
		return
	}
	e.logInfo("canvas changed on disk, reloading", "path", e.path)
	if err := e.Reload(); err != nil {
		e.logError("reload failed", "error", err)
	}
}

func (e *Editor) fileMatchesLastWrite() bool {
	data, err := os.ReadFile(e.path)
	if err != nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return bytes.Equal(data, e.lastWritten)
}
