package tui

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reports changes to the file at path. The directory is watched
// rather than the file because saves replace it by rename. Call the
// returned stop func to release the watcher.
func Watch(path string) (<-chan struct{}, func() error, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, nil, err
	}

	name := filepath.Base(path)
	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != name {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
					continue
				}
				// Coalesce bursts into one pending notification.
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("watch %s: %v", path, err)
			}
		}
	}()
	return changes, w.Close, nil
}
