package config

import (
	"context"
	"log"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors a profile file and calls onChange with each successfully
// reloaded profile. It blocks until ctx is cancelled. A reload that fails
// to parse or validate is logged and dropped; the previous profile stays
// active.
func Watch(ctx context.Context, path string, onChange func(*Profile)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}
	log.Printf("config: watching %s for profile changes", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save atomically via rename, which shows up as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			p, err := Load(path)
			if err != nil {
				log.Printf("config: reload rejected, keeping previous profile: %v", err)
				continue
			}
			log.Printf("config: profile reloaded from %s", path)
			onChange(p)

			// Re-add in case an atomic save replaced the inode.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("config: watcher error: %v", err)
		}
	}
}
