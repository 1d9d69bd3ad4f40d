package wallpaper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dixieflatline76/BingWall/util/log"
	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher calls onChange after the config file was written, created or replaced.
// Bursts of events within the debounce window produce one call.
type ConfigWatcher struct {
	path     string
	debounce time.Duration
	onChange func()
}

// NewConfigWatcher creates a watcher for path.
func NewConfigWatcher(path string, debounce time.Duration, onChange func()) *ConfigWatcher {
	return &ConfigWatcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
	}
}

// Run watches until ctx is cancelled. The parent directory is watched so that
// editors that save by renaming are noticed too.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.Printf("Watching %s for changes", w.path)

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debugf("Config watcher: %s", event)

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				log.Print("Configuration changed, triggering update")
				w.onChange()
			})
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnf("Config watcher error: %v", err)
		}
	}
}
