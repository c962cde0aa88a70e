package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// debounce window for editors that write a config file in several steps
const reloadDebounce = 500 * time.Millisecond

// Watcher reloads the configuration file when it changes on disk and hands
// the result to a callback. Only runtime tunables should be applied from the
// callback; device and log settings are read once at startup.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func(*Config)
	log      zerolog.Logger
	stop     chan struct{}
}

// WatchConfig starts watching the directory containing path. The directory
// is watched rather than the file itself so rename-based saves are seen.
func WatchConfig(path string, log zerolog.Logger, onChange func(*Config)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fsWatcher,
		path:     path,
		onChange: onChange,
		log:      log,
		stop:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	pendingReload := false

	for {
		select {
		case <-w.stop:
			return

		case <-timer.C:
			if !pendingReload {
				continue
			}
			pendingReload = false
			cfg, err := LoadConfig(w.path)
			if err != nil {
				w.log.Warn().Str("path", w.path).Err(err).Msg("failed to reload config, keeping current settings")
				continue
			}
			w.log.Info().Str("path", w.path).Msg("config reloaded")
			w.onChange(cfg)

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if !pendingReload {
				pendingReload = true
				timer.Reset(reloadDebounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("config watch error")
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() {
	close(w.stop)
	_ = w.watcher.Close()
}
