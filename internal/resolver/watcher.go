package resolver

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ConfigWatcher watches the workspace root for changes to the files the
// resolvers read (.devdbrc, .env) and invokes onChange so cached providers
// can be reset and re-resolved.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	log      zerolog.Logger
	onChange func()
}

// NewConfigWatcher starts watching root. onChange may be called from the
// watcher goroutine; callers are responsible for their own locking.
func NewConfigWatcher(root string, log zerolog.Logger, onChange func()) (*ConfigWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(root); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	cw := &ConfigWatcher{watcher: w, log: log, onChange: onChange}
	go cw.loop()
	return cw, nil
}

func (w *ConfigWatcher) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Base(ev.Name)
			if name != ConfigFileName && name != ".env" {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Info().Str("file", name).Msg("workspace configuration changed")
			w.onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("config watcher error")
		}
	}
}

func (w *ConfigWatcher) Close() error {
	return w.watcher.Close()
}
