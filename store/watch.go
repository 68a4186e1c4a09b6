package store

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/tvloop/tvloop/log"
)

// ProfileWatcher follows the active profile file on disk.
type ProfileWatcher struct {
	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
	once    sync.Once
}

// WatchProfile calls onChange with the new profile name whenever the file at
// path is written. The directory is watched so that editors replacing the file are seen too.
// onChange runs on the watcher goroutine.
func WatchProfile(path string, onChange func(name string)) (*ProfileWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w := &ProfileWatcher{watcher: fsWatcher}
	w.wg.Add(1)
	go w.eventLoop(filepath.Clean(path), onChange)

	log.Infof("watching active profile at %s", path)
	return w, nil
}

func (w *ProfileWatcher) eventLoop(path string, onChange func(string)) {
	defer w.wg.Done()

	last := readProfile(path)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}

			name := readProfile(path)
			if name == "" || name == last {
				continue
			}
			last = name
			onChange(name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("profile watcher: %s", err)
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *ProfileWatcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
