package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vango-dev/pagenav/internal/errors"
)

// WatchDebounce is how long file events are coalesced before a reload.
var WatchDebounce = 100 * time.Millisecond

// WatchFiles calls fn after any of paths is written, created, renamed or
// removed. Parent directories are watched so editors that replace files
// atomically are still seen. WatchFiles blocks until ctx is done and
// returns nil, or returns an E105 error if the watcher fails.
func WatchFiles(ctx context.Context, paths []string, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.New("E105").Wrap(err)
	}
	defer watcher.Close()

	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.New("E105").WithFile(p).Wrap(err)
		}
		files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return errors.New("E105").WithFile(dir).Wrap(err)
		}
		dirs[dir] = true
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Has(fsnotify.Chmod) {
				continue
			}
			name, err := filepath.Abs(evt.Name)
			if err != nil || !files[name] {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(WatchDebounce)
			} else {
				timer.Reset(WatchDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			fn()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return errors.New("E105").Wrap(err)
		}
	}
}

// Watch reloads the configuration at path, and its local deck source, on
// every change and passes the result to fn. Reload errors go to fn; the
// watch continues so a later fix is picked up.
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	paths := []string{path}
	cfg, err := LoadFile(path)
	if err == nil {
		if src := SourcePath(cfg); src != "" {
			paths = append(paths, src)
		}
	}
	return WatchFiles(ctx, paths, func() {
		cfg, err := LoadFile(path)
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			fn(nil, err)
			return
		}
		fn(cfg, nil)
	})
}
