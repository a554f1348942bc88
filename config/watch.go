package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gekko3d/galaxy"
)

// watchDebounce is how long the preset must stay quiet before it is re-read.
// Saves usually arrive as a truncate followed by one or more writes.
var watchDebounce = 100 * time.Millisecond

// Watch re-resolves parameters whenever the preset file at path is written or
// replaced. The parent directory is watched so editors that save by rename are
// still seen. Bursts of events are coalesced and empty files are skipped, so a
// half-written save never publishes defaults. The channel holds at most the
// newest result; it is closed when ctx is done. Invalid files are logged and
// skipped.
func Watch(ctx context.Context, path string, env *Env, logger galaxy.Logger) (<-chan galaxy.GenerationParameters, error) {
	if logger == nil {
		logger = galaxy.NewNopLogger()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	out := make(chan galaxy.GenerationParameters, 1)
	go func() {
		defer close(out)
		defer w.Close()

		var timer *time.Timer
		var settled <-chan time.Time
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(watchDebounce)
				} else {
					timer.Reset(watchDebounce)
				}
				settled = timer.C
			case <-settled:
				settled = nil
				if params, ok := reload(abs, env, logger); ok {
					publishLatest(out, params)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Errorf("preset watcher: %v", err)
			}
		}
	}()
	return out, nil
}

func reload(path string, env *Env, logger galaxy.Logger) (galaxy.GenerationParameters, bool) {
	info, err := os.Stat(path)
	if err != nil {
		logger.Warnf("preset reload ignored: %v", err)
		return galaxy.GenerationParameters{}, false
	}
	if info.Size() == 0 {
		logger.Debugf("preset %s is empty, waiting for the next write", path)
		return galaxy.GenerationParameters{}, false
	}
	params, err := ResolveParams(path, env)
	if err != nil {
		logger.Warnf("preset reload ignored: %v", err)
		return galaxy.GenerationParameters{}, false
	}
	logger.Infof("preset %s reloaded", path)
	return params, true
}

// publishLatest replaces any unread value. Only the watcher goroutine sends.
func publishLatest(out chan galaxy.GenerationParameters, params galaxy.GenerationParameters) {
	select {
	case out <- params:
	default:
		select {
		case <-out:
		default:
		}
		out <- params
	}
}
