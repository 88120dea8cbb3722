package config

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// reloadDebounce is how long a burst of file events is collapsed into one reload.
const reloadDebounce = 100 * time.Millisecond

// Live holds the active Config. Readers call Get on every request; reloads
// swap the whole value so a request never sees a half-applied file.
type Live struct {
	cur  atomic.Pointer[Config]
	path string
}

// NewLive wraps cfg. path may be empty when running on builtin defaults.
func NewLive(cfg *Config, path string) *Live {
	l := &Live{path: path}
	l.cur.Store(cfg)
	return l
}

// Get returns the current config. Callers must not modify it.
func (l *Live) Get() *Config { return l.cur.Load() }

// Path returns the backing file, or "" for defaults.
func (l *Live) Path() string { return l.path }

// Reload re-reads the backing file and swaps it in.
func (l *Live) Reload() error {
	if l.path == "" {
		return nil
	}
	cfg, err := LoadConfig(l.path)
	if err != nil {
		return err
	}
	prev := l.cur.Swap(cfg)
	for _, key := range RestartRequired(prev, cfg) {
		log.Warnf("Config key %s changed in %s; it takes effect after a restart", key, l.path)
	}
	log.Debugf("Reloaded config from %s", l.path)
	return nil
}

// RestartRequired lists the keys that differ between prev and next but are
// only read at startup.
func RestartRequired(prev, next *Config) []string {
	if prev == nil || next == nil {
		return nil
	}
	var keys []string
	if prev.Search.AdvancePenalty != next.Search.AdvancePenalty {
		keys = append(keys, "search.advance_penalty")
	}
	if prev.HTTP.Addr != next.HTTP.Addr {
		keys = append(keys, "http.addr")
	}
	if prev.HTTP.EnableMetrics != next.HTTP.EnableMetrics {
		keys = append(keys, "http.enable_metrics")
	}
	if prev.CLI.DefaultLimit != next.CLI.DefaultLimit {
		keys = append(keys, "cli.default_limit")
	}
	return keys
}

// Update applies limit changes to a copy of the current config, persists it
// and swaps it in.
func (l *Live) Update(maxLimit, defaultLimit, rawLimit *int) error {
	next := l.Get().Clone()
	if err := next.Update(l.path, maxLimit, defaultLimit, rawLimit); err != nil {
		return err
	}
	l.cur.Store(next)
	return nil
}

// Watch reloads the config whenever its file changes, until ctx is done.
// The parent directory is watched so editors that replace the file by
// rename are picked up.
func (l *Live) Watch(ctx context.Context) error {
	if l.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target := filepath.Clean(l.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}
	log.Debugf("Watching config file %s", target)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || (!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create)) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := l.Reload(); err != nil {
				log.Warnf("Config reload failed, keeping previous values: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnf("Config watcher error: %v", err)
		}
	}
}
