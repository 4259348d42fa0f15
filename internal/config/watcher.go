package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"jettower/pkg/logging"
	"jettower/pkg/plugin"
)

const (
	// DefaultDebounceInterval is the time to wait after the last change event
	// before reloading. Editors often write a file in several steps.
	DefaultDebounceInterval = 300 * time.Millisecond

	// DefaultPollInterval is used when fsnotify is unavailable.
	DefaultPollInterval = 5 * time.Second
)

// WatcherConfig holds configuration for the configuration watcher.
type WatcherConfig struct {
	// Path is the configuration file to watch.
	Path string

	// Registry receives the reloaded instances.
	Registry *plugin.StaticRegistry

	// Initial is the configuration currently applied to Registry.
	Initial Config

	// Debounce defaults to DefaultDebounceInterval.
	Debounce time.Duration

	// PollInterval defaults to DefaultPollInterval.
	PollInterval time.Duration

	// OnReload is called after a reloaded configuration was applied. Calls
	// never overlap.
	OnReload func(Config)

	// OnError is called when a reload fails; the previous configuration stays.
	OnError func(error)
}

// Watcher keeps a plugin registry in sync with the configuration file.
// It uses fsnotify on the file's directory, so editors that replace the file
// are handled, and falls back to polling the modification time.
type Watcher struct {
	mu sync.Mutex

	config  WatcherConfig
	current Config

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool

	lastModTime time.Time

	// reloadMu serializes Reload, so OnReload and OnError never run
	// concurrently.
	reloadMu sync.Mutex

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// NewWatcher creates a watcher. Call Start to begin watching.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce == 0 {
		config.Debounce = DefaultDebounceInterval
	}
	if config.PollInterval == 0 {
		config.PollInterval = DefaultPollInterval
	}

	return &Watcher{
		config:  config,
		current: config.Initial,
	}
}

// Start begins watching for configuration changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.stopCh = make(chan struct{})
	w.running = true

	dir := filepath.Dir(w.config.Path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("ConfigWatcher", "fsnotify not available, falling back to polling: %v", err)
		go w.pollForChanges(w.stopCh)
		return nil
	}

	if err := watcher.Add(dir); err != nil {
		logging.Warn("ConfigWatcher", "Failed to watch directory %s, falling back to polling: %v", dir, err)
		watcher.Close()
		go w.pollForChanges(w.stopCh)
		return nil
	}

	w.fsWatcher = watcher
	go w.processEvents(w.stopCh, watcher.Events, watcher.Errors)

	logging.Info("ConfigWatcher", "Watching %s for configuration changes", w.config.Path)
	return nil
}

// processEvents handles fsnotify events. The channels are passed in so Stop
// can close the watcher without racing this loop.
func (w *Watcher) processEvents(stopCh <-chan struct{}, eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("ConfigWatcher", err, "fsnotify error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.config.Path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	logging.Debug("ConfigWatcher", "Configuration file changed: %s (%s)", event.Name, event.Op)
	w.triggerReloadDebounced()
}

func (w *Watcher) triggerReloadDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.config.Debounce, func() {
		if w.IsRunning() {
			_ = w.Reload()
		}
	})
}

// pollForChanges implements fallback polling when fsnotify is not available.
func (w *Watcher) pollForChanges(stopCh <-chan struct{}) {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	w.checkForChanges()

	for {
		select {
		case <-stopCh:
			return

		case <-ticker.C:
			if w.checkForChanges() {
				logging.Debug("ConfigWatcher", "Configuration change detected via polling")
				w.triggerReloadDebounced()
			}
		}
	}
}

// checkForChanges reports whether the file's modification time moved
// forward since the last check.
func (w *Watcher) checkForChanges() bool {
	info, err := os.Stat(w.config.Path)
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	modTime := info.ModTime()
	changed := !w.lastModTime.IsZero() && modTime.After(w.lastModTime)
	w.lastModTime = modTime
	return changed
}

// Reload loads the file, applies it to the registry and reports the result
// through OnReload or OnError. On failure the previous configuration stays
// in effect. Concurrent calls run one after another.
func (w *Watcher) Reload() error {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	cfg, err := LoadConfig(w.config.Path)
	if err != nil {
		logging.Error("ConfigWatcher", err, "Failed to reload %s, keeping previous configuration", w.config.Path)
		if w.config.OnError != nil {
			w.config.OnError(err)
		}
		return err
	}

	w.mu.Lock()
	previous := w.current
	w.current = cfg
	w.mu.Unlock()

	if w.config.Registry != nil {
		cfg.ApplyToRegistry(w.config.Registry, &previous)
	}

	logging.Info("ConfigWatcher", "Reloaded %s with %d instance(s)", w.config.Path, len(cfg.Instances))
	if w.config.OnReload != nil {
		w.config.OnReload(cfg)
	}
	return nil
}

// Current returns the configuration currently applied.
func (w *Watcher) Current() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			logging.Warn("ConfigWatcher", "Error closing fsnotify watcher: %v", err)
		}
		w.fsWatcher = nil
	}

	logging.Info("ConfigWatcher", "Stopped watching %s", w.config.Path)
	return nil
}

// IsRunning returns whether the watcher is currently active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
