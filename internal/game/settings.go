package game

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
)

// Settings is the player-editable, JSON-persisted configuration: the
// accessibility/disabled-key toggle plus optional timing overrides.
// Zero-valued override fields mean "use the built-in default".
type Settings struct {
	DisabledActions []string `json:"disabled_actions,omitempty"`

	DebounceMs         int `json:"debounce_ms,omitempty"`
	ReversalWindowMs   int `json:"reversal_window_ms,omitempty"`
	HoldTimeoutMs      int `json:"hold_timeout_ms,omitempty"`
	NonCriticalDelayMs int `json:"non_critical_delay_ms,omitempty"`
}

// DefaultSettings returns the settings used when nothing is persisted.
func DefaultSettings() Settings {
	return Settings{}
}

// Disabled converts the persisted identifiers to Actions.
func (s Settings) Disabled() []Action {
	out := make([]Action, len(s.DisabledActions))
	for i, a := range s.DisabledActions {
		out[i] = Action(a)
	}
	return out
}

// Apply overlays the persisted overrides on an Options value.
func (s Settings) Apply(opts Options) Options {
	if s.DebounceMs > 0 {
		opts.Debounce = msDuration(s.DebounceMs)
	}
	if s.ReversalWindowMs > 0 {
		opts.ReversalWindow = msDuration(s.ReversalWindowMs)
	}
	if s.HoldTimeoutMs > 0 {
		opts.HoldTimeout = msDuration(s.HoldTimeoutMs)
	}
	if s.NonCriticalDelayMs > 0 {
		opts.NonCriticalDelay = msDuration(s.NonCriticalDelayMs)
	}
	return opts
}

// LoadSettings reads persisted settings. A missing file is normal and
// yields defaults silently; a malformed file is logged and yields
// defaults — load never fails outward.
func LoadSettings(path string, log zerolog.Logger) Settings {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("settings unreadable, using defaults")
		}
		return DefaultSettings()
	}
	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("settings malformed, using defaults")
		return DefaultSettings()
	}
	return s
}

// SaveSettings persists settings atomically (write-temp-then-rename),
// creating the parent directory if needed.
func SaveSettings(path string, s Settings) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	if err := renameio.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// SettingsWatcher reloads the settings file when it changes on disk.
// The fsnotify goroutine is the only goroutine in this repo besides the
// game loop; it communicates exclusively through a buffered channel the
// game drains inside its tick, so settings mutation still happens on
// the event-loop thread.
type SettingsWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	updates chan Settings
	log     zerolog.Logger
	done    chan struct{}
}

// WatchSettings starts watching the settings file's directory (editors
// and atomic saves replace the file, so watching the path itself would
// go stale after the first rename).
func WatchSettings(path string, log zerolog.Logger) (*SettingsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	sw := &SettingsWatcher{
		path:    path,
		watcher: w,
		updates: make(chan Settings, 1),
		log:     log.With().Str("component", "settings").Logger(),
		done:    make(chan struct{}),
	}
	go sw.run()
	return sw, nil
}

// Updates delivers reloaded settings. Drain it on the game tick.
func (sw *SettingsWatcher) Updates() <-chan Settings { return sw.updates }

// Close stops the watcher.
func (sw *SettingsWatcher) Close() error {
	close(sw.done)
	return sw.watcher.Close()
}

func (sw *SettingsWatcher) run() {
	for {
		select {
		case <-sw.done:
			return
		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(sw.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			s := LoadSettings(sw.path, sw.log)
			// Keep only the latest pending update.
			select {
			case <-sw.updates:
			default:
			}
			sw.updates <- s
			sw.log.Info().Str("path", sw.path).Msg("settings reloaded")
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.log.Warn().Err(err).Msg("settings watcher error")
		}
	}
}
