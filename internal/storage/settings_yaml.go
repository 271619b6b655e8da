package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"eyedoro/internal/core/model"
	"eyedoro/internal/logger"
)

const settingsFileName = "settings.yaml"

// OriginFile marks changes picked up from the settings file itself.
const OriginFile = "file"

type yamlSettings struct {
	WorkDurationMs      *int64  `yaml:"work_duration_ms,omitempty"`
	BreakDurationMs     *int64  `yaml:"break_duration_ms,omitempty"`
	NotifyBeforeBreakMs *int64  `yaml:"notify_before_break_ms,omitempty"`
	NotifyEnabled       *bool   `yaml:"notify_enabled,omitempty"`
	SoundEnabled        *bool   `yaml:"sound_enabled,omitempty"`
	Theme               *string `yaml:"theme,omitempty"`
	AutoStart           *bool   `yaml:"auto_start,omitempty"`
	// DarkMode is the legacy theme flag, migrated to Theme on load.
	DarkMode *bool `yaml:"dark_mode,omitempty"`
}

// ThemeChange is delivered once per actual theme change.
type ThemeChange struct {
	Theme  model.Theme
	Origin string
}

// Store owns the persisted SessionConfig.
type Store struct {
	path string
	log  *logger.Logger

	// fileMu serializes file access with the watcher so a reload never
	// observes a write whose in-memory update has not happened yet.
	fileMu sync.Mutex

	mu        sync.Mutex
	current   model.SessionConfig
	listeners []chan ThemeChange
}

// NewStore creates a store backed by settings.yaml inside dir. Call Load
// before use.
func NewStore(dir string, log *logger.Logger) *Store {
	return &Store{
		path:    filepath.Join(dir, settingsFileName),
		log:     log.Named("settings"),
		current: model.DefaultSessionConfig(),
	}
}

// Path returns the settings file location.
func (store *Store) Path() string {
	return store.path
}

// Load reads the settings file. A missing file yields defaults; an
// unreadable, legacy or invalid file is healed and written back.
func (store *Store) Load() (model.SessionConfig, error) {
	store.fileMu.Lock()
	defer store.fileMu.Unlock()
	config, err := store.read(true)
	store.mu.Lock()
	store.current = config
	store.mu.Unlock()
	return config, err
}

// Reload re-reads the file and makes it current.
func (store *Store) Reload() (model.SessionConfig, error) {
	store.fileMu.Lock()
	defer store.fileMu.Unlock()
	config, err := store.read(true)
	if err != nil {
		return config, err
	}
	store.replace(config, OriginFile)
	return config, nil
}

// Current returns the configuration in effect.
func (store *Store) Current() model.SessionConfig {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.current
}

// Save persists config without an origin.
func (store *Store) Save(config model.SessionConfig) error {
	return store.SaveFrom(config, "")
}

// SaveFrom persists config on behalf of origin. Theme listeners see origin
// so the originating surface can ignore its own change.
func (store *Store) SaveFrom(config model.SessionConfig, origin string) error {
	store.fileMu.Lock()
	defer store.fileMu.Unlock()
	if err := writeSettings(store.path, config); err != nil {
		return err
	}
	store.replace(config, origin)
	return nil
}

// OnThemeChanged registers a theme listener. Delivery never blocks; a full
// channel drops the change.
func (store *Store) OnThemeChanged(buffer int) <-chan ThemeChange {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan ThemeChange, buffer)
	store.mu.Lock()
	store.listeners = append(store.listeners, ch)
	store.mu.Unlock()
	return ch
}

// Close closes every theme listener.
func (store *Store) Close() {
	store.mu.Lock()
	listeners := store.listeners
	store.listeners = nil
	store.mu.Unlock()
	for _, ch := range listeners {
		close(ch)
	}
}

func (store *Store) replace(config model.SessionConfig, origin string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	previous := store.current
	store.current = config
	if previous.Theme == config.Theme {
		return previous != config
	}
	change := ThemeChange{Theme: config.Theme, Origin: origin}
	for _, ch := range store.listeners {
		select {
		case ch <- change:
		default:
		}
	}
	return true
}

// errPartialFile marks an edit observed before the writer finished.
var errPartialFile = errors.New("settings file is empty or incomplete")

// read loads the settings file. With heal set, a corrupted file is replaced
// by defaults and legacy or invalid values are written back; without it,
// such a file is reported and left alone.
func (store *Store) read(heal bool) (model.SessionConfig, error) {
	defaults := model.DefaultSessionConfig()
	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return defaults, fmt.Errorf("read settings file: %w", err)
	}

	if !heal && len(bytes.TrimSpace(rawData)) == 0 {
		return defaults, errPartialFile
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		if !heal {
			return defaults, fmt.Errorf("%w: %v", errPartialFile, err)
		}
		store.log.Warn("settings file corrupted, restoring defaults: %v", err)
		if writeErr := writeSettings(store.path, defaults); writeErr != nil {
			return defaults, writeErr
		}
		return defaults, nil
	}

	config, migrated := applyYamlSettings(fileData)
	corrected := config.Normalize()
	if heal && (migrated || len(corrected) > 0) {
		store.log.Info("rewriting settings (migrated=%t, corrected=%v)", migrated, corrected)
		if err := writeSettings(store.path, config); err != nil {
			return config, err
		}
	}
	return config, nil
}

func applyYamlSettings(fileData yamlSettings) (model.SessionConfig, bool) {
	config := model.DefaultSessionConfig()
	if fileData.WorkDurationMs != nil {
		config.WorkDuration = time.Duration(*fileData.WorkDurationMs) * time.Millisecond
	}
	if fileData.BreakDurationMs != nil {
		config.BreakDuration = time.Duration(*fileData.BreakDurationMs) * time.Millisecond
	}
	if fileData.NotifyBeforeBreakMs != nil {
		config.NotifyBeforeBreak = time.Duration(*fileData.NotifyBeforeBreakMs) * time.Millisecond
	}
	if fileData.NotifyEnabled != nil {
		config.NotifyEnabled = *fileData.NotifyEnabled
	}
	if fileData.SoundEnabled != nil {
		config.SoundEnabled = *fileData.SoundEnabled
	}
	if fileData.AutoStart != nil {
		config.AutoStart = *fileData.AutoStart
	}

	migrated := false
	switch {
	case fileData.Theme != nil:
		config.Theme = model.Theme(*fileData.Theme)
		migrated = fileData.DarkMode != nil
	case fileData.DarkMode != nil:
		config.Theme = model.ThemeLight
		if *fileData.DarkMode {
			config.Theme = model.ThemeDark
		}
		migrated = true
	}
	return config, migrated
}

func writeSettings(path string, config model.SessionConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	work := config.WorkDuration.Milliseconds()
	breakMs := config.BreakDuration.Milliseconds()
	notify := config.NotifyBeforeBreak.Milliseconds()
	theme := string(config.Theme)
	fileData := yamlSettings{
		WorkDurationMs:      &work,
		BreakDurationMs:     &breakMs,
		NotifyBeforeBreakMs: &notify,
		NotifyEnabled:       &config.NotifyEnabled,
		SoundEnabled:        &config.SoundEnabled,
		Theme:               &theme,
		AutoStart:           &config.AutoStart,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}
	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}
