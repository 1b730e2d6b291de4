// Package state persists runtime settings that should survive a
// restart: the active layout and the last brightness the user picked.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Settings is the snapshot exchanged with callers. Brightness -1 means
// the user never set one.
type Settings struct {
	ActiveLayout string `json:"active_layout,omitempty"`
	Brightness   int    `json:"brightness"`
	ScreenOn     bool   `json:"screen_on"`
}

type Store struct {
	mu       sync.RWMutex
	path     string
	settings Settings
}

func NewStore(path string) *Store {
	return &Store{
		path:     path,
		settings: Settings{Brightness: -1, ScreenOn: true},
	}
}

// Load reads the settings file. A missing file is not an error; the
// defaults stand.
func (store *Store) Load() error {
	data, err := os.ReadFile(store.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	store.mu.Lock()
	store.settings = s
	store.mu.Unlock()
	return nil
}

func (store *Store) Save() error {
	store.mu.RLock()
	s := store.settings
	store.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(store.path, data, 0o644)
}

func (store *Store) Snapshot() Settings {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.settings
}

func (store *Store) SetActiveLayout(name string) {
	store.mu.Lock()
	store.settings.ActiveLayout = name
	store.mu.Unlock()
}

func (store *Store) SetBrightness(level int) {
	store.mu.Lock()
	store.settings.Brightness = level
	store.mu.Unlock()
}

func (store *Store) SetScreenOn(on bool) {
	store.mu.Lock()
	store.settings.ScreenOn = on
	store.mu.Unlock()
}
