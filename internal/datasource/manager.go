package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/lumenboard/lumenboard/internal/logging"
)

// Factory builds a source from its raw JSON config block. The envelope
// fields are already decoded; factories re-decode raw for their own.
type Factory func(name string, raw json.RawMessage, logger logging.Logger) (Source, error)

// factories is the registry of known source types.
var factories = map[string]Factory{
	"stocks": func(name string, raw json.RawMessage, logger logging.Logger) (Source, error) {
		var cfg StockConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, err
		}
		return NewStockSource(name, cfg, logger), nil
	},
	"weather": func(name string, raw json.RawMessage, logger logging.Logger) (Source, error) {
		var cfg WeatherConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, err
		}
		return NewWeatherSource(name, cfg, logger), nil
	},
	"generic": func(name string, raw json.RawMessage, logger logging.Logger) (Source, error) {
		var cfg GenericConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, err
		}
		if cfg.URL == "" {
			return nil, fmt.Errorf("generic source requires a url")
		}
		return NewGenericSource(name, cfg, logger), nil
	},
}

// SourceStatus is a snapshot of one source's health for the admin API.
type SourceStatus struct {
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	LastFetch time.Time `json:"last_fetch,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	HasData   bool      `json:"has_data"`
}

type entry struct {
	source    Source
	data      map[string]interface{}
	lastFetch time.Time
	lastErr   string
}

// Manager owns the registered sources and the merged data context that
// rendering reads. All methods are safe for concurrent use.
type Manager struct {
	logger logging.Logger

	mu      sync.RWMutex
	entries map[string]*entry
}

func NewManager(logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	return &Manager{logger: logger, entries: make(map[string]*entry)}
}

// LoadConfig reads a datasources.json of the form
// {"sources": {"name": {"type": "stocks", ...}, ...}} and registers
// every enabled source. A missing file registers nothing.
func (m *Manager) LoadConfig(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Infof("datasource", "no config at %s", path)
			return nil
		}
		return fmt.Errorf("read datasources config: %w", err)
	}

	var file struct {
		Sources map[string]json.RawMessage `json:"sources"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse datasources config: %w", err)
	}

	for name, block := range file.Sources {
		var envelope Config
		if err := json.Unmarshal(block, &envelope); err != nil {
			return fmt.Errorf("source %q: %w", name, err)
		}
		if !envelope.enabled() {
			m.logger.Infof("datasource", "source %q disabled, skipping", name)
			continue
		}
		factory, ok := factories[envelope.Type]
		if !ok {
			return fmt.Errorf("source %q: unknown type %q", name, envelope.Type)
		}
		src, err := factory(name, block, m.logger)
		if err != nil {
			return fmt.Errorf("source %q: %w", name, err)
		}
		m.Register(src)
	}
	return nil
}

func (m *Manager) Register(src Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[src.Name()] = &entry{source: src}
	m.logger.Infof("datasource", "registered source %q (%s)", src.Name(), src.Type())
}

func (m *Manager) Unregister(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, name)
}

func (m *Manager) Source(name string) (Source, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[name]
	if !ok {
		return nil, false
	}
	return e.source, true
}

// Names returns the registered source names, sorted for stable output.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Refresh fetches one source and folds its result into the context. A
// fetch failure keeps the previous data so the display never blanks a
// field it could still show.
func (m *Manager) Refresh(ctx context.Context, name string) (map[string]interface{}, error) {
	m.mu.RLock()
	e, ok := m.entries[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown data source %q", name)
	}

	data, err := e.source.Fetch(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		e.lastErr = err.Error()
		m.logger.Errorf("datasource", "refresh %q: %v", name, err)
		return nil, err
	}
	e.data = data
	e.lastFetch = time.Now()
	e.lastErr = ""
	m.logger.Infof("datasource", "refreshed %q", name)
	return data, nil
}

// RefreshAll fetches every source concurrently and returns the merged
// context. Individual failures are logged and leave stale data in
// place; RefreshAll itself never fails.
func (m *Manager) RefreshAll(ctx context.Context) map[string]interface{} {
	var wg sync.WaitGroup
	for _, name := range m.Names() {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, _ = m.Refresh(ctx, name)
		}(name)
	}
	wg.Wait()
	return m.Data()
}

// Data snapshots the merged context: one top-level key per source that
// has fetched at least once.
func (m *Manager) Data() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]interface{}, len(m.entries))
	for name, e := range m.entries {
		if e.data != nil {
			out[name] = e.data
		}
	}
	return out
}

// Status reports per-source health, sorted by name.
func (m *Manager) Status() []SourceStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SourceStatus, 0, len(m.entries))
	for name, e := range m.entries {
		out = append(out, SourceStatus{
			Name:      name,
			Type:      e.source.Type(),
			LastFetch: e.lastFetch,
			LastError: e.lastErr,
			HasData:   e.data != nil,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
