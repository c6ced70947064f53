package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const schemaVersion = 1

const (
	defaultPreviewLineLimit = 5000
	defaultHistoryDepth     = 20
)

// Settings is the engine's persisted configuration. Unknown fields from
// newer versions survive a load/save round trip only through backfill, so
// every field needs a backfill rule.
type Settings struct {
	SchemaVersion    int    `json:"schema_version"`
	DefaultSheet     string `json:"default_sheet,omitempty"`
	AutosaveOnApply  bool   `json:"autosave_on_apply"`
	PreviewLineLimit int    `json:"preview_line_limit"`
	HistoryDepth     int    `json:"history_depth"`
}

type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load() (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultSettings(), nil
		}
		return nil, err
	}
	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	backfillSettings(&settings)
	return &settings, nil
}

func (s *Store) Save(settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	backfillSettings(settings)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *Store) Update(fn func(*Settings)) (*Settings, error) {
	settings, err := s.Load()
	if err != nil {
		return nil, err
	}
	fn(settings)
	return settings, s.Save(settings)
}

func defaultSettings() *Settings {
	return &Settings{
		SchemaVersion:    schemaVersion,
		DefaultSheet:     "Sheet1",
		AutosaveOnApply:  true,
		PreviewLineLimit: defaultPreviewLineLimit,
		HistoryDepth:     defaultHistoryDepth,
	}
}

func backfillSettings(settings *Settings) {
	if settings.SchemaVersion == 0 {
		settings.SchemaVersion = schemaVersion
	}
	if settings.DefaultSheet == "" {
		settings.DefaultSheet = "Sheet1"
	}
	if settings.PreviewLineLimit <= 0 {
		settings.PreviewLineLimit = defaultPreviewLineLimit
	}
	// Depth beyond the stack's capacity is clamped rather than rejected.
	if settings.HistoryDepth <= 0 || settings.HistoryDepth > defaultHistoryDepth {
		settings.HistoryDepth = defaultHistoryDepth
	}
}
