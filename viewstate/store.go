// Package viewstate keeps the user's character placement per model and
// persists it as YAML between runs.
package viewstate

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Zoom limits of a placement.
const (
	MinZoom = 0.5
	MaxZoom = 3
)

// FileName is the store file created next to the config.
const FileName = "placements.yaml"

// MemoryOnly is the placement file setting that disables persistence.
const MemoryOnly = "-"

// DefaultKey is used for models without a name.
const DefaultKey = "default"

// Transform is the offset in points and zoom of a character.
type Transform struct {
	OffsetX float32 `yaml:"offsetX"`
	OffsetY float32 `yaml:"offsetY"`
	Zoom    float32 `yaml:"zoom"`
}

// Identity is the untouched placement.
var Identity = Transform{Zoom: 1}

// Sanitize resets a transform holding non-finite values to Identity and
// clamps its zoom. It reports whether t was changed.
func Sanitize(t Transform) (Transform, bool) {
	if !finite(t.OffsetX) || !finite(t.OffsetY) || !finite(t.Zoom) || t.Zoom <= 0 {
		return Identity, true
	}
	z := ClampZoom(t.Zoom)
	if z != t.Zoom {
		t.Zoom = z
		return t, true
	}
	return t, false
}

// ClampZoom limits z to [MinZoom, MaxZoom].
func ClampZoom(z float32) float32 {
	switch {
	case z < MinZoom:
		return MinZoom
	case z > MaxZoom:
		return MaxZoom
	}
	return z
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// Store maps model names to placements. It is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	path  string
	items map[string]Transform
	dirty bool
}

// NewStore returns an empty store kept in memory only.
func NewStore() *Store {
	return &Store{items: make(map[string]Transform)}
}

// Open loads the store at path. A missing file gives an empty store that
// is created on the first Save. Invalid entries are sanitized.
func Open(path string) (*Store, error) {
	s := NewStore()
	s.path = path
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't read placements: %v", err)
	}
	var items map[string]Transform
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("can't parse placements: %v", err)
	}
	for k, t := range items {
		s.put(k, t)
	}
	return s, nil
}

// DefaultPath returns FileName inside the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("can't find config dir: %v", err)
	}
	return filepath.Join(dir, "l2dview", FileName), nil
}

// OpenSetting opens the store named by a placement file setting. An empty
// setting means DefaultPath. Stores that can't be opened are replaced by an
// in-memory one.
func OpenSetting(setting string) *Store {
	if setting == MemoryOnly {
		return NewStore()
	}
	path := setting
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			log.Warnf("placements kept in memory: %v", err)
			return NewStore()
		}
	}
	s, err := Open(path)
	if err != nil {
		log.WithField("path", path).Warnf("placements kept in memory: %v", err)
		return NewStore()
	}
	return s
}

// Path returns the backing file, empty for in-memory stores.
func (s *Store) Path() string { return s.path }

// Get returns the placement saved for model.
func (s *Store) Get(model string) (Transform, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[key(model)]
	return t, ok
}

// Put saves the placement of model, sanitized.
func (s *Store) Put(model string, t Transform) Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(model, t)
}

func (s *Store) put(model string, t Transform) Transform {
	k := key(model)
	clean, changed := Sanitize(t)
	if changed {
		log.WithFields(log.Fields{
			"model":   k,
			"offsetX": t.OffsetX,
			"offsetY": t.OffsetY,
			"zoom":    t.Zoom,
		}).Warn("placement sanitized")
	}
	if old, ok := s.items[k]; !ok || old != clean {
		s.items[k] = clean
		s.dirty = true
	}
	return clean
}

// Clear forgets the placement of model.
func (s *Store) Clear(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key(model)]; ok {
		delete(s.items, key(model))
		s.dirty = true
	}
}

// Save writes the store if it changed since the last save. In-memory
// stores are never written.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" || !s.dirty {
		return nil
	}
	data, err := yaml.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("can't encode placements: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("can't create placements dir: %v", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("can't write placements: %v", err)
	}
	s.dirty = false
	return nil
}

func key(model string) string {
	if strings.TrimSpace(model) == "" {
		return DefaultKey
	}
	return model
}
