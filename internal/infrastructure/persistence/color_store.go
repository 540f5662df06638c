package persistence

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ColorStore assigns each dropsite a stable pastel color for tote labels.
// Assignments live in a JSON sidecar file so a dropsite keeps its color
// across runs; unknown dropsites get a fresh random pastel on first use.
type ColorStore struct {
	path string

	mu     sync.Mutex
	colors map[string]string
	rng    *rand.Rand
	dirty  bool
}

// NewColorStore loads the sidecar at path. A missing file starts an empty
// store; a corrupt file is an error.
func NewColorStore(path string) (*ColorStore, error) {
	store := &ColorStore{
		path:   path,
		colors: make(map[string]string),
		rng:    rand.New(rand.NewSource(rand.Int63())),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("color store: failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &store.colors); err != nil {
		return nil, fmt.Errorf("color store: invalid sidecar %s: %w", path, err)
	}
	return store, nil
}

// ColorFor returns the pastel color for a dropsite, assigning one when the
// dropsite has not been seen before. Keys are case-insensitive.
func (s *ColorStore) ColorFor(dropsite string) string {
	key := strings.ToLower(strings.TrimSpace(dropsite))

	s.mu.Lock()
	defer s.mu.Unlock()

	if color, ok := s.colors[key]; ok {
		return color
	}
	color := s.randomPastel()
	s.colors[key] = color
	s.dirty = true
	return color
}

// Colors returns a copy of all current assignments.
func (s *ColorStore) Colors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.colors))
	for k, v := range s.colors {
		out[k] = v
	}
	return out
}

// Save writes the sidecar back to disk if any color was assigned since the
// last save. The write merges with assignments made by other processes
// before rewriting the file.
func (s *ColorStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	if data, err := os.ReadFile(s.path); err == nil {
		var existing map[string]string
		if err := json.Unmarshal(data, &existing); err == nil {
			for k, v := range existing {
				if _, ok := s.colors[k]; !ok {
					s.colors[k] = v
				}
			}
		}
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("color store: failed to create %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(s.colors, "", "  ")
	if err != nil {
		return fmt.Errorf("color store: failed to encode colors: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("color store: failed to write %s: %w", s.path, err)
	}

	s.dirty = false
	return nil
}

// randomPastel picks a light color: every channel sits in the upper half of
// the range so black label text stays readable.
func (s *ColorStore) randomPastel() string {
	r := 127 + s.rng.Intn(128)
	g := 127 + s.rng.Intn(128)
	b := 127 + s.rng.Intn(128)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
