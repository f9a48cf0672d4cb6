package graph

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

/*
Store persists the canonical graph JSON. The markdown mirror is written
by the caller (it needs the synthesizer, which sits above this package).
*/
type Store struct {
	meta Meta
}

func NewStore(meta Meta) *Store {
	return &Store{meta: meta}
}

func (s *Store) Meta() Meta {
	return s.meta
}

// Exists reports whether a persisted graph is on disk.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.meta.GraphPath)
	return err == nil && !info.IsDir()
}

/*
Load reads the persisted graph and runs it through Normalize, so a
hand-edited or corrupted file comes back repaired rather than rejected.
A missing file returns fs.ErrNotExist.
*/
func (s *Store) Load() (*KnowledgeGraph, error) {
	data, err := os.ReadFile(s.meta.GraphPath)
	if err != nil {
		return nil, err
	}

	var raw RawGraph
	if err := json.Unmarshal(data, &raw); err != nil {
		// A file that is not even a JSON object normalizes to an empty
		// graph; the next save overwrites it with something valid.
		log.Warn("persisted graph unreadable, repairing", "path", s.meta.GraphPath, "error", err)
		raw = RawGraph{}
	}

	return Normalize(raw, s.meta), nil
}

// LoadIfExists returns (nil, nil) when no graph has been persisted yet.
func (s *Store) LoadIfExists() (*KnowledgeGraph, error) {
	g, err := s.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return g, err
}

// Save writes the graph as pretty-printed JSON, creating the memory
// directory on first use.
func (s *Store) Save(g *KnowledgeGraph) error {
	if err := os.MkdirAll(filepath.Dir(s.meta.GraphPath), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.meta.GraphPath, append(data, '\n'), 0o644)
}
