package poi

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
)

// Store loads and saves POI documents, one JSON file per route group at
// <dataDir>/<groupID>/pois.json. Saves go through a temp file and a
// rename, and a store-wide mutex serializes read-modify-write cycles so
// concurrent snaps against one document cannot drop each other's
// updates. Group IDs must be validated by the caller before they reach
// the store.
type Store struct {
	dataDir string
	mu      sync.Mutex
}

// NewStore creates a store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

func (s *Store) path(groupID string) string {
	return filepath.Join(s.dataDir, groupID, "pois.json")
}

// Load returns the group's POI document, or an empty versioned document
// if none has been written yet.
func (s *Store) Load(groupID string) (*Document, error) {
	data, err := os.ReadFile(s.path(groupID))
	if os.IsNotExist(err) {
		return &Document{Version: 1, RouteGroupID: groupID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read poi document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode poi document: %w", err)
	}
	if doc.RouteGroupID == "" {
		doc.RouteGroupID = groupID
	}
	return &doc, nil
}

// Save writes the document atomically.
func (s *Store) Save(doc *Document) error {
	path := s.path(doc.RouteGroupID)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create group dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode poi document: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "pois-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write poi document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename poi document: %w", err)
	}
	return nil
}

// Update runs fn against the group's document under the store lock and
// persists the result. fn returning an error aborts the save.
func (s *Store) Update(groupID string, fn func(*Document) error) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.Load(groupID)
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	if err := s.Save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}
