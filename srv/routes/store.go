// Package routes serves the canonical GPX files for route groups and
// their distance variants.
package routes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// NotFoundError reports a missing route group or variant file.
type NotFoundError struct {
	GroupID string
	Label   string
}

func (e *NotFoundError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("route group %q not found", e.GroupID)
	}
	return fmt.Sprintf("variant %q not found in route group %q", e.Label, e.GroupID)
}

// ErrBadID rejects group or variant identifiers that could escape the
// data directory.
var ErrBadID = errors.New("routes: invalid identifier")

var idPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidID reports whether an identifier is safe to use as a path
// component.
func ValidID(id string) bool {
	return idPattern.MatchString(id) && !strings.Contains(id, "..")
}

// Store reads GPX files laid out as <dataDir>/<groupID>/<label>.gpx.
// Files are re-read on every call; there is no geometry cache, so edits
// to a GPX file take effect on the next request.
type Store struct {
	dataDir string
}

// NewStore creates a store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

func (s *Store) groupDir(groupID string) string {
	return filepath.Join(s.dataDir, groupID)
}

// GroupExists verifies the route group directory is present.
func (s *Store) GroupExists(groupID string) error {
	if !ValidID(groupID) {
		return ErrBadID
	}
	info, err := os.Stat(s.groupDir(groupID))
	if os.IsNotExist(err) || (err == nil && !info.IsDir()) {
		return &NotFoundError{GroupID: groupID}
	}
	if err != nil {
		return fmt.Errorf("stat route group: %w", err)
	}
	return nil
}

// ReadVariant returns the canonical GPX text for one variant.
func (s *Store) ReadVariant(groupID, label string) (string, error) {
	if !ValidID(groupID) || !ValidID(label) {
		return "", ErrBadID
	}

	data, err := os.ReadFile(filepath.Join(s.groupDir(groupID), label+".gpx"))
	if os.IsNotExist(err) {
		if statErr := s.GroupExists(groupID); statErr != nil {
			return "", statErr
		}
		return "", &NotFoundError{GroupID: groupID, Label: label}
	}
	if err != nil {
		return "", fmt.Errorf("read variant %s/%s: %w", groupID, label, err)
	}
	return string(data), nil
}

// ListVariants returns the labels that have a GPX file on disk, sorted.
func (s *Store) ListVariants(groupID string) ([]string, error) {
	if !ValidID(groupID) {
		return nil, ErrBadID
	}

	entries, err := os.ReadDir(s.groupDir(groupID))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{GroupID: groupID}
	}
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}

	labels := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if label, ok := strings.CutSuffix(e.Name(), ".gpx"); ok {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels, nil
}

// WriteVariant stores canonical GPX for a variant. The write goes
// through a temp file in the same directory and a rename, so readers
// never observe a partial file.
func (s *Store) WriteVariant(groupID, label, raw string) error {
	if !ValidID(groupID) || !ValidID(label) {
		return ErrBadID
	}

	dir := s.groupDir(groupID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create group dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, label+"-*.gpx.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.WriteString(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write variant: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, label+".gpx")); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename variant file: %w", err)
	}
	return nil
}
