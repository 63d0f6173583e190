// Package poi models the point-of-interest documents for a route group
// and their JSON persistence.
package poi

import (
	"errors"

	"github.com/google/uuid"

	"coursemark.dev/srv/snap"
)

// ErrNotFound reports a POI id missing from a document.
var ErrNotFound = errors.New("poi: not found")

// Click is the editor's original map click, kept so later re-snaps can
// reuse it when a request carries no coordinate.
type Click struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// POI is one point of interest with its per-variant placements.
type POI struct {
	ID            string                       `json:"id"`
	Title         string                       `json:"title"`
	Type          string                       `json:"type"`
	OriginalClick Click                        `json:"originalClick"`
	Variants      map[string]snap.PlacementSet `json:"variants"`
}

// New creates a POI with a fresh id and no placements.
func New(title, poiType string, click Click) POI {
	return POI{
		ID:            uuid.NewString(),
		Title:         title,
		Type:          poiType,
		OriginalClick: click,
		Variants:      make(map[string]snap.PlacementSet),
	}
}

// ApplyPlacements merges snapped placements for the given labels into
// the POI. Entries for labels absent from the map are left untouched,
// so re-snapping one variant never disturbs the others.
func (p *POI) ApplyPlacements(sets map[string]snap.PlacementSet) {
	if p.Variants == nil {
		p.Variants = make(map[string]snap.PlacementSet, len(sets))
	}
	for label, set := range sets {
		p.Variants[label] = set
	}
}

// Document is the canonical POI file for one route group.
type Document struct {
	Version      int    `json:"version,omitempty"`
	RouteGroupID string `json:"routeGroupId"`
	POIs         []POI  `json:"pois"`
}

// Find returns a pointer into the document's POI slice, or nil.
func (d *Document) Find(id string) *POI {
	for i := range d.POIs {
		if d.POIs[i].ID == id {
			return &d.POIs[i]
		}
	}
	return nil
}

// Remove deletes the POI with the given id. It returns ErrNotFound if
// no such POI exists.
func (d *Document) Remove(id string) error {
	for i := range d.POIs {
		if d.POIs[i].ID == id {
			d.POIs = append(d.POIs[:i], d.POIs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
