package poi

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"coursemark.dev/srv/snap"
)

func TestStoreRoundtrip(t *testing.T) {
	store := NewStore(t.TempDir())

	p := New("Aid Station 2", "aid", Click{Lat: 44.05, Lon: -121.31})
	p.ApplyPlacements(map[string]snap.PlacementSet{
		"LRG": {{Lat: 44.0501, Lon: -121.3102, SnapIndex: 12, DistanceMeters: 8200, DistanceMiles: 5.095}},
	})

	if _, err := store.Update("hillclimb", func(doc *Document) error {
		doc.POIs = append(doc.POIs, p)
		return nil
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	doc, err := store.Load("hillclimb")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if doc.RouteGroupID != "hillclimb" {
		t.Errorf("expected routeGroupId hillclimb, got %q", doc.RouteGroupID)
	}
	if len(doc.POIs) != 1 {
		t.Fatalf("expected 1 POI, got %d", len(doc.POIs))
	}

	got := doc.POIs[0]
	if got.ID != p.ID || got.Title != "Aid Station 2" {
		t.Errorf("POI mismatch: %+v", got)
	}
	set := got.Variants["LRG"]
	if len(set) != 1 || set[0].SnapIndex != 12 {
		t.Errorf("placement mismatch: %+v", set)
	}
}

func TestStoreLoadMissingGroup(t *testing.T) {
	store := NewStore(t.TempDir())

	doc, err := store.Load("fresh")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if doc.RouteGroupID != "fresh" || len(doc.POIs) != 0 {
		t.Errorf("expected empty document for fresh group, got %+v", doc)
	}
	if doc.Version != 1 {
		t.Errorf("expected version 1, got %d", doc.Version)
	}
}

func TestStorePartialUpdateInvariant(t *testing.T) {
	store := NewStore(t.TempDir())

	p := New("Summit Turn", "turn", Click{Lat: 0, Lon: 0.005})
	p.ApplyPlacements(map[string]snap.PlacementSet{
		"MED": {{Lat: 0, Lon: 0.005, SnapIndex: 3, DistanceMeters: 556, DistanceMiles: 0.3454}},
		"LRG": {{Lat: 0, Lon: 0.005, SnapIndex: 5, DistanceMeters: 1556, DistanceMiles: 0.967}},
	})

	if _, err := store.Update("hillclimb", func(doc *Document) error {
		doc.POIs = append(doc.POIs, p)
		return nil
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// Re-snap only LRG; MED must come back byte-for-byte identical.
	if _, err := store.Update("hillclimb", func(doc *Document) error {
		target := doc.Find(p.ID)
		if target == nil {
			return ErrNotFound
		}
		target.ApplyPlacements(map[string]snap.PlacementSet{
			"LRG": {{Lat: 0, Lon: 0.0052, SnapIndex: 6, DistanceMeters: 1601, DistanceMiles: 0.9948}},
		})
		return nil
	}); err != nil {
		t.Fatalf("re-snap Update failed: %v", err)
	}

	doc, err := store.Load("hillclimb")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := doc.Find(p.ID)
	if got == nil {
		t.Fatal("POI disappeared")
	}

	med := got.Variants["MED"]
	if len(med) != 1 || med[0].SnapIndex != 3 || med[0].DistanceMeters != 556 {
		t.Errorf("MED placement changed by LRG re-snap: %+v", med)
	}
	lrg := got.Variants["LRG"]
	if len(lrg) != 1 || lrg[0].SnapIndex != 6 {
		t.Errorf("LRG placement not updated: %+v", lrg)
	}
}

func TestStoreUpdateAbortsOnError(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if _, err := store.Update("g", func(doc *Document) error {
		doc.POIs = append(doc.POIs, New("x", "landmark", Click{}))
		return errors.New("boom")
	}); err == nil {
		t.Fatal("expected error from Update")
	}

	if _, err := os.Stat(filepath.Join(dir, "g", "pois.json")); !os.IsNotExist(err) {
		t.Error("aborted update must not persist a document")
	}
}

func TestStoreSerializesSingletonAsBareObject(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	p := New("Water Stop", "aid", Click{})
	p.ApplyPlacements(map[string]snap.PlacementSet{
		"SML": {{Lat: 1, Lon: 2, SnapIndex: 1, DistanceMeters: 100, DistanceMiles: 0.0621}},
	})

	if _, err := store.Update("g", func(doc *Document) error {
		doc.POIs = append(doc.POIs, p)
		return nil
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "g", "pois.json"))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if strings.Contains(string(raw), `"SML": [`) {
		t.Errorf("singleton placement must serialize as a bare object:\n%s", raw)
	}
}

func TestDocumentRemove(t *testing.T) {
	doc := &Document{RouteGroupID: "g"}
	p := New("x", "landmark", Click{})
	doc.POIs = append(doc.POIs, p)

	if err := doc.Remove("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := doc.Remove(p.ID); err != nil {
		t.Errorf("Remove failed: %v", err)
	}
	if len(doc.POIs) != 0 {
		t.Errorf("expected empty document, got %d POIs", len(doc.POIs))
	}
}
