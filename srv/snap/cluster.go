package snap

import (
	"bytes"
	"sort"

	json "github.com/goccy/go-json"

	"coursemark.dev/srv/gpx"
)

// Placement is one physical attachment of a POI to a route variant.
// PassIndex disambiguates multiple crossings of the same location,
// ordered by increasing along-route distance.
type Placement struct {
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	SnapIndex      int     `json:"snapIndex"`
	DistanceMeters float64 `json:"distanceMeters"`
	DistanceMiles  float64 `json:"distanceMiles"`
	PassIndex      int     `json:"passIndex"`
	Fallback       bool    `json:"fallback,omitempty"`
}

// PlacementSet is a non-empty list of placements for one variant,
// ordered by increasing along-route distance, one per distinct
// crossing. Internally the shape is always a list; the serialization
// boundary collapses a singleton to a bare placement for compatibility
// with existing documents.
type PlacementSet []Placement

// MarshalJSON writes a singleton set as a bare placement and multiple
// passes as an array.
func (s PlacementSet) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]Placement(s))
}

// UnmarshalJSON accepts both the bare-placement and array forms.
func (s *PlacementSet) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []Placement
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*s = list
		return nil
	}

	var one Placement
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*s = PlacementSet{one}
	return nil
}

// Reduce collapses raw projection hits into one placement per physical
// crossing.
//
// Dense GPS sampling near one crossing produces many near-duplicate
// hits, while a self-intersecting course produces multiple genuine
// crossings that must stay distinct. Two passes over the hits sorted by
// along-route distance handle both: a geometric dedupe drops hits
// within DedupeToleranceM of the last kept hit of the same crossing,
// then gap clustering groups the survivors into buckets whose
// consecutive along-route gaps stay within ClusterToleranceM, keeping
// the laterally closest member of each bucket.
func Reduce(hits []Hit) PlacementSet {
	if len(hits) == 0 {
		return nil
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].AlongM < hits[j].AlongM })

	// A hit at the same geographic location is only redundant when it
	// belongs to the same crossing. A revisit far along the route is a
	// genuine second pass even at zero geographic separation.
	kept := []Hit{hits[0]}
	for _, h := range hits[1:] {
		last := kept[len(kept)-1]
		sameSpot := gpx.HaversineM(last.Lat, last.Lon, h.Lat, h.Lon) <= DedupeToleranceM
		sameCrossing := h.AlongM-last.AlongM <= ClusterToleranceM
		if sameSpot && sameCrossing {
			continue
		}
		kept = append(kept, h)
	}

	var reps []Hit
	best := kept[0]
	prevAlong := kept[0].AlongM
	for _, h := range kept[1:] {
		if h.AlongM-prevAlong > ClusterToleranceM {
			reps = append(reps, best)
			best = h
		} else if h.LateralM < best.LateralM {
			best = h
		}
		prevAlong = h.AlongM
	}
	reps = append(reps, best)

	set := make(PlacementSet, len(reps))
	for i, h := range reps {
		set[i] = Placement{
			Lat:            h.Lat,
			Lon:            h.Lon,
			SnapIndex:      h.Index,
			DistanceMeters: h.AlongM,
			DistanceMiles:  h.AlongM / gpx.MetersPerMile,
			PassIndex:      i,
			Fallback:       h.Fallback,
		}
	}
	return set
}
