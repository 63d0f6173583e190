package snap

import (
	"fmt"

	"coursemark.dev/srv/gpx"
)

// RouteSource provides canonical GPX text per route variant. The
// geometry is re-read and recomputed on every call; nothing here caches
// across requests.
type RouteSource interface {
	ReadVariant(groupID, label string) (string, error)
}

// Result carries the per-variant outcome of one multi-variant snap.
// Variants are processed independently, so a failure on one label never
// blocks placements for the others.
type Result struct {
	Placements map[string]PlacementSet
	Errors     map[string]error
}

// SnapVariants attaches one click to every requested variant of a route
// group: per label it loads the canonical GPX, decodes the track,
// computes the distance series, projects the click and reduces the hits
// to ordered passes.
func SnapVariants(src RouteSource, groupID string, click Coord, labels []string) (Result, error) {
	if !click.Valid() {
		return Result{}, ErrBadCoordinate
	}

	res := Result{
		Placements: make(map[string]PlacementSet, len(labels)),
		Errors:     make(map[string]error),
	}
	for _, label := range labels {
		set, err := snapVariant(src, groupID, label, click)
		if err != nil {
			res.Errors[label] = err
			continue
		}
		res.Placements[label] = set
	}
	return res, nil
}

func snapVariant(src RouteSource, groupID, label string, click Coord) (PlacementSet, error) {
	raw, err := src.ReadVariant(groupID, label)
	if err != nil {
		return nil, err
	}

	points, err := gpx.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("variant %q: %w", label, err)
	}

	return SnapToTrack(click, points)
}

// SnapToTrack projects a click onto one decoded track and reduces the
// hits to an ordered placement set.
func SnapToTrack(click Coord, points []gpx.Point) (PlacementSet, error) {
	if !click.Valid() {
		return nil, ErrBadCoordinate
	}
	if len(points) < 2 {
		return nil, ErrDegenerateTrack
	}

	stats := gpx.ComputeStats(points)
	return Reduce(Project(click, points, stats.DistanceSeries)), nil
}
