// Package snap attaches click coordinates to route geometry. A click is
// projected onto every segment of a variant's track, and the resulting
// hits are reduced to one placement per physical crossing, so a course
// that loops over itself yields one ordered pass per crossing.
package snap

import (
	"errors"
	"math"

	"coursemark.dev/srv/gpx"
)

const (
	// SnapToleranceM is the maximum lateral distance, inclusive, between
	// a click and a route segment for the segment to count as a hit.
	SnapToleranceM = 12.0

	// DedupeToleranceM is the great-circle separation under which two
	// hits of the same crossing count as the same physical location.
	DedupeToleranceM = 6.0

	// ClusterToleranceM is the largest along-route gap between
	// consecutive hits that still belong to one crossing.
	ClusterToleranceM = 12.0
)

// ErrDegenerateTrack reports a decoded point sequence too short to
// project onto.
var ErrDegenerateTrack = errors.New("snap: track has fewer than 2 points")

// ErrBadCoordinate reports a click with a non-finite latitude or
// longitude.
var ErrBadCoordinate = errors.New("snap: click coordinate is not finite")

// Coord is a geographic query coordinate.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both components are finite numbers.
func (c Coord) Valid() bool {
	return !math.IsNaN(c.Lat) && !math.IsInf(c.Lat, 0) &&
		!math.IsNaN(c.Lon) && !math.IsInf(c.Lon, 0)
}

// Hit is one candidate attachment of a click to the track, produced by
// Project and consumed by Reduce.
type Hit struct {
	Lat      float64 // projected point on the track
	Lon      float64
	AlongM   float64 // along-route distance of the projection
	Index    int     // nearest vertex index
	LateralM float64 // true great-circle distance from the click
	Fallback bool    // set when no segment was within tolerance
}

// Project finds every track segment within snap tolerance of the query
// and the along-route distance of each projection.
//
// Each segment is projected in a local flat-earth frame centered on the
// query latitude (longitude scaled by cos(lat) so x and y are both in
// meters), but the reported lateral distance is always the true
// haversine distance to the projected point. If no segment qualifies,
// Project degrades to a single coarse hit at the nearest vertex rather
// than failing.
func Project(query Coord, points []gpx.Point, series []float64) []Hit {
	const radPerDeg = math.Pi / 180
	mPerDeg := gpx.EarthRadiusM * radPerDeg
	cosLat := math.Cos(query.Lat * radPerDeg)

	var hits []Hit
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]

		// Local frame with the query at the origin.
		ax := (a.Lon - query.Lon) * cosLat * mPerDeg
		ay := (a.Lat - query.Lat) * mPerDeg
		bx := (b.Lon - query.Lon) * cosLat * mPerDeg
		by := (b.Lat - query.Lat) * mPerDeg

		dx, dy := bx-ax, by-ay
		t := 0.0
		if l2 := dx*dx + dy*dy; l2 > 0 {
			t = math.Min(1, math.Max(0, -(ax*dx+ay*dy)/l2))
		}

		lat := a.Lat + (b.Lat-a.Lat)*t
		lon := a.Lon + (b.Lon-a.Lon)*t
		lateral := gpx.HaversineM(query.Lat, query.Lon, lat, lon)
		if lateral > SnapToleranceM {
			continue
		}

		segLen := series[i+1] - series[i]
		hits = append(hits, Hit{
			Lat:      lat,
			Lon:      lon,
			AlongM:   series[i] + segLen*t,
			Index:    nearestVertex(i, t),
			LateralM: lateral,
		})
	}

	if len(hits) == 0 {
		return []Hit{nearestVertexHit(query, points, series)}
	}
	return hits
}

// nearestVertex maps a segment interpolation parameter to the vertex
// the projection sits closer to. The t <= 0.5 rule is load-bearing for
// previously stored placements; change it only together with a
// migration of existing documents.
func nearestVertex(i int, t float64) int {
	if t <= 0.5 {
		return i
	}
	return i + 1
}

// nearestVertexHit is the out-of-tolerance fallback: a coarse
// attachment at the closest vertex anywhere on the track.
func nearestVertexHit(query Coord, points []gpx.Point, series []float64) Hit {
	best := 0
	bestDist := math.Inf(1)
	for i, pt := range points {
		if d := gpx.HaversineM(query.Lat, query.Lon, pt.Lat, pt.Lon); d < bestDist {
			best, bestDist = i, d
		}
	}
	return Hit{
		Lat:      points[best].Lat,
		Lon:      points[best].Lon,
		AlongM:   series[best],
		Index:    best,
		LateralM: bestDist,
		Fallback: true,
	}
}
