package snap

import (
	"math"
	"testing"

	"coursemark.dev/srv/gpx"
)

// metersPerDegree is the length of one degree of latitude (or of
// longitude at the equator) on the spherical earth used by the engine.
const metersPerDegree = gpx.EarthRadiusM * math.Pi / 180

// equatorTrack builds a track along the equator from longitudes, so
// test distances stay easy to reason about in meters.
func equatorTrack(lons ...float64) []gpx.Point {
	points := make([]gpx.Point, len(lons))
	for i, lon := range lons {
		points[i] = gpx.Point{Lat: 0, Lon: lon}
	}
	return points
}

func trackSeries(points []gpx.Point) []float64 {
	return gpx.ComputeStats(points).DistanceSeries
}

func TestProjectAtVertex(t *testing.T) {
	points := equatorTrack(0, 0.002, 0.004, 0.006, 0.008, 0.01)
	series := trackSeries(points)

	// Click exactly on vertex 2. Both adjacent segments produce the
	// same projection; every reported hit must sit on that vertex.
	hits := Project(Coord{Lat: 0, Lon: 0.004}, points, series)

	if len(hits) == 0 {
		t.Fatal("expected at least one hit")
	}
	for _, h := range hits {
		if h.Fallback {
			t.Error("click on the track must not degrade to fallback")
		}
		if h.Index != 2 {
			t.Errorf("expected snap index 2, got %d", h.Index)
		}
		if relErr := math.Abs(h.AlongM-series[2]) / series[2]; relErr > 1e-6 {
			t.Errorf("expected along-route distance %f, got %f", series[2], h.AlongM)
		}
		if h.LateralM > 1e-6 {
			t.Errorf("expected zero lateral distance, got %f", h.LateralM)
		}
	}
}

func TestProjectToleranceBoundary(t *testing.T) {
	points := equatorTrack(0, 0.002, 0.004, 0.006, 0.008, 0.01)
	series := trackSeries(points)

	t.Run("inside tolerance", func(t *testing.T) {
		// 11.9 m laterally off the middle of segment 2.
		q := Coord{Lat: 11.9 / metersPerDegree, Lon: 0.005}
		hits := Project(q, points, series)

		if len(hits) != 1 {
			t.Fatalf("expected 1 hit, got %d", len(hits))
		}
		h := hits[0]
		if h.Fallback {
			t.Error("expected a confident segment hit, got fallback")
		}
		if math.Abs(h.LateralM-11.9) > 0.01 {
			t.Errorf("expected lateral ~11.9 m, got %f", h.LateralM)
		}
		if math.Abs(h.AlongM-0.005*metersPerDegree) > 0.01 {
			t.Errorf("expected along ~%f, got %f", 0.005*metersPerDegree, h.AlongM)
		}
	})

	t.Run("outside tolerance falls back", func(t *testing.T) {
		// 13 m off: no segment qualifies, the engine degrades to the
		// nearest vertex instead of failing.
		q := Coord{Lat: 13 / metersPerDegree, Lon: 0.005}
		hits := Project(q, points, series)

		if len(hits) != 1 {
			t.Fatalf("expected exactly 1 fallback hit, got %d", len(hits))
		}
		h := hits[0]
		if !h.Fallback {
			t.Fatal("expected fallback hit")
		}
		if h.Index != 2 {
			t.Errorf("expected nearest vertex 2, got %d", h.Index)
		}
		if h.AlongM != series[2] {
			t.Errorf("expected vertex distance %f, got %f", series[2], h.AlongM)
		}
	})
}

func TestProjectFarQueryFallsBackToNearestVertex(t *testing.T) {
	points := equatorTrack(0, 0.002, 0.004)
	series := trackSeries(points)

	hits := Project(Coord{Lat: 1, Lon: 0.0041}, points, series)

	if len(hits) != 1 || !hits[0].Fallback {
		t.Fatalf("expected single fallback hit, got %+v", hits)
	}
	if hits[0].Index != 2 {
		t.Errorf("expected nearest vertex 2, got %d", hits[0].Index)
	}
}

func TestNearestVertexTieBreak(t *testing.T) {
	tests := []struct {
		i        int
		t        float64
		expected int
	}{
		{3, 0, 3},
		{3, 0.25, 3},
		{3, 0.5, 3}, // boundary belongs to the lower vertex
		{3, 0.500001, 4},
		{3, 1, 4},
	}

	for _, tc := range tests {
		if got := nearestVertex(tc.i, tc.t); got != tc.expected {
			t.Errorf("nearestVertex(%d, %f): expected %d, got %d",
				tc.i, tc.t, tc.expected, got)
		}
	}
}

func BenchmarkProject(b *testing.B) {
	points := make([]gpx.Point, 2000)
	for i := range points {
		points[i] = gpx.Point{Lat: 0, Lon: float64(i) * 0.0001}
	}
	series := trackSeries(points)
	q := Coord{Lat: 5 / metersPerDegree, Lon: 0.1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Project(q, points, series)
	}
}
