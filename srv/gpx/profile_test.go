package gpx

import (
	"math"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestComputeStatsSeries(t *testing.T) {
	points := []Point{
		{Lat: 0, Lon: 0, Elevation: ptr(100)},
		{Lat: 0, Lon: 0.001, Elevation: ptr(110)},
		{Lat: 0, Lon: 0.002, Elevation: ptr(105)},
		{Lat: 0, Lon: 0.003, Elevation: ptr(112)},
	}

	s := ComputeStats(points)

	if len(s.DistanceSeries) != len(points) {
		t.Fatalf("expected series length %d, got %d", len(points), len(s.DistanceSeries))
	}
	if s.DistanceSeries[0] != 0 {
		t.Errorf("expected DistanceSeries[0] == 0, got %f", s.DistanceSeries[0])
	}
	for i := 1; i < len(s.DistanceSeries); i++ {
		if s.DistanceSeries[i] < s.DistanceSeries[i-1] {
			t.Errorf("series decreased at index %d: %f -> %f",
				i, s.DistanceSeries[i-1], s.DistanceSeries[i])
		}
	}

	if s.DistanceMeters != s.DistanceSeries[len(points)-1] {
		t.Errorf("total %f does not match final series value %f",
			s.DistanceMeters, s.DistanceSeries[len(points)-1])
	}

	// Gain counts only the ascents: +10 and +7.
	if math.Abs(s.GainMeters-17) > 1e-9 {
		t.Errorf("expected gain 17 m, got %f", s.GainMeters)
	}
}

func TestComputeStatsKnownDistance(t *testing.T) {
	// 0.001 degrees of longitude at the equator is ~111.19 m.
	points := []Point{
		{Lat: 0, Lon: 0, Elevation: ptr(0)},
		{Lat: 0, Lon: 0.001, Elevation: ptr(0)},
	}

	s := ComputeStats(points)

	if math.Abs(s.DistanceMeters-111.19) > 0.05 {
		t.Errorf("expected ~111.19 m, got %f", s.DistanceMeters)
	}
	if math.Abs(s.DistanceMiles-0.0691) > 0.0002 {
		t.Errorf("expected ~0.0691 mi, got %f", s.DistanceMiles)
	}
	if s.GainMeters != 0 {
		t.Errorf("expected 0 gain on flat track, got %f", s.GainMeters)
	}
}

func TestComputeStatsUnitConversions(t *testing.T) {
	points := []Point{
		{Lat: 0, Lon: 0, Elevation: ptr(10)},
		{Lat: 0, Lon: 0.01, Elevation: ptr(35)},
	}

	s := ComputeStats(points)

	if s.DistanceMiles != s.DistanceMeters/MetersPerMile {
		t.Errorf("miles conversion mismatch: %v vs %v",
			s.DistanceMiles, s.DistanceMeters/MetersPerMile)
	}
	if s.GainFeet != s.GainMeters*FeetPerMeter {
		t.Errorf("feet conversion mismatch: %v vs %v",
			s.GainFeet, s.GainMeters*FeetPerMeter)
	}
}

func TestComputeStatsMissingElevation(t *testing.T) {
	points := []Point{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0.001, Elevation: ptr(5)},
		{Lat: 0, Lon: 0.002},
	}

	s := ComputeStats(points)

	want := []float64{0, 5, 0}
	for i, ele := range want {
		if s.ElevationSeries[i] != ele {
			t.Errorf("ElevationSeries[%d]: expected %f, got %f", i, ele, s.ElevationSeries[i])
		}
	}
	// One ascent of 5 m; the drop back to the 0 default is ignored.
	if s.GainMeters != 5 {
		t.Errorf("expected gain 5 m, got %f", s.GainMeters)
	}
}

func TestHaversineM(t *testing.T) {
	if d := HaversineM(0, 0, 0, 0); d != 0 {
		t.Errorf("expected 0 for identical points, got %f", d)
	}

	// London to Paris is approximately 344 km.
	d := HaversineM(51.5074, -0.1278, 48.8566, 2.3522)
	if math.Abs(d-344000) > 20000 {
		t.Errorf("expected ~344 km London-Paris, got %f m", d)
	}
}

func BenchmarkComputeStats(b *testing.B) {
	points := make([]Point, 1000)
	for i := range points {
		points[i] = Point{Lat: float64(i) * 0.0001, Lon: float64(i) * 0.0001}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputeStats(points)
	}
}
