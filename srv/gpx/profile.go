package gpx

import "math"

const (
	// EarthRadiusM is the spherical earth radius used for all
	// great-circle math in this repository.
	EarthRadiusM = 6371000.0

	// MetersPerMile and FeetPerMeter convert internal meters to the
	// externally reported units. No other unit system is supported.
	MetersPerMile = 1609.344
	FeetPerMeter  = 3.28084
)

// Stats is the computed distance/elevation profile for a track.
// DistanceSeries and ElevationSeries are index-aligned with the point
// sequence that produced them.
type Stats struct {
	DistanceMeters  float64
	DistanceMiles   float64
	DistanceSeries  []float64
	ElevationSeries []float64
	GainMeters      float64
	GainFeet        float64
}

// ComputeStats folds a point sequence into cumulative along-route
// distance and elevation series. DistanceSeries[0] is 0 and the series
// is non-decreasing. Missing elevations contribute 0; elevation gain
// sums ascending deltas only, descents are ignored.
func ComputeStats(points []Point) Stats {
	n := len(points)
	s := Stats{
		DistanceSeries:  make([]float64, n),
		ElevationSeries: make([]float64, n),
	}

	for i, pt := range points {
		if i > 0 {
			prev := points[i-1]
			s.DistanceSeries[i] = s.DistanceSeries[i-1] +
				HaversineM(prev.Lat, prev.Lon, pt.Lat, pt.Lon)
		}
		if pt.Elevation != nil {
			s.ElevationSeries[i] = *pt.Elevation
		}
	}

	if n > 0 {
		s.DistanceMeters = s.DistanceSeries[n-1]
	}
	s.DistanceMiles = s.DistanceMeters / MetersPerMile

	for i := 1; i < n; i++ {
		if delta := s.ElevationSeries[i] - s.ElevationSeries[i-1]; delta > 0 {
			s.GainMeters += delta
		}
	}
	s.GainFeet = s.GainMeters * FeetPerMeter

	return s
}

// HaversineM calculates the great-circle distance in meters between two
// lat/lon points.
func HaversineM(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusM * c
}
