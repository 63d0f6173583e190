package srv

import (
	"io"
	"net/http"

	"coursemark.dev/srv/gpx"
)

type pointResponse struct {
	Lat float64  `json:"lat"`
	Lon float64  `json:"lon"`
	Ele *float64 `json:"ele,omitempty"`
}

// profileResponse is the computed distance/elevation profile for one
// variant, recomputed from the canonical GPX on every request.
type profileResponse struct {
	RouteGroupID       string          `json:"routeGroupId"`
	Label              string          `json:"label"`
	Points             []pointResponse `json:"points"`
	DistanceSeries     []float64       `json:"distanceSeries"`
	ElevationSeries    []float64       `json:"elevationSeries"`
	TotalDistanceMiles float64         `json:"totalDistanceMiles"`
	ElevationGainFeet  float64         `json:"elevationGainFeet"`
}

// HandleListVariants returns the variant labels present on disk.
// GET /api/routes/{group}/variants
func (s *Server) HandleListVariants(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("group")

	labels, err := s.Routes.ListVariants(group)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"routeGroupId": group,
		"variants":     labels,
		"count":        len(labels),
	})
}

// HandleVariantProfile decodes one variant's GPX and returns its
// distance/elevation profile.
// GET /api/routes/{group}/variants/{label}/profile
func (s *Server) HandleVariantProfile(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("group")
	label := r.PathValue("label")

	raw, err := s.Routes.ReadVariant(group, label)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	points, err := gpx.Decode(raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	stats := gpx.ComputeStats(points)

	resp := profileResponse{
		RouteGroupID:       group,
		Label:              label,
		Points:             make([]pointResponse, len(points)),
		DistanceSeries:     stats.DistanceSeries,
		ElevationSeries:    stats.ElevationSeries,
		TotalDistanceMiles: stats.DistanceMiles,
		ElevationGainFeet:  stats.GainFeet,
	}
	for i, p := range points {
		resp.Points[i] = pointResponse{Lat: p.Lat, Lon: p.Lon, Ele: p.Elevation}
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUploadVariant stores canonical GPX for a variant. The body is
// validated as a decodable track before anything is written.
// PUT /api/routes/{group}/variants/{label}
func (s *Server) HandleUploadVariant(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("group")
	label := r.PathValue("label")

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return
	}

	points, err := gpx.Decode(string(raw))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.Routes.WriteVariant(group, label, string(raw)); err != nil {
		writeDomainError(w, err)
		return
	}

	stats := gpx.ComputeStats(points)
	writeJSON(w, http.StatusOK, map[string]any{
		"routeGroupId":       group,
		"label":              label,
		"points":             len(points),
		"totalDistanceMiles": stats.DistanceMiles,
		"elevationGainFeet":  stats.GainFeet,
	})
}
