package srv

import (
	"log/slog"
	"net/http"
	"strings"

	"coursemark.dev/srv/poi"
	"coursemark.dev/srv/snap"
)

type clickPayload struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lon *float64 `json:"lon" validate:"required"`
}

type createPOIRequest struct {
	Title    string        `json:"title" validate:"required"`
	Type     string        `json:"type" validate:"required"`
	Click    *clickPayload `json:"click" validate:"required"`
	Variants []string      `json:"variants" validate:"required,min=1,dive,required"`
}

type snapPOIRequest struct {
	// Click is optional: a re-snap without one reuses the POI's stored
	// original click.
	Click    *clickPayload `json:"click"`
	Variants []string      `json:"variants" validate:"required,min=1,dive,required"`
}

type updatePOIRequest struct {
	Title *string `json:"title"`
	Type  *string `json:"type"`
}

// snapResponse reports the updated POI together with any per-variant
// failures; a failed variant never blocks the others.
type snapResponse struct {
	POI           *poi.POI          `json:"poi"`
	VariantErrors map[string]string `json:"variantErrors,omitempty"`
}

func variantErrorStrings(errs map[string]error) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(errs))
	for label, err := range errs {
		out[label] = err.Error()
	}
	return out
}

// HandleListPOIs returns the POI document for a route group.
// GET /api/routes/{group}/pois
func (s *Server) HandleListPOIs(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("group")
	if err := s.Routes.GroupExists(group); err != nil {
		writeDomainError(w, err)
		return
	}

	doc, err := s.POIs.Load(group)
	if err != nil {
		slog.Error("failed to load poi document", "group", group, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load POI document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// HandleCreatePOI creates a POI from a map click and snaps it to the
// requested variants.
// POST /api/routes/{group}/pois
func (s *Server) HandleCreatePOI(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("group")
	if err := s.Routes.GroupExists(group); err != nil {
		writeDomainError(w, err)
		return
	}

	var req createPOIRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid POI payload")
		return
	}

	click := snap.Coord{Lat: *req.Click.Lat, Lon: *req.Click.Lon}
	result, err := snap.SnapVariants(s.Routes, group, click, req.Variants)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if len(result.Placements) == 0 {
		// Every requested variant failed; nothing to create.
		status := http.StatusUnprocessableEntity
		for _, verr := range result.Errors {
			status = errorStatus(verr)
			break
		}
		writeJSON(w, status, map[string]any{
			"error":         "no variant could be snapped",
			"variantErrors": variantErrorStrings(result.Errors),
		})
		return
	}

	p := poi.New(strings.TrimSpace(req.Title), req.Type, poi.Click{Lat: click.Lat, Lon: click.Lon})
	p.ApplyPlacements(result.Placements)

	if _, err := s.POIs.Update(group, func(doc *poi.Document) error {
		doc.POIs = append(doc.POIs, p)
		return nil
	}); err != nil {
		slog.Error("failed to persist poi", "group", group, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to persist POI")
		return
	}

	writeJSON(w, http.StatusCreated, snapResponse{
		POI:           &p,
		VariantErrors: variantErrorStrings(result.Errors),
	})
}

// HandleSnapPOI re-snaps an existing POI on the requested variants
// only; placements for other variants are preserved unchanged.
// POST /api/routes/{group}/pois/{id}/snap
func (s *Server) HandleSnapPOI(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("group")
	id := r.PathValue("id")
	if err := s.Routes.GroupExists(group); err != nil {
		writeDomainError(w, err)
		return
	}

	var req snapPOIRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid snap payload")
		return
	}

	var updated poi.POI
	var result snap.Result
	_, err := s.POIs.Update(group, func(doc *poi.Document) error {
		target := doc.Find(id)
		if target == nil {
			return poi.ErrNotFound
		}

		click := snap.Coord{Lat: target.OriginalClick.Lat, Lon: target.OriginalClick.Lon}
		if req.Click != nil {
			click = snap.Coord{Lat: *req.Click.Lat, Lon: *req.Click.Lon}
			target.OriginalClick = poi.Click{Lat: click.Lat, Lon: click.Lon}
		}

		var snapErr error
		result, snapErr = snap.SnapVariants(s.Routes, group, click, req.Variants)
		if snapErr != nil {
			return snapErr
		}

		target.ApplyPlacements(result.Placements)
		updated = *target
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapResponse{
		POI:           &updated,
		VariantErrors: variantErrorStrings(result.Errors),
	})
}

// HandleUpdatePOI changes a POI's title or type.
// PATCH /api/routes/{group}/pois/{id}
func (s *Server) HandleUpdatePOI(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("group")
	id := r.PathValue("id")
	if err := s.Routes.GroupExists(group); err != nil {
		writeDomainError(w, err)
		return
	}

	var req updatePOIRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid update payload")
		return
	}

	var updated poi.POI
	_, err := s.POIs.Update(group, func(doc *poi.Document) error {
		target := doc.Find(id)
		if target == nil {
			return poi.ErrNotFound
		}
		if req.Title != nil {
			target.Title = strings.TrimSpace(*req.Title)
		}
		if req.Type != nil {
			target.Type = *req.Type
		}
		updated = *target
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// HandleDeletePOI removes a POI from the group document.
// DELETE /api/routes/{group}/pois/{id}
func (s *Server) HandleDeletePOI(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("group")
	id := r.PathValue("id")
	if err := s.Routes.GroupExists(group); err != nil {
		writeDomainError(w, err)
		return
	}

	if _, err := s.POIs.Update(group, func(doc *poi.Document) error {
		return doc.Remove(id)
	}); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
