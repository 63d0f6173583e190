package srv

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"

	"coursemark.dev/srv/gpx"
	"coursemark.dev/srv/poi"
	"coursemark.dev/srv/routes"
	"coursemark.dev/srv/snap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

const maxBodySize = 50 << 20 // 50MB, GPX uploads included

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeValid decodes a JSON request body into dst and applies its
// validation tags.
func decodeValid(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

// errorStatus maps domain errors onto API status codes.
func errorStatus(err error) int {
	var notFound *routes.NotFoundError
	var parseErr *gpx.ParseError
	switch {
	case errors.As(err, &notFound), errors.Is(err, poi.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &parseErr), errors.Is(err, snap.ErrDegenerateTrack):
		return http.StatusUnprocessableEntity
	case errors.Is(err, routes.ErrBadID), errors.Is(err, snap.ErrBadCoordinate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, errorStatus(err), err.Error())
}
