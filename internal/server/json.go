package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campusquest/api/internal/campus"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps the engine taxonomy onto HTTP statuses so
// every handler branches the same way.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, campus.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "not authenticated")
	case errors.Is(err, campus.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, campus.ErrAlreadyAccepted):
		writeError(w, http.StatusConflict, "quest already accepted")
	case errors.Is(err, campus.ErrNotAccepted):
		writeError(w, http.StatusConflict, "quest not accepted")
	case errors.Is(err, campus.ErrConflict):
		writeError(w, http.StatusConflict, "concurrent modification, retry")
	case errors.Is(err, campus.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, campus.ErrUploadFailed):
		writeError(w, http.StatusBadGateway, "image upload failed")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
