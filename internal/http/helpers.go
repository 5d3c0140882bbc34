package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"tally/internal/core"
)

// maxBodyBytes caps request bodies; CSV imports are the largest thing
// we accept.
const maxBodyBytes = 5 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// monthParam returns the month query parameter, defaulting to the
// current month.
func monthParam(r *http.Request) string {
	if m := r.URL.Query().Get("month"); m != "" {
		return m
	}
	return time.Now().Format("2006-01")
}

// isShapeError reports whether err is one of the transaction shape
// sentinels, which map to 422 rather than 500.
func isShapeError(err error) bool {
	for _, sentinel := range []error{
		core.ErrMissingTransaction,
		core.ErrInvalidDate,
		core.ErrInvalidType,
		core.ErrInvalidAmount,
		core.ErrInvalidSavings,
		core.ErrCategoryRequired,
		core.ErrNoteRequired,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
