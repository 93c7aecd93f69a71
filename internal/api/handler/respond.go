package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dialhub/callqueue/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// mapError translates domain sentinel errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrLeaseLost):
		// The caller's lease is gone: expired and reclaimed, or held by
		// someone else. Conflict tells the agent to pull a fresh entry.
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNotManualDial),
		errors.Is(err, domain.ErrInvalidAgent),
		errors.Is(err, domain.ErrInvalidCampaign),
		errors.Is(err, domain.ErrInvalidLimit),
		errors.Is(err, domain.ErrEmptyReason),
		errors.Is(err, domain.ErrJobEmpty):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrPullThrottled):
		respondError(w, http.StatusTooManyRequests, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
