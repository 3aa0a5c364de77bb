// ABOUTME: JSON response helpers and error-to-status mapping for the HTTP API.
// ABOUTME: Errors are written as {"error": {"code", "message"}}.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/harperreed/tribe/internal/gamification"
	"github.com/harperreed/tribe/internal/storage"
)

const maxBodyBytes = 1 << 20

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: apiError{Code: code, Message: message}})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid payload")
		return false
	}
	return true
}

// writeEngineError maps storage and engine sentinels to HTTP statuses.
func (a *API) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, gamification.ErrUnknownTheme), errors.Is(err, gamification.ErrUnknownGift):
		writeError(w, http.StatusNotFound, "UNKNOWN_ITEM", err.Error())
	case errors.Is(err, gamification.ErrUnknownQuest):
		writeError(w, http.StatusNotFound, "UNKNOWN_QUEST", err.Error())
	case errors.Is(err, gamification.ErrQuestNotManual):
		writeError(w, http.StatusConflict, "QUEST_AUTOMATIC", err.Error())
	case errors.Is(err, gamification.ErrNotEnoughPoints):
		writeError(w, http.StatusPaymentRequired, "NOT_ENOUGH_POINTS", err.Error())
	case errors.Is(err, gamification.ErrThemeLocked), errors.Is(err, gamification.ErrGiftNotHeld):
		writeError(w, http.StatusConflict, "NOT_OWNED", err.Error())
	case errors.Is(err, gamification.ErrSelfGift):
		writeError(w, http.StatusBadRequest, "SELF_GIFT", err.Error())
	default:
		a.logger.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}
