// Package handler exposes the shopping service as a JSON API for a local view
// layer.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/goshop/internal/shopping"
	"github.com/dukerupert/goshop/internal/store"
)

// maxBodySize caps request bodies, including pasted backups and CSV uploads.
const maxBodySize = 8 << 20

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

// writeError maps a service error to a response. Validation failures carry
// their own message; storage failures are logged and answered generically
// with "failed to <action>".
func writeError(w http.ResponseWriter, logger *slog.Logger, err error, action string) {
	var dup *shopping.DuplicateError
	var exists *shopping.CategoryExistsError

	switch {
	case errors.Is(err, shopping.ErrBusy):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.As(err, &dup), errors.As(err, &exists):
		writeMessage(w, http.StatusConflict, err.Error())
	case shopping.IsValidation(err):
		logger.Debug("rejected request", "action", action, "reason", err)
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shopping.ErrItemNotFound), errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "item not found")
	default:
		logger.Error("request failed", "action", action, "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to "+action)
	}
}
