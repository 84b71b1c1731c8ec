package app

import (
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Error messages
const (
	ErrInternalServer     = "Internal server error"
	ErrInvalidFormat      = "Invalid format"
	ErrSyncDisabled       = "Sync disabled"
	ErrSyncRunning        = "Sync already in progress"
	ErrSyncFailed         = "Sync failed"
	ErrFailedToGenerateEx = "Failed to generate export"
)

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, status int, v any, logger *zap.Logger) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Error("Error encoding response", zap.Error(err))
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logger.Warn("Error writing response", zap.Error(err))
	}
}

// writeError responds with {"error": msg}
func writeError(w http.ResponseWriter, status int, msg string, logger *zap.Logger) {
	writeJSON(w, status, map[string]string{"error": msg}, logger)
}
