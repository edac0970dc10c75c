package handler

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "consensus-be/pkg/errors"
	"consensus-be/pkg/logger"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, errType apperrors.ErrorType, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"type":      errType,
			"message":   message,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// respondAppError maps an error to its HTTP shape; anything that is not
// an AppError becomes an internal error.
func respondAppError(w http.ResponseWriter, err error, log *logger.Logger) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			log.WithError(appErr).Error("Request failed")
		} else {
			log.WithError(appErr).Debug("Request rejected")
		}
		respondError(w, appErr.StatusCode, appErr.Type, appErr.Message)
		return
	}
	log.WithError(err).Error("Request failed")
	respondError(w, http.StatusInternalServerError, apperrors.ErrorTypeInternal, "Internal server error")
}
