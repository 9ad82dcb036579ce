package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ledgerline/budget-engine-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// parseViewQuery reads the mutually exclusive ?date= and ?offset= parameters.
// With neither present, the request resolves against today.
func parseViewQuery(r *http.Request) (date time.Time, offset int, useOffset bool, err error) {
	dateStr := r.URL.Query().Get("date")
	offsetStr := r.URL.Query().Get("offset")

	if dateStr != "" && offsetStr != "" {
		return time.Time{}, 0, false, &domain.ErrValidation{Field: "date", Message: "date and offset are mutually exclusive"}
	}
	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil {
			return time.Time{}, 0, false, &domain.ErrValidation{Field: "offset", Message: "must be an integer"}
		}
		return time.Time{}, offset, true, nil
	}
	if dateStr != "" {
		date, err = time.ParseInLocation("2006-01-02", dateStr, time.UTC)
		if err != nil {
			return time.Time{}, 0, false, &domain.ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
		}
		return date, 0, false, nil
	}
	return time.Time{}, 0, false, nil
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var validation *domain.ErrValidation
	var configuration *domain.ErrConfiguration
	var notConfigured *domain.ErrPeriodNotConfigured

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &configuration):
		logger.Debug("invalid recurrence configuration", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &notConfigured):
		logger.Debug("period not configured", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
