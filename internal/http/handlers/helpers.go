package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"wattline/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the error taxonomy onto HTTP statuses: validation
// 400, not found 404, missing tariff 500 with the integrity failure named,
// anything else a generic internal error.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case models.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrNoActiveTariff):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Accepted timestamp layouts for window query parameters.
var timeLayouts = []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"}

func parseTimeParam(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &models.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD HH:MM:SS"}
}

// parseWindow reads optional from/to query parameters. Returns nils when
// both are absent; a lone bound is a validation error.
func parseWindow(r *http.Request) (*time.Time, *time.Time, error) {
	fromRaw := r.URL.Query().Get("from")
	toRaw := r.URL.Query().Get("to")
	if fromRaw == "" && toRaw == "" {
		return nil, nil, nil
	}
	if fromRaw == "" || toRaw == "" {
		return nil, nil, &models.ValidationError{Field: "from", Reason: "both from and to are required"}
	}

	from, err := parseTimeParam(fromRaw)
	if err != nil {
		return nil, nil, err
	}
	to, err := parseTimeParam(toRaw)
	if err != nil {
		return nil, nil, err
	}
	return &from, &to, nil
}
