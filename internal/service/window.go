package service

import (
	"time"

	"wattline/internal/models"
)

// Windows earlier than this are rejected before any store access.
var minWindowStart = time.Date(1970, time.January, 2, 0, 0, 0, 0, time.UTC)

// ValidateWindow rejects malformed time ranges: start must precede end and
// both bounds must fall inside [1970-01-02, now].
func ValidateWindow(from, to time.Time) error {
	if from.IsZero() {
		return &models.ValidationError{Field: "from", Reason: "start date required"}
	}
	if to.IsZero() {
		return &models.ValidationError{Field: "to", Reason: "end date required"}
	}
	if !from.Before(to) {
		return &models.ValidationError{Field: "from", Reason: "start date must be before end date"}
	}
	if from.Before(minWindowStart) {
		return &models.ValidationError{Field: "from", Reason: "start date is before the supported minimum"}
	}
	if to.After(time.Now()) {
		return &models.ValidationError{Field: "to", Reason: "end date cannot be in the future"}
	}
	return nil
}
