package controllers

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/gsatlink/pos-backend/api/validators"
	pkgerrors "github.com/gsatlink/pos-backend/pkg/errors"
)

// sanitizePtr sanitizes an optional free-text field; blank values collapse
// to nil so they store as NULL.
func sanitizePtr(v *string, maxLen int) *string {
	if v == nil {
		return nil
	}
	clean := validators.SanitizeString(*v, maxLen)
	if clean == "" {
		return nil
	}
	return &clean
}

func parseUUIDValue(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return id, nil
}

func parseIntValue(raw, field string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, field+" must be numeric")
	}
	return value, nil
}
