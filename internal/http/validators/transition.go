package validators

import (
	"strings"

	"task-marketplace.com/task-marketplace/internal/constants"
	dto "task-marketplace.com/task-marketplace/internal/data_models"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
)

func ValidateTransitionRequest(r *dto.TransitionRequest) error {
	if strings.TrimSpace(r.Value) == "" {
		return apperrors.Validation("value is required")
	}
	_, err := ParseRole(r.Role)
	return err
}

// ParseRole accepts only the two roles that own a balance.
func ParseRole(raw string) (constants.Role, error) {
	role := constants.Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Party() {
		return "", apperrors.ErrInvalidRole
	}
	return role, nil
}

// ParseStatuses splits a comma-separated status filter.
func ParseStatuses(raw string) ([]constants.AssignmentStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var out []constants.AssignmentStatus
	for _, part := range strings.Split(raw, ",") {
		st := constants.AssignmentStatus(strings.TrimSpace(part))
		if !st.Valid() {
			return nil, apperrors.Validation("unknown status %q", part)
		}
		out = append(out, st)
	}
	return out, nil
}
