package validators

import (
	"strings"

	dto "task-marketplace.com/task-marketplace/internal/data_models"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
)

func ValidateCreateTaskRequest(r *dto.CreateTaskRequest) error {
	if r.ClientID <= 0 {
		return apperrors.Validation("client_id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return apperrors.Validation("title is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		return apperrors.Validation("description is required")
	}
	if r.ProposedPrice <= 0 {
		return apperrors.Validation("proposed_price must be greater than zero")
	}
	return nil
}

func ValidateCreateRequestRequest(r *dto.CreateRequestRequest) error {
	if strings.TrimSpace(r.TaskID) == "" {
		return apperrors.Validation("task_id is required")
	}
	if r.TaskerID <= 0 {
		return apperrors.Validation("tasker_id is required")
	}
	return nil
}
