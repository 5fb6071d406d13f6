package services

import (
	"context"

	"task-marketplace.com/task-marketplace/internal/constants"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	model "task-marketplace.com/task-marketplace/internal/models"
	repository "task-marketplace.com/task-marketplace/internal/repositories"
)

// RequestService is the read side of task requests that feeds each role's
// inbox and notification badge.
type RequestService struct {
	repo *repository.AssignmentRepository
}

func NewRequestService(repo *repository.AssignmentRepository) *RequestService {
	return &RequestService{repo: repo}
}

func (s *RequestService) ListRequests(
	ctx context.Context,
	role constants.Role,
	userID int64,
	statuses []constants.AssignmentStatus,
) ([]model.TaskAssignment, error) {
	if userID <= 0 {
		return nil, apperrors.Validation("user_id is required")
	}
	for _, st := range statuses {
		if !st.Valid() {
			return nil, apperrors.Validation("unknown status %q", st)
		}
	}
	return s.repo.ListFor(ctx, role, userID, statuses)
}

func (s *RequestService) CountUnseen(ctx context.Context, role constants.Role, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, apperrors.Validation("user_id is required")
	}
	return s.repo.CountUnseen(ctx, role, userID)
}

func (s *RequestService) MarkVisited(ctx context.Context, id string, role constants.Role) error {
	return s.repo.MarkVisited(ctx, id, role)
}

func (s *RequestService) GetRequest(ctx context.Context, id string) (*model.TaskAssignment, error) {
	return s.repo.FindByID(ctx, id)
}

// DeleteRequest hides a finished request from both parties.
func (s *RequestService) DeleteRequest(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}
