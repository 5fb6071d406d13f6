package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-marketplace.com/task-marketplace/internal/constants"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	model "task-marketplace.com/task-marketplace/internal/models"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Create(ctx context.Context, task *model.Task, taskerID int64) (*model.TaskAssignment, error) {
	now := time.Now().UTC()
	a := &model.TaskAssignment{
		ID:            uuid.NewString(),
		TaskID:        task.ID,
		ClientID:      task.ClientID,
		TaskerID:      taskerID,
		Status:        constants.StatusPending,
		TaskerVisited: true,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*model.TaskAssignment, error) {
	var a model.TaskAssignment
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssignmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

var terminalStatuses = []constants.AssignmentStatus{
	constants.StatusCompleted,
	constants.StatusRejected,
	constants.StatusDeclined,
	constants.StatusExpired,
	constants.StatusCancelled,
}

// HasActive reports whether the task already has a non-terminal assignment.
func (r *AssignmentRepository) HasActive(ctx context.Context, taskID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TaskAssignment{}).
		Where("task_id = ? AND is_deleted = ? AND status NOT IN ?", taskID, false, terminalStatuses).
		Count(&count).Error
	return count > 0, err
}

// AssignmentUpdate holds the columns a transition writes besides status.
type AssignmentUpdate struct {
	Status          constants.AssignmentStatus
	Reason          *string
	EndDate         *time.Time
	IncrementRework bool
	PaymentReleased bool
	VisitedBy       constants.Role
}

// CompareAndSwap applies update only if the row is still in expected.
// A row that moved on, or was soft-deleted, yields ErrOptimisticLock.
func (r *AssignmentRepository) CompareAndSwap(
	ctx context.Context,
	id string,
	expected constants.AssignmentStatus,
	update AssignmentUpdate,
) error {
	updates := map[string]interface{}{
		"status":     update.Status,
		"updated_at": time.Now().UTC(),
		"version":    gorm.Expr("version + 1"),
	}
	if update.Reason != nil {
		updates["reason_for_rejection_or_cancellation"] = *update.Reason
	}
	if update.EndDate != nil {
		updates["end_date"] = *update.EndDate
	}
	if update.IncrementRework {
		updates["rework_count"] = gorm.Expr("rework_count + 1")
	}
	if update.PaymentReleased {
		updates["payment_released"] = true
	}
	switch update.VisitedBy {
	case constants.RoleClient:
		updates["client_visited"] = true
		updates["tasker_visited"] = false
	case constants.RoleTasker:
		updates["tasker_visited"] = true
		updates["client_visited"] = false
	default:
		updates["client_visited"] = false
		updates["tasker_visited"] = false
	}

	res := r.db.WithContext(ctx).Model(&model.TaskAssignment{}).
		Where("id = ? AND status = ? AND is_deleted = ?", id, expected, false).
		Updates(updates)

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrOptimisticLock
	}

	return nil
}

func roleColumn(role constants.Role) (string, string, error) {
	switch role {
	case constants.RoleClient:
		return "client_id", "client_visited", nil
	case constants.RoleTasker:
		return "tasker_id", "tasker_visited", nil
	}
	return "", "", apperrors.ErrInvalidRole
}

func (r *AssignmentRepository) ListFor(
	ctx context.Context,
	role constants.Role,
	userID int64,
	statuses []constants.AssignmentStatus,
) ([]model.TaskAssignment, error) {
	idColumn, _, err := roleColumn(role)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Where(idColumn+" = ? AND is_deleted = ?", userID, false)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var out []model.TaskAssignment
	err = query.Order("updated_at desc").Find(&out).Error
	return out, err
}

func (r *AssignmentRepository) CountUnseen(ctx context.Context, role constants.Role, userID int64) (int64, error) {
	idColumn, visitedColumn, err := roleColumn(role)
	if err != nil {
		return 0, err
	}

	var count int64
	err = r.db.WithContext(ctx).Model(&model.TaskAssignment{}).
		Where(idColumn+" = ? AND "+visitedColumn+" = ? AND is_deleted = ?", userID, false, false).
		Count(&count).Error
	return count, err
}

func (r *AssignmentRepository) MarkVisited(ctx context.Context, id string, role constants.Role) error {
	_, visitedColumn, err := roleColumn(role)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&model.TaskAssignment{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update(visitedColumn, true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrAssignmentNotFound
	}
	return nil
}

// SoftDelete hides a terminal assignment from every read path.
func (r *AssignmentRepository) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&model.TaskAssignment{}).
		Where("id = ? AND is_deleted = ? AND status IN ?", id, false, terminalStatuses).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.Conflict("task request %s is missing or still active", id)
	}
	return nil
}
