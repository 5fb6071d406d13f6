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

type TaskRepository struct {
	db *gorm.DB
}

var ErrOptimisticLock = apperrors.ErrOptimisticLock

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

type NewTask struct {
	ClientID       int64
	Title          string
	Description    string
	Specialization string
	ProposedPrice  int64
	Urgent         bool
}

func (r *TaskRepository) CreateTask(ctx context.Context, in NewTask) (*model.Task, error) {
	now := time.Now().UTC()
	task := &model.Task{
		ID:             uuid.NewString(),
		ClientID:       in.ClientID,
		Title:          in.Title,
		Description:    in.Description,
		Specialization: in.Specialization,
		ProposedPrice:  in.ProposedPrice,
		Urgent:         in.Urgent,
		Status:         constants.TaskAvailable,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, err
	}

	return task, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// UpdateStatus mirrors an assignment transition onto the parent task.
// ableToDelete is only ever raised, never cleared.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, status constants.TaskStatus, ableToDelete bool) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
		"version":    gorm.Expr("version + 1"),
	}
	if ableToDelete {
		updates["able_to_delete"] = true
	}

	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Updates(updates)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

// Claim bumps the task version if nobody else has since the caller read it.
// Creating a request claims the task so two concurrent requests cannot both
// attach to it.
func (r *TaskRepository) Claim(ctx context.Context, task *model.Task) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND version = ?", task.ID, task.Version).
		Updates(map[string]interface{}{
			"updated_at": time.Now().UTC(),
			"version":    gorm.Expr("version + 1"),
		})

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrOptimisticLock
	}

	task.Version++
	return nil
}
