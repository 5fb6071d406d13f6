package services

import (
	"context"
	"log/slog"
	"strings"

	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	model "task-marketplace.com/task-marketplace/internal/models"
	repository "task-marketplace.com/task-marketplace/internal/repositories"
)

type TaskService struct {
	repo   *repository.TaskRepository
	logger *slog.Logger
}

func NewTaskService(repo *repository.TaskRepository, logger *slog.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		logger: logger,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, in repository.NewTask) (*model.Task, error) {
	if err := validateNewTask(in); err != nil {
		return nil, err
	}

	task, err := s.repo.CreateTask(ctx, in)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	s.logger.InfoContext(ctx, "task created",
		"task_id", task.ID,
		"client_id", task.ClientID,
		"proposed_price", task.ProposedPrice,
	)
	return task, nil
}

func validateNewTask(in repository.NewTask) error {
	if in.ClientID <= 0 {
		return apperrors.Validation("client_id is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return apperrors.Validation("title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return apperrors.Validation("description is required")
	}
	if in.ProposedPrice <= 0 {
		return apperrors.Validation("proposed_price must be greater than zero")
	}
	return nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	return s.repo.FindByID(ctx, id)
}
