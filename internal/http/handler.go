package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	dto "task-marketplace.com/task-marketplace/internal/data_models"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	"task-marketplace.com/task-marketplace/internal/http/validators"
	repository "task-marketplace.com/task-marketplace/internal/repositories"
	"task-marketplace.com/task-marketplace/internal/services"
)

type Handler struct {
	tasks       *services.TaskService
	requests    *services.RequestService
	transitions *services.TransitionService
	disputes    *services.DisputeService
	payments    *services.PaymentService
	logger      *slog.Logger
}

func NewHandler(
	tasks *services.TaskService,
	requests *services.RequestService,
	transitions *services.TransitionService,
	disputes *services.DisputeService,
	payments *services.PaymentService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		tasks:       tasks,
		requests:    requests,
		transitions: transitions,
		disputes:    disputes,
		payments:    payments,
		logger:      logger,
	}
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid JSON payload")
	}
	if err := validators.ValidateCreateTaskRequest(&req); err != nil {
		return err
	}

	task, err := h.tasks.CreateTask(c.Request().Context(), repository.NewTask{
		ClientID:       req.ClientID,
		Title:          req.Title,
		Description:    req.Description,
		Specialization: req.Specialization,
		ProposedPrice:  req.ProposedPrice,
		Urgent:         req.Urgent,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "task": task})
}

func (h *Handler) GetTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return apperrors.Validation("task id is required")
	}

	task, err := h.tasks.GetTask(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "task": task})
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func parseUserID(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("%s must be a positive integer", field)
	}
	return id, nil
}
