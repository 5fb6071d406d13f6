package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"task-marketplace.com/task-marketplace/internal/constants"
	dto "task-marketplace.com/task-marketplace/internal/data_models"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	"task-marketplace.com/task-marketplace/internal/http/validators"
	"task-marketplace.com/task-marketplace/internal/services"
)

func (h *Handler) ListDisputes(c echo.Context) error {
	list, err := h.disputes.ListOpen(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"count":    len(list),
		"disputes": list,
	})
}

func (h *Handler) ResolveDispute(c echo.Context) error {
	var req dto.ResolveDisputeRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid JSON payload")
	}
	if err := validators.ValidateResolveDisputeRequest(&req); err != nil {
		return err
	}

	action := constants.ModeratorAction(strings.TrimSpace(req.ModeratorAction))
	if action == constants.AutoResolved {
		return apperrors.Validation("moderator_action %q is reserved", action)
	}

	d, err := h.disputes.ResolveDispute(c.Request().Context(), services.ResolveRequest{
		DisputeID:       c.Param("id"),
		Action:          action,
		ModeratorID:     req.ModeratorID,
		Notes:           req.AddlDisputeNotes,
		RequestedStatus: constants.AssignmentStatus(req.TaskStatus),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "dispute": d})
}

func (h *Handler) ArchiveDispute(c echo.Context) error {
	if err := h.disputes.ArchiveDispute(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
