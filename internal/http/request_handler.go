package http

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"task-marketplace.com/task-marketplace/internal/constants"
	dto "task-marketplace.com/task-marketplace/internal/data_models"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	"task-marketplace.com/task-marketplace/internal/http/validators"
	"task-marketplace.com/task-marketplace/internal/services"
)

const (
	maxEvidenceFiles = 5
	maxEvidenceBytes = 5 << 20
)

func (h *Handler) CreateRequest(c echo.Context) error {
	var req dto.CreateRequestRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid JSON payload")
	}
	if err := validators.ValidateCreateRequestRequest(&req); err != nil {
		return err
	}

	a, err := h.transitions.CreateRequest(c.Request().Context(), req.TaskID, req.TaskerID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "request": a})
}

func (h *Handler) ListRequests(c echo.Context) error {
	role, err := validators.ParseRole(c.QueryParam("role"))
	if err != nil {
		return err
	}
	userID, err := parseUserID(c.QueryParam("user_id"), "user_id")
	if err != nil {
		return err
	}
	statuses, err := validators.ParseStatuses(c.QueryParam("status"))
	if err != nil {
		return err
	}

	list, err := h.requests.ListRequests(c.Request().Context(), role, userID, statuses)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"count":    len(list),
		"requests": list,
	})
}

func (h *Handler) CountUnseen(c echo.Context) error {
	role, err := validators.ParseRole(c.QueryParam("role"))
	if err != nil {
		return err
	}
	userID, err := parseUserID(c.QueryParam("user_id"), "user_id")
	if err != nil {
		return err
	}

	n, err := h.requests.CountUnseen(c.Request().Context(), role, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "unseen": n})
}

func (h *Handler) GetRequest(c echo.Context) error {
	a, err := h.requests.GetRequest(c.Request().Context(), c.Param("taskTakenId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "request": a})
}

func (h *Handler) DeleteRequest(c echo.Context) error {
	if err := h.requests.DeleteRequest(c.Request().Context(), c.Param("taskTakenId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *Handler) MarkVisited(c echo.Context) error {
	var req dto.VisitRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid JSON payload")
	}
	role, err := validators.ParseRole(req.Role)
	if err != nil {
		return err
	}

	if err := h.requests.MarkVisited(c.Request().Context(), c.Param("taskTakenId"), role); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// UpdateRequest applies a lifecycle action. Dispute evidence comes in as
// multipart "images" files.
func (h *Handler) UpdateRequest(c echo.Context) error {
	var req dto.TransitionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid request payload")
	}
	if err := validators.ValidateTransitionRequest(&req); err != nil {
		return err
	}
	role, _ := validators.ParseRole(req.Role)

	evidence, err := readEvidence(c)
	if err != nil {
		return err
	}

	result, err := h.transitions.ApplyTransition(c.Request().Context(), services.TransitionRequest{
		AssignmentID:   c.Param("taskTakenId"),
		Action:         constants.Action(strings.TrimSpace(req.Value)),
		Role:           role,
		Reason:         req.CancellationReason(),
		DisputeReason:  req.ReasonForDispute,
		DisputeDetails: req.DisputeDetails,
		Evidence:       evidence,
	})
	if err != nil {
		return err
	}

	body := echo.Map{"success": true, "request": result.Assignment}
	if result.Dispute != nil {
		body["dispute"] = result.Dispute
	}
	return c.JSON(http.StatusOK, body)
}

func readEvidence(c echo.Context) ([]services.Evidence, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.Validation("invalid multipart form")
	}

	files := form.File["images"]
	if len(files) > maxEvidenceFiles {
		return nil, apperrors.Validation("at most %d images may be attached", maxEvidenceFiles)
	}

	evidence := make([]services.Evidence, 0, len(files))
	for _, fh := range files {
		ev, err := readEvidenceFile(fh)
		if err != nil {
			return nil, err
		}
		evidence = append(evidence, ev)
	}
	return evidence, nil
}

func readEvidenceFile(fh *multipart.FileHeader) (services.Evidence, error) {
	if fh.Size > maxEvidenceBytes {
		return services.Evidence{}, apperrors.Validation("image %s exceeds %d bytes", fh.Filename, maxEvidenceBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return services.Evidence{}, apperrors.Validation("could not read image %s", fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxEvidenceBytes+1))
	if err != nil {
		return services.Evidence{}, apperrors.Validation("could not read image %s", fh.Filename)
	}
	if len(data) > maxEvidenceBytes {
		return services.Evidence{}, apperrors.Validation("image %s exceeds %d bytes", fh.Filename, maxEvidenceBytes)
	}

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return services.Evidence{}, apperrors.Validation("%s is not an image", fh.Filename)
	}

	return services.Evidence{
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
