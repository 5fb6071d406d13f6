package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "task-marketplace.com/task-marketplace/internal/errors"
)

// ErrorHandler renders every failure as {success:false, error}. Detail of
// internal failures goes to the log only.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal server error"

		var appErr *apperrors.Exception
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = appErr.StatusCode
			message = appErr.Public()
			switch appErr.Kind {
			case apperrors.KindInternal, apperrors.KindPartialFailure, apperrors.KindUpstream:
				logger.ErrorContext(c.Request().Context(), "request failed",
					"method", c.Request().Method,
					"path", c.Path(),
					"kind", appErr.Kind,
					"error", err,
				)
			}
		case errors.As(err, &httpErr):
			status = httpErr.Code
			message = fmt.Sprint(httpErr.Message)
		default:
			logger.ErrorContext(c.Request().Context(), "unhandled error",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err,
			)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, echo.Map{"success": false, "error": message})
	}
}
