package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	dto "task-marketplace.com/task-marketplace/internal/data_models"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	"task-marketplace.com/task-marketplace/internal/http/validators"
	model "task-marketplace.com/task-marketplace/internal/models"
	"task-marketplace.com/task-marketplace/internal/services"
)

const (
	signatureHeader = "Paymongo-Signature"
	maxWebhookBytes = 1 << 20
)

func (h *Handler) Deposit(c echo.Context) error {
	var req dto.DepositRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid JSON payload")
	}
	if err := validators.ValidateDepositRequest(&req); err != nil {
		return err
	}

	res, err := h.payments.Deposit(c.Request().Context(), req.ClientID, req.Amount, req.PaymentMethod)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"payment_url":    res.PaymentURL,
		"transaction_id": res.TransactionID,
	})
}

func (h *Handler) Withdraw(c echo.Context) error {
	userID, err := parseUserID(c.Param("id"), "id")
	if err != nil {
		return err
	}

	var req dto.WithdrawRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid JSON payload")
	}
	if err := validators.ValidateWithdrawRequest(&req); err != nil {
		return err
	}
	role, _ := validators.ParseRole(req.Role)

	entry, err := h.payments.Withdraw(c.Request().Context(), services.WithdrawRequest{
		Party:         model.Party{UserID: userID, Role: role},
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		AccountNumber: req.AccountNumber,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "payment": entry})
}

func (h *Handler) CancelDeposit(c echo.Context) error {
	if err := h.payments.CancelDeposit(c.Request().Context(), c.Param("transactionId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// PaymentWebhook acknowledges every delivery it has applied or already
// applied; anything else is an error the provider will retry.
func (h *Handler) PaymentWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBytes))
	if err != nil {
		return apperrors.Validation("could not read webhook body")
	}

	if err := h.payments.HandleWebhook(c.Request().Context(), body, c.Request().Header.Get(signatureHeader)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *Handler) Balance(c echo.Context) error {
	party, err := partyFromPath(c)
	if err != nil {
		return err
	}

	balance, err := h.payments.Balance(c.Request().Context(), party)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user_id": party.UserID,
		"role":    party.Role,
		"balance": balance,
	})
}

func (h *Handler) PaymentHistory(c echo.Context) error {
	party, err := partyFromPath(c)
	if err != nil {
		return err
	}

	logs, err := h.payments.History(c.Request().Context(), party)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "payments": logs})
}

func partyFromPath(c echo.Context) (model.Party, error) {
	role, err := validators.ParseRole(c.Param("role"))
	if err != nil {
		return model.Party{}, err
	}
	userID, err := parseUserID(c.Param("id"), "id")
	if err != nil {
		return model.Party{}, err
	}
	return model.Party{UserID: userID, Role: role}, nil
}
