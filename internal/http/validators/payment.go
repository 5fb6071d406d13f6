package validators

import (
	"strings"

	dto "task-marketplace.com/task-marketplace/internal/data_models"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
)

func ValidateDepositRequest(r *dto.DepositRequest) error {
	if r.ClientID <= 0 {
		return apperrors.Validation("client_id is required")
	}
	if r.Amount <= 0 {
		return apperrors.ErrInvalidAmount
	}
	if strings.TrimSpace(r.PaymentMethod) == "" {
		return apperrors.Validation("payment_method is required")
	}
	return nil
}

func ValidateWithdrawRequest(r *dto.WithdrawRequest) error {
	if r.Amount <= 0 {
		return apperrors.ErrInvalidAmount
	}
	if strings.TrimSpace(r.PaymentMethod) == "" {
		return apperrors.Validation("payment_method is required")
	}
	if strings.TrimSpace(r.AccountNumber) == "" {
		return apperrors.Validation("account_number is required")
	}
	_, err := ParseRole(r.Role)
	return err
}

func ValidateResolveDisputeRequest(r *dto.ResolveDisputeRequest) error {
	if strings.TrimSpace(r.ModeratorAction) == "" {
		return apperrors.Validation("moderator_action is required")
	}
	if r.ModeratorID <= 0 {
		return apperrors.Validation("moderator_id is required")
	}
	return nil
}
