package services

import (
	"context"
	"log/slog"

	"task-marketplace.com/task-marketplace/internal/constants"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	"task-marketplace.com/task-marketplace/internal/metrics"
	model "task-marketplace.com/task-marketplace/internal/models"
	repository "task-marketplace.com/task-marketplace/internal/repositories"
)

// Entry describes one balance movement and the PaymentLog row that records it.
type Entry struct {
	Party         model.Party
	Amount        int64
	Type          constants.PaymentType
	Reference     string
	TransactionID string
	PaymentMethod string
}

// LedgerService is the only writer of credit balances. Every method runs
// against the caller's transaction store so the balance change and its log
// row commit or roll back together with whatever else the caller writes.
type LedgerService struct {
	logger *slog.Logger
}

func NewLedgerService(logger *slog.Logger) *LedgerService {
	return &LedgerService{logger: logger}
}

func (l *LedgerService) IncrementCredits(ctx context.Context, tx *repository.Store, e Entry) error {
	if e.Amount <= 0 {
		return apperrors.ErrInvalidAmount
	}
	if !e.Party.Role.Party() {
		return apperrors.ErrInvalidRole
	}

	if err := tx.Ledger.Increment(ctx, e.Party, e.Amount); err != nil {
		return err
	}
	return l.record(ctx, tx, e)
}

// DecrementCredits fails with ErrInsufficientCredits rather than letting a
// balance go negative.
func (l *LedgerService) DecrementCredits(ctx context.Context, tx *repository.Store, e Entry) error {
	if e.Amount <= 0 {
		return apperrors.ErrInvalidAmount
	}
	if !e.Party.Role.Party() {
		return apperrors.ErrInvalidRole
	}

	if err := tx.Ledger.Decrement(ctx, e.Party, e.Amount); err != nil {
		return err
	}
	return l.record(ctx, tx, e)
}

// SettleDeposit moves a pending deposit log to succeeded and credits it.
// A log that already left pending yields ErrOptimisticLock and credits
// nothing.
func (l *LedgerService) SettleDeposit(ctx context.Context, tx *repository.Store, entry *model.PaymentLog) error {
	if entry.TransactionID == nil {
		return apperrors.Validation("deposit %s has no transaction id", entry.ID)
	}

	err := tx.Payments.TransitionStatus(ctx, *entry.TransactionID, constants.PaymentPending, constants.PaymentSucceeded)
	if err != nil {
		return err
	}

	party := model.Party{UserID: entry.UserID, Role: entry.Role}
	if err := tx.Ledger.Increment(ctx, party, entry.Amount); err != nil {
		return err
	}

	metrics.LedgerOperationsTotal.WithLabelValues(string(constants.PaymentDeposit)).Inc()
	metrics.LedgerCreditsMoved.WithLabelValues(string(constants.PaymentDeposit)).Add(float64(entry.Amount))
	return nil
}

// Hold escrows the task price out of the client's balance.
func (l *LedgerService) Hold(ctx context.Context, tx *repository.Store, a *model.TaskAssignment, price int64) error {
	return l.DecrementCredits(ctx, tx, Entry{
		Party:     model.Party{UserID: a.ClientID, Role: constants.RoleClient},
		Amount:    price,
		Type:      constants.PaymentHold,
		Reference: a.ID,
	})
}

func (l *LedgerService) RefundToClient(ctx context.Context, tx *repository.Store, a *model.TaskAssignment, price int64) error {
	return l.IncrementCredits(ctx, tx, Entry{
		Party:     model.Party{UserID: a.ClientID, Role: constants.RoleClient},
		Amount:    price,
		Type:      constants.PaymentRefund,
		Reference: a.ID,
	})
}

func (l *LedgerService) ReleaseFull(ctx context.Context, tx *repository.Store, a *model.TaskAssignment, price int64) error {
	return l.IncrementCredits(ctx, tx, Entry{
		Party:     model.Party{UserID: a.TaskerID, Role: constants.RoleTasker},
		Amount:    price,
		Type:      constants.PaymentRelease,
		Reference: a.ID,
	})
}

// ReleaseHalf pays the tasker floor(price/2) and refunds the rest, so an odd
// credit goes to the client.
func (l *LedgerService) ReleaseHalf(ctx context.Context, tx *repository.Store, a *model.TaskAssignment, price int64) error {
	taskerShare, clientShare := SplitHalf(price)

	if taskerShare > 0 {
		if err := l.ReleaseFull(ctx, tx, a, taskerShare); err != nil {
			return err
		}
	}
	if clientShare > 0 {
		if err := l.RefundToClient(ctx, tx, a, clientShare); err != nil {
			return err
		}
	}
	return nil
}

// SplitHalf returns the tasker and client shares of price.
func SplitHalf(price int64) (int64, int64) {
	taskerShare := price / 2
	return taskerShare, price - taskerShare
}

func (l *LedgerService) Balance(ctx context.Context, store *repository.Store, party model.Party) (int64, error) {
	if !party.Role.Party() {
		return 0, apperrors.ErrInvalidRole
	}
	return store.Ledger.Balance(ctx, party)
}

func (l *LedgerService) record(ctx context.Context, tx *repository.Store, e Entry) error {
	_, err := tx.Payments.Create(ctx, repository.NewPaymentLog{
		Party:         e.Party,
		Amount:        e.Amount,
		Type:          e.Type,
		Status:        constants.PaymentSucceeded,
		TransactionID: e.TransactionID,
		Reference:     e.Reference,
		PaymentMethod: e.PaymentMethod,
	})
	if err != nil {
		return err
	}

	metrics.LedgerOperationsTotal.WithLabelValues(string(e.Type)).Inc()
	metrics.LedgerCreditsMoved.WithLabelValues(string(e.Type)).Add(float64(e.Amount))
	l.logger.DebugContext(ctx, "ledger entry recorded",
		"user_id", e.Party.UserID,
		"role", e.Party.Role,
		"type", e.Type,
		"amount", e.Amount,
		"reference", e.Reference,
	)
	return nil
}
