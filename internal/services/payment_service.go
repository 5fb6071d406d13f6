package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"task-marketplace.com/task-marketplace/internal/constants"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	"task-marketplace.com/task-marketplace/internal/gateway"
	"task-marketplace.com/task-marketplace/internal/locks"
	"task-marketplace.com/task-marketplace/internal/metrics"
	model "task-marketplace.com/task-marketplace/internal/models"
	repository "task-marketplace.com/task-marketplace/internal/repositories"
)

const webhookTolerance = 5 * time.Minute

type DepositResult struct {
	TransactionID string `json:"transaction_id"`
	PaymentURL    string `json:"payment_url"`
}

type WithdrawRequest struct {
	Party         model.Party
	Amount        int64
	PaymentMethod string
	AccountNumber string
}

type PaymentService struct {
	store         *repository.Store
	ledger        *LedgerService
	provider      gateway.Provider
	locker        locks.Locker
	lockTTL       time.Duration
	webhookSecret string
	logger        *slog.Logger
	now           func() time.Time
}

func NewPaymentService(
	store *repository.Store,
	ledger *LedgerService,
	provider gateway.Provider,
	locker locks.Locker,
	lockTTL time.Duration,
	webhookSecret string,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		store:         store,
		ledger:        ledger,
		provider:      provider,
		locker:        locker,
		lockTTL:       lockTTL,
		webhookSecret: webhookSecret,
		logger:        logger,
		now:           time.Now,
	}
}

// Deposit opens a checkout intent for a client top-up and records it as a
// pending payment. Credits move only when the provider confirms through the
// webhook.
func (s *PaymentService) Deposit(ctx context.Context, clientID, amount int64, method string) (*DepositResult, error) {
	if clientID <= 0 {
		return nil, apperrors.Validation("client_id is required")
	}
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	method = strings.TrimSpace(method)
	if method == "" {
		return nil, apperrors.Validation("payment_method is required")
	}

	intent, err := s.provider.CreateIntent(ctx, amount, gateway.Payer{UserID: clientID, Role: string(constants.RoleClient)})
	if err != nil {
		s.logUpstream(ctx, "create intent", err)
		return nil, apperrors.Upstream("payment provider rejected the deposit", err)
	}

	paymentURL, err := s.provider.AttachMethod(ctx, intent.ID, method)
	if err != nil {
		s.logUpstream(ctx, "attach payment method", err)
		return nil, apperrors.Upstream("payment provider rejected the payment method", err)
	}

	_, err = s.store.Payments.Create(ctx, repository.NewPaymentLog{
		Party:         model.Party{UserID: clientID, Role: constants.RoleClient},
		Amount:        amount,
		Type:          constants.PaymentDeposit,
		Status:        constants.PaymentPending,
		TransactionID: intent.ID,
		PaymentMethod: method,
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	s.logger.InfoContext(ctx, "deposit initiated",
		"client_id", clientID,
		"amount", amount,
		"transaction_id", intent.ID,
	)
	return &DepositResult{TransactionID: intent.ID, PaymentURL: paymentURL}, nil
}

// HandleWebhook applies a provider notification. Delivering the same event
// again, or one for a payment that already settled, changes nothing.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if s.webhookSecret != "" {
		if err := gateway.VerifySignature(s.webhookSecret, signature, body, s.now(), webhookTolerance); err != nil {
			metrics.WebhookEventsTotal.WithLabelValues("rejected").Inc()
			return apperrors.Unauthorized("invalid webhook signature")
		}
	}

	ev, err := gateway.ParseWebhook(body)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("invalid").Inc()
		return apperrors.Validation("%s", err.Error())
	}

	release, err := s.lock(ctx, "payment:"+ev.IntentID)
	if err != nil {
		return err
	}
	defer release()

	outcome, err := s.applyEvent(ctx, ev)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.WebhookEventsTotal.WithLabelValues(outcome).Inc()
	s.logger.InfoContext(ctx, "payment webhook processed",
		"event_id", ev.ID,
		"event_type", ev.Type,
		"transaction_id", ev.IntentID,
		"outcome", outcome,
	)
	return nil
}

func (s *PaymentService) applyEvent(ctx context.Context, ev gateway.Event) (string, error) {
	entry, err := s.store.Payments.FindByTransactionID(ctx, ev.IntentID)
	if err != nil {
		return "", err
	}
	if entry.Status != constants.PaymentPending {
		return "duplicate", nil
	}

	switch ev.Type {
	case gateway.EventPaymentPaid:
		return s.settle(ctx, ev, entry)
	case gateway.EventPaymentFailed:
		err := s.store.Payments.TransitionStatus(ctx, ev.IntentID, constants.PaymentPending, constants.PaymentFailed)
		if errors.Is(err, repository.ErrOptimisticLock) {
			return "duplicate", nil
		}
		if err != nil {
			return "", apperrors.Wrap(err)
		}
		return "failed", nil
	}
	return "ignored", nil
}

func (s *PaymentService) settle(ctx context.Context, ev gateway.Event, entry *model.PaymentLog) (string, error) {
	status, err := s.provider.VerifyIntent(ctx, ev.IntentID)
	if err != nil {
		s.logUpstream(ctx, "verify intent", err)
		return "", apperrors.Upstream("could not verify payment with provider", err)
	}
	if status != gateway.IntentSucceeded {
		return "", apperrors.Conflict("payment %s is %s at the provider", ev.IntentID, status)
	}
	if ev.Amount != 0 && ev.Amount != entry.Amount {
		s.logger.WarnContext(ctx, "webhook amount differs from recorded deposit; crediting recorded amount",
			"transaction_id", ev.IntentID,
			"webhook_amount", ev.Amount,
			"recorded_amount", entry.Amount,
		)
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		return s.ledger.SettleDeposit(ctx, tx, entry)
	})
	if errors.Is(err, repository.ErrOptimisticLock) {
		return "duplicate", nil
	}
	if err != nil {
		return "", apperrors.Wrap(err)
	}
	return "credited", nil
}

// Withdraw pays credits out to an external account. The balance is only
// debited after the provider accepts the payout, so a provider failure
// leaves it untouched.
func (s *PaymentService) Withdraw(ctx context.Context, req WithdrawRequest) (*model.PaymentLog, error) {
	if !req.Party.Role.Party() {
		return nil, apperrors.ErrInvalidRole
	}
	if req.Amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if strings.TrimSpace(req.PaymentMethod) == "" || strings.TrimSpace(req.AccountNumber) == "" {
		return nil, apperrors.Validation("payment_method and account_number are required")
	}

	release, err := s.lock(ctx, fmt.Sprintf("withdraw:%s:%d", req.Party.Role, req.Party.UserID))
	if err != nil {
		return nil, err
	}
	defer release()

	balance, err := s.store.Ledger.Balance(ctx, req.Party)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if balance < req.Amount {
		return nil, apperrors.ErrInsufficientCredits
	}

	reference := "wd_" + ulid.Make().String()
	payoutID, err := s.provider.Payout(ctx, gateway.PayoutRequest{
		Reference:     reference,
		Amount:        req.Amount,
		Method:        req.PaymentMethod,
		AccountNumber: req.AccountNumber,
	})
	if err != nil {
		s.logUpstream(ctx, "payout", err)
		return nil, apperrors.Upstream("payment provider rejected the payout", err)
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		return s.ledger.DecrementCredits(ctx, tx, Entry{
			Party:         req.Party,
			Amount:        req.Amount,
			Type:          constants.PaymentWithdrawal,
			Reference:     reference,
			TransactionID: payoutID,
			PaymentMethod: req.PaymentMethod,
		})
	})
	if err != nil {
		metrics.PartialFailuresTotal.WithLabelValues("withdraw").Inc()
		s.logger.ErrorContext(ctx, "payout sent but balance was not debited; reconcile manually",
			"user_id", req.Party.UserID,
			"role", req.Party.Role,
			"amount", req.Amount,
			"payout_id", payoutID,
			"reference", reference,
			"error", err,
		)
		return nil, apperrors.PartialFailure(fmt.Sprintf("payout %s sent but balance was not debited", payoutID), err)
	}

	s.logger.InfoContext(ctx, "withdrawal completed",
		"user_id", req.Party.UserID,
		"role", req.Party.Role,
		"amount", req.Amount,
		"payout_id", payoutID,
	)
	return s.store.Payments.FindByTransactionID(ctx, payoutID)
}

// CancelDeposit abandons a pending deposit. The provider is only asked
// whether the payment was captured; nothing is voided there.
func (s *PaymentService) CancelDeposit(ctx context.Context, transactionID string) error {
	release, err := s.lock(ctx, "payment:"+transactionID)
	if err != nil {
		return err
	}
	defer release()

	entry, err := s.store.Payments.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return err
	}
	if entry.Type != constants.PaymentDeposit || entry.Status != constants.PaymentPending {
		return apperrors.Conflict("payment %s is %s and cannot be cancelled", transactionID, entry.Status)
	}

	status, err := s.provider.VerifyIntent(ctx, transactionID)
	switch {
	case errors.Is(err, gateway.ErrIntentNotFound):
	case err != nil:
		s.logUpstream(ctx, "verify intent", err)
		return apperrors.Upstream("could not verify payment with provider", err)
	case status == gateway.IntentSucceeded:
		return apperrors.Conflict("payment %s was already captured", transactionID)
	}

	err = s.store.Payments.TransitionStatus(ctx, transactionID, constants.PaymentPending, constants.PaymentCancelled)
	if errors.Is(err, repository.ErrOptimisticLock) {
		return apperrors.Conflict("payment %s is no longer pending", transactionID)
	}
	if err != nil {
		return apperrors.Wrap(err)
	}

	s.logger.InfoContext(ctx, "deposit cancelled", "transaction_id", transactionID)
	return nil
}

func (s *PaymentService) Balance(ctx context.Context, party model.Party) (int64, error) {
	return s.ledger.Balance(ctx, s.store, party)
}

func (s *PaymentService) History(ctx context.Context, party model.Party) ([]model.PaymentLog, error) {
	if !party.Role.Party() {
		return nil, apperrors.ErrInvalidRole
	}
	return s.store.Payments.ListFor(ctx, party)
}

func (s *PaymentService) lock(ctx context.Context, key string) (func(), error) {
	lease, err := s.locker.Acquire(ctx, key, s.lockTTL)
	if err != nil {
		if errors.Is(err, locks.ErrNotAcquired) {
			return nil, apperrors.ErrLockNotAcquired
		}
		return nil, apperrors.Wrap(err)
	}
	return func() {
		if err := lease.Release(context.Background()); err != nil {
			s.logger.Warn("failed to release lock", "key", key, "error", err)
		}
	}, nil
}

func (s *PaymentService) logUpstream(ctx context.Context, op string, err error) {
	attrs := []any{"operation", op, "error", err}
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		attrs = append(attrs, "provider_status", apiErr.StatusCode, "provider_body", apiErr.Body)
	}
	s.logger.ErrorContext(ctx, "payment provider call failed", attrs...)
}
