package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"task-marketplace.com/task-marketplace/internal/constants"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	"task-marketplace.com/task-marketplace/internal/metrics"
	model "task-marketplace.com/task-marketplace/internal/models"
	repository "task-marketplace.com/task-marketplace/internal/repositories"
)

type ResolveRequest struct {
	DisputeID   string
	Action      constants.ModeratorAction
	ModeratorID int64
	Notes       string
	// RequestedStatus is what the caller believes the assignment should end
	// in. It is never applied; a mismatch is only logged.
	RequestedStatus constants.AssignmentStatus
}

type DisputeService struct {
	store  *repository.Store
	ledger *LedgerService
	logger *slog.Logger
	now    func() time.Time
}

func NewDisputeService(store *repository.Store, ledger *LedgerService, logger *slog.Logger) *DisputeService {
	return &DisputeService{
		store:  store,
		ledger: ledger,
		logger: logger,
		now:    time.Now,
	}
}

// ResolveDispute applies a moderator decision. The resulting assignment
// status comes from the action alone.
func (s *DisputeService) ResolveDispute(ctx context.Context, req ResolveRequest) (*model.Dispute, error) {
	to, ok := req.Action.ResolvedStatus()
	if !ok {
		return nil, apperrors.Validation("unknown moderator_action %q", req.Action)
	}
	if req.ModeratorID < 0 {
		return nil, apperrors.Validation("moderator_id must not be negative")
	}

	dispute, err := s.store.Disputes.FindByID(ctx, req.DisputeID)
	if err != nil {
		return nil, err
	}
	if !dispute.Open() {
		return nil, apperrors.Conflict("dispute %s is already resolved", dispute.ID)
	}

	if req.RequestedStatus != "" && req.RequestedStatus != to {
		s.logger.WarnContext(ctx, "ignoring caller-supplied status for dispute resolution",
			"dispute_id", dispute.ID,
			"requested", req.RequestedStatus,
			"applied", to,
		)
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		return s.resolve(ctx, tx, dispute, req, to)
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	metrics.DisputesResolvedTotal.WithLabelValues(string(req.Action)).Inc()
	s.logger.InfoContext(ctx, "dispute resolved",
		"dispute_id", dispute.ID,
		"task_taken_id", dispute.TaskTakenID,
		"action", req.Action,
		"moderator_id", req.ModeratorID,
		"status", to,
	)

	return s.store.Disputes.FindByID(ctx, dispute.ID)
}

func (s *DisputeService) resolve(
	ctx context.Context,
	tx *repository.Store,
	dispute *model.Dispute,
	req ResolveRequest,
	to constants.AssignmentStatus,
) error {
	if err := tx.Disputes.Resolve(ctx, dispute.ID, req.Action, req.ModeratorID, req.Notes, s.now().UTC()); err != nil {
		return err
	}

	a, err := tx.Assignments.FindByID(ctx, dispute.TaskTakenID)
	if err != nil {
		return err
	}
	task, err := tx.Tasks.FindByID(ctx, a.TaskID)
	if err != nil {
		return err
	}

	released := false
	switch req.Action {
	case constants.RefundTokens:
		err = s.ledger.RefundToClient(ctx, tx, a, task.ProposedPrice)
	case constants.ReleaseFull:
		err = s.ledger.ReleaseFull(ctx, tx, a, task.ProposedPrice)
		released = true
	case constants.ReleaseHalf, constants.AutoResolved:
		err = s.ledger.ReleaseHalf(ctx, tx, a, task.ProposedPrice)
		released = true
	}
	if err != nil {
		return err
	}

	err = tx.Assignments.CompareAndSwap(ctx, a.ID, constants.StatusDisputed, repository.AssignmentUpdate{
		Status:          to,
		PaymentReleased: released,
	})
	if err != nil {
		if errors.Is(err, repository.ErrOptimisticLock) {
			return apperrors.Conflict("task request %s is no longer disputed", a.ID)
		}
		return err
	}

	return tx.Tasks.UpdateStatus(ctx, task.ID, constants.TaskStatusFor(to), to == constants.StatusCompleted)
}

// ArchiveDispute hides a dispute from the moderator queue. Nothing is
// removed.
func (s *DisputeService) ArchiveDispute(ctx context.Context, id string) error {
	if err := s.store.Disputes.Archive(ctx, id); err != nil {
		return apperrors.Wrap(err)
	}
	s.logger.InfoContext(ctx, "dispute archived", "dispute_id", id)
	return nil
}

func (s *DisputeService) ListOpen(ctx context.Context) ([]model.Dispute, error) {
	return s.store.Disputes.ListOpen(ctx)
}

func (s *DisputeService) GetDispute(ctx context.Context, id string) (*model.Dispute, error) {
	return s.store.Disputes.FindByID(ctx, id)
}
