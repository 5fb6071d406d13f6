package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sourcegraph/conc"

	"task-marketplace.com/task-marketplace/internal/constants"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	"task-marketplace.com/task-marketplace/internal/metrics"
	model "task-marketplace.com/task-marketplace/internal/models"
	repository "task-marketplace.com/task-marketplace/internal/repositories"
	"task-marketplace.com/task-marketplace/internal/storage"
)

// Evidence is one uploaded file attached to a dispute.
type Evidence struct {
	Filename    string
	ContentType string
	Data        []byte
}

type TransitionRequest struct {
	AssignmentID   string
	Action         constants.Action
	Role           constants.Role
	Reason         string
	DisputeReason  string
	DisputeDetails string
	Evidence       []Evidence
}

type TransitionResult struct {
	Assignment *model.TaskAssignment
	Dispute    *model.Dispute
}

type TransitionService struct {
	store    *repository.Store
	ledger   *LedgerService
	storage  storage.Storage
	location *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

func NewTransitionService(
	store *repository.Store,
	ledger *LedgerService,
	blobs storage.Storage,
	location *time.Location,
	logger *slog.Logger,
) *TransitionService {
	if location == nil {
		location = time.UTC
	}
	return &TransitionService{
		store:    store,
		ledger:   ledger,
		storage:  blobs,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// ApplyTransition moves an assignment along one edge of the lifecycle. The
// ledger effect, the assignment write and the task mirror commit in one
// transaction; the assignment write only lands if the row is still in the
// status it was read in.
func (s *TransitionService) ApplyTransition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	result, err := s.applyTransition(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = string(apperrors.KindOf(err))
	}
	metrics.TransitionsTotal.WithLabelValues(string(req.Action), outcome).Inc()
	return result, err
}

func (s *TransitionService) applyTransition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	r, err := ruleFor(req.Action, req.Role)
	if err != nil {
		return nil, err
	}
	if err := validateTransitionInput(r, req); err != nil {
		return nil, err
	}

	current, err := s.store.Assignments.FindByID(ctx, req.AssignmentID)
	if err != nil {
		return nil, err
	}
	from := current.Status
	if !r.allows(from) {
		return nil, apperrors.Conflict("cannot %s a request in status %s", req.Action, from)
	}

	task, err := s.store.Tasks.FindByID(ctx, current.TaskID)
	if err != nil {
		return nil, err
	}

	var uploaded []string
	var imageURLs []string
	if r.effect == effectOpenDispute && len(req.Evidence) > 0 {
		uploaded, imageURLs, err = s.uploadEvidence(ctx, current.ID, req.Evidence)
		if err != nil {
			return nil, err
		}
	}

	var dispute *model.Dispute
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := s.applyEffect(ctx, tx, r, current, task, from); err != nil {
			return err
		}

		if err := tx.Assignments.CompareAndSwap(ctx, current.ID, from, s.updateFor(r, req)); err != nil {
			if errors.Is(err, repository.ErrOptimisticLock) {
				return apperrors.Conflict("task request %s changed while applying %s; reload and retry", current.ID, req.Action)
			}
			return err
		}

		if err := tx.Tasks.UpdateStatus(ctx, task.ID, constants.TaskStatusFor(r.to), r.ableToDelete); err != nil {
			return err
		}

		if r.effect == effectOpenDispute {
			d, err := tx.Disputes.Create(ctx, repository.NewDispute{
				TaskTakenID: current.ID,
				Reason:      strings.TrimSpace(req.DisputeReason),
				Details:     req.DisputeDetails,
				ImageURLs:   imageURLs,
				CreatedAt:   s.now().UTC(),
			})
			if err != nil {
				return err
			}
			dispute = d
		}
		return nil
	})
	if err != nil {
		s.discardEvidence(uploaded)
		return nil, apperrors.Wrap(err)
	}

	s.logger.InfoContext(ctx, "task request transitioned",
		"task_taken_id", current.ID,
		"action", req.Action,
		"role", req.Role,
		"from", from,
		"to", r.to,
	)

	updated, err := s.store.Assignments.FindByID(ctx, current.ID)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return &TransitionResult{Assignment: updated, Dispute: dispute}, nil
}

func validateTransitionInput(r rule, req TransitionRequest) error {
	if r.reasonRequired && strings.TrimSpace(req.Reason) == "" {
		return apperrors.ErrReasonRequired
	}
	if r.effect == effectOpenDispute && strings.TrimSpace(req.DisputeReason) == "" {
		return apperrors.Validation("reason_for_dispute is required")
	}
	return nil
}

func (s *TransitionService) applyEffect(
	ctx context.Context,
	tx *repository.Store,
	r rule,
	a *model.TaskAssignment,
	task *model.Task,
	from constants.AssignmentStatus,
) error {
	switch r.effect {
	case effectHold:
		return s.ledger.Hold(ctx, tx, a, task.ProposedPrice)
	case effectRefundIfFunded:
		if from.IsFunded() {
			return s.ledger.RefundToClient(ctx, tx, a, task.ProposedPrice)
		}
	case effectReleaseFull:
		return s.ledger.ReleaseFull(ctx, tx, a, task.ProposedPrice)
	}
	return nil
}

func (s *TransitionService) updateFor(r rule, req TransitionRequest) repository.AssignmentUpdate {
	update := repository.AssignmentUpdate{
		Status:          r.to,
		IncrementRework: r.rework,
		PaymentReleased: r.release,
		VisitedBy:       req.Role,
	}
	if r.reasonRequired {
		reason := strings.TrimSpace(req.Reason)
		update.Reason = &reason
	}
	if r.stampEndDate {
		end := s.now().In(s.location)
		update.EndDate = &end
	}
	return update
}

// uploadEvidence stores every file before the transaction opens. It returns
// the storage paths written so far, which the caller removes if anything
// later fails.
func (s *TransitionService) uploadEvidence(ctx context.Context, taskTakenID string, files []Evidence) ([]string, []string, error) {
	if s.storage == nil {
		return nil, nil, apperrors.Internal(errors.New("evidence storage is not configured"))
	}

	paths := make([]string, len(files))
	errs := make([]error, len(files))

	var wg conc.WaitGroup
	for i, f := range files {
		i, f := i, f
		paths[i] = evidencePath(taskTakenID, f.Filename)
		wg.Go(func() {
			errs[i] = s.storage.Write(ctx, paths[i], f.Data, f.ContentType)
		})
	}
	wg.Wait()

	var written, urls []string
	var failed error
	for i, p := range paths {
		if errs[i] != nil {
			failed = errors.Join(failed, errs[i])
			continue
		}
		written = append(written, p)
		urls = append(urls, s.storage.URL(p))
	}

	if failed != nil {
		s.discardEvidence(written)
		return nil, nil, apperrors.Upstream("failed to store dispute evidence", failed)
	}
	return written, urls, nil
}

func (s *TransitionService) discardEvidence(paths []string) {
	if len(paths) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, p := range paths {
		if err := s.storage.Delete(ctx, p); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("failed to remove orphaned evidence", "path", p, "error", err)
		}
	}
}

func evidencePath(taskTakenID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s%s", taskTakenID, ulid.Make().String(), ext)
}

// CreateRequest attaches a tasker to an available task as a Pending
// assignment. The task version is claimed in the same transaction, so two
// concurrent requests for one task cannot both succeed.
func (s *TransitionService) CreateRequest(ctx context.Context, taskID string, taskerID int64) (*model.TaskAssignment, error) {
	if taskerID <= 0 {
		return nil, apperrors.Validation("tasker_id is required")
	}

	var created *model.TaskAssignment
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		task, err := tx.Tasks.FindByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task.Status != constants.TaskAvailable {
			return apperrors.Conflict("task %s is %s", task.ID, task.Status)
		}

		active, err := tx.Assignments.HasActive(ctx, task.ID)
		if err != nil {
			return err
		}
		if active {
			return apperrors.Conflict("task %s already has an active request", task.ID)
		}

		if err := tx.Tasks.Claim(ctx, task); err != nil {
			return err
		}

		created, err = tx.Assignments.Create(ctx, task, taskerID)
		return err
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	s.logger.InfoContext(ctx, "task request created",
		"task_taken_id", created.ID,
		"task_id", taskID,
		"tasker_id", taskerID,
	)
	return created, nil
}
