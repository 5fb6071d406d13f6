package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc/panics"

	"task-marketplace.com/task-marketplace/internal/constants"
	"task-marketplace.com/task-marketplace/internal/locks"
	"task-marketplace.com/task-marketplace/internal/metrics"
	model "task-marketplace.com/task-marketplace/internal/models"
	repository "task-marketplace.com/task-marketplace/internal/repositories"
)

const sweepLockKey = "dispute-sweep:leader"

type disputeResolver interface {
	ResolveDispute(ctx context.Context, req ResolveRequest) (*model.Dispute, error)
}

type SweepConfig struct {
	Schedule    string
	StaleAfter  time.Duration
	ItemTimeout time.Duration
	BatchSize   int
	LeaseTTL    time.Duration
}

// SweepReport summarizes one sweep run.
type SweepReport struct {
	Skipped  bool
	Resolved int
	Failed   int
}

// SweepService auto-resolves disputes that no moderator touched within
// StaleAfter. Only the instance holding the leader lease sweeps.
type SweepService struct {
	repo     *repository.DisputeRepository
	resolver disputeResolver
	locker   locks.Locker
	cfg      SweepConfig
	logger   *slog.Logger
	now      func() time.Time
	cron     *cron.Cron
}

func NewSweepService(
	repo *repository.DisputeRepository,
	resolver disputeResolver,
	locker locks.Locker,
	cfg SweepConfig,
	logger *slog.Logger,
) *SweepService {
	return &SweepService{
		repo:     repo,
		resolver: resolver,
		locker:   locker,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Start schedules SweepOnce on the configured cron spec.
func (s *SweepService) Start() error {
	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(s.cfg.Schedule, func() {
		if _, err := s.SweepOnce(context.Background()); err != nil {
			s.logger.Error("dispute sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.cfg.Schedule, err)
	}

	s.cron = c
	c.Start()
	s.logger.Info("dispute sweep scheduled", "schedule", s.cfg.Schedule, "stale_after", s.cfg.StaleAfter)
	return nil
}

// SweepOnce resolves every dispute that has been open for at least
// StaleAfter. A failure on one dispute is logged and counted; the rest are
// still processed.
func (s *SweepService) SweepOnce(ctx context.Context) (SweepReport, error) {
	lease, err := s.locker.Acquire(ctx, sweepLockKey, s.cfg.LeaseTTL)
	if err != nil {
		if errors.Is(err, locks.ErrNotAcquired) {
			s.logger.Debug("dispute sweep skipped; another instance holds the lease")
			return SweepReport{Skipped: true}, nil
		}
		return SweepReport{}, fmt.Errorf("acquire sweep lease: %w", err)
	}
	defer func() {
		if err := lease.Release(context.Background()); err != nil {
			s.logger.Warn("failed to release sweep lease", "error", err)
		}
	}()

	metrics.SweepRunsTotal.Inc()
	cutoff := s.now().UTC().Add(-s.cfg.StaleAfter)

	var report SweepReport
	var seen []string
	for ctx.Err() == nil {
		batch, err := s.repo.ListStale(ctx, cutoff, seen, s.cfg.BatchSize)
		if err != nil {
			return report, fmt.Errorf("list stale disputes: %w", err)
		}

		for _, d := range batch {
			seen = append(seen, d.ID)
			if err := s.resolveOne(ctx, d); err != nil {
				report.Failed++
				metrics.SweepFailuresTotal.Inc()
				s.logger.Error("failed to auto-resolve dispute",
					"dispute_id", d.ID,
					"task_taken_id", d.TaskTakenID,
					"error", err,
				)
				continue
			}
			report.Resolved++
		}

		if len(batch) < s.cfg.BatchSize {
			break
		}
	}

	s.logger.Info("dispute sweep finished",
		"resolved", report.Resolved,
		"failed", report.Failed,
		"cutoff", cutoff,
	)
	return report, nil
}

func (s *SweepService) resolveOne(ctx context.Context, d model.Dispute) error {
	itemCtx, cancel := context.WithTimeout(ctx, s.cfg.ItemTimeout)
	defer cancel()

	var (
		catcher panics.Catcher
		err     error
	)
	catcher.Try(func() {
		_, err = s.resolver.ResolveDispute(itemCtx, ResolveRequest{
			DisputeID:   d.ID,
			Action:      constants.AutoResolved,
			ModeratorID: 0,
			Notes:       fmt.Sprintf("auto-resolved after %s without moderator action", s.cfg.StaleAfter),
		})
	})
	if err != nil {
		return err
	}
	return catcher.Recovered().AsError()
}

func (s *SweepService) Shutdown(ctx context.Context) {
	if s.cron == nil {
		return
	}

	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("dispute sweep shut down cleanly")
	case <-ctx.Done():
		s.logger.Warn("dispute sweep shutdown timed out")
	}
}
