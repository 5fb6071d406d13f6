package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-marketplace.com/task-marketplace/internal/constants"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	model "task-marketplace.com/task-marketplace/internal/models"
)

type DisputeRepository struct {
	db *gorm.DB
}

func NewDisputeRepository(db *gorm.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

type NewDispute struct {
	TaskTakenID string
	Reason      string
	Details     string
	ImageURLs   []string
	CreatedAt   time.Time
}

func (r *DisputeRepository) Create(ctx context.Context, in NewDispute) (*model.Dispute, error) {
	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	d := &model.Dispute{
		ID:          uuid.NewString(),
		TaskTakenID: in.TaskTakenID,
		Reason:      in.Reason,
		Details:     in.Details,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	d.SetImages(in.ImageURLs)

	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DisputeRepository) FindByID(ctx context.Context, id string) (*model.Dispute, error) {
	var d model.Dispute
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDisputeNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindOpenByAssignment returns the unresolved dispute raised against an
// assignment.
func (r *DisputeRepository) FindOpenByAssignment(ctx context.Context, taskTakenID string) (*model.Dispute, error) {
	var d model.Dispute
	err := r.db.WithContext(ctx).
		Where("task_taken_id = ? AND moderator_action IS NULL", taskTakenID).
		Order("created_at desc").
		First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDisputeNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Resolve stamps the moderator decision. It only succeeds while the dispute
// is still open, so a dispute is resolved exactly once.
func (r *DisputeRepository) Resolve(
	ctx context.Context,
	id string,
	action constants.ModeratorAction,
	moderatorID int64,
	notes string,
	at time.Time,
) error {
	res := r.db.WithContext(ctx).Model(&model.Dispute{}).
		Where("id = ? AND moderator_action IS NULL", id).
		Updates(map[string]interface{}{
			"moderator_action": action,
			"moderator_id":     moderatorID,
			"moderator_notes":  notes,
			"resolved_at":      at,
			"updated_at":       at,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.Conflict("dispute %s is already resolved", id)
	}
	return nil
}

func (r *DisputeRepository) Archive(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&model.Dispute{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"archived":   true,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrDisputeNotFound
	}
	return nil
}

func (r *DisputeRepository) ListOpen(ctx context.Context) ([]model.Dispute, error) {
	var out []model.Dispute
	err := r.db.WithContext(ctx).
		Where("moderator_action IS NULL AND archived = ?", false).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// ListStale returns open disputes created at or before cutoff, oldest
// first, leaving out the ids in exclude.
func (r *DisputeRepository) ListStale(ctx context.Context, cutoff time.Time, exclude []string, limit int) ([]model.Dispute, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	query := r.db.WithContext(ctx).
		Where("moderator_action IS NULL AND created_at <= ?", cutoff)
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}

	var out []model.Dispute
	err := query.
		Order("created_at asc, id asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
