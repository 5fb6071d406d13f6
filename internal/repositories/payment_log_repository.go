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

type PaymentLogRepository struct {
	db *gorm.DB
}

func NewPaymentLogRepository(db *gorm.DB) *PaymentLogRepository {
	return &PaymentLogRepository{db: db}
}

type NewPaymentLog struct {
	Party         model.Party
	Amount        int64
	Type          constants.PaymentType
	Status        constants.PaymentStatus
	TransactionID string
	Reference     string
	PaymentMethod string
}

func (r *PaymentLogRepository) Create(ctx context.Context, in NewPaymentLog) (*model.PaymentLog, error) {
	now := time.Now().UTC()
	entry := &model.PaymentLog{
		ID:            uuid.NewString(),
		UserID:        in.Party.UserID,
		Role:          in.Party.Role,
		Amount:        in.Amount,
		Type:          in.Type,
		Reference:     in.Reference,
		Status:        in.Status,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.TransactionID != "" {
		txID := in.TransactionID
		entry.TransactionID = &txID
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *PaymentLogRepository) FindByTransactionID(ctx context.Context, txID string) (*model.PaymentLog, error) {
	var entry model.PaymentLog
	err := r.db.WithContext(ctx).First(&entry, "transaction_id = ?", txID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// TransitionStatus moves a log from one status to another. It returns
// ErrOptimisticLock when the log is no longer in from, which is how replayed
// webhooks are recognized.
func (r *PaymentLogRepository) TransitionStatus(
	ctx context.Context,
	txID string,
	from, to constants.PaymentStatus,
) error {
	res := r.db.WithContext(ctx).Model(&model.PaymentLog{}).
		Where("transaction_id = ? AND status = ?", txID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOptimisticLock
	}
	return nil
}

func (r *PaymentLogRepository) ListFor(ctx context.Context, party model.Party) ([]model.PaymentLog, error) {
	var out []model.PaymentLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND role = ?", party.UserID, party.Role).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}
