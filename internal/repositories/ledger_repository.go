package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	model "task-marketplace.com/task-marketplace/internal/models"
)

// LedgerRepository mutates balances only through single conditional
// statements; no balance is ever read, changed in memory and written back.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) ensure(ctx context.Context, party model.Party) error {
	row := &model.CreditBalance{
		UserID:    party.UserID,
		Role:      party.Role,
		UpdatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error
}

func (r *LedgerRepository) Increment(ctx context.Context, party model.Party, amount int64) error {
	if amount <= 0 {
		return apperrors.ErrInvalidAmount
	}
	if err := r.ensure(ctx, party); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&model.CreditBalance{}).
		Where("user_id = ? AND role = ?", party.UserID, party.Role).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": time.Now().UTC(),
		}).Error
}

// Decrement subtracts amount only when the balance covers it.
func (r *LedgerRepository) Decrement(ctx context.Context, party model.Party, amount int64) error {
	if amount <= 0 {
		return apperrors.ErrInvalidAmount
	}

	res := r.db.WithContext(ctx).Model(&model.CreditBalance{}).
		Where("user_id = ? AND role = ? AND balance >= ?", party.UserID, party.Role, amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now().UTC(),
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrInsufficientCredits
	}
	return nil
}

func (r *LedgerRepository) Balance(ctx context.Context, party model.Party) (int64, error) {
	var row model.CreditBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND role = ?", party.UserID, party.Role).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.Balance, nil
}
