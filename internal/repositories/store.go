package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one connection or transaction.
type Store struct {
	db          *gorm.DB
	Tasks       *TaskRepository
	Assignments *AssignmentRepository
	Disputes    *DisputeRepository
	Ledger      *LedgerRepository
	Payments    *PaymentLogRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Tasks:       NewTaskRepository(db),
		Assignments: NewAssignmentRepository(db),
		Disputes:    NewDisputeRepository(db),
		Ledger:      NewLedgerRepository(db),
		Payments:    NewPaymentLogRepository(db),
	}
}

// Transaction runs fn against a Store bound to a single database
// transaction. Any error returned by fn rolls every write back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
