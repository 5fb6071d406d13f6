package model

import (
	"time"

	"task-marketplace.com/task-marketplace/internal/constants"
)

// Party identifies a balance holder.
type Party struct {
	UserID int64
	Role   constants.Role
}

type CreditBalance struct {
	UserID    int64          `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Role      constants.Role `gorm:"primaryKey;type:varchar(10)" json:"role"`
	Balance   int64          `gorm:"not null;default:0" json:"balance"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// PaymentLog is append-only; only Status moves after insert.
type PaymentLog struct {
	ID            string                  `gorm:"primaryKey;size:36" json:"id"`
	UserID        int64                   `gorm:"not null;index" json:"user_id"`
	Role          constants.Role          `gorm:"type:varchar(10);not null" json:"role"`
	Amount        int64                   `gorm:"not null" json:"amount"`
	Type          constants.PaymentType   `gorm:"type:varchar(20);not null" json:"type"`
	TransactionID *string                 `gorm:"uniqueIndex" json:"transaction_id,omitempty"`
	Reference     string                  `gorm:"index" json:"reference,omitempty"`
	Status        constants.PaymentStatus `gorm:"type:varchar(20);not null" json:"status"`
	PaymentMethod string                  `json:"payment_method,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}
