package model

import (
	"time"

	"task-marketplace.com/task-marketplace/internal/constants"
)

type Task struct {
	ID             string               `gorm:"primaryKey;size:36" json:"id"`
	ClientID       int64                `gorm:"not null;index" json:"client_id"`
	Title          string               `gorm:"not null" json:"title"`
	Description    string               `gorm:"not null" json:"description"`
	Specialization string               `json:"specialization"`
	ProposedPrice  int64                `gorm:"not null" json:"proposed_price"`
	Urgent         bool                 `gorm:"not null;default:false" json:"urgent"`
	Status         constants.TaskStatus `gorm:"type:varchar(20);not null" json:"status"`
	AbleToDelete   bool                 `gorm:"not null;default:false" json:"able_to_delete"`
	Version        uint                 `gorm:"not null;default:1" json:"version"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}
