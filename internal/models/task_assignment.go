package model

import (
	"time"

	"task-marketplace.com/task-marketplace/internal/constants"
)

// TaskAssignment pairs a task with a tasker. Neither side owns it; it is the
// record every lifecycle transition is coordinated through.
type TaskAssignment struct {
	ID              string                     `gorm:"primaryKey;size:36" json:"id"`
	TaskID          string                     `gorm:"size:36;not null;index" json:"task_id"`
	ClientID        int64                      `gorm:"not null;index" json:"client_id"`
	TaskerID        int64                      `gorm:"not null;index" json:"tasker_id"`
	Status          constants.AssignmentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ClientVisited   bool                       `gorm:"not null;default:false" json:"client_visited"`
	TaskerVisited   bool                       `gorm:"not null;default:false" json:"tasker_visited"`
	ReworkCount     int                        `gorm:"not null;default:0" json:"rework_count"`
	EndDate         *time.Time                 `json:"end_date,omitempty"`
	Reason          string                     `gorm:"column:reason_for_rejection_or_cancellation" json:"reason_for_rejection_or_cancellation,omitempty"`
	PaymentReleased bool                       `gorm:"not null;default:false" json:"payment_released"`
	IsDeleted       bool                       `gorm:"not null;default:false" json:"is_deleted"`
	Version         uint                       `gorm:"not null;default:1" json:"version"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

func (TaskAssignment) TableName() string {
	return "task_taken"
}
