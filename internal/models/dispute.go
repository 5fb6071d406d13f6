package model

import (
	"encoding/json"
	"time"

	"task-marketplace.com/task-marketplace/internal/constants"
)

type Dispute struct {
	ID              string                     `gorm:"primaryKey;size:36" json:"id"`
	TaskTakenID     string                     `gorm:"size:36;not null;index" json:"task_taken_id"`
	Reason          string                     `gorm:"not null" json:"reason_for_dispute"`
	Details         string                     `json:"dispute_details"`
	ImageURLs       string                     `gorm:"type:text" json:"-"`
	ModeratorAction *constants.ModeratorAction `gorm:"type:varchar(20);index" json:"moderator_action"`
	ModeratorNotes  string                     `json:"addl_dispute_notes,omitempty"`
	ModeratorID     *int64                     `json:"moderator_id"`
	ResolvedAt      *time.Time                 `json:"resolved_at,omitempty"`
	Archived        bool                       `gorm:"not null;default:false" json:"archived"`
	CreatedAt       time.Time                  `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

func (d *Dispute) Open() bool {
	return d.ModeratorAction == nil
}

// Images decodes the stored evidence URL list.
func (d *Dispute) Images() []string {
	if d.ImageURLs == "" {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(d.ImageURLs), &urls); err != nil {
		return nil
	}
	return urls
}

func (d *Dispute) SetImages(urls []string) {
	if len(urls) == 0 {
		d.ImageURLs = ""
		return
	}
	raw, _ := json.Marshal(urls)
	d.ImageURLs = string(raw)
}

// MarshalJSON exposes the evidence list as an array instead of the raw
// column value.
func (d Dispute) MarshalJSON() ([]byte, error) {
	type alias Dispute
	return json.Marshal(struct {
		alias
		ImageURLs []string `json:"image_urls"`
	}{
		alias:     alias(d),
		ImageURLs: d.Images(),
	})
}
