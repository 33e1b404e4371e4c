package models

import (
	"time"

	"gorm.io/gorm"
)

// ActivityEvent is one focus-change record from the capture subsystem.
// Events are immutable once stored; ordering is by timestamp.
type ActivityEvent struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Timestamp    time.Time      `gorm:"not null;index" json:"timestamp"`
	AppName      string         `gorm:"not null;index" json:"app_name"`
	BundleID     string         `json:"bundle_id,omitempty"`
	WindowTitle  string         `json:"window_title,omitempty"`
	URL          string         `json:"url,omitempty"`
	WorkCategory string         `json:"work_category,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
