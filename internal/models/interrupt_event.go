package models

import (
	"time"

	"gorm.io/gorm"
)

// InterruptType classifies an interrupt by the length of the excursion
// into the communication app.
type InterruptType string

const (
	InterruptQuickCheck          InterruptType = "quick_check"          // < 30s
	InterruptShortResponse       InterruptType = "short_response"       // 30s - 2min
	InterruptActiveCommunication InterruptType = "active_communication" // 2 - 15min
)

// InterruptEvent records a completed excursion into a communication or
// meeting app. Created when the user leaves the app; append-only.
type InterruptEvent struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Timestamp          time.Time      `gorm:"not null;index" json:"timestamp"`
	InterruptApp       string         `gorm:"not null" json:"interrupt_app"`
	DurationSeconds    float64        `gorm:"not null" json:"duration_seconds"`
	PreviousApp        string         `json:"previous_app"`
	NextApp            string         `json:"next_app"`
	InterruptType      InterruptType  `gorm:"not null;index" json:"interrupt_type"`
	ContextLossMinutes float64        `gorm:"not null" json:"context_loss_estimate_minutes"`
	WorkContextBefore  Category       `json:"work_context_before"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}
