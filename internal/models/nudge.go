package models

import (
	"time"

	"gorm.io/gorm"
)

// NudgeType identifies which threshold crossing produced a nudge.
type NudgeType string

const (
	NudgeInterruptStorm   NudgeType = "interrupt_storm"
	NudgeSwitchOverload   NudgeType = "switch_overload"
	NudgeDistractionAlert NudgeType = "distraction_alert"
)

// NudgeUrgency mirrors the status color that triggered the nudge.
type NudgeUrgency string

const (
	UrgencyLow    NudgeUrgency = "low"
	UrgencyMedium NudgeUrgency = "medium"
	UrgencyHigh   NudgeUrgency = "high"
)

// Nudge is a cooldown-gated behavioral suggestion. Immutable once
// created except for the two terminal flags, which an external
// consumer sets via the repository.
type Nudge struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	Timestamp    time.Time      `gorm:"not null;index" json:"timestamp"`
	NudgeType    NudgeType      `gorm:"not null" json:"nudge_type"`
	Message      string         `gorm:"not null" json:"message"`
	Suggestion   string         `json:"suggestion"`
	Urgency      NudgeUrgency   `gorm:"not null" json:"urgency"`
	WasDismissed bool           `gorm:"not null;default:false" json:"was_dismissed"`
	WasActedUpon *bool          `json:"was_acted_upon,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
