package models

import (
	"time"

	"gorm.io/gorm"
)

// SwitchType describes what kind of context the user switched into.
type SwitchType string

const (
	SwitchVoluntary SwitchType = "voluntary"
	SwitchInterrupt SwitchType = "interrupt"
	SwitchMeeting   SwitchType = "meeting"
	SwitchBreak     SwitchType = "break"
)

// ContextSwitch records one app change and its estimated cost in
// minutes of lost focus. Append-only.
type ContextSwitch struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	Timestamp             time.Time      `gorm:"not null;index" json:"timestamp"`
	FromApp               string         `json:"from_app"`
	FromCategory          Category       `json:"from_category"`
	ToApp                 string         `json:"to_app"`
	ToCategory            Category       `json:"to_category"`
	DurationBeforeMinutes float64        `gorm:"column:deep_work_duration_before_minutes" json:"deep_work_duration_before_minutes"`
	EstimatedCostMinutes  float64        `gorm:"not null" json:"estimated_cost_minutes"`
	SwitchType            SwitchType     `gorm:"not null;index" json:"switch_type"`
	CreatedAt             time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}
