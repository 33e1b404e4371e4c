package models

import "time"

// DailyReport bundles every analyzer's view of one day.
type DailyReport struct {
	Date          time.Time             `json:"date"`
	Interrupts    DailyInterruptMetrics `json:"interrupts"`
	Switches      DailySwitchMetrics    `json:"switches"`
	Deal          DailyDealMetrics      `json:"deal"`
	Fragmentation FragmentationMetrics  `json:"fragmentation"`
	GeneratedAt   time.Time             `json:"generated_at"`
}

// WeeklyReport is the weekly fragmentation rollup.
type WeeklyReport struct {
	WeekStart     time.Time           `json:"week_start"`
	Fragmentation WeeklyFragmentation `json:"fragmentation"`
	GeneratedAt   time.Time           `json:"generated_at"`
}
