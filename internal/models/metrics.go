package models

import "time"

// DailyInterruptMetrics buckets a day's stored InterruptEvents.
type DailyInterruptMetrics struct {
	Date                    time.Time             `json:"date"`
	TotalCount              int                   `json:"total_count"`
	CountByType             map[InterruptType]int `json:"count_by_type"`
	CountByHour             [24]int               `json:"count_by_hour"`
	TotalContextLossMinutes float64               `json:"total_context_loss_minutes"`
	TopInterruptApps        []AppCount            `json:"top_interrupt_apps"`
}

// AppCount pairs an app with how often it appeared.
type AppCount struct {
	AppName string `json:"app_name"`
	Count   int    `json:"count"`
}

// DailySwitchMetrics aggregates a day's ContextSwitch records.
type DailySwitchMetrics struct {
	Date                   time.Time          `json:"date"`
	TotalSwitches          int                `json:"total_switches"`
	CountByType            map[SwitchType]int `json:"count_by_type"`
	TotalCostMinutes       float64            `json:"total_cost_minutes"`
	AverageCostMinutes     float64            `json:"average_cost_minutes"`
	DeepWorkInterruptions  int                `json:"deep_work_interruptions"`  // broke a >= 25 min streak
	FlowStateInterruptions int                `json:"flow_state_interruptions"` // broke a >= 45 min streak
}

// DealClassification is the per-activity output of the DEAL classifier.
type DealClassification struct {
	Category   DealCategory `json:"category"`
	Confidence float64      `json:"confidence"`
	Reasoning  string       `json:"reasoning"`
}

// PatternType tags a detected recurring activity pattern.
type PatternType string

const (
	PatternTimeSink      PatternType = "time_sink"
	PatternRepetitiveApp PatternType = "repetitive_app"
)

// ActivityPattern is a recurring behavior worth flagging, with a
// generated automation or elimination suggestion.
type ActivityPattern struct {
	PatternType  PatternType `json:"pattern_type"`
	AppName      string      `json:"app_name"`
	TotalMinutes float64     `json:"total_minutes"`
	VisitCount   int         `json:"visit_count"`
	Suggestion   string      `json:"suggestion"`
}

// DailyDealMetrics sums a day's activity into the four DEAL buckets.
// LeverageMinutes + DelegateMinutes + EliminateMinutes +
// AutomateMinutes + UnclassifiedMinutes equals TotalTrackedMinutes.
type DailyDealMetrics struct {
	Date                time.Time            `json:"date"`
	LeverageMinutes     float64              `json:"leverage_minutes"`
	DelegateMinutes     float64              `json:"delegate_minutes"`
	EliminateMinutes    float64              `json:"eliminate_minutes"`
	AutomateMinutes     float64              `json:"automate_minutes"`
	UnclassifiedMinutes float64              `json:"unclassified_minutes"`
	TotalTrackedMinutes float64              `json:"total_tracked_minutes"`
	CountByCategory     map[DealCategory]int `json:"count_by_category"`
	DetectedPatterns    []ActivityPattern    `json:"detected_patterns"`
}

// BlockType labels a segment of the work day.
type BlockType string

const (
	BlockMeeting    BlockType = "meeting"
	BlockUsable     BlockType = "usable"     // gap >= 30 min
	BlockFragmented BlockType = "fragmented" // gap 5 - 30 min
	BlockTiny       BlockType = "tiny"       // gap < 5 min
)

// TimeBlock is a meeting block or a gap between meetings.
type TimeBlock struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	BlockType BlockType `json:"block_type"`
	AppName   string    `json:"app_name,omitempty"`
}

// Minutes returns the block length in minutes.
func (b TimeBlock) Minutes() float64 {
	return b.End.Sub(b.Start).Minutes()
}

// FragmentationMetrics describes how chopped-up a day's focus time is.
type FragmentationMetrics struct {
	Date                     time.Time   `json:"date"`
	MeetingCount             int         `json:"meeting_count"`
	MeetingMinutes           float64     `json:"meeting_minutes"`
	BackToBackMeetings       int         `json:"back_to_back_meetings"`
	UsableGaps               int         `json:"usable_gaps"`
	UsableMinutes            float64     `json:"usable_minutes"`
	FragmentedGaps           int         `json:"fragmented_gaps"`
	FragmentedMinutes        float64     `json:"fragmented_minutes"`
	TinyGaps                 int         `json:"tiny_gaps"`
	TinyMinutes              float64     `json:"tiny_minutes"`
	SwissCheeseScore         float64     `json:"swiss_cheese_score"`
	LargestFocusBlockMinutes float64     `json:"largest_focus_block_minutes"`
	ConsolidationPossible    bool        `json:"consolidation_possible"`
	Blocks                   []TimeBlock `json:"blocks"`
}

// WeeklyFragmentation summarizes the daily analysis across a week.
type WeeklyFragmentation struct {
	WeekStart    time.Time              `json:"week_start"`
	Days         []FragmentationMetrics `json:"days"`
	BestDay      time.Time              `json:"best_day"`
	BestScore    float64                `json:"best_score"`
	WorstDay     time.Time              `json:"worst_day"`
	WorstScore   float64                `json:"worst_score"`
	AverageScore float64                `json:"average_score"`
}

// StatusColor is the rolling traffic-light status.
type StatusColor string

const (
	StatusGreen StatusColor = "green"
	StatusAmber StatusColor = "amber"
	StatusRed   StatusColor = "red"
)

// OptimizationStatus is the coordinator's rolling view of the day. It
// is the only long-lived mutable object in the engine, reset at local
// midnight, and serialized periodically to the status sink.
type OptimizationStatus struct {
	UpdatedAt               time.Time   `json:"updated_at"`
	StatusColor             StatusColor `json:"status_color"`
	DailyDeepWorkHours      float64     `json:"daily_deep_work_hours"`
	InterruptCountToday     int         `json:"interrupt_count_today"`
	SwitchCostMinutesToday  float64     `json:"context_switch_cost_minutes"`
	DistractionMinutesToday float64     `json:"distraction_minutes_today"`
	LatestNudge             *Nudge      `json:"latest_nudge,omitempty"`
}
