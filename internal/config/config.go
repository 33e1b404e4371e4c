package config

import (
	"fmt"
	"time"
)

// Config holds all engine configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Engine thresholds and boundaries
	Engine EngineConfig `mapstructure:"engine"`

	// Work day boundaries for fragmentation analysis
	WorkDay WorkDayConfig `mapstructure:"work_day"`

	// Status color thresholds and flush cadence
	Status StatusConfig `mapstructure:"status"`

	// Status sink configuration
	Sink SinkConfig `mapstructure:"sink"`

	// Web configures the optional HTTP API
	Web WebConfig `mapstructure:"web"`

	// PIDFile guards against a second engine instance. Empty means
	// the default ~/.config/timeopt/timeopt.pid.
	PIDFile string `mapstructure:"pid_file"`

	// Debug enables development logging
	Debug bool `mapstructure:"debug"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"` // Path to SQLite database file
}

// EngineConfig holds the analyzer thresholds. The boundary semantics
// are fixed (the communication boundary is exclusive); only the
// values are tunable.
type EngineConfig struct {
	CommunicationBoundaryMinutes float64 `mapstructure:"communication_boundary_minutes"` // >= this is intentional communication, not an interrupt
	DeepWorkThresholdMinutes     float64 `mapstructure:"deep_work_threshold_minutes"`    // streak length for deep work
	FlowThresholdMinutes         float64 `mapstructure:"flow_threshold_minutes"`         // streak length for flow state
	MinMeetingMinutes            float64 `mapstructure:"min_meeting_minutes"`            // merged meeting blocks shorter than this are dropped
	RepetitionThreshold          int     `mapstructure:"repetition_threshold"`           // same-day visits before Automate applies
	NudgeCooldownMinutes         float64 `mapstructure:"nudge_cooldown_minutes"`
}

// WorkDayConfig holds the nominal work-day boundaries as "HH:MM".
type WorkDayConfig struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

// StatusConfig holds the rolling status-color thresholds
type StatusConfig struct {
	RedInterruptsPer30Min      int           `mapstructure:"red_interrupts_per_30min"`
	AmberInterruptsPer30Min    int           `mapstructure:"amber_interrupts_per_30min"`
	RedSwitchesPerHour         int           `mapstructure:"red_switches_per_hour"`
	AmberSwitchesPerHour       int           `mapstructure:"amber_switches_per_hour"`
	CriticalDistractionMinutes float64       `mapstructure:"critical_distraction_minutes"`
	FlushInterval              time.Duration `mapstructure:"flush_interval"`
}

// SinkConfig selects and configures the status sink
type SinkConfig struct {
	Type      string        `mapstructure:"type"` // "file" or "redis"
	Path      string        `mapstructure:"path"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisKey  string        `mapstructure:"redis_key"`
	RedisTTL  time.Duration `mapstructure:"redis_ttl"`

	// NudgeLog is the JSON-lines file nudges are appended to. Empty
	// means the default ~/.config/timeopt/nudges.jsonl.
	NudgeLog string `mapstructure:"nudge_log"`
}

// WebConfig holds the HTTP API settings. The API is off by default;
// the engine is useful without it.
type WebConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "", // Empty means use default ~/.config/timeopt/timeopt.db
		},
		Engine: EngineConfig{
			CommunicationBoundaryMinutes: 15,
			DeepWorkThresholdMinutes:     25,
			FlowThresholdMinutes:         45,
			MinMeetingMinutes:            5,
			RepetitionThreshold:          5,
			NudgeCooldownMinutes:         30,
		},
		WorkDay: WorkDayConfig{
			Start: "09:00",
			End:   "18:00",
		},
		Status: StatusConfig{
			RedInterruptsPer30Min:      15,
			AmberInterruptsPer30Min:    8,
			RedSwitchesPerHour:         40,
			AmberSwitchesPerHour:       20,
			CriticalDistractionMinutes: 120,
			FlushInterval:              5 * time.Second,
		},
		Sink: SinkConfig{
			Type:     "file",
			Path:     "", // Empty means use default ~/.config/timeopt/status.json
			RedisKey: "timeopt:status",
			RedisTTL: time.Minute,
		},
		Web: WebConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    8090,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Engine.CommunicationBoundaryMinutes <= 0 {
		return fmt.Errorf("communication boundary must be positive, got %v", c.Engine.CommunicationBoundaryMinutes)
	}

	if c.Engine.DeepWorkThresholdMinutes <= 0 || c.Engine.FlowThresholdMinutes <= 0 {
		return fmt.Errorf("deep-work and flow thresholds must be positive")
	}

	if c.Engine.FlowThresholdMinutes < c.Engine.DeepWorkThresholdMinutes {
		return fmt.Errorf("flow threshold (%v) cannot be less than deep-work threshold (%v)",
			c.Engine.FlowThresholdMinutes, c.Engine.DeepWorkThresholdMinutes)
	}

	if c.Engine.MinMeetingMinutes < 0 {
		return fmt.Errorf("minimum meeting duration cannot be negative")
	}

	if c.Engine.RepetitionThreshold < 1 {
		return fmt.Errorf("repetition threshold must be at least 1, got %d", c.Engine.RepetitionThreshold)
	}

	if c.Engine.NudgeCooldownMinutes < 0 {
		return fmt.Errorf("nudge cooldown cannot be negative")
	}

	start, err := c.WorkDay.StartClock()
	if err != nil {
		return fmt.Errorf("invalid work day start: %w", err)
	}
	end, err := c.WorkDay.EndClock()
	if err != nil {
		return fmt.Errorf("invalid work day end: %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("work day end (%s) must be after start (%s)", c.WorkDay.End, c.WorkDay.Start)
	}

	if c.Status.RedInterruptsPer30Min < c.Status.AmberInterruptsPer30Min {
		return fmt.Errorf("red interrupt threshold cannot be below amber")
	}

	if c.Status.RedSwitchesPerHour < c.Status.AmberSwitchesPerHour {
		return fmt.Errorf("red switch threshold cannot be below amber")
	}

	if c.Status.FlushInterval <= 0 {
		return fmt.Errorf("flush interval must be positive, got %v", c.Status.FlushInterval)
	}

	if c.Sink.Type != "file" && c.Sink.Type != "redis" {
		return fmt.Errorf("sink type must be file or redis, got %q", c.Sink.Type)
	}

	if c.Sink.Type == "redis" && c.Sink.RedisAddr == "" {
		return fmt.Errorf("redis sink requires redis_addr")
	}

	if c.Web.Enabled && (c.Web.Port < 1 || c.Web.Port > 65535) {
		return fmt.Errorf("web port must be 1-65535, got %d", c.Web.Port)
	}

	return nil
}

// Clock is a time-of-day within the work day.
type Clock struct {
	Hour   int
	Minute int
}

// After reports whether c is later in the day than other.
func (c Clock) After(other Clock) bool {
	return c.Hour*60+c.Minute > other.Hour*60+other.Minute
}

// At anchors the clock time onto a specific date.
func (c Clock) At(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

// StartClock parses the work-day start time
func (w WorkDayConfig) StartClock() (Clock, error) {
	return parseClock(w.Start)
}

// EndClock parses the work-day end time
func (w WorkDayConfig) EndClock() (Clock, error) {
	return parseClock(w.End)
}

func parseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, fmt.Errorf("expected HH:MM, got %q: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// CommunicationBoundary returns the interrupt/communication boundary as a duration
func (e EngineConfig) CommunicationBoundary() time.Duration {
	return time.Duration(e.CommunicationBoundaryMinutes * float64(time.Minute))
}

// NudgeCooldown returns the nudge cooldown as a duration
func (e EngineConfig) NudgeCooldown() time.Duration {
	return time.Duration(e.NudgeCooldownMinutes * float64(time.Minute))
}
