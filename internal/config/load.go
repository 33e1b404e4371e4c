package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load reads configuration from a YAML file, falling back to defaults
// for anything unset. An empty path searches the usual locations; a
// missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/timeopt")
		v.AddConfigPath("/etc/timeopt/")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("engine.communication_boundary_minutes", d.Engine.CommunicationBoundaryMinutes)
	v.SetDefault("engine.deep_work_threshold_minutes", d.Engine.DeepWorkThresholdMinutes)
	v.SetDefault("engine.flow_threshold_minutes", d.Engine.FlowThresholdMinutes)
	v.SetDefault("engine.min_meeting_minutes", d.Engine.MinMeetingMinutes)
	v.SetDefault("engine.repetition_threshold", d.Engine.RepetitionThreshold)
	v.SetDefault("engine.nudge_cooldown_minutes", d.Engine.NudgeCooldownMinutes)

	v.SetDefault("work_day.start", d.WorkDay.Start)
	v.SetDefault("work_day.end", d.WorkDay.End)

	v.SetDefault("status.red_interrupts_per_30min", d.Status.RedInterruptsPer30Min)
	v.SetDefault("status.amber_interrupts_per_30min", d.Status.AmberInterruptsPer30Min)
	v.SetDefault("status.red_switches_per_hour", d.Status.RedSwitchesPerHour)
	v.SetDefault("status.amber_switches_per_hour", d.Status.AmberSwitchesPerHour)
	v.SetDefault("status.critical_distraction_minutes", d.Status.CriticalDistractionMinutes)
	v.SetDefault("status.flush_interval", d.Status.FlushInterval)

	v.SetDefault("sink.type", d.Sink.Type)
	v.SetDefault("sink.path", d.Sink.Path)
	v.SetDefault("sink.redis_addr", d.Sink.RedisAddr)
	v.SetDefault("sink.redis_key", d.Sink.RedisKey)
	v.SetDefault("sink.redis_ttl", d.Sink.RedisTTL)
	v.SetDefault("sink.nudge_log", d.Sink.NudgeLog)

	v.SetDefault("web.enabled", d.Web.Enabled)
	v.SetDefault("web.host", d.Web.Host)
	v.SetDefault("web.port", d.Web.Port)

	v.SetDefault("pid_file", d.PIDFile)
	v.SetDefault("debug", false)
}
