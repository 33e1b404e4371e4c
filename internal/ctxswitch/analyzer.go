// Package ctxswitch tracks the active work context and prices every
// application change in minutes of lost focus.
package ctxswitch

import (
	"time"

	"go.uber.org/zap"

	"timeopt/internal/category"
	"timeopt/internal/config"
	"timeopt/internal/models"
)

// depthMultiplier scales switch cost by how long the previous context
// had been held. Longer tenure means more to rebuild.
func depthMultiplier(tenure time.Duration) float64 {
	minutes := tenure.Minutes()
	switch {
	case minutes < 5:
		return 1.0 // shallow
	case minutes < 15:
		return 1.5 // building
	case minutes < 25:
		return 2.0 // focused
	case minutes < 45:
		return 2.5 // deep
	default:
		return 3.0 // flow
	}
}

// Analyzer maintains the current work context. Not safe for concurrent
// use; the coordinator is its sole caller.
type Analyzer struct {
	cfg    *config.Config
	logger *zap.Logger

	currentApp      string
	currentBundle   string
	currentCategory models.Category
	contextStart    time.Time
	lastTimestamp   time.Time
	initialized     bool
}

// NewAnalyzer creates a context switch analyzer.
func NewAnalyzer(cfg *config.Config, logger *zap.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, logger: logger}
}

// OnActivity processes one focus change and returns a ContextSwitch
// for every change to a different app, nil for repeats of the current
// app. The only error case is an out-of-order timestamp.
func (a *Analyzer) OnActivity(event *models.ActivityEvent) (*models.ContextSwitch, error) {
	if a.initialized && event.Timestamp.Before(a.lastTimestamp) {
		return nil, &models.OutOfOrderError{Last: a.lastTimestamp, Got: event.Timestamp}
	}
	a.lastTimestamp = event.Timestamp

	toCategory := category.Resolve(event.AppName, event.BundleID)

	if !a.initialized {
		a.initialized = true
		a.currentApp = event.AppName
		a.currentBundle = event.BundleID
		a.currentCategory = toCategory
		a.contextStart = event.Timestamp
		return nil, nil
	}

	if event.AppName == a.currentApp {
		// No transition: the context clock keeps running.
		return nil, nil
	}

	tenure := event.Timestamp.Sub(a.contextStart)
	affinity := Affinity(a.currentCategory, toCategory)
	cost := baseSwitchCost * (1 - affinity) * depthMultiplier(tenure)

	sw := &models.ContextSwitch{
		Timestamp:             event.Timestamp,
		FromApp:               a.currentApp,
		FromCategory:          a.currentCategory,
		ToApp:                 event.AppName,
		ToCategory:            toCategory,
		DurationBeforeMinutes: tenure.Minutes(),
		EstimatedCostMinutes:  cost,
		SwitchType:            switchType(toCategory),
	}

	a.currentApp = event.AppName
	a.currentBundle = event.BundleID
	a.currentCategory = toCategory
	a.contextStart = event.Timestamp

	return sw, nil
}

// switchType labels the switch by what the user moved into.
func switchType(to models.Category) models.SwitchType {
	switch to {
	case models.CategoryMeeting:
		return models.SwitchMeeting
	case models.CategoryCommunication:
		return models.SwitchInterrupt
	case models.CategoryEntertainment:
		return models.SwitchBreak
	default:
		return models.SwitchVoluntary
	}
}

// InDeepWork reports whether the current context is a high-value
// category held for at least the deep-work threshold.
func (a *Analyzer) InDeepWork(now time.Time) bool {
	if !a.initialized || !category.IsDeepWork(a.currentCategory) {
		return false
	}
	threshold := time.Duration(a.cfg.Engine.DeepWorkThresholdMinutes * float64(time.Minute))
	return now.Sub(a.contextStart) >= threshold
}

// CurrentCategory returns the category of the active context, or
// Other before the first event.
func (a *Analyzer) CurrentCategory() models.Category {
	if !a.initialized {
		return models.CategoryOther
	}
	return a.currentCategory
}

// DailyMetrics aggregates a day's stored context switches: counts by
// type, total and average cost, and how many switches cut short a
// deep-work or flow-state streak.
func DailyMetrics(cfg *config.Config, date time.Time, switches []*models.ContextSwitch) models.DailySwitchMetrics {
	m := models.DailySwitchMetrics{
		Date:        time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
		CountByType: make(map[models.SwitchType]int),
	}

	for _, sw := range switches {
		m.TotalSwitches++
		m.CountByType[sw.SwitchType]++
		m.TotalCostMinutes += sw.EstimatedCostMinutes
		if category.IsDeepWork(sw.FromCategory) {
			if sw.DurationBeforeMinutes >= cfg.Engine.FlowThresholdMinutes {
				m.FlowStateInterruptions++
				m.DeepWorkInterruptions++
			} else if sw.DurationBeforeMinutes >= cfg.Engine.DeepWorkThresholdMinutes {
				m.DeepWorkInterruptions++
			}
		}
	}

	if m.TotalSwitches > 0 {
		m.AverageCostMinutes = m.TotalCostMinutes / float64(m.TotalSwitches)
	}
	return m
}
