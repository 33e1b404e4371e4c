package deal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"timeopt/internal/models"
)

const (
	// Gaps longer than this between events count as idle, not time in
	// the earlier app.
	idleCap = 30 * time.Minute

	timeSinkMinutes      = 60
	repetitiveVisitFloor = 20
)

// activityGroup is one (app, window title) bucket of a day's events.
type activityGroup struct {
	app     string
	title   string
	url     string
	minutes float64
	events  int
}

// DailyMetrics recomputes a day's DEAL totals from stored activity.
// Durations are estimated from event density: each event owns the time
// until the next one, capped at the idle limit, so bucket minutes sum
// exactly to the tracked total.
func (c *Classifier) DailyMetrics(date time.Time, events []*models.ActivityEvent) models.DailyDealMetrics {
	m := models.DailyDealMetrics{
		Date:            time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
		CountByCategory: make(map[models.DealCategory]int),
	}
	if len(events) == 0 {
		return m
	}

	groups, visitTotals := groupActivity(events)

	for _, g := range groups {
		cls := c.ClassifyGroup(g.app, g.title, g.url, g.minutes, visitTotals[g.app])
		m.TotalTrackedMinutes += g.minutes

		if cls.Confidence <= 0.30 {
			// The low-confidence fallback lands in the unclassified
			// bucket rather than inflating Leverage.
			m.UnclassifiedMinutes += g.minutes
			continue
		}

		m.CountByCategory[cls.Category]++
		switch cls.Category {
		case models.DealLeverage:
			m.LeverageMinutes += g.minutes
		case models.DealDelegate:
			m.DelegateMinutes += g.minutes
		case models.DealEliminate:
			m.EliminateMinutes += g.minutes
		case models.DealAutomate:
			m.AutomateMinutes += g.minutes
		}
	}

	m.DetectedPatterns = detectPatterns(groups, visitTotals)
	return m
}

// groupActivity buckets events by (app, title) and sums estimated
// durations. Visit totals are per app across all titles.
func groupActivity(events []*models.ActivityEvent) ([]activityGroup, map[string]int) {
	type key struct{ app, title string }
	byKey := make(map[key]*activityGroup)
	visits := make(map[string]int)
	var order []key

	for i, e := range events {
		app := strings.ToLower(e.AppName)
		visits[app]++

		var d time.Duration
		if i+1 < len(events) {
			d = events[i+1].Timestamp.Sub(e.Timestamp)
			if d > idleCap {
				d = idleCap
			}
		}

		k := key{app: app, title: e.WindowTitle}
		g, ok := byKey[k]
		if !ok {
			g = &activityGroup{app: app, title: e.WindowTitle, url: e.URL}
			byKey[k] = g
			order = append(order, k)
		}
		g.minutes += d.Minutes()
		g.events++
	}

	groups := make([]activityGroup, 0, len(byKey))
	for _, k := range order {
		groups = append(groups, *byKey[k])
	}
	return groups, visits
}

// detectPatterns flags distraction apps over the time-sink limit and
// communication apps visited often enough to be worth automating.
func detectPatterns(groups []activityGroup, visits map[string]int) []models.ActivityPattern {
	minutesByApp := make(map[string]float64)
	for _, g := range groups {
		minutesByApp[g.app] += g.minutes
	}

	var patterns []models.ActivityPattern
	for app, minutes := range minutesByApp {
		if distractionApps[app] && minutes >= timeSinkMinutes {
			patterns = append(patterns, models.ActivityPattern{
				PatternType:  models.PatternTimeSink,
				AppName:      app,
				TotalMinutes: minutes,
				VisitCount:   visits[app],
				Suggestion:   fmt.Sprintf("%s consumed %.0f minutes today; consider blocking it during focus hours", app, minutes),
			})
		}
	}
	for app, count := range visits {
		if communicationApps[app] && count > repetitiveVisitFloor {
			patterns = append(patterns, models.ActivityPattern{
				PatternType:  models.PatternRepetitiveApp,
				AppName:      app,
				TotalMinutes: minutesByApp[app],
				VisitCount:   count,
				Suggestion:   fmt.Sprintf("%s was checked %d times today; batch it into two or three scheduled windows", app, count),
			})
		}
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].PatternType != patterns[j].PatternType {
			return patterns[i].PatternType < patterns[j].PatternType
		}
		return patterns[i].AppName < patterns[j].AppName
	})
	return patterns
}
