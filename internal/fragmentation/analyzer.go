// Package fragmentation measures how chopped-up a day's focus time is
// by meetings. It runs as a batch pass over stored activity, not
// incrementally.
package fragmentation

import (
	"time"

	"go.uber.org/zap"

	"timeopt/internal/category"
	"timeopt/internal/config"
	"timeopt/internal/models"
)

const (
	usableGapMinutes = 30
	tinyGapMinutes   = 5
)

// Analyzer computes daily and weekly fragmentation metrics.
type Analyzer struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewAnalyzer creates a fragmentation analyzer.
func NewAnalyzer(cfg *config.Config, logger *zap.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, logger: logger}
}

// Analyze runs the daily pass over one day's chronologically sorted
// activity: meeting block detection, gap classification, and scoring.
func (a *Analyzer) Analyze(date time.Time, events []*models.ActivityEvent) (models.FragmentationMetrics, error) {
	startClock, err := a.cfg.WorkDay.StartClock()
	if err != nil {
		return models.FragmentationMetrics{}, err
	}
	endClock, err := a.cfg.WorkDay.EndClock()
	if err != nil {
		return models.FragmentationMetrics{}, err
	}

	dayStart := startClock.At(date)
	dayEnd := endClock.At(date)
	workDayMinutes := dayEnd.Sub(dayStart).Minutes()

	m := models.FragmentationMetrics{
		Date: time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
	}

	meetings := a.detectMeetingBlocks(events)

	if len(meetings) == 0 {
		// A day with no meetings has zero fragmentation, not undefined.
		m.LargestFocusBlockMinutes = workDayMinutes
		return m, nil
	}

	for _, b := range meetings {
		m.MeetingCount++
		// Only the portion inside the work day counts, so meetings and
		// gaps together never exceed the work day.
		m.MeetingMinutes += overlapMinutes(b, dayStart, dayEnd)
		m.Blocks = append(m.Blocks, b)
	}

	gaps := buildGaps(meetings, dayStart, dayEnd)
	for _, g := range gaps {
		minutes := g.block.Minutes()
		switch g.block.BlockType {
		case models.BlockUsable:
			m.UsableGaps++
			m.UsableMinutes += minutes
			if minutes > m.LargestFocusBlockMinutes {
				m.LargestFocusBlockMinutes = minutes
			}
		case models.BlockFragmented:
			m.FragmentedGaps++
			m.FragmentedMinutes += minutes
		case models.BlockTiny:
			m.TinyGaps++
			m.TinyMinutes += minutes
			if g.betweenMeetings {
				m.BackToBackMeetings++
			}
		}
		m.Blocks = append(m.Blocks, g.block)
	}

	if m.FragmentedMinutes+m.UsableMinutes > 0 {
		m.SwissCheeseScore = m.FragmentedMinutes / (m.FragmentedMinutes + m.UsableMinutes)
	}
	m.ConsolidationPossible = m.MeetingCount >= 2 && m.FragmentedGaps >= 2

	return m, nil
}

// detectMeetingBlocks merges consecutive meeting-app events into
// blocks and drops blocks shorter than the configured minimum. A
// block ends at the first subsequent non-meeting event; trailing
// meeting events end at the last event's timestamp.
func (a *Analyzer) detectMeetingBlocks(events []*models.ActivityEvent) []models.TimeBlock {
	var blocks []models.TimeBlock
	var current *models.TimeBlock

	for _, e := range events {
		if category.IsMeeting(e.AppName, e.BundleID) {
			if current == nil {
				current = &models.TimeBlock{
					Start:     e.Timestamp,
					BlockType: models.BlockMeeting,
					AppName:   e.AppName,
				}
			}
			current.End = e.Timestamp
			continue
		}
		if current != nil {
			current.End = e.Timestamp
			blocks = append(blocks, *current)
			current = nil
		}
	}
	if current != nil {
		blocks = append(blocks, *current)
	}

	minMeeting := a.cfg.Engine.MinMeetingMinutes
	kept := blocks[:0]
	for _, b := range blocks {
		if b.Minutes() >= minMeeting {
			kept = append(kept, b)
		} else {
			a.logger.Debug("dropping short meeting block",
				zap.Time("start", b.Start),
				zap.Float64("minutes", b.Minutes()))
		}
	}
	return kept
}

// overlapMinutes returns the portion of a block that falls inside the
// work-day window. An early or late meeting only eats the focus time
// the day actually had.
func overlapMinutes(b models.TimeBlock, dayStart, dayEnd time.Time) float64 {
	start, end := b.Start, b.End
	if start.Before(dayStart) {
		start = dayStart
	}
	if end.After(dayEnd) {
		end = dayEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start).Minutes()
}

type gap struct {
	block           models.TimeBlock
	betweenMeetings bool
}

// buildGaps inserts the virtual boundary gaps before the first meeting
// and after the last one, plus the gap between every consecutive pair.
func buildGaps(meetings []models.TimeBlock, dayStart, dayEnd time.Time) []gap {
	var gaps []gap

	add := func(start, end time.Time, between bool) {
		// Gaps are clamped to the work day window.
		if start.Before(dayStart) {
			start = dayStart
		}
		if end.After(dayEnd) {
			end = dayEnd
		}
		if !end.After(start) {
			return
		}
		// Tiny is inclusive at 5 minutes: a five-minute squeeze between
		// meetings is back-to-back, not a fragment worth counting.
		minutes := end.Sub(start).Minutes()
		bt := models.BlockTiny
		switch {
		case minutes >= usableGapMinutes:
			bt = models.BlockUsable
		case minutes > tinyGapMinutes:
			bt = models.BlockFragmented
		}
		gaps = append(gaps, gap{
			block:           models.TimeBlock{Start: start, End: end, BlockType: bt},
			betweenMeetings: between,
		})
	}

	add(dayStart, meetings[0].Start, false)
	for i := 1; i < len(meetings); i++ {
		add(meetings[i-1].End, meetings[i].Start, true)
	}
	add(meetings[len(meetings)-1].End, dayEnd, false)

	return gaps
}

// AnalyzeWeek re-runs the daily pass for each weekday starting at
// weekStart and summarizes the best, worst and mean scores. The loader
// supplies each day's activity.
func (a *Analyzer) AnalyzeWeek(weekStart time.Time, load func(time.Time) ([]*models.ActivityEvent, error)) (models.WeeklyFragmentation, error) {
	w := models.WeeklyFragmentation{
		WeekStart: time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, weekStart.Location()),
	}

	var total float64
	for i := 0; i < 5; i++ {
		day := w.WeekStart.AddDate(0, 0, i)
		events, err := load(day)
		if err != nil {
			return models.WeeklyFragmentation{}, err
		}
		m, err := a.Analyze(day, events)
		if err != nil {
			return models.WeeklyFragmentation{}, err
		}
		w.Days = append(w.Days, m)
		total += m.SwissCheeseScore

		if i == 0 || m.SwissCheeseScore < w.BestScore {
			w.BestDay, w.BestScore = m.Date, m.SwissCheeseScore
		}
		if i == 0 || m.SwissCheeseScore > w.WorstScore {
			w.WorstDay, w.WorstScore = m.Date, m.SwissCheeseScore
		}
	}

	w.AverageScore = total / float64(len(w.Days))
	return w, nil
}
