// Package reporter assembles daily and weekly reports from stored
// events and renders them for the CLI.
package reporter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"timeopt/internal/config"
	"timeopt/internal/ctxswitch"
	"timeopt/internal/database"
	"timeopt/internal/deal"
	"timeopt/internal/fragmentation"
	"timeopt/internal/interrupt"
	"timeopt/internal/models"
)

type Reporter struct {
	cfg        *config.Config
	repo       *database.Repository
	classifier *deal.Classifier
	frag       *fragmentation.Analyzer
}

func New(cfg *config.Config, repo *database.Repository, logger *zap.Logger) *Reporter {
	return &Reporter{
		cfg:        cfg,
		repo:       repo,
		classifier: deal.NewClassifier(cfg, logger),
		frag:       fragmentation.NewAnalyzer(cfg, logger),
	}
}

// DailyReport loads the day's stored events and runs every analyzer's
// daily aggregation over them.
func (r *Reporter) DailyReport(date time.Time) (*models.DailyReport, error) {
	activity, err := r.repo.ActivityForDay(date)
	if err != nil {
		return nil, errors.Wrap(err, "loading activity")
	}
	interrupts, err := r.repo.InterruptsForDay(date)
	if err != nil {
		return nil, errors.Wrap(err, "loading interrupts")
	}
	switches, err := r.repo.SwitchesForDay(date)
	if err != nil {
		return nil, errors.Wrap(err, "loading switches")
	}

	frag, err := r.frag.Analyze(date, activity)
	if err != nil {
		return nil, errors.Wrap(err, "analyzing fragmentation")
	}

	return &models.DailyReport{
		Date:          date,
		Interrupts:    interrupt.DailyMetrics(date, interrupts),
		Switches:      ctxswitch.DailyMetrics(r.cfg, date, switches),
		Deal:          r.classifier.DailyMetrics(date, activity),
		Fragmentation: frag,
		GeneratedAt:   time.Now(),
	}, nil
}

// WeeklyReport runs the fragmentation analysis across the work week
// starting at weekStart.
func (r *Reporter) WeeklyReport(weekStart time.Time) (*models.WeeklyReport, error) {
	week, err := r.frag.AnalyzeWeek(weekStart, r.repo.ActivityForDay)
	if err != nil {
		return nil, errors.Wrap(err, "analyzing week")
	}
	return &models.WeeklyReport{
		WeekStart:     weekStart,
		Fragmentation: week,
		GeneratedAt:   time.Now(),
	}, nil
}

// WeekStartOf returns the Monday midnight of the week containing t.
func WeekStartOf(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -(weekday - 1))
}

// FormatDailyText renders the daily report as human-readable text.
func (r *Reporter) FormatDailyText(report *models.DailyReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Daily Report - %s\n\n", report.Date.Format("2006-01-02"))

	fmt.Fprintf(&b, "Interruptions: %d (%.0f context-loss minutes)\n",
		report.Interrupts.TotalCount, report.Interrupts.TotalContextLossMinutes)
	for _, it := range []models.InterruptType{
		models.InterruptQuickCheck, models.InterruptShortResponse, models.InterruptActiveCommunication,
	} {
		if n := report.Interrupts.CountByType[it]; n > 0 {
			fmt.Fprintf(&b, "  %-22s %d\n", string(it), n)
		}
	}
	for _, app := range report.Interrupts.TopInterruptApps {
		fmt.Fprintf(&b, "  top source: %s (%d)\n", app.AppName, app.Count)
	}

	fmt.Fprintf(&b, "\nContext switches: %d (%.1f min total, %.1f min avg)\n",
		report.Switches.TotalSwitches, report.Switches.TotalCostMinutes, report.Switches.AverageCostMinutes)
	fmt.Fprintf(&b, "  deep work broken: %d, flow broken: %d\n",
		report.Switches.DeepWorkInterruptions, report.Switches.FlowStateInterruptions)

	fmt.Fprintf(&b, "\nDEAL breakdown (%.0f tracked minutes)\n", report.Deal.TotalTrackedMinutes)
	fmt.Fprintf(&b, "  %-12s %7.0f\n", "leverage", report.Deal.LeverageMinutes)
	fmt.Fprintf(&b, "  %-12s %7.0f\n", "delegate", report.Deal.DelegateMinutes)
	fmt.Fprintf(&b, "  %-12s %7.0f\n", "eliminate", report.Deal.EliminateMinutes)
	fmt.Fprintf(&b, "  %-12s %7.0f\n", "automate", report.Deal.AutomateMinutes)
	fmt.Fprintf(&b, "  %-12s %7.0f\n", "unclassified", report.Deal.UnclassifiedMinutes)
	for _, p := range report.Deal.DetectedPatterns {
		fmt.Fprintf(&b, "  pattern: %s on %s - %s\n", p.PatternType, p.AppName, p.Suggestion)
	}

	f := report.Fragmentation
	fmt.Fprintf(&b, "\nMeetings: %d (%.0f min, %d back-to-back)\n",
		f.MeetingCount, f.MeetingMinutes, f.BackToBackMeetings)
	fmt.Fprintf(&b, "Swiss cheese score: %.2f (largest focus block %.0f min)\n",
		f.SwissCheeseScore, f.LargestFocusBlockMinutes)
	if f.ConsolidationPossible {
		b.WriteString("Consolidating meetings would recover a usable focus block.\n")
	}

	return b.String()
}

// FormatWeeklyText renders the weekly report as human-readable text.
func (r *Reporter) FormatWeeklyText(report *models.WeeklyReport) string {
	var b strings.Builder
	f := report.Fragmentation

	fmt.Fprintf(&b, "Weekly Fragmentation - week of %s\n\n", report.WeekStart.Format("2006-01-02"))

	days := append([]models.FragmentationMetrics(nil), f.Days...)
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	for _, d := range days {
		fmt.Fprintf(&b, "  %s  score %.2f  meetings %d  largest block %.0f min\n",
			d.Date.Format("Mon 2006-01-02"), d.SwissCheeseScore, d.MeetingCount, d.LargestFocusBlockMinutes)
	}

	fmt.Fprintf(&b, "\nBest day:  %s (%.2f)\n", f.BestDay.Format("Mon 2006-01-02"), f.BestScore)
	fmt.Fprintf(&b, "Worst day: %s (%.2f)\n", f.WorstDay.Format("Mon 2006-01-02"), f.WorstScore)
	fmt.Fprintf(&b, "Average:   %.2f\n", f.AverageScore)

	return b.String()
}

// FormatJSON renders any report as indented JSON.
func (r *Reporter) FormatJSON(report interface{}) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshaling report")
	}
	return string(data), nil
}
