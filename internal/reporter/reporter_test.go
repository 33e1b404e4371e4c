package reporter

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timeopt/internal/config"
	"timeopt/internal/database"
	"timeopt/internal/models"
)

var day = time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func setupReporter(t *testing.T) (*Reporter, *database.Repository) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test_timeopt.db")
	db, err := database.Connect(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})
	repo := database.NewRepository(db)
	return New(config.Default(), repo, zap.NewNop()), repo
}

func seedDay(t *testing.T, repo *database.Repository) {
	t.Helper()

	activity := []*models.ActivityEvent{
		{Timestamp: at(9, 0), AppName: "GoLand", WindowTitle: "reader.go"},
		{Timestamp: at(10, 0), AppName: "Zoom", WindowTitle: "Standup"},
		{Timestamp: at(10, 30), AppName: "GoLand", WindowTitle: "reader.go"},
		{Timestamp: at(10, 45), AppName: "Zoom", WindowTitle: "1:1"},
		{Timestamp: at(11, 15), AppName: "GoLand", WindowTitle: "reader.go"},
		{Timestamp: at(12, 0), AppName: "YouTube"},
		{Timestamp: at(12, 30), AppName: "GoLand", WindowTitle: "reader.go"},
	}
	for _, e := range activity {
		require.NoError(t, repo.CreateActivity(e))
	}

	require.NoError(t, repo.CreateInterrupt(&models.InterruptEvent{
		Timestamp:          at(11, 0),
		InterruptApp:       "slack",
		DurationSeconds:    20,
		InterruptType:      models.InterruptQuickCheck,
		ContextLossMinutes: 2,
	}))
	require.NoError(t, repo.CreateSwitch(&models.ContextSwitch{
		Timestamp:            at(10, 0),
		FromApp:              "goland",
		ToApp:                "zoom",
		SwitchType:           models.SwitchMeeting,
		EstimatedCostMinutes: 3.2,
	}))
}

func TestDailyReportCombinesAnalyzers(t *testing.T) {
	r, repo := setupReporter(t)
	seedDay(t, repo)

	report, err := r.DailyReport(day)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Interrupts.TotalCount)
	assert.InDelta(t, 2.0, report.Interrupts.TotalContextLossMinutes, 1e-9)
	assert.Equal(t, 1, report.Switches.TotalSwitches)
	assert.InDelta(t, 3.2, report.Switches.TotalCostMinutes, 1e-9)
	assert.Equal(t, 2, report.Fragmentation.MeetingCount)
	assert.Greater(t, report.Fragmentation.SwissCheeseScore, 0.0,
		"the 15-minute gap between the meetings is fragmented")
	assert.Greater(t, report.Deal.TotalTrackedMinutes, 0.0)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestDailyReportEmptyDay(t *testing.T) {
	r, _ := setupReporter(t)

	report, err := r.DailyReport(day)
	require.NoError(t, err)

	assert.Zero(t, report.Interrupts.TotalCount)
	assert.Zero(t, report.Switches.TotalSwitches)
	assert.Zero(t, report.Fragmentation.SwissCheeseScore)
}

func TestWeeklyReport(t *testing.T) {
	r, repo := setupReporter(t)
	seedDay(t, repo)

	report, err := r.WeeklyReport(day) // 2025-06-02 is a Monday
	require.NoError(t, err)

	require.Len(t, report.Fragmentation.Days, 5)
	assert.Equal(t, day, report.Fragmentation.WorstDay,
		"the only day with meetings scores worst")
}

func TestWeekStartOf(t *testing.T) {
	assert.Equal(t, day, WeekStartOf(day))
	assert.Equal(t, day, WeekStartOf(day.Add(3*24*time.Hour+15*time.Hour)))  // Thursday
	assert.Equal(t, day, WeekStartOf(day.AddDate(0, 0, 6).Add(8*time.Hour))) // Sunday
}

func TestFormatDailyText(t *testing.T) {
	r, repo := setupReporter(t)
	seedDay(t, repo)

	report, err := r.DailyReport(day)
	require.NoError(t, err)

	text := r.FormatDailyText(report)
	assert.Contains(t, text, "Daily Report - 2025-06-02")
	assert.Contains(t, text, "quick_check")
	assert.Contains(t, text, "Swiss cheese score")
}

func TestFormatJSONRoundTrips(t *testing.T) {
	r, repo := setupReporter(t)
	seedDay(t, repo)

	report, err := r.DailyReport(day)
	require.NoError(t, err)

	out, err := r.FormatJSON(report)
	require.NoError(t, err)

	var decoded models.DailyReport
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, report.Interrupts.TotalCount, decoded.Interrupts.TotalCount)
}
