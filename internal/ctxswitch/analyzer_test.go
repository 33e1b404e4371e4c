package ctxswitch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timeopt/internal/config"
	"timeopt/internal/models"
)

var day = time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	return NewAnalyzer(config.Default(), zap.NewNop())
}

func feed(t *testing.T, a *Analyzer, ts time.Time, app string) *models.ContextSwitch {
	t.Helper()
	sw, err := a.OnActivity(&models.ActivityEvent{Timestamp: ts, AppName: app})
	require.NoError(t, err)
	return sw
}

func TestAffinitySymmetryAndIdentity(t *testing.T) {
	for _, from := range models.AllCategories {
		for _, to := range models.AllCategories {
			assert.Equal(t, Affinity(from, to), Affinity(to, from),
				"affinity(%s,%s) must be symmetric", from, to)
		}
		assert.Equal(t, 1.0, Affinity(from, from), "affinity(%s,%s) must be 1.0", from, from)
	}
}

func TestAffinityFallsBackToDefault(t *testing.T) {
	assert.Equal(t, defaultAffinity, Affinity(models.CategoryMeeting, models.CategoryEntertainment))
	assert.Equal(t, defaultAffinity, Affinity(models.CategoryOther, models.CategoryCoding))
}

func TestValidateAffinity(t *testing.T) {
	assert.NoError(t, ValidateAffinity())
}

func TestFirstEventProducesNoSwitch(t *testing.T) {
	a := newAnalyzer(t)
	assert.Nil(t, feed(t, a, at(9, 0), "GoLand"))
}

func TestIdenticalAppNeverSwitches(t *testing.T) {
	a := newAnalyzer(t)
	feed(t, a, at(9, 0), "GoLand")
	assert.Nil(t, feed(t, a, at(9, 30), "GoLand"))

	// The context clock must not have advanced: a switch at 9:50 sees
	// 50 minutes of tenure, i.e. the flow multiplier.
	sw := feed(t, a, at(9, 50), "Slack")
	require.NotNil(t, sw)
	assert.InDelta(t, 50, sw.DurationBeforeMinutes, 1e-9)
	expected := baseSwitchCost * (1 - Affinity(models.CategoryCoding, models.CategoryCommunication)) * 3.0
	assert.InDelta(t, expected, sw.EstimatedCostMinutes, 1e-9)
}

func TestCostMonotonicInTenure(t *testing.T) {
	tenures := []int{1, 6, 16, 30, 60, 120}
	var prev float64
	for _, minutes := range tenures {
		a := newAnalyzer(t)
		feed(t, a, at(9, 0), "GoLand")
		sw := feed(t, a, at(9, 0).Add(time.Duration(minutes)*time.Minute), "Slack")
		require.NotNil(t, sw)
		assert.GreaterOrEqual(t, sw.EstimatedCostMinutes, prev,
			"cost at %d minutes of tenure regressed", minutes)
		prev = sw.EstimatedCostMinutes
	}
}

func TestDepthBands(t *testing.T) {
	tests := []struct {
		minutes int
		want    float64
	}{
		{4, 1.0},
		{5, 1.5},
		{14, 1.5},
		{15, 2.0},
		{24, 2.0},
		{25, 2.5},
		{44, 2.5},
		{45, 3.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, depthMultiplier(time.Duration(tt.minutes)*time.Minute),
			"multiplier at %d minutes", tt.minutes)
	}
}

func TestSameCategorySwitchIsFree(t *testing.T) {
	a := newAnalyzer(t)
	feed(t, a, at(9, 0), "GoLand")
	sw := feed(t, a, at(9, 40), "Xcode")
	require.NotNil(t, sw)
	assert.Equal(t, models.CategoryCoding, sw.FromCategory)
	assert.Equal(t, models.CategoryCoding, sw.ToCategory)
	assert.Zero(t, sw.EstimatedCostMinutes, "identical categories have affinity 1.0")
}

func TestSwitchTypes(t *testing.T) {
	tests := []struct {
		app  string
		want models.SwitchType
	}{
		{"Zoom", models.SwitchMeeting},
		{"Slack", models.SwitchInterrupt},
		{"Netflix", models.SwitchBreak},
		{"Figma", models.SwitchVoluntary},
	}

	for _, tt := range tests {
		a := newAnalyzer(t)
		feed(t, a, at(9, 0), "GoLand")
		sw := feed(t, a, at(9, 10), tt.app)
		require.NotNil(t, sw)
		assert.Equal(t, tt.want, sw.SwitchType, "switch into %s", tt.app)
	}
}

func TestInDeepWork(t *testing.T) {
	a := newAnalyzer(t)
	assert.False(t, a.InDeepWork(at(9, 0)), "uninitialized analyzer is never in deep work")

	feed(t, a, at(9, 0), "GoLand")
	assert.False(t, a.InDeepWork(at(9, 10)), "10 minutes is below the threshold")
	assert.True(t, a.InDeepWork(at(9, 25)), "25 minutes in a high-value category")

	feed(t, a, at(9, 30), "Chrome")
	assert.False(t, a.InDeepWork(at(10, 30)), "browsing is not a high-value category")
}

func TestOutOfOrderEventRejected(t *testing.T) {
	a := newAnalyzer(t)
	feed(t, a, at(9, 0), "GoLand")
	_, err := a.OnActivity(&models.ActivityEvent{Timestamp: at(8, 0), AppName: "Slack"})
	var oooErr *models.OutOfOrderError
	require.ErrorAs(t, err, &oooErr)
}

func TestDailyMetrics(t *testing.T) {
	cfg := config.Default()
	switches := []*models.ContextSwitch{
		{SwitchType: models.SwitchVoluntary, FromCategory: models.CategoryCoding, DurationBeforeMinutes: 50, EstimatedCostMinutes: 4.8},
		{SwitchType: models.SwitchInterrupt, FromCategory: models.CategoryCoding, DurationBeforeMinutes: 30, EstimatedCostMinutes: 4.0},
		{SwitchType: models.SwitchInterrupt, FromCategory: models.CategoryBrowsing, DurationBeforeMinutes: 60, EstimatedCostMinutes: 1.8},
		{SwitchType: models.SwitchMeeting, FromCategory: models.CategoryWriting, DurationBeforeMinutes: 10, EstimatedCostMinutes: 1.2},
	}

	m := DailyMetrics(cfg, day, switches)
	assert.Equal(t, 4, m.TotalSwitches)
	assert.Equal(t, 2, m.CountByType[models.SwitchInterrupt])
	assert.InDelta(t, 11.8, m.TotalCostMinutes, 1e-9)
	assert.InDelta(t, 2.95, m.AverageCostMinutes, 1e-9)
	assert.Equal(t, 2, m.DeepWorkInterruptions, "only high-value categories count")
	assert.Equal(t, 1, m.FlowStateInterruptions)
}

func TestDailyMetricsEmptyDay(t *testing.T) {
	m := DailyMetrics(config.Default(), day, nil)
	assert.Zero(t, m.TotalSwitches)
	assert.Zero(t, m.AverageCostMinutes)
}
