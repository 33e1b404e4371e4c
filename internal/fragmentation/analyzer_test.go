package fragmentation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timeopt/internal/config"
	"timeopt/internal/models"
)

var day = time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local) // a Monday

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	return NewAnalyzer(config.Default(), zap.NewNop())
}

// meeting emits a Zoom event at start and a non-meeting event at end,
// which closes the block.
func meeting(start, end time.Time) []*models.ActivityEvent {
	return []*models.ActivityEvent{
		{Timestamp: start, AppName: "Zoom"},
		{Timestamp: end, AppName: "GoLand"},
	}
}

func TestNoMeetingsMeansNoFragmentation(t *testing.T) {
	a := newAnalyzer(t)

	events := []*models.ActivityEvent{
		{Timestamp: at(9, 0), AppName: "GoLand"},
		{Timestamp: at(13, 0), AppName: "Chrome"},
	}

	m, err := a.Analyze(day, events)
	require.NoError(t, err)

	assert.Zero(t, m.MeetingCount)
	assert.Zero(t, m.SwissCheeseScore)
	assert.InDelta(t, 540, m.LargestFocusBlockMinutes, 1e-9, "09:00-18:00 work day is 540 minutes")
}

func TestEmptyDay(t *testing.T) {
	a := newAnalyzer(t)
	m, err := a.Analyze(day, nil)
	require.NoError(t, err)
	assert.Zero(t, m.SwissCheeseScore)
	assert.InDelta(t, 540, m.LargestFocusBlockMinutes, 1e-9)
}

func TestBackToBackMeetings(t *testing.T) {
	a := newAnalyzer(t)

	// 10:00-10:30 and 10:35-11:00: one tiny 5-minute gap between them.
	var events []*models.ActivityEvent
	events = append(events, meeting(at(10, 0), at(10, 30))...)
	events = append(events, meeting(at(10, 35), at(11, 0))...)

	m, err := a.Analyze(day, events)
	require.NoError(t, err)

	assert.Equal(t, 2, m.MeetingCount)
	assert.InDelta(t, 55, m.MeetingMinutes, 1e-9)
	assert.Equal(t, 1, m.BackToBackMeetings)
	assert.Equal(t, 1, m.TinyGaps)

	// Usable gaps: 09:00-10:00 (60m) and 11:00-18:00 (420m); nothing
	// fragmented, so the score only reflects the usable pre/post gaps.
	assert.Equal(t, 2, m.UsableGaps)
	assert.InDelta(t, 480, m.UsableMinutes, 1e-9)
	assert.Zero(t, m.FragmentedGaps)
	assert.Zero(t, m.SwissCheeseScore)
	assert.InDelta(t, 420, m.LargestFocusBlockMinutes, 1e-9)
}

func TestGapClassificationBoundaries(t *testing.T) {
	a := newAnalyzer(t)

	// Meetings carving out gaps of exactly 30, 15 and 4 minutes.
	var events []*models.ActivityEvent
	events = append(events, meeting(at(9, 30), at(10, 0))...)  // pre-gap 09:00-09:30: 30m usable
	events = append(events, meeting(at(10, 15), at(10, 45))...) // 15m fragmented
	events = append(events, meeting(at(10, 49), at(11, 30))...) // 4m tiny, back-to-back

	m, err := a.Analyze(day, events)
	require.NoError(t, err)

	assert.Equal(t, 3, m.MeetingCount)
	assert.Equal(t, 2, m.UsableGaps, "the exact 30m pre-gap and the trailing gap")
	assert.Equal(t, 1, m.FragmentedGaps)
	assert.InDelta(t, 15, m.FragmentedMinutes, 1e-9)
	assert.Equal(t, 1, m.TinyGaps)
	assert.Equal(t, 1, m.BackToBackMeetings)

	// usable = 30 + (18:00-11:30)=390 -> score = 15/(15+420)
	assert.InDelta(t, 15.0/435.0, m.SwissCheeseScore, 1e-9)
}

func TestShortMeetingBlocksAreDropped(t *testing.T) {
	a := newAnalyzer(t)

	var events []*models.ActivityEvent
	events = append(events, meeting(at(10, 0), at(10, 3))...) // under the 5-minute minimum
	events = append(events, meeting(at(14, 0), at(14, 30))...)

	m, err := a.Analyze(day, events)
	require.NoError(t, err)
	assert.Equal(t, 1, m.MeetingCount)
	assert.InDelta(t, 30, m.MeetingMinutes, 1e-9)
}

func TestConsecutiveMeetingEventsMerge(t *testing.T) {
	a := newAnalyzer(t)

	// Zoom then Teams back to back merge into one block.
	events := []*models.ActivityEvent{
		{Timestamp: at(10, 0), AppName: "Zoom"},
		{Timestamp: at(10, 20), AppName: "Microsoft Teams"},
		{Timestamp: at(10, 45), AppName: "GoLand"},
	}

	m, err := a.Analyze(day, events)
	require.NoError(t, err)
	assert.Equal(t, 1, m.MeetingCount)
	assert.InDelta(t, 45, m.MeetingMinutes, 1e-9)
}

func TestConsolidationSignal(t *testing.T) {
	a := newAnalyzer(t)

	// Three meetings with two 20-minute fragmented gaps between them.
	var events []*models.ActivityEvent
	events = append(events, meeting(at(10, 0), at(10, 30))...)
	events = append(events, meeting(at(10, 50), at(11, 20))...)
	events = append(events, meeting(at(11, 40), at(12, 10))...)

	m, err := a.Analyze(day, events)
	require.NoError(t, err)
	assert.Equal(t, 2, m.FragmentedGaps)
	assert.True(t, m.ConsolidationPossible)
}

func TestMeetingOutsideWorkDayIsClamped(t *testing.T) {
	a := newAnalyzer(t)

	// An 08:30-09:30 call overlaps the 09:00-18:00 work day by only
	// 30 minutes; the early half doesn't count.
	m, err := a.Analyze(day, meeting(at(8, 30), at(9, 30)))
	require.NoError(t, err)

	assert.Equal(t, 1, m.MeetingCount)
	assert.InDelta(t, 30, m.MeetingMinutes, 1e-9)
	assert.InDelta(t, 510, m.UsableMinutes, 1e-9)
	assert.LessOrEqual(t, m.UsableMinutes+m.FragmentedMinutes+m.MeetingMinutes, 540.0+1e-9)
}

func TestMeetingWhollyOutsideWorkDayCountsNoMinutes(t *testing.T) {
	a := newAnalyzer(t)

	m, err := a.Analyze(day, meeting(at(19, 0), at(20, 0)))
	require.NoError(t, err)

	assert.Equal(t, 1, m.MeetingCount)
	assert.Zero(t, m.MeetingMinutes)
	assert.InDelta(t, 540, m.UsableMinutes, 1e-9)
	assert.Zero(t, m.SwissCheeseScore)
}

func TestInvariantGapsPlusMeetingsWithinWorkDay(t *testing.T) {
	a := newAnalyzer(t)

	var events []*models.ActivityEvent
	events = append(events, meeting(at(8, 30), at(9, 15))...)
	events = append(events, meeting(at(9, 30), at(10, 15))...)
	events = append(events, meeting(at(13, 0), at(14, 0))...)
	events = append(events, meeting(at(16, 45), at(17, 10))...)

	m, err := a.Analyze(day, events)
	require.NoError(t, err)
	assert.LessOrEqual(t, m.UsableMinutes+m.FragmentedMinutes+m.MeetingMinutes, 540.0+1e-9)
}

func TestAnalyzeWeek(t *testing.T) {
	a := newAnalyzer(t)

	byDay := map[int][]*models.ActivityEvent{
		// Monday: badly fragmented.
		0: func() []*models.ActivityEvent {
			var ev []*models.ActivityEvent
			ev = append(ev, meeting(at(10, 0), at(10, 30))...)
			ev = append(ev, meeting(at(10, 50), at(11, 20))...)
			ev = append(ev, meeting(at(11, 40), at(12, 10))...)
			return ev
		}(),
		// Wednesday: one meeting, clean day.
		2: meeting(day.AddDate(0, 0, 2).Add(10*time.Hour), day.AddDate(0, 0, 2).Add(11*time.Hour)),
	}

	w, err := a.AnalyzeWeek(day, func(d time.Time) ([]*models.ActivityEvent, error) {
		return byDay[int(d.Sub(day).Hours()/24)], nil
	})
	require.NoError(t, err)

	require.Len(t, w.Days, 5)
	assert.Equal(t, day, w.WorstDay, "Monday has the fragmented gaps")
	assert.Greater(t, w.WorstScore, 0.0)
	assert.Zero(t, w.BestScore, "meeting-free days score zero")
	assert.InDelta(t, w.WorstScore/5, w.AverageScore, 1e-9, "only Monday contributes to the mean")
}
