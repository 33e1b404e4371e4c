package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timeopt/internal/config"
	"timeopt/internal/models"
)

var day = time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

func at(hour, min, sec int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute + time.Duration(sec)*time.Second)
}

type fakeStore struct {
	activities []*models.ActivityEvent
	interrupts []*models.InterruptEvent
	switches   []*models.ContextSwitch
	nudges     []*models.Nudge
	failWrites bool
}

func (s *fakeStore) CreateActivity(e *models.ActivityEvent) error {
	if s.failWrites {
		return errors.New("store unavailable")
	}
	s.activities = append(s.activities, e)
	return nil
}

func (s *fakeStore) CreateInterrupt(e *models.InterruptEvent) error {
	if s.failWrites {
		return errors.New("store unavailable")
	}
	s.interrupts = append(s.interrupts, e)
	return nil
}

func (s *fakeStore) CreateSwitch(e *models.ContextSwitch) error {
	if s.failWrites {
		return errors.New("store unavailable")
	}
	s.switches = append(s.switches, e)
	return nil
}

func (s *fakeStore) CreateNudge(n *models.Nudge) error {
	if s.failWrites {
		return errors.New("store unavailable")
	}
	s.nudges = append(s.nudges, n)
	return nil
}

type fakeNudgeSink struct {
	nudges []models.Nudge
}

func (s *fakeNudgeSink) WriteNudge(_ context.Context, n models.Nudge) error {
	s.nudges = append(s.nudges, n)
	return nil
}

func newCoordinator(t *testing.T, opts ...Option) (*Coordinator, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	c, err := New(config.Default(), store, zap.NewNop(), opts...)
	require.NoError(t, err)
	return c, store
}

func feed(t *testing.T, c *Coordinator, ts time.Time, app string) {
	t.Helper()
	require.NoError(t, c.OnActivity(&models.ActivityEvent{Timestamp: ts, AppName: app}))
}

// interruptCycle produces one interrupt per cycle: a 10-second Slack
// visit out of GoLand, cycles spaced one minute apart.
func interruptCycle(t *testing.T, c *Coordinator, start time.Time, cycles int) {
	t.Helper()
	feed(t, c, start, "GoLand")
	for i := 0; i < cycles; i++ {
		base := start.Add(time.Duration(i) * time.Minute)
		feed(t, c, base.Add(30*time.Second), "Slack")
		feed(t, c, base.Add(40*time.Second), "GoLand")
	}
}

func TestStatusStartsGreen(t *testing.T) {
	c, _ := newCoordinator(t)
	assert.Equal(t, models.StatusGreen, c.Snapshot().StatusColor)
}

func TestInterruptStormTurnsAmber(t *testing.T) {
	c, _ := newCoordinator(t)
	interruptCycle(t, c, at(9, 0, 0), 9) // 9 interrupts > amber threshold of 8

	snap := c.Snapshot()
	assert.Equal(t, models.StatusAmber, snap.StatusColor)
	assert.Equal(t, 9, snap.InterruptCountToday)
}

func TestInterruptWindowRollsOff(t *testing.T) {
	c, _ := newCoordinator(t)
	interruptCycle(t, c, at(9, 0, 0), 9)
	require.Equal(t, models.StatusAmber, c.Snapshot().StatusColor)

	// 40 quiet minutes later the 30-minute window is empty again.
	feed(t, c, at(9, 50, 0), "GoLand")
	assert.Equal(t, models.StatusGreen, c.Snapshot().StatusColor)
	assert.Equal(t, 9, c.Snapshot().InterruptCountToday, "the daily counter does not roll off")
}

func TestNudgeCooldownAllowsExactlyOne(t *testing.T) {
	c, store := newCoordinator(t)

	// 20 minutes of continuous interrupt storm: the threshold is
	// crossed repeatedly, including twice 10 minutes apart, but the
	// 30-minute cooldown admits a single nudge.
	interruptCycle(t, c, at(9, 0, 0), 20)

	require.Len(t, store.nudges, 1)
	assert.Equal(t, models.NudgeInterruptStorm, store.nudges[0].NudgeType)
	assert.NotEmpty(t, store.nudges[0].Message)
	assert.NotEmpty(t, store.nudges[0].Suggestion)

	snap := c.Snapshot()
	require.NotNil(t, snap.LatestNudge)
	assert.Equal(t, store.nudges[0].ID, snap.LatestNudge.ID)
}

func TestNudgesDeliveredToSink(t *testing.T) {
	ns := &fakeNudgeSink{}
	c, store := newCoordinator(t, WithNudgeSink(ns))

	interruptCycle(t, c, at(9, 0, 0), 20)

	require.Len(t, store.nudges, 1)
	require.Len(t, ns.nudges, 1, "every created nudge reaches the sink")
	assert.Equal(t, store.nudges[0].ID, ns.nudges[0].ID)
	assert.Equal(t, models.NudgeInterruptStorm, ns.nudges[0].NudgeType)
}

func TestLiveContextUsesInjectedClock(t *testing.T) {
	now := at(9, 0, 0)
	c, _ := newCoordinator(t, WithClock(func() time.Time { return now }))

	assert.Equal(t, models.CategoryOther, c.CurrentCategory())
	assert.False(t, c.InDeepWork())

	feed(t, c, at(9, 0, 0), "GoLand")
	now = at(9, 10, 0)
	assert.Equal(t, models.CategoryCoding, c.CurrentCategory())
	assert.False(t, c.InDeepWork(), "10 minutes is below the deep-work threshold")

	now = at(9, 30, 0)
	assert.True(t, c.InDeepWork(), "30 minutes of coding qualifies")

	feed(t, c, at(9, 30, 0), "Chrome")
	now = at(10, 30, 0)
	assert.Equal(t, models.CategoryBrowsing, c.CurrentCategory())
	assert.False(t, c.InDeepWork(), "browsing never counts as deep work")
}

func TestSecondNudgeAfterCooldown(t *testing.T) {
	c, store := newCoordinator(t)
	interruptCycle(t, c, at(9, 0, 0), 45) // 45 minutes of storm
	assert.Len(t, store.nudges, 2, "cooldown expires once during a 45-minute storm")
}

func TestSwitchCostAccumulates(t *testing.T) {
	c, store := newCoordinator(t)
	feed(t, c, at(9, 0, 0), "GoLand")
	feed(t, c, at(9, 10, 0), "Figma")
	feed(t, c, at(9, 20, 0), "GoLand")

	snap := c.Snapshot()
	assert.Greater(t, snap.SwitchCostMinutesToday, 0.0)
	assert.Len(t, store.switches, 2)
}

func TestDeepWorkHoursAccumulate(t *testing.T) {
	c, _ := newCoordinator(t)
	feed(t, c, at(9, 0, 0), "GoLand")
	feed(t, c, at(9, 25, 0), "Chrome") // 25 deep minutes attributed to GoLand
	feed(t, c, at(9, 30, 0), "GoLand") // browsing minutes don't count

	snap := c.Snapshot()
	assert.InDelta(t, 25.0/60.0, snap.DailyDeepWorkHours, 1e-9)
}

func TestDistractionMinutesTracked(t *testing.T) {
	c, _ := newCoordinator(t)
	feed(t, c, at(9, 0, 0), "YouTube")
	feed(t, c, at(9, 20, 0), "GoLand")

	assert.InDelta(t, 20, c.Snapshot().DistractionMinutesToday, 1e-9)
}

func TestDailyResetClearsStatus(t *testing.T) {
	c, _ := newCoordinator(t)
	interruptCycle(t, c, at(9, 0, 0), 9)
	require.Equal(t, 9, c.Snapshot().InterruptCountToday)

	// First event of the next day resets everything.
	feed(t, c, day.AddDate(0, 0, 1).Add(9*time.Hour), "GoLand")
	snap := c.Snapshot()
	assert.Zero(t, snap.InterruptCountToday)
	assert.Zero(t, snap.SwitchCostMinutesToday)
	assert.Zero(t, snap.DailyDeepWorkHours)
	assert.Equal(t, models.StatusGreen, snap.StatusColor)
	assert.Nil(t, snap.LatestNudge)
}

func TestOutOfOrderEventRejected(t *testing.T) {
	c, store := newCoordinator(t)
	feed(t, c, at(9, 0, 0), "GoLand")

	err := c.OnActivity(&models.ActivityEvent{Timestamp: at(8, 0, 0), AppName: "Slack"})
	var oooErr *models.OutOfOrderError
	require.ErrorAs(t, err, &oooErr)

	assert.Len(t, store.activities, 1, "the rejected event must not be persisted")
}

func TestFailedWritesAreRetried(t *testing.T) {
	c, store := newCoordinator(t)
	store.failWrites = true
	feed(t, c, at(9, 0, 0), "GoLand")
	feed(t, c, at(9, 5, 0), "Figma")
	require.Empty(t, store.activities)

	store.failWrites = false
	feed(t, c, at(9, 10, 0), "GoLand")

	// The two deferred activity writes and the deferred switch write
	// land on the next cycle, alongside the new event's own writes.
	assert.Len(t, store.activities, 3)
	assert.Len(t, store.switches, 2)
}

func TestEventsPublished(t *testing.T) {
	c, _ := newCoordinator(t)
	feed(t, c, at(9, 0, 0), "GoLand")
	feed(t, c, at(9, 5, 0), "Slack")
	feed(t, c, at(9, 5, 10), "GoLand")

	var interrupts, switches int
	for done := false; !done; {
		select {
		case e := <-c.Events():
			switch e.(type) {
			case InterruptDetected:
				interrupts++
			case SwitchDetected:
				switches++
			}
		default:
			done = true
		}
	}

	assert.Equal(t, 1, interrupts)
	assert.Equal(t, 2, switches)
}

func TestSnapshotIsACopy(t *testing.T) {
	c, _ := newCoordinator(t)
	interruptCycle(t, c, at(9, 0, 0), 10)

	snap := c.Snapshot()
	require.NotNil(t, snap.LatestNudge)
	snap.LatestNudge.Message = "mutated"
	snap.InterruptCountToday = -1

	fresh := c.Snapshot()
	assert.NotEqual(t, "mutated", fresh.LatestNudge.Message)
	assert.Equal(t, 10, fresh.InterruptCountToday)
}
