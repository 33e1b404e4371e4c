// Package coordinator owns the engine's only long-lived mutable state:
// the rolling OptimizationStatus. It feeds every activity event to the
// analyzers, maintains rolling interrupt and switch windows, and emits
// cooldown-gated nudges.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"timeopt/internal/category"
	"timeopt/internal/config"
	"timeopt/internal/ctxswitch"
	"timeopt/internal/deal"
	"timeopt/internal/interrupt"
	"timeopt/internal/models"
	"timeopt/internal/sink"
)

const (
	interruptWindow = 30 * time.Minute
	switchWindow    = time.Hour

	// Time attributed to an app is capped so an overnight gap doesn't
	// count as a twelve-hour deep-work streak.
	attributionCap = 30 * time.Minute

	eventBuffer     = 128
	maxPendingWrite = 1024
)

// Store is the persistence surface the coordinator needs. Failed
// writes are retried on the next cycle; rolling state never rolls
// back because of one.
type Store interface {
	CreateActivity(*models.ActivityEvent) error
	CreateInterrupt(*models.InterruptEvent) error
	CreateSwitch(*models.ContextSwitch) error
	CreateNudge(*models.Nudge) error
}

// Coordinator is single-writer: OnActivity must be called from one
// goroutine. Snapshot is safe to call concurrently.
type Coordinator struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     Store
	nudgeSink sink.NudgeSink
	now       func() time.Time

	detector *interrupt.Detector
	switcher *ctxswitch.Analyzer

	mu     sync.Mutex
	status models.OptimizationStatus

	day            time.Time
	lastTimestamp  time.Time
	lastApp        string
	lastBundle     string
	initialized    bool
	interruptTimes []time.Time
	switchTimes    []time.Time
	deepWork       time.Duration
	lastNudgeAt    time.Time

	events  chan Event
	dropped int

	pending []func() error
}

// Option configures optional coordinator settings.
type Option func(*Coordinator)

// WithClock overrides the wall-clock source behind the live deep-work
// and category queries.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithNudgeSink routes created nudges to an external sink in addition
// to the store and event channel.
func WithNudgeSink(s sink.NudgeSink) Option {
	return func(c *Coordinator) { c.nudgeSink = s }
}

// New constructs the coordinator and its analyzers. The process entry
// point builds exactly one and passes it to whatever needs it; there
// is no ambient global instance.
func New(cfg *config.Config, store Store, logger *zap.Logger, opts ...Option) (*Coordinator, error) {
	if err := ctxswitch.ValidateAffinity(); err != nil {
		return nil, fmt.Errorf("invalid affinity matrix: %w", err)
	}

	c := &Coordinator{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		now:      time.Now,
		detector: interrupt.NewDetector(cfg, logger),
		switcher: ctxswitch.NewAnalyzer(cfg, logger),
		events:   make(chan Event, eventBuffer),
	}
	c.status.StatusColor = models.StatusGreen
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Events returns the channel external subscribers consume.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// OnActivity ingests one focus-change event. The only error returned
// is an out-of-order timestamp; everything else degrades to defaults
// or deferred writes.
func (c *Coordinator) OnActivity(event *models.ActivityEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized && event.Timestamp.Before(c.lastTimestamp) {
		return &models.OutOfOrderError{Last: c.lastTimestamp, Got: event.Timestamp}
	}

	reset := c.resetDayIfNeeded(event.Timestamp)
	c.retryPending()
	if !reset {
		// Elapsed time across a day boundary belongs to the old day.
		c.attributeElapsed(event.Timestamp)
	}

	iev, err := c.detector.OnActivity(event)
	if err != nil {
		return err
	}
	if iev != nil {
		c.recordInterrupt(iev)
	}

	sw, err := c.switcher.OnActivity(event)
	if err != nil {
		return err
	}
	if sw != nil {
		c.recordSwitch(sw)
	}

	c.persist(func() error { return c.store.CreateActivity(event) }, "activity event")

	c.pruneWindows(event.Timestamp)
	c.refreshStatus(event.Timestamp)
	c.maybeNudge(event.Timestamp)

	c.lastTimestamp = event.Timestamp
	c.lastApp = event.AppName
	c.lastBundle = event.BundleID
	c.initialized = true
	return nil
}

// attributeElapsed credits the time since the previous event to the
// app that held focus, feeding the deep-work and distraction totals.
func (c *Coordinator) attributeElapsed(ts time.Time) {
	if !c.initialized {
		return
	}
	delta := ts.Sub(c.lastTimestamp)
	if delta > attributionCap {
		delta = attributionCap
	}
	if category.IsDeepWork(category.Resolve(c.lastApp, c.lastBundle)) {
		c.deepWork += delta
		c.status.DailyDeepWorkHours = c.deepWork.Hours()
	}
	if deal.IsDistraction(c.lastApp) {
		c.status.DistractionMinutesToday += delta.Minutes()
	}
}

func (c *Coordinator) recordInterrupt(iev *models.InterruptEvent) {
	c.interruptTimes = append(c.interruptTimes, iev.Timestamp)
	c.status.InterruptCountToday++
	c.persist(func() error { return c.store.CreateInterrupt(iev) }, "interrupt event")
	c.publish(InterruptDetected{Interrupt: *iev})
}

func (c *Coordinator) recordSwitch(sw *models.ContextSwitch) {
	c.switchTimes = append(c.switchTimes, sw.Timestamp)
	c.status.SwitchCostMinutesToday += sw.EstimatedCostMinutes
	c.persist(func() error { return c.store.CreateSwitch(sw) }, "context switch")
	c.publish(SwitchDetected{Switch: *sw})
}

// pruneWindows drops rolling-window entries older than the window,
// measured against event time.
func (c *Coordinator) pruneWindows(ts time.Time) {
	c.interruptTimes = pruneBefore(c.interruptTimes, ts.Add(-interruptWindow))
	c.switchTimes = pruneBefore(c.switchTimes, ts.Add(-switchWindow))
}

func pruneBefore(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && times[i].Before(cutoff) {
		i++
	}
	return times[i:]
}

func (c *Coordinator) refreshStatus(ts time.Time) {
	prev := c.status.StatusColor
	c.status.StatusColor = c.computeColor()
	c.status.UpdatedAt = ts
	if c.status.StatusColor != prev {
		c.logger.Info("status color changed",
			zap.String("from", string(prev)),
			zap.String("to", string(c.status.StatusColor)))
		c.publish(StatusChanged{Previous: prev, Current: c.status.StatusColor})
	}
}

func (c *Coordinator) computeColor() models.StatusColor {
	interrupts := len(c.interruptTimes)
	switches := len(c.switchTimes)
	st := c.cfg.Status

	switch {
	case interrupts > st.RedInterruptsPer30Min || switches > st.RedSwitchesPerHour:
		return models.StatusRed
	case c.status.DistractionMinutesToday > st.CriticalDistractionMinutes:
		return models.StatusRed
	case interrupts > st.AmberInterruptsPer30Min || switches > st.AmberSwitchesPerHour:
		return models.StatusAmber
	default:
		return models.StatusGreen
	}
}

// maybeNudge creates at most one nudge per cooldown window, regardless
// of nudge type. The global cooldown is deliberate.
func (c *Coordinator) maybeNudge(ts time.Time) {
	if c.status.StatusColor == models.StatusGreen {
		return
	}
	if !c.lastNudgeAt.IsZero() && ts.Sub(c.lastNudgeAt) < c.cfg.Engine.NudgeCooldown() {
		return
	}

	n := c.buildNudge(ts)
	c.lastNudgeAt = ts
	c.status.LatestNudge = &n

	c.persist(func() error { return c.store.CreateNudge(&n) }, "nudge")
	if c.nudgeSink != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := c.nudgeSink.WriteNudge(ctx, n); err != nil {
			c.logger.Warn("failed to deliver nudge to sink", zap.Error(err))
		}
		cancel()
	}
	c.publish(NudgeCreated{Nudge: n})
}

func (c *Coordinator) buildNudge(ts time.Time) models.Nudge {
	urgency := models.UrgencyMedium
	if c.status.StatusColor == models.StatusRed {
		urgency = models.UrgencyHigh
	}

	st := c.cfg.Status
	var (
		ntype      models.NudgeType
		message    string
		suggestion string
	)
	switch {
	case len(c.interruptTimes) > st.AmberInterruptsPer30Min:
		ntype = models.NudgeInterruptStorm
		message = fmt.Sprintf("%d interruptions in the last 30 minutes", len(c.interruptTimes))
		suggestion = "Silence notifications and batch your next message check."
	case len(c.switchTimes) > st.AmberSwitchesPerHour:
		ntype = models.NudgeSwitchOverload
		message = fmt.Sprintf("%d app switches in the last hour", len(c.switchTimes))
		suggestion = "Pick one task and close everything it doesn't need."
	default:
		ntype = models.NudgeDistractionAlert
		message = fmt.Sprintf("%.0f minutes on distracting apps today", c.status.DistractionMinutesToday)
		suggestion = "Block distracting sites until the end of the work day."
	}

	return models.Nudge{
		ID:         uuid.NewString(),
		Timestamp:  ts,
		NudgeType:  ntype,
		Message:    message,
		Suggestion: suggestion,
		Urgency:    urgency,
	}
}

// resetDayIfNeeded clears daily state at the first event of a new
// local day and reports whether it did. Calling it repeatedly near the
// boundary is harmless.
func (c *Coordinator) resetDayIfNeeded(ts time.Time) bool {
	d := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	if d.Equal(c.day) {
		return false
	}
	if !c.day.IsZero() {
		c.logger.Info("daily status reset", zap.Time("day", d))
	}
	c.day = d
	c.deepWork = 0
	c.interruptTimes = nil
	c.switchTimes = nil
	c.status = models.OptimizationStatus{
		UpdatedAt:   ts,
		StatusColor: models.StatusGreen,
	}
	return true
}

// persist runs a write now and queues it for retry on failure. The
// queue is drained at the start of each cycle.
func (c *Coordinator) persist(write func() error, what string) {
	if err := write(); err != nil {
		c.logger.Warn("deferred failed write", zap.String("what", what), zap.Error(err))
		if len(c.pending) >= maxPendingWrite {
			c.logger.Error("pending write queue full, dropping oldest")
			c.pending = c.pending[1:]
		}
		c.pending = append(c.pending, write)
	}
}

func (c *Coordinator) retryPending() {
	if len(c.pending) == 0 {
		return
	}
	remaining := c.pending[:0]
	for _, write := range c.pending {
		if err := write(); err != nil {
			remaining = append(remaining, write)
		}
	}
	recovered := len(c.pending) - len(remaining)
	if recovered > 0 {
		c.logger.Info("recovered deferred writes", zap.Int("count", recovered))
	}
	c.pending = remaining
}

// publish sends without blocking; a slow subscriber loses events
// rather than stalling ingestion.
func (c *Coordinator) publish(e Event) {
	select {
	case c.events <- e:
	default:
		c.dropped++
		c.logger.Warn("event channel full, dropping", zap.Int("dropped_total", c.dropped))
	}
}

// Snapshot returns a copy of the rolling status for the flusher and
// the CLI. The contained nudge is copied, not shared.
func (c *Coordinator) Snapshot() models.OptimizationStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.status
	if c.status.LatestNudge != nil {
		n := *c.status.LatestNudge
		snap.LatestNudge = &n
	}
	return snap
}

// InDeepWork reports whether the live context qualifies as deep work
// right now.
func (c *Coordinator) InDeepWork() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.switcher.InDeepWork(c.now())
}

// CurrentCategory returns the category of the live context, or Other
// before the first event.
func (c *Coordinator) CurrentCategory() models.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.switcher.CurrentCategory()
}
