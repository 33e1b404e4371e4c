// Package interrupt flags short excursions into communication apps as
// interruptions and estimates the context they cost.
package interrupt

import (
	"time"

	"go.uber.org/zap"

	"timeopt/internal/category"
	"timeopt/internal/config"
	"timeopt/internal/models"
)

// Base context-loss estimates in minutes, per interrupt type. Scaled
// up when the interrupt lands on a deep-work streak.
var baseLossMinutes = map[models.InterruptType]float64{
	models.InterruptQuickCheck:          2,
	models.InterruptShortResponse:       5,
	models.InterruptActiveCommunication: 12,
}

const (
	quickCheckMax    = 30 * time.Second
	shortResponseMax = 2 * time.Minute
)

// Detector is a per-stream state machine. It is not safe for
// concurrent use; the coordinator is its sole caller.
type Detector struct {
	cfg    *config.Config
	logger *zap.Logger

	currentApp      string
	currentBundle   string
	currentAppStart time.Time
	previousApp     string
	prevCategory    models.Category

	inDeepWork    time.Time // zero when not in a deep-work streak
	priorStreak   time.Duration
	lastTimestamp time.Time
	initialized   bool
}

// NewDetector creates an interrupt detector.
func NewDetector(cfg *config.Config, logger *zap.Logger) *Detector {
	return &Detector{cfg: cfg, logger: logger}
}

// OnActivity processes one focus change. It returns a finalized
// InterruptEvent when the user leaves a communication app after a
// short excursion, nil otherwise. The only error case is an
// out-of-order timestamp.
func (d *Detector) OnActivity(event *models.ActivityEvent) (*models.InterruptEvent, error) {
	if d.initialized && event.Timestamp.Before(d.lastTimestamp) {
		return nil, &models.OutOfOrderError{Last: d.lastTimestamp, Got: event.Timestamp}
	}
	d.lastTimestamp = event.Timestamp

	if !d.initialized {
		d.initialized = true
		d.enter(event)
		return nil, nil
	}

	if event.AppName == d.currentApp {
		return nil, nil
	}

	var interrupt *models.InterruptEvent
	if category.IsCommunication(d.currentApp, d.currentBundle) {
		interrupt = d.finalizeExcursion(event)
	}

	d.previousApp = d.currentApp
	if !category.IsCommunication(d.currentApp, d.currentBundle) {
		// Communication visits keep the pre-excursion work context.
		d.prevCategory = category.Resolve(d.currentApp, d.currentBundle)
	}
	d.enter(event)
	return interrupt, nil
}

// finalizeExcursion closes out the communication visit that just
// ended. Visits at or over the boundary are intentional communication
// and produce nothing.
func (d *Detector) finalizeExcursion(next *models.ActivityEvent) *models.InterruptEvent {
	duration := next.Timestamp.Sub(d.currentAppStart)
	if duration >= d.cfg.Engine.CommunicationBoundary() {
		d.logger.Debug("intentional communication, not an interrupt",
			zap.String("app", d.currentApp),
			zap.Duration("duration", duration))
		return nil
	}

	itype := classify(duration)
	loss := baseLossMinutes[itype] * d.streakMultiplier()

	return &models.InterruptEvent{
		Timestamp:          next.Timestamp,
		InterruptApp:       d.currentApp,
		DurationSeconds:    duration.Seconds(),
		PreviousApp:        d.previousApp,
		NextApp:            next.AppName,
		InterruptType:      itype,
		ContextLossMinutes: loss,
		WorkContextBefore:  d.prevCategory,
	}
}

func classify(duration time.Duration) models.InterruptType {
	switch {
	case duration < quickCheckMax:
		return models.InterruptQuickCheck
	case duration < shortResponseMax:
		return models.InterruptShortResponse
	default:
		return models.InterruptActiveCommunication
	}
}

// streakMultiplier scales the loss estimate by how deep the user was
// immediately before the excursion.
func (d *Detector) streakMultiplier() float64 {
	deep := time.Duration(d.cfg.Engine.DeepWorkThresholdMinutes * float64(time.Minute))
	building := 10 * time.Minute

	switch {
	case d.priorStreak >= deep:
		return 2.0
	case d.priorStreak >= building:
		return 1.5
	default:
		return 1.0
	}
}

// enter updates focus and deep-work tracking for the newly focused app.
func (d *Detector) enter(event *models.ActivityEvent) {
	prevWasDeep := !d.inDeepWork.IsZero()

	d.currentApp = event.AppName
	d.currentBundle = event.BundleID
	d.currentAppStart = event.Timestamp

	cat := category.Resolve(event.AppName, event.BundleID)
	if category.IsDeepWork(cat) {
		if !prevWasDeep {
			d.inDeepWork = event.Timestamp
		}
		// Continuing a streak keeps the original start.
		return
	}

	if category.IsCommunication(event.AppName, event.BundleID) {
		// A communication visit sees the streak it cut into. Chained
		// communication apps keep the streak captured at the first one.
		if prevWasDeep {
			d.priorStreak = event.Timestamp.Sub(d.inDeepWork)
		}
	} else {
		d.priorStreak = 0
	}
	d.inDeepWork = time.Time{}
}

// DailyMetrics buckets a day's stored interrupt events by type and by
// hour of day. A day with no data yields a zero-valued result.
func DailyMetrics(date time.Time, events []*models.InterruptEvent) models.DailyInterruptMetrics {
	m := models.DailyInterruptMetrics{
		Date:        time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
		CountByType: make(map[models.InterruptType]int),
	}

	appCounts := make(map[string]int)
	for _, e := range events {
		m.TotalCount++
		m.CountByType[e.InterruptType]++
		m.CountByHour[e.Timestamp.Hour()]++
		m.TotalContextLossMinutes += e.ContextLossMinutes
		appCounts[e.InterruptApp]++
	}

	m.TopInterruptApps = topApps(appCounts, 5)
	return m
}

func topApps(counts map[string]int, n int) []models.AppCount {
	apps := make([]models.AppCount, 0, len(counts))
	for app, count := range counts {
		apps = append(apps, models.AppCount{AppName: app, Count: count})
	}
	// Insertion sort: the list is tiny.
	for i := 1; i < len(apps); i++ {
		for j := i; j > 0 && apps[j].Count > apps[j-1].Count; j-- {
			apps[j], apps[j-1] = apps[j-1], apps[j]
		}
	}
	if len(apps) > n {
		apps = apps[:n]
	}
	return apps
}
