package database

import (
	"strings"
	"time"

	"timeopt/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

// ErrNudgeNotFound reports an acknowledgement against an unknown
// nudge id. Callers match it with errors.Is.
var ErrNudgeNotFound = errors.New("nudge not found")

// Repository handles all database operations for the engine. Activity
// events, interrupts, switches and nudges are append-only facts; the
// only updates ever performed are the two terminal nudge flags.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateActivity inserts a new activity event
func (r *Repository) CreateActivity(event *models.ActivityEvent) error {
	event.AppName = strings.ToLower(event.AppName)
	result := r.db.Create(event)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert activity event")
	}
	return nil
}

// CreateInterrupt inserts a new interrupt event
func (r *Repository) CreateInterrupt(event *models.InterruptEvent) error {
	result := r.db.Create(event)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert interrupt event")
	}
	return nil
}

// CreateSwitch inserts a new context switch
func (r *Repository) CreateSwitch(sw *models.ContextSwitch) error {
	result := r.db.Create(sw)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert context switch")
	}
	return nil
}

// CreateNudge inserts a new nudge
func (r *Repository) CreateNudge(n *models.Nudge) error {
	result := r.db.Create(n)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert nudge")
	}
	return nil
}

// dayRange returns the local-midnight bounds of the given date.
func dayRange(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.Add(24 * time.Hour)
}

// ActivityForDay retrieves a day's activity in timestamp order.
// A day with no data returns an empty slice, not an error.
func (r *Repository) ActivityForDay(date time.Time) ([]*models.ActivityEvent, error) {
	start, end := dayRange(date)
	var events []*models.ActivityEvent
	result := r.db.Where("timestamp >= ? AND timestamp < ?", start, end).
		Order("timestamp ASC").Find(&events)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query activity events")
	}
	return events, nil
}

// InterruptsForDay retrieves a day's interrupt events in timestamp order
func (r *Repository) InterruptsForDay(date time.Time) ([]*models.InterruptEvent, error) {
	start, end := dayRange(date)
	var events []*models.InterruptEvent
	result := r.db.Where("timestamp >= ? AND timestamp < ?", start, end).
		Order("timestamp ASC").Find(&events)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query interrupt events")
	}
	return events, nil
}

// SwitchesForDay retrieves a day's context switches in timestamp order
func (r *Repository) SwitchesForDay(date time.Time) ([]*models.ContextSwitch, error) {
	start, end := dayRange(date)
	var switches []*models.ContextSwitch
	result := r.db.Where("timestamp >= ? AND timestamp < ?", start, end).
		Order("timestamp ASC").Find(&switches)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query context switches")
	}
	return switches, nil
}

// NudgesForDay retrieves a day's nudges in timestamp order
func (r *Repository) NudgesForDay(date time.Time) ([]*models.Nudge, error) {
	start, end := dayRange(date)
	var nudges []*models.Nudge
	result := r.db.Where("timestamp >= ? AND timestamp < ?", start, end).
		Order("timestamp ASC").Find(&nudges)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query nudges")
	}
	return nudges, nil
}

// LatestActivity retrieves the most recent activity event, or nil when
// the store is empty.
func (r *Repository) LatestActivity() (*models.ActivityEvent, error) {
	var event models.ActivityEvent
	result := r.db.Order("timestamp DESC").First(&event)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest activity event")
	}
	return &event, nil
}

// DismissNudge sets the dismissed flag on a nudge
func (r *Repository) DismissNudge(id string) error {
	result := r.db.Model(&models.Nudge{}).Where("id = ?", id).Update("was_dismissed", true)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to dismiss nudge")
	}
	if result.RowsAffected == 0 {
		return errors.Wrapf(ErrNudgeNotFound, "nudge %s", id)
	}
	return nil
}

// MarkNudgeActedUpon records whether the user acted on a nudge
func (r *Repository) MarkNudgeActedUpon(id string, acted bool) error {
	result := r.db.Model(&models.Nudge{}).Where("id = ?", id).Update("was_acted_upon", acted)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update nudge")
	}
	if result.RowsAffected == 0 {
		return errors.Wrapf(ErrNudgeNotFound, "nudge %s", id)
	}
	return nil
}

// DeleteOldActivity deletes activity events older than a given date (soft delete)
func (r *Repository) DeleteOldActivity(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before).Delete(&models.ActivityEvent{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old activity events")
	}
	return result.RowsAffected, nil
}
