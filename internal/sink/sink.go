// Package sink delivers engine output to external consumers: periodic
// OptimizationStatus snapshots for UI surfaces and created nudges.
// All writes are best-effort; callers log failures and retry on the
// next cycle rather than propagating them.
package sink

import (
	"context"

	"timeopt/internal/models"
)

// StatusSink receives serialized OptimizationStatus snapshots.
type StatusSink interface {
	WriteStatus(ctx context.Context, status models.OptimizationStatus) error
	Close() error
}

// NudgeSink receives created nudges for display and later
// acknowledgement.
type NudgeSink interface {
	WriteNudge(ctx context.Context, nudge models.Nudge) error
}
