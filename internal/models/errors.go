package models

import (
	"fmt"
	"time"
)

// OutOfOrderError reports an activity event whose timestamp precedes
// the last event seen. This is the engine's only hard precondition:
// accepting such an event would corrupt rolling-window state.
type OutOfOrderError struct {
	Last time.Time
	Got  time.Time
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("activity event out of order: got %s after %s",
		e.Got.Format(time.RFC3339), e.Last.Format(time.RFC3339))
}
