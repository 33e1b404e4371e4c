package coordinator

import "timeopt/internal/models"

// Event is the discriminated union published to external subscribers.
// Exactly one concrete type arrives per channel send; there is no
// sync/async callback ambiguity.
type Event interface {
	isEngineEvent()
}

// InterruptDetected is published when a communication excursion
// finalizes into an interrupt.
type InterruptDetected struct {
	Interrupt models.InterruptEvent
}

// SwitchDetected is published for every priced context switch.
type SwitchDetected struct {
	Switch models.ContextSwitch
}

// NudgeCreated is published when the coordinator emits a nudge.
type NudgeCreated struct {
	Nudge models.Nudge
}

// StatusChanged is published when the rolling status color moves.
type StatusChanged struct {
	Previous models.StatusColor
	Current  models.StatusColor
}

func (InterruptDetected) isEngineEvent() {}
func (SwitchDetected) isEngineEvent()    {}
func (NudgeCreated) isEngineEvent()      {}
func (StatusChanged) isEngineEvent()     {}
