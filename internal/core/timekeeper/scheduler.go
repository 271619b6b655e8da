package timekeeper

import (
	"time"

	"eyedoro/internal/core/clock"
)

// Slot names one of the scheduler's cancelable actions.
type Slot int

const (
	// SlotWarning fires the pre-break warning of a work phase.
	SlotWarning Slot = iota
	// SlotPhaseEnd ends the running work or break phase.
	SlotPhaseEnd

	slotCount
)

func (slot Slot) String() string {
	switch slot {
	case SlotWarning:
		return "warning"
	case SlotPhaseEnd:
		return "phase-end"
	default:
		return "unknown"
	}
}

type armedAction struct {
	timer      clock.Timer
	generation uint64
	deadline   time.Time
	action     func()
}

// Scheduler owns the delayed transitions of the session clock. It has no
// lock of its own: Arm, Cancel and CancelAll are called by the TimeKeeper
// with its mutex held, and fires are routed back through guard, which takes
// the same mutex before the action runs.
type Scheduler struct {
	clock      clock.Clock
	guard      func(func())
	slots      [slotCount]armedAction
	generation uint64
	stale      uint64
}

// NewScheduler creates a scheduler. guard must serialize fires with the
// owner's other handlers.
func NewScheduler(clk clock.Clock, guard func(func())) *Scheduler {
	if clk == nil {
		clk = clock.System
	}
	if guard == nil {
		guard = func(fn func()) { fn() }
	}
	return &Scheduler{clock: clk, guard: guard}
}

// Arm replaces whatever the slot held with action, due after delay.
// It returns the deadline.
func (scheduler *Scheduler) Arm(slot Slot, delay time.Duration, action func()) time.Time {
	scheduler.Cancel(slot)
	if delay < 0 {
		delay = 0
	}
	scheduler.generation++
	generation := scheduler.generation
	deadline := scheduler.clock.Now().Add(delay)
	scheduler.slots[slot] = armedAction{
		generation: generation,
		deadline:   deadline,
		action:     action,
	}
	scheduler.slots[slot].timer = scheduler.clock.AfterFunc(delay, func() {
		scheduler.guard(func() { scheduler.fire(slot, generation) })
	})
	return deadline
}

// Cancel disarms the slot. Cancelling an empty slot is a no-op.
func (scheduler *Scheduler) Cancel(slot Slot) {
	armed := scheduler.slots[slot]
	if armed.timer != nil {
		armed.timer.Stop()
	}
	scheduler.slots[slot] = armedAction{}
}

// CancelAll disarms every slot.
func (scheduler *Scheduler) CancelAll() {
	for slot := Slot(0); slot < slotCount; slot++ {
		scheduler.Cancel(slot)
	}
}

// Armed reports whether the slot holds a pending action.
func (scheduler *Scheduler) Armed(slot Slot) bool {
	return scheduler.slots[slot].action != nil
}

// Deadline returns when the slot fires, or the zero time when it is empty.
func (scheduler *Scheduler) Deadline(slot Slot) time.Time {
	if !scheduler.Armed(slot) {
		return time.Time{}
	}
	return scheduler.slots[slot].deadline
}

// StaleFires counts callbacks that arrived after their slot was re-armed or
// cancelled.
func (scheduler *Scheduler) StaleFires() uint64 {
	return scheduler.stale
}

func (scheduler *Scheduler) fire(slot Slot, generation uint64) {
	armed := scheduler.slots[slot]
	if armed.action == nil || armed.generation != generation {
		scheduler.stale++
		return
	}
	scheduler.slots[slot] = armedAction{}
	armed.action()
}
