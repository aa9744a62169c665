package birth

import (
	"time"

	"maternity-platform/internal/rbac"
)

// EditWindow is the duration after registration during which the registering
// midwife may edit a birth record in place. Outside the window the record is
// append-only. Fixed by ward policy, not configuration.
const EditWindow = 2 * time.Hour

// MutationState classifies what a subject may do to a specific record right
// now.
type MutationState string

const (
	// StateEditable: in-place edit permitted (registering midwife, within
	// the edit window).
	StateEditable MutationState = "editable"
	// StateCorrectionOnly: record is immutable but the subject may append a
	// correction.
	StateCorrectionOnly MutationState = "correction_only"
	// StateLocked: view only, no mutation affordance.
	StateLocked MutationState = "locked"
)

// StateInfo is the mutation decision plus the remaining edit window for
// display. Remaining is zero once the window has expired and is truncated to
// whole minutes.
type StateInfo struct {
	State     MutationState `json:"state"`
	Remaining time.Duration `json:"remaining_edit_window"`
}

// MutationController decides, per (record, subject, now), which mutation is
// available. Purely a function of its inputs: no stored state, no caching —
// a cached decision could extend or shrink the edit window.
type MutationController struct {
	engine *rbac.Engine
}

func NewMutationController(engine *rbac.Engine) *MutationController {
	return &MutationController{engine: engine}
}

// CurrentState evaluates the edit-window state machine.
//
//  1. elapsed <= EditWindow AND subject is the registering midwife AND the
//     role grants edit_birth_record -> Editable
//  2. else role grants append_correction -> CorrectionOnly
//  3. else -> Locked
//
// Once the window has passed the state never returns to Editable, regardless
// of how often it is re-evaluated.
func (mc *MutationController) CurrentState(rec Record, sub rbac.Subject, now time.Time) StateInfo {
	elapsed := now.Sub(rec.RegisteredAt)

	remaining := EditWindow - elapsed
	if remaining < 0 {
		remaining = 0
	}
	remaining = remaining.Truncate(time.Minute)

	if elapsed <= EditWindow &&
		sub.Role == rbac.RoleMidwife &&
		sub.Identity == rec.RegisteredBy &&
		mc.engine.Capable(sub, rbac.CapEditBirthRecord) {
		return StateInfo{State: StateEditable, Remaining: remaining}
	}

	if mc.engine.Capable(sub, rbac.CapAppendCorrection) {
		return StateInfo{State: StateCorrectionOnly, Remaining: remaining}
	}

	return StateInfo{State: StateLocked, Remaining: remaining}
}
