package birth

import (
	"testing"
	"time"

	"maternity-platform/internal/rbac"
)

var t0 = time.Unix(1700000000, 0).UTC()

func testRecord() Record {
	return Record{
		ID:            "rec-1",
		MotherID:      "mom-1",
		Shift:         rbac.ShiftDay,
		DeliveredAt:   t0.Add(-30 * time.Minute),
		DeliveryType:  DeliveryEutocic,
		NewbornStatus: NewbornAlive,
		WeightGrams:   3200,
		LengthCM:      49.5,
		Apgar1:        8,
		Apgar5:        9,
		RegisteredBy:  "midwife-1",
		RegisteredAt:  t0,
	}
}

func TestCurrentState_CreatorMidwifeWithinWindow(t *testing.T) {
	mc := NewMutationController(rbac.NewEngine(rbac.DefaultCatalog()))
	rec := testRecord()
	creator := rbac.Subject{Identity: "midwife-1", Role: rbac.RoleMidwife, Shift: rbac.ShiftDay}

	// One millisecond before the boundary: still editable.
	st := mc.CurrentState(rec, creator, t0.Add(EditWindow-time.Millisecond))
	if st.State != StateEditable {
		t.Fatalf("expected editable at window-1ms, got %s", st.State)
	}

	// Exactly at the boundary: still editable (inclusive window).
	st = mc.CurrentState(rec, creator, t0.Add(EditWindow))
	if st.State != StateEditable {
		t.Fatalf("expected editable at window boundary, got %s", st.State)
	}

	// One millisecond past: no longer editable, and the midwife has no
	// correction capability, so the record is locked for her.
	st = mc.CurrentState(rec, creator, t0.Add(EditWindow+time.Millisecond))
	if st.State != StateLocked {
		t.Fatalf("expected locked past window, got %s", st.State)
	}
	if st.Remaining != 0 {
		t.Fatalf("expected zero remaining window, got %s", st.Remaining)
	}
}

func TestCurrentState_MonotonicPastWindow(t *testing.T) {
	mc := NewMutationController(rbac.NewEngine(rbac.DefaultCatalog()))
	rec := testRecord()
	creator := rbac.Subject{Identity: "midwife-1", Role: rbac.RoleMidwife, Shift: rbac.ShiftDay}

	// Re-evaluating at ever later times never reverts to editable.
	for _, later := range []time.Duration{
		EditWindow + time.Millisecond,
		EditWindow + time.Hour,
		EditWindow + 24*time.Hour,
	} {
		if st := mc.CurrentState(rec, creator, t0.Add(later)); st.State == StateEditable {
			t.Fatalf("state reverted to editable at +%s", later)
		}
	}
}

func TestCurrentState_NonCreatorNeverEditable(t *testing.T) {
	mc := NewMutationController(rbac.NewEngine(rbac.DefaultCatalog()))
	rec := testRecord()
	other := rbac.Subject{Identity: "midwife-2", Role: rbac.RoleMidwife, Shift: rbac.ShiftDay}

	// Even well within the window, a different midwife cannot edit.
	if st := mc.CurrentState(rec, other, t0.Add(time.Minute)); st.State == StateEditable {
		t.Fatalf("non-creator must not be editable")
	}
}

func TestCurrentState_PhysicianGetsCorrectionOnly(t *testing.T) {
	mc := NewMutationController(rbac.NewEngine(rbac.DefaultCatalog()))
	rec := testRecord()
	doc := rbac.Subject{Identity: "doc-1", Role: rbac.RolePhysician}

	// Inside and outside the window the physician path is correction-only.
	if st := mc.CurrentState(rec, doc, t0.Add(time.Minute)); st.State != StateCorrectionOnly {
		t.Fatalf("expected correction_only inside window, got %s", st.State)
	}
	if st := mc.CurrentState(rec, doc, t0.Add(3*time.Hour)); st.State != StateCorrectionOnly {
		t.Fatalf("expected correction_only outside window, got %s", st.State)
	}
}

func TestCurrentState_RemainingWindowTruncatedToMinutes(t *testing.T) {
	mc := NewMutationController(rbac.NewEngine(rbac.DefaultCatalog()))
	rec := testRecord()
	creator := rbac.Subject{Identity: "midwife-1", Role: rbac.RoleMidwife, Shift: rbac.ShiftDay}

	st := mc.CurrentState(rec, creator, t0.Add(time.Minute+30*time.Second))
	if st.Remaining != time.Hour+58*time.Minute {
		t.Fatalf("expected 1h58m remaining, got %s", st.Remaining)
	}
}

func TestCurrentState_LockedRoles(t *testing.T) {
	mc := NewMutationController(rbac.NewEngine(rbac.DefaultCatalog()))
	rec := testRecord()

	for _, sub := range []rbac.Subject{
		{Identity: "n", Role: rbac.RoleNurse, Shift: rbac.ShiftDay},
		{Identity: "f", Role: rbac.RoleFrontDeskAdmin},
		{Identity: "a", Role: rbac.RoleSystemAdmin},
		{Identity: "x", Role: "unknown"},
	} {
		if st := mc.CurrentState(rec, sub, t0.Add(time.Minute)); st.State != StateLocked {
			t.Fatalf("role %s: expected locked, got %s", sub.Role, st.State)
		}
	}
}
