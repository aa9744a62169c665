package birth

import (
	"context"
	"errors"
	"testing"
	"time"

	"maternity-platform/internal/audit"
	"maternity-platform/internal/rbac"
)

func newTestService(now time.Time) (*Service, *MemoryRepo, *audit.MemoryRepo) {
	repo := NewMemoryRepo()
	auditRepo := audit.NewMemoryRepo()
	svc := NewService(repo, rbac.NewEngine(rbac.DefaultCatalog()), audit.NewService(auditRepo))
	svc.clock = func() time.Time { return now }
	return svc, repo, auditRepo
}

func registerTestBirth(t *testing.T, svc *Service, midwife rbac.Subject) Record {
	t.Helper()
	rec, err := svc.Register(context.Background(), midwife, NewRecordInput{
		MotherID:      "mom-1",
		Shift:         rbac.ShiftDay,
		DeliveredAt:   t0.Add(-20 * time.Minute),
		DeliveryType:  DeliveryEutocic,
		NewbornStatus: NewbornAlive,
		WeightGrams:   3200,
		LengthCM:      49.5,
		Apgar1:        8,
		Apgar5:        9,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return rec
}

var midwifeM = rbac.Subject{Identity: "midwife-1", Role: rbac.RoleMidwife, Shift: rbac.ShiftDay}
var physician = rbac.Subject{Identity: "doc-1", Role: rbac.RolePhysician}

func TestRegisterRequiresMidwifeCapability(t *testing.T) {
	svc, _, auditRepo := newTestService(t0)

	_, err := svc.Register(context.Background(), physician, NewRecordInput{MotherID: "mom-1"})
	if !errors.Is(err, ErrDenied) {
		t.Fatalf("expected ErrDenied, got %v", err)
	}
	evs := auditRepo.Events()
	if len(evs) != 1 || evs[0].Action != audit.ActionAccessDenied {
		t.Fatalf("expected one access_denied event, got %+v", evs)
	}
}

func TestRegisterRejectsOutOfRangeWeight(t *testing.T) {
	svc, _, _ := newTestService(t0)

	_, err := svc.Register(context.Background(), midwifeM, NewRecordInput{
		MotherID:      "mom-1",
		DeliveredAt:   t0,
		DeliveryType:  DeliveryEutocic,
		NewbornStatus: NewbornAlive,
		WeightGrams:   7000, // above the plausible range
		LengthCM:      49.5,
		Apgar1:        8,
		Apgar5:        9,
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "weight_grams" {
		t.Fatalf("expected weight validation error, got %v", err)
	}
}

// The spec's end-to-end scenario: registered at t0, editable by its creator
// at t0+1h59m, not at t0+2h01m; a physician then appends a correction whose
// original value survives on the record.
func TestEditWindowScenario(t *testing.T) {
	svc, repo, _ := newTestService(t0)
	rec := registerTestBirth(t, svc, midwifeM)

	// t0 + 1h59m: creator can still edit.
	svc.clock = func() time.Time { return t0.Add(time.Hour + 59*time.Minute) }
	w := 3250
	updated, err := svc.ApplyEdit(context.Background(), midwifeM, rec.ID, Patch{WeightGrams: &w})
	if err != nil {
		t.Fatalf("edit within window: %v", err)
	}
	if updated.WeightGrams != 3250 {
		t.Fatalf("edit not applied")
	}

	// t0 + 2h01m: the creator can no longer edit.
	svc.clock = func() time.Time { return t0.Add(2*time.Hour + time.Minute) }
	w2 := 3300
	if _, err := svc.ApplyEdit(context.Background(), midwifeM, rec.ID, Patch{WeightGrams: &w2}); !errors.Is(err, ErrPolicyViolation) {
		t.Fatalf("expected ErrPolicyViolation past window, got %v", err)
	}

	// A physician appends a correction with a 25-character justification.
	corr, err := svc.AppendCorrection(context.Background(), physician, rec.ID, CorrectionInput{
		Field:         "weight_grams",
		NewValue:      "3400",
		Justification: "transcription error fixed", // 25 chars
	})
	if err != nil {
		t.Fatalf("append correction: %v", err)
	}
	if corr.OriginalValue != "3250" || corr.NewValue != "3400" {
		t.Fatalf("correction must hold both values, got %+v", corr)
	}

	// The stored record still returns the pre-correction value.
	stored, err := repo.GetRecord(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.WeightGrams != 3250 {
		t.Fatalf("correction must not mutate the record, weight now %d", stored.WeightGrams)
	}
}

func TestApplyEditByNonCreatorFailsWithinWindow(t *testing.T) {
	svc, _, _ := newTestService(t0)
	rec := registerTestBirth(t, svc, midwifeM)

	other := rbac.Subject{Identity: "midwife-2", Role: rbac.RoleMidwife, Shift: rbac.ShiftDay}
	svc.clock = func() time.Time { return t0.Add(10 * time.Minute) }
	w := 3000
	if _, err := svc.ApplyEdit(context.Background(), other, rec.ID, Patch{WeightGrams: &w}); !errors.Is(err, ErrPolicyViolation) {
		t.Fatalf("expected ErrPolicyViolation for non-creator, got %v", err)
	}
}

func TestAppendCorrectionRejectsShortJustification(t *testing.T) {
	svc, _, _ := newTestService(t0)
	rec := registerTestBirth(t, svc, midwifeM)
	svc.clock = func() time.Time { return t0.Add(3 * time.Hour) }

	_, err := svc.AppendCorrection(context.Background(), physician, rec.ID, CorrectionInput{
		Field:         "weight_grams",
		NewValue:      "3400",
		Justification: "too short", // < 20 chars
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "justification" {
		t.Fatalf("expected justification validation error, got %v", err)
	}
}

func TestAppendCorrectionByMidwifeIsPolicyViolation(t *testing.T) {
	svc, _, _ := newTestService(t0)
	rec := registerTestBirth(t, svc, midwifeM)
	svc.clock = func() time.Time { return t0.Add(3 * time.Hour) }

	_, err := svc.AppendCorrection(context.Background(), midwifeM, rec.ID, CorrectionInput{
		Field:         "weight_grams",
		NewValue:      "3400",
		Justification: "a sufficiently long justification",
	})
	if !errors.Is(err, ErrPolicyViolation) {
		t.Fatalf("expected ErrPolicyViolation, got %v", err)
	}
}

func TestListFiltersByShift(t *testing.T) {
	svc, repo, _ := newTestService(t0)
	registerTestBirth(t, svc, midwifeM) // day shift record

	// A second record on the night shift, plus one with no shift at all.
	_ = repo.InsertRecord(context.Background(), Record{
		ID: "rec-night", MotherID: "mom-2", Shift: rbac.ShiftNight,
		RegisteredBy: "midwife-9", RegisteredAt: t0,
	})
	_ = repo.InsertRecord(context.Background(), Record{
		ID: "rec-unassigned", MotherID: "mom-3",
		RegisteredBy: "midwife-9", RegisteredAt: t0,
	})

	got, err := svc.List(context.Background(), midwifeM)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, rec := range got {
		if rec.Shift == rbac.ShiftNight {
			t.Fatalf("day midwife must not see night records")
		}
	}
	// Day record + unassigned record.
	if len(got) != 2 {
		t.Fatalf("expected 2 visible records, got %d", len(got))
	}

	// Physician sees all three.
	all, err := svc.List(context.Background(), physician)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("physician should see 3 records, got %d", len(all))
	}
}

func TestGetDeniedOutsideShift(t *testing.T) {
	svc, repo, auditRepo := newTestService(t0)
	_ = repo.InsertRecord(context.Background(), Record{
		ID: "rec-night", MotherID: "mom-2", Shift: rbac.ShiftNight,
		RegisteredBy: "midwife-9", RegisteredAt: t0,
	})

	if _, err := svc.Get(context.Background(), midwifeM, "rec-night"); !errors.Is(err, ErrDenied) {
		t.Fatalf("expected ErrDenied, got %v", err)
	}
	evs := auditRepo.Events()
	if len(evs) != 1 || evs[0].Action != audit.ActionAccessDenied {
		t.Fatalf("expected one access_denied event")
	}
}

func TestUpdateEpicrisisPhysicianOnly(t *testing.T) {
	svc, _, _ := newTestService(t0)
	rec := registerTestBirth(t, svc, midwifeM)

	// Outside the edit window on purpose: epicrisis is not window-bound.
	svc.clock = func() time.Time { return t0.Add(48 * time.Hour) }

	updated, err := svc.UpdateEpicrisis(context.Background(), physician, rec.ID, []byte(`{"summary":"normal delivery"}`))
	if err != nil {
		t.Fatalf("epicrisis: %v", err)
	}
	if len(updated.EpicrisisData) == 0 {
		t.Fatalf("epicrisis not stored")
	}

	if _, err := svc.UpdateEpicrisis(context.Background(), midwifeM, rec.ID, []byte(`{}`)); !errors.Is(err, ErrDenied) {
		t.Fatalf("expected ErrDenied for midwife, got %v", err)
	}
}

func TestRegisterDeathExactlyOneSubject(t *testing.T) {
	svc, _, _ := newTestService(t0)
	rec := registerTestBirth(t, svc, midwifeM)

	// Neither subject set.
	_, err := svc.RegisterDeath(context.Background(), physician, DeathInput{
		OccurredAt: t0, CauseCode: "P95",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Both set.
	_, err = svc.RegisterDeath(context.Background(), physician, DeathInput{
		MotherID: "mom-1", BirthRecordID: rec.ID, OccurredAt: t0, CauseCode: "P95",
	})
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Exactly one.
	d, err := svc.RegisterDeath(context.Background(), physician, DeathInput{
		BirthRecordID: rec.ID, OccurredAt: t0, CauseCode: "P95",
	})
	if err != nil {
		t.Fatalf("register death: %v", err)
	}
	if d.RegisteredBy != physician.Identity {
		t.Fatalf("unexpected registrar: %+v", d)
	}

	// Midwives cannot register deaths.
	if _, err := svc.RegisterDeath(context.Background(), midwifeM, DeathInput{
		BirthRecordID: rec.ID, OccurredAt: t0, CauseCode: "P95",
	}); !errors.Is(err, ErrDenied) {
		t.Fatalf("expected ErrDenied, got %v", err)
	}
}
