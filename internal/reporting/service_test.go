package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"maternity-platform/internal/audit"
	"maternity-platform/internal/birth"
	"maternity-platform/internal/rbac"
)

var t0 = time.Unix(1700000000, 0).UTC()

var physician = rbac.Subject{Identity: "doc-1", Role: rbac.RolePhysician}

func seededRepo() *MemoryRepo {
	return &MemoryRepo{
		Births: []birth.Record{
			{ID: "b1", Shift: rbac.ShiftDay, DeliveredAt: t0.Add(1 * time.Hour),
				DeliveryType: birth.DeliveryEutocic, NewbornStatus: birth.NewbornAlive,
				WeightGrams: 3000, Apgar5: 9},
			{ID: "b2", Shift: rbac.ShiftDay, DeliveredAt: t0.Add(2 * time.Hour),
				DeliveryType: birth.DeliveryEmergencyCesarean, NewbornStatus: birth.NewbornAlive,
				WeightGrams: 3400, Apgar5: 8},
			{ID: "b3", Shift: rbac.ShiftNight, DeliveredAt: t0.Add(3 * time.Hour),
				DeliveryType: birth.DeliveryEutocic, NewbornStatus: birth.NewbornStillbirth,
				WeightGrams: 2600, Apgar5: 0},
			// Outside the requested range.
			{ID: "b4", Shift: rbac.ShiftDay, DeliveredAt: t0.Add(-48 * time.Hour),
				DeliveryType: birth.DeliveryEutocic, NewbornStatus: birth.NewbornAlive,
				WeightGrams: 3100, Apgar5: 9},
		},
		Deaths: []birth.Death{
			{ID: "d1", BirthRecordID: "b3", OccurredAt: t0.Add(3 * time.Hour), CauseCode: "P95"},
			{ID: "d2", MotherID: "mom-7", OccurredAt: t0.Add(5 * time.Hour), CauseCode: "O72"},
		},
	}
}

func newTestService() (*Service, *audit.MemoryRepo) {
	auditRepo := audit.NewMemoryRepo()
	svc := NewService(seededRepo(), rbac.NewEngine(rbac.DefaultCatalog()), audit.NewService(auditRepo))
	return svc, auditRepo
}

func dayRange() TimeRange {
	return TimeRange{From: t0, To: t0.Add(24 * time.Hour)}
}

func TestBirthsSummary(t *testing.T) {
	svc, auditRepo := newTestService()

	got, err := svc.BirthsSummary(context.Background(), physician, BirthsSummaryRequest{Range: dayRange()})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.TotalBirths != 3 {
		t.Fatalf("expected 3 births in range, got %d", got.TotalBirths)
	}
	if got.EutocicBirths != 2 || got.EmergencyCesareans != 1 {
		t.Fatalf("delivery-type counts wrong: %+v", got)
	}
	if got.Stillbirths != 1 {
		t.Fatalf("expected 1 stillbirth, got %d", got.Stillbirths)
	}
	if got.DayShiftBirths != 2 || got.NightShiftBirths != 1 {
		t.Fatalf("shift counts wrong: %+v", got)
	}
	if got.AverageWeightGrams != 3000 {
		t.Fatalf("expected average weight 3000, got %d", got.AverageWeightGrams)
	}

	evs := auditRepo.Events()
	if len(evs) != 1 || evs[0].Action != audit.ActionReportGenerated {
		t.Fatalf("expected report_generated event, got %+v", evs)
	}
}

func TestBirthsSummaryShiftFilter(t *testing.T) {
	svc, _ := newTestService()

	got, err := svc.BirthsSummary(context.Background(), physician, BirthsSummaryRequest{
		Range: dayRange(),
		Shift: "night",
	})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.TotalBirths != 1 || got.Stillbirths != 1 {
		t.Fatalf("shift filter wrong: %+v", got)
	}
}

func TestBirthsSummaryInvalidRange(t *testing.T) {
	svc, _ := newTestService()

	for _, r := range []TimeRange{
		{},
		{From: t0},
		{From: t0.Add(time.Hour), To: t0}, // inverted
	} {
		if _, err := svc.BirthsSummary(context.Background(), physician, BirthsSummaryRequest{Range: r}); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("range %+v: expected ErrInvalidRequest, got %v", r, err)
		}
	}
}

func TestBirthsSummaryDenied(t *testing.T) {
	svc, auditRepo := newTestService()

	midwife := rbac.Subject{Identity: "m-1", Role: rbac.RoleMidwife, Shift: rbac.ShiftDay}
	if _, err := svc.BirthsSummary(context.Background(), midwife, BirthsSummaryRequest{Range: dayRange()}); !errors.Is(err, ErrDenied) {
		t.Fatalf("expected ErrDenied, got %v", err)
	}
	evs := auditRepo.Events()
	if len(evs) != 1 || evs[0].Action != audit.ActionAccessDenied {
		t.Fatalf("expected access_denied event")
	}
}

func TestDeathsSummary(t *testing.T) {
	svc, _ := newTestService()

	got, err := svc.DeathsSummary(context.Background(), physician, DeathsSummaryRequest{Range: dayRange()})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.TotalDeaths != 2 || got.MaternalDeaths != 1 || got.NeonatalDeaths != 1 {
		t.Fatalf("death counts wrong: %+v", got)
	}
	if got.DeathsByCause["P95"] != 1 || got.DeathsByCause["O72"] != 1 {
		t.Fatalf("cause grouping wrong: %+v", got.DeathsByCause)
	}
}
