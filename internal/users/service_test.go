package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"maternity-platform/internal/audit"
	"maternity-platform/internal/rbac"

	"golang.org/x/crypto/bcrypt"
)

var t0 = time.Unix(1700000000, 0).UTC()

var admin = rbac.Subject{Identity: "admin-1", Role: rbac.RoleSystemAdmin}

func newTestService() (*Service, *audit.MemoryRepo) {
	auditRepo := audit.NewMemoryRepo()
	svc := NewService(NewMemoryRepo(), rbac.NewEngine(rbac.DefaultCatalog()), audit.NewService(auditRepo))
	svc.clock = func() time.Time { return t0 }
	svc.cost = bcrypt.MinCost // keep tests fast
	return svc, auditRepo
}

func TestCreateHashesPassword(t *testing.T) {
	svc, auditRepo := newTestService()

	u, err := svc.Create(context.Background(), admin, CreateInput{
		Username: " Maria.Lopez ",
		Password: "correct horse",
		FullName: "María López",
		Role:     "midwife",
		Shift:    "day",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Username != "maria.lopez" {
		t.Fatalf("username not normalized: %q", u.Username)
	}
	if u.PasswordHash == "correct horse" || u.PasswordHash == "" {
		t.Fatalf("password stored in the clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
	if !u.Active {
		t.Fatalf("new accounts must start active")
	}

	evs := auditRepo.Events()
	if len(evs) != 1 || evs[0].Action != audit.ActionUserCreated {
		t.Fatalf("expected user_created event, got %+v", evs)
	}
}

func TestCreateShiftInvariant(t *testing.T) {
	svc, _ := newTestService()

	// Shift-scoped role without a shift is rejected.
	_, err := svc.Create(context.Background(), admin, CreateInput{
		Username: "n1", Password: "password1", Role: "nurse",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "shift" {
		t.Fatalf("expected shift validation error, got %v", err)
	}

	// A physician's shift is discarded, not stored.
	u, err := svc.Create(context.Background(), admin, CreateInput{
		Username: "d1", Password: "password1", Role: "physician", Shift: "night",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Shift != "" {
		t.Fatalf("physician must not carry a shift, got %q", u.Shift)
	}
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), admin, CreateInput{
		Username: "x1", Password: "password1", Role: "janitor",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "role" {
		t.Fatalf("expected role validation error, got %v", err)
	}
}

func TestCreateDeniedForNonAdmin(t *testing.T) {
	svc, _ := newTestService()

	doc := rbac.Subject{Identity: "doc-1", Role: rbac.RolePhysician}
	_, err := svc.Create(context.Background(), doc, CreateInput{
		Username: "x1", Password: "password1", Role: "nurse", Shift: "day",
	})
	if !errors.Is(err, ErrDenied) {
		t.Fatalf("expected ErrDenied, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	u, err := svc.Create(context.Background(), admin, CreateInput{
		Username: "m1", Password: "password1", Role: "midwife", Shift: "day",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Authenticate(context.Background(), "m1", "password1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("wrong account")
	}

	if _, err := svc.Authenticate(context.Background(), "m1", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody", "password1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user must look like a bad password, got %v", err)
	}
}

func TestDeactivateBlocksLogin(t *testing.T) {
	svc, auditRepo := newTestService()
	u, _ := svc.Create(context.Background(), admin, CreateInput{
		Username: "m1", Password: "password1", Role: "midwife", Shift: "day",
	})

	if err := svc.Deactivate(context.Background(), admin, u.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "m1", "password1"); !errors.Is(err, ErrInactive) {
		t.Fatalf("expected ErrInactive, got %v", err)
	}

	// The account row survives; deactivation is not deletion.
	stored, err := svc.Get(context.Background(), admin, u.ID)
	if err != nil {
		t.Fatalf("get after deactivate: %v", err)
	}
	if stored.Active {
		t.Fatalf("account still active")
	}

	var found bool
	for _, e := range auditRepo.Events() {
		if e.Action == audit.ActionUserDeactivated && e.TargetID == u.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected user_deactivated event")
	}
}

func TestDeactivateSelfRejected(t *testing.T) {
	svc, _ := newTestService()
	self := rbac.Subject{Identity: "admin-1", Role: rbac.RoleSystemAdmin}

	err := svc.Deactivate(context.Background(), self, "admin-1")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateRoleClearsStaleShift(t *testing.T) {
	svc, _ := newTestService()
	u, _ := svc.Create(context.Background(), admin, CreateInput{
		Username: "m1", Password: "password1", Role: "nurse", Shift: "night",
	})

	role := "physician"
	updated, err := svc.Update(context.Background(), admin, u.ID, UpdateInput{Role: &role})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Role != rbac.RolePhysician || updated.Shift != "" {
		t.Fatalf("shift must be cleared when the role stops being shift-scoped: %+v", updated)
	}
}
