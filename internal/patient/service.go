package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"maternity-platform/internal/audit"
	"maternity-platform/internal/rbac"

	"github.com/google/uuid"
)

// ErrDenied means the subject lacks the capability or shift scope for the
// attempted demographics operation.
var ErrDenied = errors.New("patient: access denied")

// Plausible maternal age range; values outside it are almost certainly
// transcription errors.
const (
	MinMotherAge = 15
	MaxMotherAge = 60
)

// ValidationError reports user-correctable input problems.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("patient: %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

const mothersTable = "mothers"

// Service owns admissions and demographic updates.
type Service struct {
	repo   Repository
	engine *rbac.Engine
	audit  *audit.Service
	clock  func() time.Time
}

func NewService(repo Repository, engine *rbac.Engine, auditSvc *audit.Service) *Service {
	return &Service{repo: repo, engine: engine, audit: auditSvc, clock: time.Now}
}

// AdmitInput carries the front-desk admission form.
type AdmitInput struct {
	NationalID string `json:"national_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Age        int    `json:"age"`
	BloodType  string `json:"blood_type,omitempty"`
	Allergies  string `json:"allergies,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	Shift      string `json:"shift,omitempty"`
}

func validateAdmission(in AdmitInput) error {
	if strings.TrimSpace(in.NationalID) == "" {
		return invalid("national_id", "required")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return invalid("first_name", "required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		return invalid("last_name", "required")
	}
	if in.Age < MinMotherAge || in.Age > MaxMotherAge {
		return invalid("age", fmt.Sprintf("must be between %d and %d", MinMotherAge, MaxMotherAge))
	}
	return nil
}

// Admit registers a new patient.
func (s *Service) Admit(ctx context.Context, sub rbac.Subject, in AdmitInput) (Mother, error) {
	if d := s.engine.Authorize(sub, rbac.CapCreatePatient, nil); !d.Allowed {
		s.auditDenied(ctx, sub, "admit patient: "+d.Reason)
		return Mother{}, ErrDenied
	}
	if err := validateAdmission(in); err != nil {
		return Mother{}, err
	}

	now := s.clock().UTC()
	m := Mother{
		ID:         uuid.NewString(),
		NationalID: strings.TrimSpace(in.NationalID),
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Age:        in.Age,
		BloodType:  in.BloodType,
		Allergies:  in.Allergies,
		Phone:      in.Phone,
		Address:    in.Address,
		Shift:      rbac.NormalizeShift(in.Shift),
		AdmittedAt: now,
		CreatedBy:  sub.Identity,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return Mother{}, err
	}
	s.auditAction(ctx, sub, audit.ActionPatientCreated, m.ID, "admission")
	return m, nil
}

// Get returns one patient. Demographics reads are not shift-scoped; every
// clinical and administrative role can identify a patient by name.
func (s *Service) Get(ctx context.Context, sub rbac.Subject, id string) (Mother, error) {
	if !s.engine.Capable(sub, rbac.CapViewDemographics) {
		s.auditDenied(ctx, sub, "view patient "+id+": "+rbac.ReasonCapabilityMissing)
		return Mother{}, ErrDenied
	}
	return s.repo.Get(ctx, id)
}

// List returns admitted patients, newest admissions first.
func (s *Service) List(ctx context.Context, sub rbac.Subject) ([]Mother, error) {
	if !s.engine.Capable(sub, rbac.CapViewDemographics) {
		s.auditDenied(ctx, sub, "list patients: "+rbac.ReasonCapabilityMissing)
		return nil, ErrDenied
	}
	return s.repo.List(ctx)
}

// DemographicsPatch carries a partial demographics update. Nil fields are
// left unchanged.
type DemographicsPatch struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Age       *int    `json:"age,omitempty"`
	BloodType *string `json:"blood_type,omitempty"`
	Allergies *string `json:"allergies,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	Shift     *string `json:"shift,omitempty"`
}

// Update applies a demographics patch.
func (s *Service) Update(ctx context.Context, sub rbac.Subject, id string, p DemographicsPatch) (Mother, error) {
	if d := s.engine.Authorize(sub, rbac.CapEditDemographics, nil); !d.Allowed {
		s.auditDenied(ctx, sub, "update patient "+id+": "+d.Reason)
		return Mother{}, ErrDenied
	}
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return Mother{}, err
	}

	if p.FirstName != nil {
		m.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		m.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Age != nil {
		m.Age = *p.Age
	}
	if p.BloodType != nil {
		m.BloodType = *p.BloodType
	}
	if p.Allergies != nil {
		m.Allergies = *p.Allergies
	}
	if p.Phone != nil {
		m.Phone = *p.Phone
	}
	if p.Address != nil {
		m.Address = *p.Address
	}
	if p.Shift != nil {
		m.Shift = rbac.NormalizeShift(*p.Shift)
	}

	if m.FirstName == "" {
		return Mother{}, invalid("first_name", "required")
	}
	if m.LastName == "" {
		return Mother{}, invalid("last_name", "required")
	}
	if m.Age < MinMotherAge || m.Age > MaxMotherAge {
		return Mother{}, invalid("age", fmt.Sprintf("must be between %d and %d", MinMotherAge, MaxMotherAge))
	}

	m.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, m); err != nil {
		return Mother{}, err
	}
	s.auditAction(ctx, sub, audit.ActionPatientUpdated, m.ID, "demographics")
	return m, nil
}

func (s *Service) auditAction(ctx context.Context, sub rbac.Subject, action audit.Action, targetID, detail string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, action, sub.Identity, sub.Role, mothersTable, targetID, detail)
}

func (s *Service) auditDenied(ctx context.Context, sub rbac.Subject, detail string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.RecordDenied(ctx, sub.Identity, sub.Role, "", detail)
}
