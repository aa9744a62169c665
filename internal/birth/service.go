package birth

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"maternity-platform/internal/audit"
	"maternity-platform/internal/rbac"

	"github.com/google/uuid"
)

// Service owns birth record registration, edit-window edits, append-only
// corrections, epicrisis payloads and death registration.
//
// Policy decisions are re-derived from the current clock and subject on
// every call; nothing here caches a mutation state.
type Service struct {
	repo   Repository
	engine *rbac.Engine
	mc     *MutationController
	audit  *audit.Service
	clock  func() time.Time
}

func NewService(repo Repository, engine *rbac.Engine, auditSvc *audit.Service) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
		mc:     NewMutationController(engine),
		audit:  auditSvc,
		clock:  time.Now,
	}
}

const recordsTable = "birth_records"

// NewRecordInput carries registration input. RegisteredBy/RegisteredAt are
// assigned by the service.
type NewRecordInput struct {
	MotherID           string          `json:"mother_id"`
	Shift              string          `json:"shift,omitempty"`
	DeliveredAt        time.Time       `json:"delivered_at"`
	GestationalAgeWeek int             `json:"gestational_age_weeks,omitempty"`
	DeliveryType       DeliveryType    `json:"delivery_type"`
	Anesthesia         string          `json:"anesthesia,omitempty"`
	NewbornStatus      NewbornStatus   `json:"newborn_status"`
	NewbornSex         string          `json:"newborn_sex,omitempty"`
	WeightGrams        int             `json:"weight_grams"`
	LengthCM           float64         `json:"length_cm"`
	Apgar1             int             `json:"apgar_1"`
	Apgar5             int             `json:"apgar_5"`
	Observations       string          `json:"observations,omitempty"`
	PartogramData      json.RawMessage `json:"partogram_data,omitempty"`
}

// Register creates a birth record. Midwife only (via create_birth_record).
func (s *Service) Register(ctx context.Context, sub rbac.Subject, in NewRecordInput) (Record, error) {
	if d := s.engine.Authorize(sub, rbac.CapCreateBirthRecord, nil); !d.Allowed {
		s.auditDenied(ctx, sub, "register birth: "+d.Reason)
		return Record{}, ErrDenied
	}

	now := s.clock().UTC()
	rec := Record{
		ID:                 uuid.NewString(),
		MotherID:           in.MotherID,
		Shift:              rbac.NormalizeShift(in.Shift),
		DeliveredAt:        in.DeliveredAt,
		GestationalAgeWeek: in.GestationalAgeWeek,
		DeliveryType:       in.DeliveryType,
		Anesthesia:         in.Anesthesia,
		NewbornStatus:      in.NewbornStatus,
		NewbornSex:         in.NewbornSex,
		WeightGrams:        in.WeightGrams,
		LengthCM:           in.LengthCM,
		Apgar1:             in.Apgar1,
		Apgar5:             in.Apgar5,
		Observations:       in.Observations,
		PartogramData:      in.PartogramData,
		RegisteredBy:       sub.Identity,
		RegisteredAt:       now,
	}
	if err := validateClinical(rec); err != nil {
		return Record{}, err
	}
	if err := s.repo.InsertRecord(ctx, rec); err != nil {
		return Record{}, err
	}
	s.auditAction(ctx, sub, audit.ActionBirthCreated, rec.ID, "birth record registered")
	return rec, nil
}

// Get returns one record after a clinical-view authorization against it.
func (s *Service) Get(ctx context.Context, sub rbac.Subject, id string) (Record, error) {
	rec, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if d := s.engine.Authorize(sub, rbac.CapViewClinicalData, &rbac.RecordRef{Shift: rec.Shift}); !d.Allowed {
		s.auditDenied(ctx, sub, "view birth "+id+": "+d.Reason)
		return Record{}, ErrDenied
	}
	s.auditAction(ctx, sub, audit.ActionClinicalRecordViewed, rec.ID, "")
	return rec, nil
}

// List returns the records visible to the subject, shift-filtered for
// shift-scoped roles.
func (s *Service) List(ctx context.Context, sub rbac.Subject) ([]Record, error) {
	if !s.engine.Capable(sub, rbac.CapViewClinicalData) {
		s.auditDenied(ctx, sub, "list births: "+rbac.ReasonCapabilityMissing)
		return nil, ErrDenied
	}
	all, err := s.repo.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0:0]
	for _, rec := range all {
		if s.engine.InShiftScope(sub, rbac.RecordRef{Shift: rec.Shift}) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// State reports the mutation state and remaining edit window for one record.
func (s *Service) State(ctx context.Context, sub rbac.Subject, id string) (StateInfo, error) {
	rec, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return StateInfo{}, err
	}
	if d := s.engine.Authorize(sub, rbac.CapViewClinicalData, &rbac.RecordRef{Shift: rec.Shift}); !d.Allowed {
		return StateInfo{}, ErrDenied
	}
	return s.mc.CurrentState(rec, sub, s.clock().UTC()), nil
}

// Patch carries an in-place edit. Nil fields are left unchanged.
type Patch struct {
	DeliveredAt        *time.Time    `json:"delivered_at,omitempty"`
	GestationalAgeWeek *int          `json:"gestational_age_weeks,omitempty"`
	DeliveryType       *DeliveryType `json:"delivery_type,omitempty"`
	Anesthesia         *string       `json:"anesthesia,omitempty"`
	NewbornStatus      *NewbornStatus `json:"newborn_status,omitempty"`
	NewbornSex         *string       `json:"newborn_sex,omitempty"`
	WeightGrams        *int          `json:"weight_grams,omitempty"`
	LengthCM           *float64      `json:"length_cm,omitempty"`
	Apgar1             *int          `json:"apgar_1,omitempty"`
	Apgar5             *int          `json:"apgar_5,omitempty"`
	Observations       *string       `json:"observations,omitempty"`
	PartogramData      json.RawMessage `json:"partogram_data,omitempty"`
}

// ApplyEdit mutates a record in place. Valid only while CurrentState is
// Editable; any other state is a contract fault (the caller should not have
// offered the action) and returns ErrPolicyViolation.
func (s *Service) ApplyEdit(ctx context.Context, sub rbac.Subject, id string, p Patch) (Record, error) {
	rec, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return Record{}, err
	}

	st := s.mc.CurrentState(rec, sub, s.clock().UTC())
	if st.State != StateEditable {
		return Record{}, ErrPolicyViolation
	}

	applyPatch(&rec, p)
	if err := validateClinical(rec); err != nil {
		return Record{}, err
	}
	if err := s.repo.UpdateRecord(ctx, rec); err != nil {
		return Record{}, err
	}
	s.auditAction(ctx, sub, audit.ActionBirthUpdated, rec.ID, "edited within window")
	return rec, nil
}

// CorrectionInput is the user-supplied part of an appended correction. The
// original value is snapshot from the stored record, never from the client.
type CorrectionInput struct {
	Field         string `json:"field"`
	NewValue      string `json:"new_value"`
	Justification string `json:"justification"`
}

// AppendCorrection appends a correction to a record outside its edit window.
// The record row itself is never modified.
func (s *Service) AppendCorrection(ctx context.Context, sub rbac.Subject, id string, in CorrectionInput) (Correction, error) {
	rec, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return Correction{}, err
	}

	st := s.mc.CurrentState(rec, sub, s.clock().UTC())
	if st.State != StateCorrectionOnly {
		return Correction{}, ErrPolicyViolation
	}

	original, ok := fieldValue(rec, in.Field)
	if !ok {
		return Correction{}, invalid("field", "not a correctable field")
	}
	if in.NewValue == "" {
		return Correction{}, invalid("new_value", "required")
	}
	if len(in.Justification) < MinJustificationLen {
		return Correction{}, invalid("justification", "must be at least 20 characters")
	}

	c := Correction{
		ID:             uuid.NewString(),
		RecordID:       rec.ID,
		Field:          in.Field,
		OriginalValue:  original,
		NewValue:       in.NewValue,
		Justification:  in.Justification,
		CorrectingUser: sub.Identity,
		CreatedAt:      s.clock().UTC(),
	}
	if err := s.repo.AppendCorrection(ctx, c); err != nil {
		return Correction{}, err
	}
	s.auditAction(ctx, sub, audit.ActionCorrectionAppended, rec.ID, "field "+in.Field)
	return c, nil
}

// Corrections lists the corrections appended to a record, for side-by-side
// display with the original values.
func (s *Service) Corrections(ctx context.Context, sub rbac.Subject, recordID string) ([]Correction, error) {
	rec, err := s.repo.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if d := s.engine.Authorize(sub, rbac.CapViewClinicalHistory, &rbac.RecordRef{Shift: rec.Shift}); !d.Allowed {
		s.auditDenied(ctx, sub, "list corrections "+recordID+": "+d.Reason)
		return nil, ErrDenied
	}
	return s.repo.ListCorrections(ctx, recordID)
}

// UpdateEpicrisis replaces the discharge-note payload. Physician-owned and
// not bound to the midwife edit window.
func (s *Service) UpdateEpicrisis(ctx context.Context, sub rbac.Subject, id string, payload json.RawMessage) (Record, error) {
	rec, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return Record{}, err
	}
	needed := rbac.CapEditEpicrisis
	if len(rec.EpicrisisData) == 0 {
		needed = rbac.CapCreateEpicrisis
	}
	if d := s.engine.Authorize(sub, needed, &rbac.RecordRef{Shift: rec.Shift}); !d.Allowed {
		s.auditDenied(ctx, sub, "epicrisis "+id+": "+d.Reason)
		return Record{}, ErrDenied
	}
	if len(payload) == 0 || !json.Valid(payload) {
		return Record{}, invalid("epicrisis_data", "must be a JSON document")
	}
	rec.EpicrisisData = payload
	if err := s.repo.UpdateRecord(ctx, rec); err != nil {
		return Record{}, err
	}
	s.auditAction(ctx, sub, audit.ActionEpicrisisUpdated, rec.ID, "")
	return rec, nil
}

// DeathInput registers a death of the mother or of the newborn of a birth
// record — exactly one of the two must be set.
type DeathInput struct {
	MotherID      string    `json:"mother_id,omitempty"`
	BirthRecordID string    `json:"birth_record_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
	CauseCode     string    `json:"cause_code"`
}

func (s *Service) RegisterDeath(ctx context.Context, sub rbac.Subject, in DeathInput) (Death, error) {
	if d := s.engine.Authorize(sub, rbac.CapRegisterDeath, nil); !d.Allowed {
		s.auditDenied(ctx, sub, "register death: "+d.Reason)
		return Death{}, ErrDenied
	}
	if (in.MotherID == "") == (in.BirthRecordID == "") {
		return Death{}, invalid("subject", "exactly one of mother_id or birth_record_id is required")
	}
	if in.OccurredAt.IsZero() {
		return Death{}, invalid("occurred_at", "required")
	}
	if in.CauseCode == "" {
		return Death{}, invalid("cause_code", "required")
	}
	if in.BirthRecordID != "" {
		if _, err := s.repo.GetRecord(ctx, in.BirthRecordID); err != nil {
			return Death{}, err
		}
	}

	d := Death{
		ID:            uuid.NewString(),
		MotherID:      in.MotherID,
		BirthRecordID: in.BirthRecordID,
		OccurredAt:    in.OccurredAt,
		CauseCode:     in.CauseCode,
		RegisteredBy:  sub.Identity,
		RegisteredAt:  s.clock().UTC(),
	}
	if err := s.repo.InsertDeath(ctx, d); err != nil {
		return Death{}, err
	}
	s.auditAction(ctx, sub, audit.ActionDeathRegistered, d.ID, "")
	return d, nil
}

func (s *Service) ListDeaths(ctx context.Context, sub rbac.Subject) ([]Death, error) {
	if !s.engine.Capable(sub, rbac.CapViewClinicalData) {
		s.auditDenied(ctx, sub, "list deaths: "+rbac.ReasonCapabilityMissing)
		return nil, ErrDenied
	}
	return s.repo.ListDeaths(ctx)
}

/* ===================== helpers ===================== */

func applyPatch(rec *Record, p Patch) {
	if p.DeliveredAt != nil {
		rec.DeliveredAt = *p.DeliveredAt
	}
	if p.GestationalAgeWeek != nil {
		rec.GestationalAgeWeek = *p.GestationalAgeWeek
	}
	if p.DeliveryType != nil {
		rec.DeliveryType = *p.DeliveryType
	}
	if p.Anesthesia != nil {
		rec.Anesthesia = *p.Anesthesia
	}
	if p.NewbornStatus != nil {
		rec.NewbornStatus = *p.NewbornStatus
	}
	if p.NewbornSex != nil {
		rec.NewbornSex = *p.NewbornSex
	}
	if p.WeightGrams != nil {
		rec.WeightGrams = *p.WeightGrams
	}
	if p.LengthCM != nil {
		rec.LengthCM = *p.LengthCM
	}
	if p.Apgar1 != nil {
		rec.Apgar1 = *p.Apgar1
	}
	if p.Apgar5 != nil {
		rec.Apgar5 = *p.Apgar5
	}
	if p.Observations != nil {
		rec.Observations = *p.Observations
	}
	if len(p.PartogramData) > 0 {
		rec.PartogramData = p.PartogramData
	}
}

// fieldValue snapshots the current stored value of a correctable field.
func fieldValue(rec Record, field string) (string, bool) {
	switch field {
	case "weight_grams":
		return strconv.Itoa(rec.WeightGrams), true
	case "length_cm":
		return strconv.FormatFloat(rec.LengthCM, 'f', 1, 64), true
	case "apgar_1":
		return strconv.Itoa(rec.Apgar1), true
	case "apgar_5":
		return strconv.Itoa(rec.Apgar5), true
	case "delivery_type":
		return string(rec.DeliveryType), true
	case "delivered_at":
		return rec.DeliveredAt.UTC().Format(time.RFC3339), true
	case "observations":
		return rec.Observations, true
	default:
		return "", false
	}
}

func (s *Service) auditAction(ctx context.Context, sub rbac.Subject, action audit.Action, targetID, detail string) {
	if s.audit == nil {
		return
	}
	// Best-effort: clinical flows do not fail on audit write errors.
	_ = s.audit.Record(ctx, action, sub.Identity, sub.Role, recordsTable, targetID, detail)
}

func (s *Service) auditDenied(ctx context.Context, sub rbac.Subject, detail string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.RecordDenied(ctx, sub.Identity, sub.Role, "", detail)
}
