package birth

import (
	"encoding/json"
	"time"
)

// DeliveryType is the closed enumeration of delivery kinds.
type DeliveryType string

const (
	DeliveryEutocic           DeliveryType = "eutocic"
	DeliveryElectiveCesarean  DeliveryType = "elective_cesarean"
	DeliveryEmergencyCesarean DeliveryType = "emergency_cesarean"
	DeliveryForceps           DeliveryType = "forceps"
	DeliveryVacuum            DeliveryType = "vacuum"
)

func ValidDeliveryType(t DeliveryType) bool {
	switch t {
	case DeliveryEutocic, DeliveryElectiveCesarean, DeliveryEmergencyCesarean,
		DeliveryForceps, DeliveryVacuum:
		return true
	default:
		return false
	}
}

// NewbornStatus at birth.
type NewbornStatus string

const (
	NewbornAlive      NewbornStatus = "alive"
	NewbornStillbirth NewbornStatus = "stillbirth"
)

// Record is one birth event with its newborn data.
//
// Lifecycle:
// - Created once by a midwife at registration time.
// - Mutable in place only within EditWindow after RegisteredAt, and only by
//   the registering midwife.
// - After the window the row is immutable; changes arrive as appended
//   Corrections that never overwrite the stored values.
type Record struct {
	ID       string `json:"id" db:"id"`
	MotherID string `json:"mother_id" db:"mother_id"`

	// Shift the mother is scoped to. Empty when the mother has not been
	// assigned to a shift; such records are visible to all (see rbac).
	Shift string `json:"shift,omitempty" db:"shift"`

	DeliveredAt        time.Time    `json:"delivered_at" db:"delivered_at"`
	GestationalAgeWeek int          `json:"gestational_age_weeks,omitempty" db:"gestational_age_weeks"`
	DeliveryType       DeliveryType `json:"delivery_type" db:"delivery_type"`
	Anesthesia         string       `json:"anesthesia,omitempty" db:"anesthesia"`

	NewbornStatus NewbornStatus `json:"newborn_status" db:"newborn_status"`
	NewbornSex    string        `json:"newborn_sex,omitempty" db:"newborn_sex"`
	WeightGrams   int           `json:"weight_grams" db:"weight_grams"`
	LengthCM      float64       `json:"length_cm" db:"length_cm"`
	Apgar1        int           `json:"apgar_1" db:"apgar_1"`
	Apgar5        int           `json:"apgar_5" db:"apgar_5"`

	Observations string `json:"observations,omitempty" db:"observations"`

	// PartogramData and EpicrisisData are structured clinical payloads kept
	// opaque at this layer.
	PartogramData json.RawMessage `json:"partogram_data,omitempty" db:"partogram_data"`
	EpicrisisData json.RawMessage `json:"epicrisis_data,omitempty" db:"epicrisis_data"`

	RegisteredBy string    `json:"registered_by" db:"registered_by"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
}

// Correction is an immutable, additive amendment to a Record.
//
// Invariants:
// - Created once, never updated or deleted.
// - OriginalValue is snapshot at append time from the stored record, never
//   recomputed; the record row itself is never touched, so the original
//   stays queryable side by side with the correction.
type Correction struct {
	ID             string    `json:"id" db:"id"`
	RecordID       string    `json:"record_id" db:"record_id"`
	Field          string    `json:"field" db:"field"`
	OriginalValue  string    `json:"original_value" db:"original_value"`
	NewValue       string    `json:"new_value" db:"new_value"`
	Justification  string    `json:"justification" db:"justification"`
	CorrectingUser string    `json:"correcting_user" db:"correcting_user"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Death registers a death of either the mother or the newborn of a birth
// record — exactly one of the two.
type Death struct {
	ID            string    `json:"id" db:"id"`
	MotherID      string    `json:"mother_id,omitempty" db:"mother_id"`
	BirthRecordID string    `json:"birth_record_id,omitempty" db:"birth_record_id"`
	OccurredAt    time.Time `json:"occurred_at" db:"occurred_at"`
	CauseCode     string    `json:"cause_code" db:"cause_code"`
	RegisteredBy  string    `json:"registered_by" db:"registered_by"`
	RegisteredAt  time.Time `json:"registered_at" db:"registered_at"`
}
