package birth

import "fmt"

// Medical validation ranges for newborn and correction input. Values outside
// these ranges are clinically implausible and rejected as user-correctable
// validation errors, not policy violations.
const (
	MinWeightGrams = 500
	MaxWeightGrams = 6000
	MinLengthCM    = 30.0
	MaxLengthCM    = 70.0
	MinApgar       = 0
	MaxApgar       = 10

	// Justification for an appended correction must carry enough text to be
	// auditable.
	MinJustificationLen = 20
)

// ValidationError is a user-correctable input problem, surfaced inline next
// to the offending field by the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("birth: invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func validateClinical(r Record) error {
	if r.MotherID == "" {
		return invalid("mother_id", "required")
	}
	if r.DeliveredAt.IsZero() {
		return invalid("delivered_at", "required")
	}
	if !ValidDeliveryType(r.DeliveryType) {
		return invalid("delivery_type", "unknown delivery type")
	}
	if r.NewbornStatus != NewbornAlive && r.NewbornStatus != NewbornStillbirth {
		return invalid("newborn_status", "unknown status")
	}
	if r.WeightGrams < MinWeightGrams || r.WeightGrams > MaxWeightGrams {
		return invalid("weight_grams", fmt.Sprintf("must be between %d and %d", MinWeightGrams, MaxWeightGrams))
	}
	if r.LengthCM < MinLengthCM || r.LengthCM > MaxLengthCM {
		return invalid("length_cm", fmt.Sprintf("must be between %.0f and %.0f", MinLengthCM, MaxLengthCM))
	}
	if r.Apgar1 < MinApgar || r.Apgar1 > MaxApgar {
		return invalid("apgar_1", "must be between 0 and 10")
	}
	if r.Apgar5 < MinApgar || r.Apgar5 > MaxApgar {
		return invalid("apgar_5", "must be between 0 and 10")
	}
	return nil
}
