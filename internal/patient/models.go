package patient

import "time"

// Mother is an admitted maternity patient. Demographics are managed by the
// front desk; clinical data lives on the birth records that reference her.
type Mother struct {
	ID           string    `json:"id" db:"id"`
	NationalID   string    `json:"national_id" db:"national_id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Age          int       `json:"age" db:"age"`
	BloodType    string    `json:"blood_type,omitempty" db:"blood_type"`
	Allergies    string    `json:"allergies,omitempty" db:"allergies"`
	Phone        string    `json:"phone,omitempty" db:"phone"`
	Address      string    `json:"address,omitempty" db:"address"`
	// Shift is the ward shift the admission is assigned to. Empty means not
	// yet assigned; unassigned patients are visible to every shift.
	Shift      string    `json:"shift,omitempty" db:"shift"`
	AdmittedAt time.Time `json:"admitted_at" db:"admitted_at"`
	CreatedBy  string    `json:"created_by" db:"created_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
