package rbac

// Capability names. One CapabilitySet per role; the catalog is the single
// source of truth for what a role may generally do, independent of any
// specific record. Record-level refinement (shift scoping, edit windows)
// belongs to the policy engine, not here.
type Capability string

const (
	CapViewDemographics    Capability = "view_demographics"
	CapEditDemographics    Capability = "edit_demographics"
	CapCreatePatient       Capability = "create_patient"
	CapViewClinicalData    Capability = "view_clinical_data"
	CapViewClinicalHistory Capability = "view_clinical_history"
	CapViewPartogram       Capability = "view_partogram"
	CapCreatePartogram     Capability = "create_partogram"
	CapEditPartogram       Capability = "edit_partogram"
	CapViewEpicrisis       Capability = "view_epicrisis"
	CapCreateEpicrisis     Capability = "create_epicrisis"
	CapEditEpicrisis       Capability = "edit_epicrisis"
	CapCreateBirthRecord   Capability = "create_birth_record"
	CapEditBirthRecord     Capability = "edit_birth_record"
	CapAppendCorrection    Capability = "append_correction"
	CapCreateNursingNotes  Capability = "create_nursing_notes"
	CapEditNursingNotes    Capability = "edit_nursing_notes"
	CapRegisterDeath       Capability = "register_death"
	CapGenerateReports     Capability = "generate_reports"
	CapExportData          Capability = "export_data"
	CapViewAuditLog        Capability = "view_audit_log"
	CapManageUsers         Capability = "manage_users"
	CapViewStatistics      Capability = "view_statistics"

	// CapShiftScoped marks roles whose clinical reads are limited to the
	// shift selected at login.
	CapShiftScoped Capability = "shift_scoped"
)

// CapabilitySet is the set of capabilities granted to a role. Absent keys
// read as false.
type CapabilitySet map[Capability]bool

// Has reports whether the named capability is granted. Nil sets and absent
// capabilities are false (fail-closed).
func (s CapabilitySet) Has(c Capability) bool { return s[c] }

// Catalog maps roles to capability sets. It is resolved once at startup and
// treated as immutable afterwards; tests substitute smaller catalogs.
type Catalog map[string]CapabilitySet

// Lookup is total: an unknown or empty role resolves to an empty (all-false)
// capability set.
func (c Catalog) Lookup(role string) CapabilitySet {
	if set, ok := c[role]; ok {
		return set
	}
	return CapabilitySet{}
}

// DefaultCatalog returns the production permission table.
//
// The table changes only by redeployment. The backend enforces the same
// policy independently; this catalog exists so every in-process decision
// agrees with it.
func DefaultCatalog() Catalog {
	return Catalog{
		RoleFrontDeskAdmin: {
			CapViewDemographics: true,
			CapCreatePatient:    true,
			CapEditDemographics: true,
			CapViewStatistics:   true,
		},
		RoleNurse: {
			CapViewDemographics:    true,
			CapViewClinicalData:    true,
			CapViewClinicalHistory: true,
			CapViewEpicrisis:       true,
			CapCreateNursingNotes:  true,
			CapEditNursingNotes:    true,
			CapShiftScoped:         true,
		},
		RoleMidwife: {
			CapViewDemographics:    true,
			CapViewClinicalData:    true,
			CapViewClinicalHistory: true,
			CapViewPartogram:       true,
			CapCreatePartogram:     true,
			CapEditPartogram:       true,
			CapViewEpicrisis:       true,
			CapCreatePatient:       true,
			CapEditDemographics:    true,
			CapCreateBirthRecord:   true,
			// Edit is additionally bounded by the 2h window and record
			// ownership; see internal/birth.
			CapEditBirthRecord: true,
			CapViewStatistics:  true,
			CapShiftScoped:     true,
		},
		RolePhysician: {
			CapViewDemographics:    true,
			CapViewClinicalData:    true,
			CapViewClinicalHistory: true,
			CapViewPartogram:       true,
			CapViewEpicrisis:       true,
			CapCreateEpicrisis:     true,
			CapEditEpicrisis:       true,
			CapAppendCorrection:    true,
			CapRegisterDeath:       true,
			CapGenerateReports:     true,
			CapExportData:          true,
			CapViewStatistics:      true,
		},
		RoleSystemAdmin: {
			CapManageUsers:  true,
			CapViewAuditLog: true,
		},
	}
}
