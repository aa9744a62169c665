package audit

import "time"

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - Action is a closed enumeration; free-form text goes in Detail.
// - Display ordering is newest first; repositories return events that way.
// - Actor and IP capture are best-effort; do not block clinical flows on
//   audit failures, except access denials which must always be recorded.
//
// Storage (Postgres): table audit_events with an INSERT-only policy and a
// trigger preventing UPDATE/DELETE.

type Event struct {
	ID string `json:"id" db:"id"`

	// Action is the business category of the audit record.
	Action Action `json:"action" db:"action"`

	// ActorUserID is the authenticated user causing the event.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// IPAddress should capture the original client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Target identifiers (optional, depending on the action).
	TargetTable string `json:"target_table,omitempty" db:"target_table"`
	TargetID    string `json:"target_id,omitempty" db:"target_id"`

	// Detail is a short human-readable description for internal ops.
	Detail string `json:"detail,omitempty" db:"detail"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Action string

const (
	ActionLogin                Action = "login"
	ActionLogout               Action = "logout"
	ActionPatientCreated       Action = "patient_created"
	ActionPatientUpdated       Action = "patient_updated"
	ActionClinicalRecordViewed Action = "clinical_record_viewed"
	ActionBirthCreated         Action = "birth_created"
	ActionBirthUpdated         Action = "birth_updated"
	ActionCorrectionAppended   Action = "correction_appended"
	ActionEpicrisisUpdated     Action = "epicrisis_updated"
	ActionDeathRegistered      Action = "death_registered"
	ActionReportGenerated      Action = "report_generated"
	ActionUserCreated          Action = "user_created"
	ActionUserUpdated          Action = "user_updated"
	ActionUserDeactivated      Action = "user_deactivated"
	ActionAccessDenied         Action = "access_denied"
)

// ValidAction reports membership in the closed action enumeration.
func ValidAction(a Action) bool {
	switch a {
	case ActionLogin, ActionLogout, ActionPatientCreated, ActionPatientUpdated,
		ActionClinicalRecordViewed, ActionBirthCreated, ActionBirthUpdated,
		ActionCorrectionAppended, ActionEpicrisisUpdated, ActionDeathRegistered,
		ActionReportGenerated, ActionUserCreated, ActionUserUpdated,
		ActionUserDeactivated, ActionAccessDenied:
		return true
	default:
		return false
	}
}
