package rbac

import "strings"

// Role names. Keep these stable; they are part of auth/RBAC contracts and
// mirror the role catalog owned by the user store.
const (
	RoleFrontDeskAdmin = "front_desk_admin"
	RoleNurse          = "nurse"
	RoleMidwife        = "midwife"
	RolePhysician      = "physician"
	RoleSystemAdmin    = "system_admin"
)

// Shift names for shift-scoped roles.
const (
	ShiftDay     = "day"
	ShiftEvening = "evening"
	ShiftNight   = "night"
)

// NormalizeRole canonicalizes a backend-supplied role string. Role values
// arrive as free-form strings and must be matched case-insensitively;
// normalization happens here exactly once, never at check sites.
// Unknown roles pass through unchanged and resolve fail-closed in the catalog.
func NormalizeRole(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// NormalizeShift maps a shift string onto the closed shift enumeration.
// An unrecognized value normalizes to empty (no shift).
func NormalizeShift(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ShiftDay, "morning":
		return ShiftDay
	case ShiftEvening, "afternoon":
		return ShiftEvening
	case ShiftNight:
		return ShiftNight
	default:
		return ""
	}
}

// IsShiftScopedRole reports whether a role is restricted to its assigned
// duty shift. Only nurses and midwives carry a shift.
func IsShiftScopedRole(role string) bool {
	return role == RoleNurse || role == RoleMidwife
}

func IsSystemAdmin(role string) bool { return role == RoleSystemAdmin }
