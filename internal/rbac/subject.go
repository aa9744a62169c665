package rbac

import "errors"

// Subject is the acting principal a policy decision is evaluated against.
// It is a plain value threaded through function calls; policy code never
// reads ambient session state.
//
// Invariant: Shift is set if and only if the role is shift-scoped.
type Subject struct {
	Identity string
	Role     string
	Shift    string
}

var ErrInvalidSubject = errors.New("rbac: invalid subject")

// NewSubject builds a Subject from backend-supplied strings. Role and shift
// normalization (case, separators) happens here, once. A shift supplied for
// a non-shift-scoped role is discarded; a shift-scoped role without a shift
// is an error because every downstream scope check would be undefined.
func NewSubject(identity, rawRole, rawShift string) (Subject, error) {
	if identity == "" {
		return Subject{}, ErrInvalidSubject
	}
	role := NormalizeRole(rawRole)
	shift := NormalizeShift(rawShift)

	if IsShiftScopedRole(role) {
		if shift == "" {
			return Subject{}, ErrInvalidSubject
		}
	} else {
		shift = ""
	}
	return Subject{Identity: identity, Role: role, Shift: shift}, nil
}
