package rbac

// Engine evaluates whether a subject may perform a capability, optionally
// against a specific record.
//
// Return decisions only. No side effects (no DB reads, no audit writes);
// callers own auditing. Capability lookup and shift scoping are orthogonal
// predicates combined by Authorize, so adding a role touches the catalog
// and nothing else.
type Engine struct {
	catalog Catalog
}

func NewEngine(catalog Catalog) *Engine {
	if catalog == nil {
		catalog = Catalog{}
	}
	return &Engine{catalog: catalog}
}

// RecordRef carries the record attributes policy evaluation needs. Services
// build one from a fetched record; the engine never loads records itself.
type RecordRef struct {
	// Shift the record's mother is scoped to. Empty means the record has
	// not been assigned to a shift.
	Shift string
}

// Decision is the outcome of an authorization check. Denial is data, not an
// error; Reason is for logs and audit detail, never for end users.
type Decision struct {
	Allowed bool
	Reason  string
}

const (
	ReasonGranted            = "granted"
	ReasonCapabilityMissing  = "capability_not_granted"
	ReasonOutsideShiftScope  = "outside_shift_scope"
	ReasonUnassignedRecord   = "record_without_shift"
)

func Allow(reason string) Decision { return Decision{Allowed: true, Reason: reason} }
func Deny(reason string) Decision  { return Decision{Allowed: false, Reason: reason} }

// Capable answers the static question "may this role ever do this",
// ignoring any record context. Unknown roles and unknown capabilities are
// false.
func (e *Engine) Capable(sub Subject, cap Capability) bool {
	return e.catalog.Lookup(sub.Role).Has(cap)
}

// InShiftScope reports whether the subject may see the given record under
// shift scoping. Roles without the shift_scoped capability see everything.
// A record with no shift is visible to all; see DESIGN.md for the product
// decision behind that.
func (e *Engine) InShiftScope(sub Subject, rec RecordRef) bool {
	if !e.Capable(sub, CapShiftScoped) {
		return true
	}
	if rec.Shift == "" {
		return true
	}
	return sub.Shift == rec.Shift
}

// Authorize combines the capability check with shift scoping when a record
// is supplied. It never returns an error for a normal denial.
func (e *Engine) Authorize(sub Subject, cap Capability, rec *RecordRef) Decision {
	if !e.Capable(sub, cap) {
		return Deny(ReasonCapabilityMissing)
	}
	if rec != nil {
		if !e.InShiftScope(sub, *rec) {
			return Deny(ReasonOutsideShiftScope)
		}
		if rec.Shift == "" && e.Capable(sub, CapShiftScoped) {
			return Allow(ReasonUnassignedRecord)
		}
	}
	return Allow(ReasonGranted)
}
