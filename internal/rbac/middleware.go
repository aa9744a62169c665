package rbac

import (
	"context"
	"net/http"

	"maternity-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

// DenialRecorder receives access_denied events. Implemented by the audit
// service through a small adapter in wiring so the policy layer never
// depends on audit storage.
type DenialRecorder interface {
	RecordDenial(ctx context.Context, sub Subject, detail, ip string)
}

// Requirement is a route's declared access rule. Roles and Capability are
// AND'ed when both are set; a route may legitimately require a generic
// capability, not just a role list.
type Requirement struct {
	Roles      []string
	Capability Capability
}

// Guard gates routes on policy engine decisions.
//
// Outcomes:
// - no authenticated subject in context -> 401
// - subject fails role list or capability check -> 403, plus exactly one
//   access_denied audit event
//
// Guards never consult record state; record-level checks (shift scope,
// edit window) belong to the services that fetched the record.
type Guard struct {
	engine  *Engine
	denials DenialRecorder
}

func NewGuard(engine *Engine, denials DenialRecorder) *Guard {
	return &Guard{engine: engine, denials: denials}
}

// Require enforces a full route requirement.
func (g *Guard) Require(req Requirement) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(req.Roles))
	for _, r := range req.Roles {
		allowed[NormalizeRole(r)] = struct{}{}
	}

	return func(c *gin.Context) {
		sub, ok := g.subject(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		if len(allowed) > 0 {
			if _, ok := allowed[sub.Role]; !ok {
				g.deny(c, sub, "role not permitted for route")
				return
			}
		}
		if req.Capability != "" && !g.engine.Capable(sub, req.Capability) {
			g.deny(c, sub, "capability not granted: "+string(req.Capability))
			return
		}
		c.Next()
	}
}

// RequireAnyRole allows access if the caller holds any of the given roles.
func (g *Guard) RequireAnyRole(roles ...string) gin.HandlerFunc {
	return g.Require(Requirement{Roles: roles})
}

// RequireCapability allows access if the caller's role grants the capability.
func (g *Guard) RequireCapability(cap Capability) gin.HandlerFunc {
	return g.Require(Requirement{Capability: cap})
}

// SubjectFromContext rebuilds the policy subject from authenticated request
// context. Handlers use this after the guard has run.
func SubjectFromContext(ctx context.Context) (Subject, error) {
	id, err := auth.UserID(ctx)
	if err != nil {
		return Subject{}, err
	}
	role, err := auth.Role(ctx)
	if err != nil {
		return Subject{}, err
	}
	shift, _ := auth.Shift(ctx)
	return NewSubject(id, role, shift)
}

func (g *Guard) subject(c *gin.Context) (Subject, bool) {
	sub, err := SubjectFromContext(c.Request.Context())
	if err != nil {
		return Subject{}, false
	}
	return sub, true
}

func (g *Guard) deny(c *gin.Context, sub Subject, detail string) {
	if g.denials != nil {
		g.denials.RecordDenial(c.Request.Context(), sub, detail, c.ClientIP())
	}
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
}
