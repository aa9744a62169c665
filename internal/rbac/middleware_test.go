package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"maternity-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

type denialSink struct {
	mu      sync.Mutex
	denials []string
}

func (d *denialSink) RecordDenial(ctx context.Context, sub Subject, detail, ip string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.denials = append(d.denials, sub.Role+": "+detail)
}

func identityMW(userID, role, shift string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := auth.WithIdentity(c.Request.Context(), userID, role, shift)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func TestGuard_UnauthenticatedGets401(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := NewGuard(NewEngine(DefaultCatalog()), nil)

	r := gin.New()
	r.GET("/x", g.RequireAnyRole(RoleSystemAdmin), func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != 401 {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestGuard_RoleDenialAuditsExactlyOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sink := &denialSink{}
	g := NewGuard(NewEngine(DefaultCatalog()), sink)

	r := gin.New()
	r.GET("/admin", identityMW("doc-1", "Physician", ""), g.RequireAnyRole(RoleSystemAdmin), func(c *gin.Context) {
		c.Status(200)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if w.Code != 403 {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if len(sink.denials) != 1 {
		t.Fatalf("expected exactly one access_denied event, got %d", len(sink.denials))
	}
}

func TestGuard_RoleAndCapabilityAreANDed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sink := &denialSink{}
	g := NewGuard(NewEngine(DefaultCatalog()), sink)

	// Midwife passes the role list but lacks the reports capability.
	req := Requirement{
		Roles:      []string{RoleMidwife, RolePhysician},
		Capability: CapGenerateReports,
	}

	r := gin.New()
	r.GET("/reports", identityMW("mid-1", RoleMidwife, ShiftDay), g.Require(req), func(c *gin.Context) {
		c.Status(200)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports", nil))
	if w.Code != 403 {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestGuard_CapabilityAllows(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := NewGuard(NewEngine(DefaultCatalog()), nil)

	r := gin.New()
	r.GET("/reports", identityMW("doc-1", RolePhysician, ""), g.RequireCapability(CapGenerateReports), func(c *gin.Context) {
		c.Status(200)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
