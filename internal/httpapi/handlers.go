package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"maternity-platform/internal/audit"
	"maternity-platform/internal/auth"
	"maternity-platform/internal/birth"
	"maternity-platform/internal/config"
	"maternity-platform/internal/patient"
	"maternity-platform/internal/rbac"
	"maternity-platform/internal/reporting"
	"maternity-platform/internal/users"
	"maternity-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth     *auth.Manager
	Revoker  *auth.Revoker
	Users    *users.Service
	Patients *patient.Service
	Births   *birth.Service
	Reports  *reporting.Service
	Audit    *audit.Service
	Redis    *redis.Client
	Login    config.LoginConfig
}

/* ===================== AUTH ===================== */

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Shift is the ward shift selected at login. Required for nurses and
	// midwives; ignored for everyone else.
	Shift string `json:"shift,omitempty"`
}

const loginAttemptPrefix = "login:attempts:"

// HandleLogin validates credentials, binds the session to a shift for
// shift-scoped roles, and issues a token pair.
func (h Handlers) HandleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	ctx := c.Request.Context()

	if h.Redis != nil {
		ok, err := utils.AllowAttempt(ctx, h.Redis, loginAttemptPrefix+username, h.Login.MaxAttempts, h.Login.AttemptWindow)
		// A throttle backend error never locks the ward out of the system.
		if err == nil && !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, try again later"})
			return
		}
	}

	u, err := h.Users.Authenticate(ctx, username, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) || errors.Is(err, users.ErrInactive) {
			_ = h.Audit.RecordDenied(ctx, username, "", c.ClientIP(), "login failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		writeErr(c, err)
		return
	}

	shift := rbac.NormalizeShift(req.Shift)
	if shift == "" {
		shift = u.Shift
	}
	sub, err := rbac.NewSubject(u.ID, u.Role, shift)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "shift required for this role"})
		return
	}

	if h.Redis != nil {
		_ = utils.ClearAttempts(ctx, h.Redis, loginAttemptPrefix+username)
	}

	pair, err := h.Auth.IssuePair(time.Now(), u.ID, sub.Role, sub.Shift)
	if err != nil {
		writeErr(c, err)
		return
	}

	_ = h.Audit.Record(ctx, audit.ActionLogin, u.ID, sub.Role, "users", u.ID, "")
	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user": gin.H{
			"id":        u.ID,
			"username":  u.Username,
			"full_name": u.FullName,
			"role":      sub.Role,
			"shift":     sub.Shift,
		},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	// Shift re-asserts the session shift; defaults to the account's stored
	// shift when omitted.
	Shift string `json:"shift,omitempty"`
}

// HandleRefresh rotates a refresh token into a new pair. Role and shift are
// re-resolved from the user store, so role changes and deactivation take
// effect at the next refresh at the latest.
func (h Handlers) HandleRefresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "refresh_token required"})
		return
	}

	ctx := c.Request.Context()
	claims, err := h.Auth.Verify(req.RefreshToken, auth.TokenTypeRefresh, time.Now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if revoked, err := h.Revoker.IsRevoked(ctx, claims.ID); err == nil && revoked {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session ended"})
		return
	}

	u, err := h.Users.ResolveAccount(ctx, claims.UserID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session ended"})
		return
	}

	shift := rbac.NormalizeShift(req.Shift)
	if shift == "" {
		shift = u.Shift
	}
	sub, err := rbac.NewSubject(u.ID, u.Role, shift)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "shift required for this role"})
		return
	}

	pair, err := h.Auth.IssuePair(time.Now(), u.ID, sub.Role, sub.Shift)
	if err != nil {
		writeErr(c, err)
		return
	}

	// Rotate: the used refresh token is dead from here on.
	_ = h.Revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)

	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// HandleLogout revokes the current access token and, when supplied, the
// session's refresh token.
func (h Handlers) HandleLogout(c *gin.Context) {
	ctx := c.Request.Context()

	jti := c.GetString("token_id")
	if exp, ok := c.Get("token_expires_at"); ok {
		if t, ok := exp.(time.Time); ok && jti != "" {
			_ = h.Revoker.Revoke(ctx, jti, t)
		}
	}

	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		if claims, err := h.Auth.Verify(req.RefreshToken, auth.TokenTypeRefresh, time.Now()); err == nil {
			_ = h.Revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
		}
	}

	uid, _ := auth.UserID(ctx)
	role, _ := auth.Role(ctx)
	_ = h.Audit.Record(ctx, audit.ActionLogout, uid, role, "users", uid, "")

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleMe reports the session identity as the policy layer sees it.
func (h Handlers) HandleMe(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id": sub.Identity,
		"role":    sub.Role,
		"shift":   sub.Shift,
	})
}
