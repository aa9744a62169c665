package httpapi

import (
	"context"
	"errors"
	"net/http"

	"maternity-platform/internal/audit"
	"maternity-platform/internal/birth"
	"maternity-platform/internal/patient"
	"maternity-platform/internal/rbac"
	"maternity-platform/internal/reporting"
	"maternity-platform/internal/users"
	"maternity-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// writeErr maps service errors onto HTTP statuses.
//
// Policy violations are requests no compliant client sends (an edit after the
// window closed, a correction by the wrong role); they are logged at warning
// level because they indicate a broken or hostile client, not a user mistake.
func writeErr(c *gin.Context, err error) {
	var (
		birthVal   *birth.ValidationError
		patientVal *patient.ValidationError
		usersVal   *users.ValidationError
	)

	switch {
	case errors.Is(err, birth.ErrNotFound),
		errors.Is(err, patient.ErrNotFound),
		errors.Is(err, users.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})

	case errors.Is(err, birth.ErrDenied),
		errors.Is(err, patient.ErrDenied),
		errors.Is(err, users.ErrDenied),
		errors.Is(err, reporting.ErrDenied):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})

	case errors.Is(err, birth.ErrPolicyViolation):
		logger.From(c.Request.Context()).Warn("policy violation",
			"path", c.FullPath(), "ip", c.ClientIP())
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "operation not permitted in current record state"})

	case errors.As(err, &birthVal):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": birthVal.Reason, "field": birthVal.Field})

	case errors.As(err, &patientVal):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": patientVal.Reason, "field": patientVal.Field})

	case errors.As(err, &usersVal):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": usersVal.Reason, "field": usersVal.Field})

	case errors.Is(err, patient.ErrDuplicateNationalID),
		errors.Is(err, users.ErrDuplicateUsername):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, reporting.ErrInvalidRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})

	default:
		logger.From(c.Request.Context()).Error("request failed",
			"path", c.FullPath(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// subject rebuilds the policy subject; the auth middleware guarantees the
// identity keys exist on protected routes.
func subject(c *gin.Context) (rbac.Subject, bool) {
	sub, err := rbac.SubjectFromContext(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return rbac.Subject{}, false
	}
	return sub, true
}

// AuditDenials adapts the audit service to the policy guard's recorder
// interface.
type AuditDenials struct {
	Audit *audit.Service
}

func (a AuditDenials) RecordDenial(ctx context.Context, sub rbac.Subject, detail, ip string) {
	if a.Audit == nil {
		return
	}
	_ = a.Audit.RecordDenied(ctx, sub.Identity, sub.Role, ip, detail)
}
