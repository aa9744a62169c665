package httpapi

import (
	"net/http"
	"time"

	"maternity-platform/internal/audit"
	"maternity-platform/internal/reporting"

	"github.com/gin-gonic/gin"
)

// timeRangeFromQuery parses from/to query params (RFC 3339).
func timeRangeFromQuery(c *gin.Context) (reporting.TimeRange, bool) {
	from, err1 := time.Parse(time.RFC3339, c.Query("from"))
	to, err2 := time.Parse(time.RFC3339, c.Query("to"))
	if err1 != nil || err2 != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from and to must be RFC 3339 timestamps"})
		return reporting.TimeRange{}, false
	}
	return reporting.TimeRange{From: from, To: to}, true
}

func (h Handlers) HandleBirthsSummary(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	r, ok := timeRangeFromQuery(c)
	if !ok {
		return
	}
	out, err := h.Reports.BirthsSummary(c.Request.Context(), sub, reporting.BirthsSummaryRequest{
		Range: r,
		Shift: c.Query("shift"),
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) HandleDeathsSummary(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	r, ok := timeRangeFromQuery(c)
	if !ok {
		return
	}
	out, err := h.Reports.DeathsSummary(c.Request.Context(), sub, reporting.DeathsSummaryRequest{Range: r})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// HandleListAuditEvents serves the audit viewer. The route is gated on the
// view_audit_log capability; filters are optional.
func (h Handlers) HandleListAuditEvents(c *gin.Context) {
	f := audit.Filter{
		ActorUserID: c.Query("actor"),
		Action:      audit.Action(c.Query("action")),
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.From = t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.To = t
		}
	}

	evs, err := h.Audit.List(c.Request.Context(), f)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": evs})
}
