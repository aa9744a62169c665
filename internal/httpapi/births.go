package httpapi

import (
	"encoding/json"
	"net/http"

	"maternity-platform/internal/birth"

	"github.com/gin-gonic/gin"
)

func (h Handlers) HandleRegisterBirth(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	var in birth.NewRecordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	rec, err := h.Births.Register(c.Request.Context(), sub, in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h Handlers) HandleListBirths(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	recs, err := h.Births.List(c.Request.Context(), sub)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

func (h Handlers) HandleGetBirth(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	rec, err := h.Births.Get(c.Request.Context(), sub, c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HandleBirthState reports whether the record is editable, correction-only or
// locked for the caller, and how much of the edit window remains. Clients use
// it to decide which actions to offer.
func (h Handlers) HandleBirthState(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	st, err := h.Births.State(c.Request.Context(), sub, c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":             st.State,
		"remaining_minutes": int(st.Remaining.Minutes()),
	})
}

func (h Handlers) HandleEditBirth(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	var p birth.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	rec, err := h.Births.ApplyEdit(c.Request.Context(), sub, c.Param("id"), p)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h Handlers) HandleAppendCorrection(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	var in birth.CorrectionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	corr, err := h.Births.AppendCorrection(c.Request.Context(), sub, c.Param("id"), in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, corr)
}

func (h Handlers) HandleListCorrections(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	corrs, err := h.Births.Corrections(c.Request.Context(), sub, c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"corrections": corrs})
}

type epicrisisRequest struct {
	Data json.RawMessage `json:"data"`
}

func (h Handlers) HandleUpdateEpicrisis(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	var req epicrisisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	rec, err := h.Births.UpdateEpicrisis(c.Request.Context(), sub, c.Param("id"), req.Data)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h Handlers) HandleRegisterDeath(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	var in birth.DeathInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	d, err := h.Births.RegisterDeath(c.Request.Context(), sub, in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h Handlers) HandleListDeaths(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	ds, err := h.Births.ListDeaths(c.Request.Context(), sub)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deaths": ds})
}
