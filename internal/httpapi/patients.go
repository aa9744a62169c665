package httpapi

import (
	"net/http"

	"maternity-platform/internal/patient"

	"github.com/gin-gonic/gin"
)

func (h Handlers) HandleAdmitPatient(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	var in patient.AdmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	m, err := h.Patients.Admit(c.Request.Context(), sub, in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h Handlers) HandleListPatients(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	ms, err := h.Patients.List(c.Request.Context(), sub)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patients": ms})
}

func (h Handlers) HandleGetPatient(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	m, err := h.Patients.Get(c.Request.Context(), sub, c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h Handlers) HandleUpdatePatient(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	var p patient.DemographicsPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	m, err := h.Patients.Update(c.Request.Context(), sub, c.Param("id"), p)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
