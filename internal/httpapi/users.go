package httpapi

import (
	"net/http"

	"maternity-platform/internal/users"

	"github.com/gin-gonic/gin"
)

func (h Handlers) HandleCreateUser(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	var in users.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := h.Users.Create(c.Request.Context(), sub, in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h Handlers) HandleListUsers(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	us, err := h.Users.List(c.Request.Context(), sub)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": us})
}

func (h Handlers) HandleGetUser(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	u, err := h.Users.Get(c.Request.Context(), sub, c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h Handlers) HandleUpdateUser(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	var in users.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := h.Users.Update(c.Request.Context(), sub, c.Param("id"), in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// HandleDeactivateUser disables an account. There is no DELETE route; audit
// history must always resolve its actors.
func (h Handlers) HandleDeactivateUser(c *gin.Context) {
	sub, ok := subject(c)
	if !ok {
		return
	}
	if err := h.Users.Deactivate(c.Request.Context(), sub, c.Param("id")); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}
