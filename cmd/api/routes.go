package main

import (
	"maternity-platform/internal/httpapi"
	"maternity-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal
// modules; guards enforce role/capability rules, services enforce
// record-level rules (shift scope, edit window).
func registerRoutes(r *gin.Engine, h httpapi.Handlers, guard *rbac.Guard, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")

	// AUTH routes. Login and refresh are the only unauthenticated endpoints.
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", h.HandleLogin)
		authGroup.POST("/refresh", h.HandleRefresh)
		authGroup.POST("/logout", authMW, h.HandleLogout)
	}

	protected := v1.Group("")
	protected.Use(authMW)
	{
		protected.GET("/me", h.HandleMe)

		// PATIENT routes (demographics)
		patients := protected.Group("/patients")
		{
			patients.GET("", guard.RequireCapability(rbac.CapViewDemographics), h.HandleListPatients)
			patients.GET("/:id", guard.RequireCapability(rbac.CapViewDemographics), h.HandleGetPatient)
			patients.POST("", guard.RequireCapability(rbac.CapCreatePatient), h.HandleAdmitPatient)
			patients.PATCH("/:id", guard.RequireCapability(rbac.CapEditDemographics), h.HandleUpdatePatient)
		}

		// BIRTH RECORD routes. Shift scope and the edit window are enforced
		// inside the birth service against the stored record.
		births := protected.Group("/births")
		births.Use(guard.RequireCapability(rbac.CapViewClinicalData))
		{
			births.GET("", h.HandleListBirths)
			births.GET("/:id", h.HandleGetBirth)
			births.GET("/:id/state", h.HandleBirthState)
			births.POST("", guard.RequireCapability(rbac.CapCreateBirthRecord), h.HandleRegisterBirth)
			births.PATCH("/:id", guard.RequireCapability(rbac.CapEditBirthRecord), h.HandleEditBirth)
			births.PUT("/:id/epicrisis", guard.RequireAnyRole(rbac.RolePhysician), h.HandleUpdateEpicrisis)

			// Corrections are append-only; there is no update or delete.
			births.GET("/:id/corrections", guard.RequireCapability(rbac.CapViewClinicalHistory), h.HandleListCorrections)
			births.POST("/:id/corrections", guard.RequireCapability(rbac.CapAppendCorrection), h.HandleAppendCorrection)
		}

		// DEATH routes
		deaths := protected.Group("/deaths")
		{
			deaths.GET("", guard.RequireCapability(rbac.CapViewClinicalData), h.HandleListDeaths)
			deaths.POST("", guard.RequireCapability(rbac.CapRegisterDeath), h.HandleRegisterDeath)
		}

		// REPORT routes
		reports := protected.Group("/reports")
		reports.Use(guard.RequireCapability(rbac.CapGenerateReports))
		{
			reports.GET("/births", h.HandleBirthsSummary)
			reports.GET("/deaths", h.HandleDeathsSummary)
		}

		// ADMIN routes: account management and the audit viewer.
		admin := protected.Group("/admin")
		admin.Use(guard.RequireAnyRole(rbac.RoleSystemAdmin))
		{
			admin.GET("/users", h.HandleListUsers)
			admin.GET("/users/:id", h.HandleGetUser)
			admin.POST("/users", h.HandleCreateUser)
			admin.PATCH("/users/:id", h.HandleUpdateUser)
			admin.POST("/users/:id/deactivate", h.HandleDeactivateUser)

			admin.GET("/audit", guard.RequireCapability(rbac.CapViewAuditLog), h.HandleListAuditEvents)
		}
	}
}
