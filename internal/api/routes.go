package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"audti-backend-go/internal/core"
	"audti-backend-go/internal/middleware"
)

// Services bundles the services the handlers depend on.
type Services struct {
	Audits     core.AuditService
	Checklists core.ChecklistService
	Responses  core.ResponseService
	Users      core.UserService
	Activity   core.ActivityService
	Reports    core.ReportService
}

// SetupRoutes configures all the application routes with their handlers.
// Global middleware (logging, recovery, CORS, metrics) is expected to be
// applied to router before this is called.
func SetupRoutes(router *gin.Engine, logger *zap.Logger, authMW *middleware.AuthMiddleware, services Services) {
	userHandler := NewUserHandler(services.Users)
	auditHandler := NewAuditHandler(services.Audits, services.Responses, services.Reports)
	checklistHandler := NewChecklistHandler(services.Checklists)
	adminHandler := NewAdminHandler(services.Users, services.Activity)

	apiV1 := router.Group("/api/v1", authMW.VerifyToken())
	{
		users := apiV1.Group("/users")
		{
			users.POST("/initialize", userHandler.InitializeUserProfile)
			users.GET("/me", userHandler.GetCurrentUserProfile)
		}

		audits := apiV1.Group("/audits")
		{
			audits.GET("", auditHandler.ListAudits)
			audits.GET("/filters", auditHandler.FilterOptions)
			audits.POST("/reconcile", auditHandler.Reconcile)
			audits.POST("", auditHandler.CreateAudit)
			audits.GET("/:auditId", auditHandler.GetAudit)
			audits.PUT("/:auditId", auditHandler.UpdateAudit)
			audits.DELETE("/:auditId", auditHandler.DeleteAudit)
			audits.GET("/:auditId/form", auditHandler.GetForm)
			audits.GET("/:auditId/responses", auditHandler.ListResponses)
			audits.GET("/:auditId/report", auditHandler.GetReport)
		}

		apiV1.GET("/reports/overview", auditHandler.Overview)

		checklists := apiV1.Group("/checklists")
		{
			checklists.GET("", checklistHandler.ListItems)
			checklists.GET("/categories", checklistHandler.ListCategories)
			checklists.DELETE("/categories/:category", checklistHandler.DeleteCategory)
			checklists.GET("/export", checklistHandler.Export)
			checklists.POST("/import", checklistHandler.Import)
			checklists.POST("", checklistHandler.CreateItem)
			checklists.POST("/bulk", checklistHandler.CreateItems)
			checklists.GET("/:itemId", checklistHandler.GetItem)
			checklists.PUT("/:itemId", checklistHandler.UpdateItem)
			checklists.DELETE("/:itemId", checklistHandler.DeleteItem)
		}

		admin := apiV1.Group("/admin")
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.POST("/users", adminHandler.CreateUser)
			admin.GET("/users/:userId", adminHandler.GetUser)
			admin.PUT("/users/:userId", adminHandler.UpdateUser)
			admin.DELETE("/users/:userId", adminHandler.DeleteUser)
			admin.POST("/users/:userId/reset-password", adminHandler.ResetPassword)
			admin.PATCH("/users/:userId/status", adminHandler.SetUserStatus)
			admin.GET("/activity-logs", adminHandler.ListActivityLogs)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Audti backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
