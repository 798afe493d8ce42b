package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ketan-bobby/skillpulse/internal/authz"
	"github.com/ketan-bobby/skillpulse/internal/config"
	"github.com/ketan-bobby/skillpulse/internal/repositories"
	"github.com/ketan-bobby/skillpulse/internal/services"
	"github.com/ketan-bobby/skillpulse/internal/utils"
	"github.com/ketan-bobby/skillpulse/internal/validator"
)

type HandlerManager struct {
	assignmentHandler *AssignmentHandler
	sessionHandler    *SessionHandler
	resultHandler     *ResultHandler
	reportHandler     *ReportHandler
	authMiddleware    *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		assignmentHandler: NewAssignmentHandler(serviceManager.Assignment(), validator, logger),
		sessionHandler:    NewSessionHandler(serviceManager.Session(), validator, logger),
		resultHandler:     NewResultHandler(serviceManager.Result(), validator, logger),
		reportHandler:     NewReportHandler(serviceManager.Report(), logger),
		authMiddleware:    authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Assignment routes. The route guard mirrors the capability matrix;
		// services re-check on every call, so the guard is the cheap first gate.
		assignments := v1.Group("/assignments")
		{
			assignments.POST("", hm.authMiddleware.RequireCapability(authz.CapAssignTest), hm.assignmentHandler.CreateAssignment)
			assignments.PUT("/:id/status", hm.authMiddleware.RequireCapability(authz.CapManageAssignment), hm.assignmentHandler.UpdateAssignmentStatus)
			assignments.PUT("/:id/visibility", hm.authMiddleware.RequireCapability(authz.CapManageAssignment), hm.assignmentHandler.SetResultsVisibility)

			// Listing is scoped inside the service: candidates see only
			// their own ledger rows.
			assignments.GET("", hm.assignmentHandler.ListAssignments)
			assignments.GET("/stats", hm.assignmentHandler.GetAssignmentStats)
			assignments.GET("/:id", hm.assignmentHandler.GetAssignment)
		}

		// Session routes - test takers only
		sessions := v1.Group("/sessions")
		{
			sessions.POST("/start", hm.authMiddleware.RequireCapability(authz.CapTakeTest), hm.sessionHandler.StartSession)
			sessions.POST("/submit", hm.authMiddleware.RequireCapability(authz.CapTakeTest), hm.sessionHandler.SubmitSession)
			sessions.POST("/:id/answer", hm.authMiddleware.RequireCapability(authz.CapTakeTest), hm.sessionHandler.SaveAnswer)
			sessions.POST("/:id/events", hm.authMiddleware.RequireCapability(authz.CapTakeTest), hm.sessionHandler.RecordProctoringEvent)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
		}

		// Result routes
		results := v1.Group("/results")
		{
			results.GET("", hm.resultHandler.ListResults)
			results.GET("/:id", hm.resultHandler.GetResult)
			results.GET("/:id/analysis", hm.resultHandler.GetAnalysis)
			results.GET("/person/:person_id", hm.resultHandler.GetPersonResults)
			results.POST("/recompute", hm.authMiddleware.RequireCapability(authz.CapRecomputeAnalysis), hm.resultHandler.RecomputeAnalysis)
		}

		// Report routes. The person report allows self-access, so the
		// capability check lives in the service.
		reports := v1.Group("/reports")
		{
			reports.GET("/person/:person_id", hm.reportHandler.GetPersonReport)
			reports.GET("/person/:person_id/export", hm.authMiddleware.RequireCapability(authz.CapExportReports), hm.reportHandler.ExportPersonReport)
			reports.GET("/domains", hm.authMiddleware.RequireCapability(authz.CapViewReports), hm.reportHandler.GetDomainReport)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "skillpulse",
		})
	})
}
