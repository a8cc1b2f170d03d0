package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ar3/our-gruuv-sub014/internal/handlers"
	"github.com/ar3/our-gruuv-sub014/internal/middleware"
)

type RouterConfig struct {
	IdentityMiddleware  *middleware.IdentityMiddleware
	CheckInHandler      *handlers.CheckInHandler
	FinalizationHandler *handlers.FinalizationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.IdentityMiddleware.RequireIdentity())

	// Check-ins
	protected.GET("/teammates/:teammateID/check-ins", cfg.CheckInHandler.GetCheckInSet)
	protected.GET("/teammates/:teammateID/check-ins/subjects", cfg.CheckInHandler.ListAssignmentSubjects)
	protected.PUT("/teammates/:teammateID/check-ins/position", cfg.CheckInHandler.SavePositionCheckIn)
	protected.PUT("/teammates/:teammateID/check-ins/assignments/:assignmentID", cfg.CheckInHandler.SaveAssignmentCheckIn)
	protected.PUT("/teammates/:teammateID/check-ins/aspirations/:aspirationID", cfg.CheckInHandler.SaveAspirationCheckIn)
	protected.GET("/organizations/:organizationID/aspirations", cfg.CheckInHandler.ListAspirations)

	// Finalization
	protected.GET("/teammates/:teammateID/finalization", cfg.FinalizationHandler.GetOverview)
	protected.POST("/teammates/:teammateID/finalization", cfg.FinalizationHandler.Finalize)
	protected.POST("/snapshots/:snapshotID/acknowledge", cfg.FinalizationHandler.Acknowledge)

	return router
}
