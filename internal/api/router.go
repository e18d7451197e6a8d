package api

import (
	"github.com/gin-gonic/gin"

	"github.com/coachdesk/teamtrainer/internal/api/handlers"
	"github.com/coachdesk/teamtrainer/internal/api/middleware"
	"github.com/coachdesk/teamtrainer/internal/services"
	"github.com/coachdesk/teamtrainer/pkg/config"
	"github.com/coachdesk/teamtrainer/pkg/database"
)

// SetupRoutes configures all API routes on the given router group.
// Reads are public; mutating routes require a valid token.
func SetupRoutes(group *gin.RouterGroup, db *database.DB, analyticsService *services.AnalyticsService, exportService *services.ExportService, hub *services.Hub, cfg *config.Config) {
	athleteHandler := handlers.NewAthleteHandler(db)
	catalogHandler := handlers.NewCatalogHandler(db)
	trainingHandler := handlers.NewTrainingHandler(db, analyticsService, hub)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, cfg.TrendDefaultWindow, cfg.TrendMaxWindow)
	exportHandler := handlers.NewExportHandler(exportService)

	// Roster
	group.GET("/athletes", athleteHandler.ListAthletes)
	group.GET("/athletes/:id", athleteHandler.GetAthlete)

	// Drill catalog
	group.GET("/drill-catalog", catalogHandler.ListDrills)
	group.GET("/drill-catalog/:id", catalogHandler.GetDrill)

	// Training sessions and analytics. The static overview/evolution
	// routes must be registered on the same group as /trainings/:id;
	// gin resolves the static segment first.
	group.GET("/trainings", trainingHandler.ListTrainings)
	group.GET("/trainings/overview", analyticsHandler.GetOverview)
	group.GET("/trainings/evolution", analyticsHandler.GetEvolution)
	group.GET("/trainings/:id", trainingHandler.GetTraining)
	group.GET("/trainings/:id/ranking", analyticsHandler.GetRanking)
	group.GET("/trainings/:id/analytics", analyticsHandler.GetAnalytics)
	group.GET("/trainings/:id/dashboard", analyticsHandler.GetDashboard)

	// Export, throttled per client
	exportGroup := group.Group("/trainings/:id/export")
	exportGroup.Use(middleware.RateLimit(cfg.ExportRateLimit, cfg.ExportBurst))
	{
		exportGroup.GET("/csv", exportHandler.ExportTrainingCSV)
	}

	// Mutating routes
	auth := group.Group("")
	auth.Use(middleware.AuthRequired(cfg.JWTSecret))
	{
		auth.POST("/athletes", athleteHandler.CreateAthlete)
		auth.PUT("/athletes/:id", athleteHandler.UpdateAthlete)
		auth.DELETE("/athletes/:id", athleteHandler.DeleteAthlete)

		auth.POST("/drill-catalog", catalogHandler.CreateDrill)
		auth.PUT("/drill-catalog/:id", catalogHandler.UpdateDrill)
		auth.DELETE("/drill-catalog/:id", catalogHandler.DeleteDrill)

		auth.POST("/trainings", trainingHandler.CreateTraining)
		auth.PUT("/trainings/:id", trainingHandler.UpdateTraining)
		auth.DELETE("/trainings/:id", trainingHandler.DeleteTraining)
		auth.POST("/trainings/:id/attendance/bulk", trainingHandler.BulkAttendance)
		auth.POST("/trainings/:id/drills/bulk", trainingHandler.BulkDrills)
		auth.POST("/trainings/:id/scores/bulk", trainingHandler.BulkScores)
	}
}
