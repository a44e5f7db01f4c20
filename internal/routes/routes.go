package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"property-ingestion-backend/internal/cache"
	handler "property-ingestion-backend/internal/handlers"
	"property-ingestion-backend/internal/oracle"
	"property-ingestion-backend/internal/repository"
	service "property-ingestion-backend/internal/services/ingestion"
	"property-ingestion-backend/internal/storage"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, oracleClient oracle.Client, store storage.Store, c cache.Cache, logger *zap.Logger) {
	uploadRepo := repository.NewUploadRecordRepository(db)
	recordRepo := repository.NewRecordRepository(db)

	ingestionService := service.NewService(uploadRepo, recordRepo, oracleClient, store, c, logger)

	ingestionHandler := handler.NewIngestionHandler(ingestionService, logger)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Smart data ingestion routes
	ingestion := api.Group("/ingestion")
	ingestion.POST("/upload", ingestionHandler.Upload)
	ingestion.POST("/:uploadId/analyze", ingestionHandler.Analyze)
	ingestion.POST("/:uploadId/commit", ingestionHandler.Commit)
	ingestion.GET("/history", ingestionHandler.History)
}
