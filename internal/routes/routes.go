package routes

import (
	"github.com/gin-gonic/gin"

	"donorscan/internal/handlers"
	"donorscan/internal/hubspot"
	"donorscan/internal/pipeline"
	"donorscan/internal/store"
)

// RegisterRoutes wires the API surface onto the gin engine.
func RegisterRoutes(r *gin.Engine, st *store.Store, status *pipeline.StatusStore, runner *pipeline.Runner, crm *hubspot.Client, matcher *hubspot.Matcher, uploadDir string) {
	batchHandler := handlers.NewBatchHandler(st, status, runner, uploadDir)
	recordHandler := handlers.NewRecordHandler(st)
	contactHandler := handlers.NewContactHandler(matcher)
	submitHandler := handlers.NewSubmitHandler(st, crm)

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	batches := api.Group("/batches")
	batches.POST("", batchHandler.Upload)
	batches.GET("", batchHandler.List)
	batches.GET("/:id", batchHandler.Get)
	batches.GET("/:id/status", batchHandler.GetStatus)
	batches.DELETE("/:id", batchHandler.Delete)
	batches.POST("/:id/submit", submitHandler.Submit)

	records := api.Group("/records")
	records.GET("/:id", recordHandler.Get)
	records.PUT("/:id", recordHandler.Update)

	api.GET("/contacts/search", contactHandler.Search)
}
