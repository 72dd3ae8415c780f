package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/onurcolak/contact-dispatch-service/handlers"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	jobHandler *handlers.JobHandler,
	schedulerHandler *handlers.SchedulerHandler,
	metricsHandler http.Handler,
) {
	e.GET("/health", healthHandler.Health)
	e.GET("/metrics", echo.WrapHandler(metricsHandler))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 base group
	v1 := e.Group("/api/v1")

	v1.POST("/contacts/parse", jobHandler.ParseContacts)

	jobs := v1.Group("/jobs")

	jobs.GET("", jobHandler.ListJobs)
	jobs.POST("", jobHandler.CreateJob)
	jobs.POST("/upload", jobHandler.UploadJob)
	jobs.POST("/preview", jobHandler.PreviewJob)
	jobs.GET("/cached", jobHandler.GetCachedJobs)
	jobs.GET("/:id", jobHandler.GetJob)
	jobs.GET("/:id/logs", jobHandler.GetJobLogs)
	jobs.GET("/:id/messages", jobHandler.GetJobMessages)
	jobs.POST("/:id/cancel", jobHandler.CancelJob)

	v1.GET("/messages/stats", jobHandler.GetStats)

	v1.GET("/scheduler/status", schedulerHandler.GetSchedulerStatus)
}
