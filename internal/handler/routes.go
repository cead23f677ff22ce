package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler mounted by the API.
type Handlers struct {
	Queries     *QueryHandler
	Lifecycle   *LifecycleHandler
	Attachments *AttachmentHandler
	Metrics     *MetricsHandler
}

// Register mounts health and metrics endpoints at the root and the API under prefix.
func Register(r *gin.Engine, prefix string, h Handlers) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		r.GET("/metrics", h.Metrics.Prometheus)
		r.GET("/metrics/summary", h.Metrics.Summary)
	}

	api := r.Group(prefix)

	if h.Queries != nil {
		queries := api.Group("/queries")
		queries.POST("", h.Queries.Create)
		queries.GET("", h.Queries.List)
		queries.GET("/worker/:workerId", h.Queries.ListByWorker)
		queries.GET("/user/:userId", h.Queries.ListByRaiser)
		queries.GET("/:id", h.Queries.Get)
		queries.GET("/:id/attachments", h.Queries.Attachments)
	}

	if h.Lifecycle != nil {
		queries := api.Group("/queries")
		queries.PUT("/:id/assign", h.Lifecycle.Assign)
		queries.PUT("/:id/status", h.Lifecycle.UpdateStatus)
		queries.PUT("/:id/complete", h.Lifecycle.Complete)
		queries.GET("/:id/history", h.Lifecycle.History)
		queries.GET("/:id/history/latest", h.Lifecycle.LatestHistory)
		queries.GET("/:id/history/export", h.Lifecycle.ExportHistory)
		api.GET("/users/:id/status-history", h.Lifecycle.UserHistory)
	}

	if h.Attachments != nil {
		api.GET("/attachments/download", h.Attachments.Download)
	}
}
