package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alims/leadcrm/internal/middleware"
)

// RegisterRoutes mounts the full API surface onto the engine
func RegisterRoutes(r *gin.Engine, h *Handlers, jwtSecret string) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Format(time.RFC3339)})
	})

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	authed := api.Group("")
	authed.Use(middleware.JWTAuth(jwtSecret))
	{
		authed.GET("/auth/me", h.Auth.Me)
		authed.GET("/counsellors", h.Auth.ListCounsellors)
		authed.GET("/dashboard", h.Dashboard.Get)

		customers := authed.Group("/customers")
		{
			customers.GET("", h.Customer.List)
			customers.POST("", h.Customer.Create)
			customers.GET("/export", h.Customer.Export)
			customers.GET("/unassigned", middleware.RequireManager(), h.Customer.ListUnassigned)
			customers.POST("/bulk-assign", middleware.RequireManager(), h.Customer.BulkAssign)
			customers.POST("/random-assign", middleware.RequireManager(), h.Customer.RandomAssign)
			customers.GET("/:id", h.Customer.Get)
			customers.PUT("/:id", h.Customer.Update)
			customers.DELETE("/:id", middleware.RequireManager(), h.Customer.Delete)
			customers.POST("/:id/status", h.Customer.ChangeStatus)
			customers.GET("/:id/history", h.Customer.History)
			customers.POST("/:id/assign", middleware.RequireManager(), h.Customer.Assign)
			customers.GET("/:id/notes", h.Note.List)
			customers.POST("/:id/notes", h.Note.Create)
		}

		notes := authed.Group("/notes")
		{
			notes.PUT("/:id", h.Note.Update)
			notes.DELETE("/:id", h.Note.Delete)
		}

		fields := authed.Group("/fields")
		{
			fields.GET("", h.Field.List)
			fields.POST("", middleware.RequireManager(), h.Field.Create)
			fields.GET("/:id", h.Field.Get)
			fields.PUT("/:id", middleware.RequireManager(), h.Field.Update)
			fields.DELETE("/:id", middleware.RequireManager(), h.Field.Deactivate)
		}

		mappings := authed.Group("/mappings")
		{
			mappings.GET("", h.Mapping.List)
			mappings.POST("", h.Mapping.Create)
			mappings.POST("/detect-headers", h.Mapping.DetectHeaders)
			mappings.GET("/:id", h.Mapping.Get)
			mappings.PUT("/:id", h.Mapping.Update)
			mappings.POST("/:id/default", h.Mapping.SetDefault)
			mappings.DELETE("/:id", h.Mapping.Delete)
		}

		imports := authed.Group("/imports")
		imports.Use(middleware.RequireManager())
		{
			imports.GET("", h.Import.List)
			imports.POST("", h.Import.Run)
			imports.GET("/:id", h.Import.Get)
			imports.GET("/:id/file", h.Import.FileURL)
		}

		tasks := authed.Group("/tasks")
		{
			tasks.GET("", h.Task.List)
			tasks.POST("", h.Task.Create)
			tasks.GET("/counts", h.Task.Counts)
			tasks.GET("/:id", h.Task.Get)
			tasks.PUT("/:id", h.Task.Update)
			tasks.DELETE("/:id", h.Task.Delete)
			tasks.POST("/:id/complete", h.Task.Complete)
			tasks.GET("/:id/comments", h.Task.ListComments)
			tasks.POST("/:id/comments", h.Task.AddComment)
		}
	}
}
