package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"discovery-api/controllers"
	"discovery-api/middleware"
)

// SetupRoutes mounts the health, metrics and /api routes. auth guards every
// route outside /api/auth's public endpoints.
func SetupRoutes(router *gin.Engine, h *controllers.Handler, auth gin.HandlerFunc) {
	controllers.RegisterValidators()

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Discovery API is running",
		})
	}
	router.GET("/health", health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		// Public routes
		api.GET("/health", health)

		public := api.Group("/auth")
		{
			public.POST("/login", h.Login)
			public.POST("/forgot-password", h.ForgotPassword)
			public.POST("/reset-password", h.ResetPassword)
		}

		// Protected routes (require authentication)
		protected := api.Group("")
		protected.Use(auth)
		{
			protected.GET("/auth/me", h.GetProfile)
			protected.PUT("/auth/change-password", h.ChangePassword)

			protected.GET("/dashboard/stats", h.DashboardStats)

			users := protected.Group("/users")
			{
				users.GET("", middleware.RequireCapability(middleware.CapViewUsers), h.ListUsers)
				users.POST("", middleware.RequireCapability(middleware.CapManageUsers), h.CreateUser)
				users.PUT("/:id", middleware.RequireCapability(middleware.CapManageUsers), h.UpdateUser)
				users.DELETE("/:id", middleware.RequireCapability(middleware.CapManageUsers), h.DeleteUser)
			}

			projects := protected.Group("/projects")
			{
				projects.GET("", h.ListProjects)
				projects.GET("/:id", h.GetProject)
				projects.POST("", middleware.RequireCapability(middleware.CapManageProjects), h.CreateProject)
				projects.PUT("/:id", middleware.RequireCapability(middleware.CapManageProjects), h.UpdateProject)
				projects.DELETE("/:id", middleware.RequireCapability(middleware.CapManageProjects), h.DeleteProject)
			}

			deliverables := protected.Group("/deliverables")
			{
				deliverables.GET("", h.ListDeliverables)
				deliverables.POST("", middleware.RequireCapability(middleware.CapManageDeliverables), h.CreateDeliverable)
				deliverables.PUT("/:id", middleware.RequireCapability(middleware.CapManageDeliverables), h.UpdateDeliverable)
				deliverables.DELETE("/:id", middleware.RequireCapability(middleware.CapManageDeliverables), h.DeleteDeliverable)
				deliverables.POST("/:id/upload", middleware.RequireCapability(middleware.CapUploadDeliverables), h.UploadDeliverable)
				deliverables.GET("/:id/file", h.DownloadDeliverableFile)
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.ListNotifications)
				notifications.GET("/unread-count", h.UnreadNotificationCount)
				notifications.PUT("/read-all", h.MarkAllNotificationsRead)
				notifications.PUT("/:id/read", h.MarkNotificationRead)
				notifications.DELETE("/:id", h.DeleteNotification)
				notifications.POST("", middleware.RequireCapability(middleware.CapBroadcast), h.BroadcastNotification)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})
}
