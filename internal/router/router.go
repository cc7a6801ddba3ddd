package router

import (
	"net/http"
	"time"

	"estatelist/backend/internal/auth"
	"estatelist/backend/internal/database"
	"estatelist/backend/internal/handlers"
	appmiddleware "estatelist/backend/internal/middleware"
	appconfig "estatelist/backend/pkg/config"
	applog "estatelist/backend/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SetupRouter wires the HTTP surface around the injected handlers.
func SetupRouter(log *zap.Logger, propertyHandler *handlers.PropertyHandler, resetHandler *handlers.PasswordResetHandler) *gin.Engine {
	router := gin.New()

	router.Use(appmiddleware.Metrics())
	router.Use(appmiddleware.GinZap(log, time.RFC3339, true))
	router.Use(appmiddleware.GinRecovery(log, true))
	// Global limiter, mirroring the upstream 100-requests-per-15-minutes
	// window; login gets its own stricter bucket below.
	router.Use(appmiddleware.RateLimit(rate.Every(15*time.Minute/100), 100))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", healthCheckHandler)

	// Files written by the local storage provider are served statically.
	if appconfig.Cfg.StorageProvider == "local" {
		router.Static("/uploads", appconfig.Cfg.LocalUploadDir)
	}

	api := router.Group("/api")
	{
		api.POST("/register", handlers.RegisterHandler)
		api.POST("/login",
			appmiddleware.RateLimit(rate.Every(15*time.Minute/10), 10),
			handlers.LoginHandler)
		api.POST("/request-reset-password", resetHandler.RequestReset)
		api.POST("/reset-password-by-token", resetHandler.ResetByToken)

		api.GET("/properties", propertyHandler.List)
		api.GET("/properties/:id", propertyHandler.Get)

		protected := api.Group("")
		protected.Use(auth.AuthMiddleware())
		{
			protected.POST("/properties", propertyHandler.Create)
			protected.PUT("/properties/:id", propertyHandler.Update)
			protected.DELETE("/properties/:id", propertyHandler.Delete)

			protected.GET("/favorites/:userId", handlers.ListFavoritesHandler)
			protected.POST("/favorites", handlers.AddFavoriteHandler)
			protected.DELETE("/favorites", handlers.RemoveFavoriteHandler)
		}
	}

	return router
}

func healthCheckHandler(c *gin.Context) {
	sqlDB, err := database.DB.DB()
	if err != nil {
		applog.L.Error("Failed to get DB instance for health check", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "database instance error"})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		applog.L.Error("Database ping failed during health check", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "database ping failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "connected",
	})
}
