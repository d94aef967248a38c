package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter builds the gin engine with recovery, request logging and CORS.
func NewRouter(handler *Handler, allowedOrigins []string, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger), cors.New(corsConfig(allowedOrigins)))
	SetupRoutes(router, handler)
	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = allowedOrigins
	return cfg
}

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/health", handler.Health)
	}

	biGroup := api.Group("/bi")
	{
		biGroup.GET("/dashboard-data", handler.DashboardData)
		biGroup.POST("/predict-price", handler.PredictPrice)
		biGroup.POST("/score-leads", handler.ScoreLeads)
		biGroup.POST("/insights", handler.Insights)
		biGroup.GET("/market-coverage", handler.MarketCoverage)
	}

	admin := api.Group("/admin")
	{
		admin.POST("/seed", handler.Seed)
		admin.GET("/records", handler.Records)
		admin.POST("/refresh", handler.Refresh)
	}
}
