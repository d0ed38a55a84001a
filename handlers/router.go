package handlers

import (
	"net/http"

	"solar-prediction-api/config"
	"solar-prediction-api/generation"
	"solar-prediction-api/logger"
	"solar-prediction-api/middleware"
	"solar-prediction-api/report"
	"solar-prediction-api/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	CORS        config.CORSConfig
	Log         *logger.Logger
	Cache       *services.CacheService
	Auth        *services.AuthService
	Users       *services.UserService
	Predictions *services.PredictionService
	Exporter    *report.Exporter
	Generation  *generation.Reader
}

func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(d.Log), middleware.Metrics(), middleware.SetupCORS(d.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "UP",
			"message":         "Solar Prediction API is running",
			"model_available": d.Predictions.Estimator().Available(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMW := middleware.NewAuthMiddleware(d.Log, d.Auth, d.Users)
	authH := NewAuthHandler(d.Users, d.Auth, d.Log)
	predH := NewPredictionHandler(d.Predictions, d.Log)
	reportH := NewReportHandler(d.Exporter, d.Log)
	genH := NewGenerationHandler(d.Generation, d.Log)

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.Refresh)
	auth.GET("/verify", authH.Verify)
	auth.GET("/profile", authMW.RequireAuth(), authH.Profile)
	auth.POST("/logout", authMW.RequireAuth(), authH.Logout)

	api.GET("/solar/info", predH.Info)
	api.GET("/generation/today", genH.Today)

	protected := api.Group("", authMW.RequireAuth())
	protected.POST("/solar/predict", predH.Predict)
	protected.GET("/predictions", predH.List)
	protected.GET("/predictions/latest", predH.Latest)
	protected.GET("/predictions/stats", predH.Stats)
	protected.DELETE("/predictions/:id", predH.Delete)
	protected.GET("/recommendations", predH.Recommendations)
	protected.GET("/reports/export", reportH.Export)

	router.GET("/ws/predictions", authMW.RequireAuth(), LivePredictions(d.Cache, d.Log))

	return router
}
