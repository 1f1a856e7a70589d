package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "surveylens/internal/app"
	"surveylens/internal/bootstrap"
	"surveylens/internal/cache"
	"surveylens/internal/platform/rabbitmq"
	"surveylens/internal/repository"
	"surveylens/internal/transport/http/handler"
	"surveylens/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	uploadRepo := repository.NewUploadRepository(app.MySQL)
	analysisRepo := repository.NewAnalysisRepository(app.MySQL)

	plotCache := cache.NewPlotCache(app.Redis, time.Duration(app.Config.Redis.PlotCacheTTLSecond)*time.Second)
	cleanupPublisher := rabbitmq.NewCleanupPublisher(app.MQConn, app.Config.RabbitMQ.CleanupQueue)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	uploadService := appsvc.NewUploadService(uploadRepo, app.Store, cleanupPublisher)
	plotService := appsvc.NewPlotService(uploadRepo, app.Store, plotCache)
	analysisService := appsvc.NewAnalysisService(analysisRepo)

	authHandler := handler.NewAuthHandler(authService)
	uploadHandler := handler.NewUploadHandler(uploadService, app.Config.MaxUploadBytes())
	plotHandler := handler.NewPlotHandler(plotService)
	analysisHandler := handler.NewAnalysisHandler(analysisService)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	dataGroup := v1.Group("/data")
	dataGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	dataGroup.POST("/csv-uploads", uploadHandler.Upload)
	dataGroup.GET("/csv-uploads", uploadHandler.List)
	dataGroup.DELETE("/csv-uploads/:id", uploadHandler.Delete)
	dataGroup.POST("/plot-data", plotHandler.PlotData)
	dataGroup.POST("/groupby", plotHandler.GroupBy)
	dataGroup.POST("/analyses", analysisHandler.Save)
	dataGroup.GET("/analyses", analysisHandler.List)
	dataGroup.GET("/analyses/:id", analysisHandler.Get)
	dataGroup.PUT("/analyses/:id", analysisHandler.Update)
	dataGroup.DELETE("/analyses/:id", analysisHandler.Delete)
	dataGroup.POST("/publish-analysis", analysisHandler.Publish)

	return router
}
