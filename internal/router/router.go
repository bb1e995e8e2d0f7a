package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/emotionlab/server/docs"
	"github.com/emotionlab/server/internal/config"
	"github.com/emotionlab/server/internal/middleware"
	"github.com/emotionlab/server/internal/modules/handler"
	"github.com/emotionlab/server/internal/modules/serializer"
	"github.com/emotionlab/server/internal/telemetry"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config            *config.Config
	Log               *zap.Logger
	SessionHandler    *handler.SessionHandler
	RoundHandler      *handler.RoundHandler
	GenerationHandler *handler.GenerationHandler
	CatalogHandler    *handler.CatalogHandler
	// PollThrottle may be nil when redis is disabled; readiness polling is then unlimited.
	PollThrottle middleware.ThrottleFunc
}

func NewRouter(d RouterDeps) *gin.Engine {
	// Initialize logger for serializer package
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(telemetry.GinMiddleware(d.Config.App.Name))
		// Add trace ID to response header
		r.Use(telemetry.TraceIDMiddleware())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Success: true, Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Success: true, Msg: "pong"}) })

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", d.SessionHandler.CreateSession)
			sessions.GET("/:session_id", d.SessionHandler.GetSession)

			sessions.POST("/:session_id/rounds", d.RoundHandler.CreateRound)
			sessions.PATCH("/:session_id/rounds/:round_id", d.RoundHandler.UpdateRound)
			sessions.POST("/:session_id/rounds/:round_number/prepare", d.RoundHandler.PrepareRound)
			sessions.GET("/:session_id/rounds/:round_number/readiness",
				middleware.PollRateLimit(d.PollThrottle, d.Config.Polling.MinInterval, d.Log),
				d.RoundHandler.GetReadiness)
		}

		generate := v1.Group("/generate")
		{
			generate.POST("/analysis", d.GenerationHandler.Analysis)
			generate.POST("/story", d.GenerationHandler.Story)
			generate.POST("/script", d.GenerationHandler.Script)
			generate.POST("/praise", d.GenerationHandler.Praise)
		}

		catalog := v1.Group("/catalog")
		{
			catalog.GET("/stories", d.CatalogHandler.ListStories)
			catalog.GET("/scripts", d.CatalogHandler.ListScripts)
		}
	}

	return r
}
