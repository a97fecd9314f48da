package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/storyjam-backend/internal/handlers"
	"github.com/yungbote/storyjam-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	StoryHandler   *handlers.StoryHandler
	JokeHandler    *handlers.JokeHandler
	ImageHandler   *handlers.ImageHandler
	SearchHandler  *handlers.SearchHandler
	UploadHandler  *handlers.UploadHandler
	SSEHandler     *handlers.SSEHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware("storyjam-backend"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// SSE
	protected.GET("/sse/stream", cfg.SSEHandler.Stream)
	// Uploads
	protected.POST("/uploads/audio", cfg.UploadHandler.SignAudioUpload)
	// Stories
	protected.POST("/stories", cfg.StoryHandler.Create)
	protected.GET("/stories", cfg.StoryHandler.List)
	protected.GET("/stories/:id", cfg.StoryHandler.Get)
	protected.DELETE("/stories/:id", cfg.StoryHandler.Delete)
	// Jokes
	protected.POST("/stories/:id/jokes", cfg.JokeHandler.Request)
	protected.DELETE("/jokes/:jokeId", cfg.JokeHandler.Delete)
	// Images
	protected.POST("/stories/:id/images", cfg.ImageHandler.Request)
	protected.GET("/stories/:id/images", cfg.ImageHandler.List)
	// Search
	protected.POST("/search", cfg.SearchHandler.Similar)

	return router
}
