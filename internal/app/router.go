package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/storyjam-backend/internal/server"
)

func wireRouter(handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:    handlerset.Auth,
		AuthMiddleware: middlewareset.Auth,
		StoryHandler:   handlerset.Story,
		JokeHandler:    handlerset.Joke,
		ImageHandler:   handlerset.Image,
		SearchHandler:  handlerset.Search,
		UploadHandler:  handlerset.Upload,
		SSEHandler:     handlerset.SSE,
	})
}
