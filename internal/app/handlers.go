package app

import (
	"github.com/yungbote/storyjam-backend/internal/handlers"
	"github.com/yungbote/storyjam-backend/internal/logger"
	"github.com/yungbote/storyjam-backend/internal/sse"
)

type Handlers struct {
	Auth   *handlers.AuthHandler
	Story  *handlers.StoryHandler
	Joke   *handlers.JokeHandler
	Image  *handlers.ImageHandler
	Search *handlers.SearchHandler
	Upload *handlers.UploadHandler
	SSE    *handlers.SSEHandler
}

func wireHandlers(log *logger.Logger, services Services, sseHub *sse.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:   handlers.NewAuthHandler(services.Auth),
		Story:  handlers.NewStoryHandler(services.Story),
		Joke:   handlers.NewJokeHandler(services.Joke),
		Image:  handlers.NewImageHandler(services.Image),
		Search: handlers.NewSearchHandler(services.Search),
		Upload: handlers.NewUploadHandler(services.Bucket),
		SSE:    handlers.NewSSEHandler(sseHub),
	}
}
